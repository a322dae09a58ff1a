package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamoverlay/internal/adapter/repo"
	"streamoverlay/internal/http/handlers"
	"streamoverlay/internal/http/httpapi"
	"streamoverlay/internal/infra"
	"streamoverlay/internal/service"
)

func newAPI(t *testing.T) string {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	store := repo.NewOverlayRepositoryBadger(db)
	t.Cleanup(func() { _ = store.Close() })

	app := handlers.NewApp(service.NewOverlayService(store, zerolog.Nop()), store, zerolog.Nop(), false)
	srv := httptest.NewServer(httpapi.NewRouter(app, &infra.Config{AppEnv: "test"}, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

func runCmd(t *testing.T, api, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), append([]string{"-api", api}, args...), strings.NewReader(stdin), &out)
	return out.String(), err
}

var idPattern = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

func TestOverlayctlLifecycle(t *testing.T) {
	api := newAPI(t)

	out, err := runCmd(t, api, "", "create", "-type", "logo", "-name", "Sponsor", "-content", "https://example.com/logo.png", "-opacity", "0.8")
	require.NoError(t, err)
	assert.Contains(t, out, "created Logo overlay")
	id := idPattern.FindString(out)
	require.NotEmpty(t, id)

	out, err = runCmd(t, api, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Sponsor")
	assert.Contains(t, out, "Logo")
	assert.Contains(t, out, "50,50")
	assert.Contains(t, out, "1 overlay(s)")

	out, err = runCmd(t, api, "", "move", "-id", id, "-x", "320", "-y", "180")
	require.NoError(t, err)
	assert.Contains(t, out, "moved overlay")

	out, err = runCmd(t, api, "", "edit", "-id", id, "-name", "Main sponsor")
	require.NoError(t, err)
	assert.Contains(t, out, "Main sponsor")

	out, err = runCmd(t, api, "", "get", "-id", id)
	require.NoError(t, err)
	assert.Contains(t, out, `"x": 320`)
	assert.Contains(t, out, `"opacity": 0.8`)

	out, err = runCmd(t, api, "", "toggle", "-id", id)
	require.NoError(t, err)
	assert.Contains(t, out, "hidden")

	out, err = runCmd(t, api, "n\n", "delete", "-id", id)
	require.NoError(t, err)
	assert.Contains(t, out, "cancelled")

	out, err = runCmd(t, api, "y\n", "delete", "-id", id)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted overlay "+id)

	out, err = runCmd(t, api, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "0 overlay(s)")
}

func TestOverlayctlErrors(t *testing.T) {
	api := newAPI(t)

	_, err := runCmd(t, api, "", "create", "-name", "No content")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Name, type, and content are required fields")

	_, err = runCmd(t, api, "", "edit", "-id", "4e5d3c2b-1a09-4876-a543-210fedcba987", "-name", "x")
	assert.Error(t, err)

	_, err = runCmd(t, api, "", "bogus")
	assert.Error(t, err)

	_, err = runCmd(t, api, "", "stream", "http://example.com")
	assert.EqualError(t, err, "URL must start with rtsp://")
}

func TestOverlayctlHealthAndStreams(t *testing.T) {
	api := newAPI(t)

	out, err := runCmd(t, api, "", "health")
	require.NoError(t, err)
	assert.Equal(t, "Livestream Overlay API is running!\n", out)

	out, err = runCmd(t, api, "", "stream")
	require.NoError(t, err)
	assert.Contains(t, out, "Big Buck Bunny")
}
