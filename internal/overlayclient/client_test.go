package overlayclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamoverlay/internal/adapter/repo"
	"streamoverlay/internal/domain"
	"streamoverlay/internal/http/handlers"
	"streamoverlay/internal/http/httpapi"
	"streamoverlay/internal/infra"
	"streamoverlay/internal/service"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	store := repo.NewOverlayRepositoryBadger(db)
	t.Cleanup(func() { _ = store.Close() })

	cfg := &infra.Config{AppEnv: "test", CORSOrigins: []string{"*"}}
	app := handlers.NewApp(service.NewOverlayService(store, zerolog.Nop()), store, zerolog.Nop(), false)
	srv := httptest.NewServer(httpapi.NewRouter(app, cfg, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv
}

func ptr[T any](v T) *T { return &v }

func TestClientRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(Options{BaseURL: srv.URL + "/api/"})
	ctx := context.Background()

	msg, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Livestream Overlay API is running!", msg)

	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	created, err := c.Create(ctx, domain.OverlayFields{Name: ptr("Lower Third"), Type: ptr("text"), Content: ptr("Hello")})
	require.NoError(t, err)
	assert.Equal(t, domain.Size{Width: 100, Height: 50}, created.Size)

	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)

	updated, err := c.Update(ctx, created.ID, domain.OverlayFields{Position: &domain.PositionFields{Y: ptr(80.0)}})
	require.NoError(t, err)
	assert.Equal(t, domain.Position{X: 0, Y: 80}, updated.Position)

	toggled, err := c.ToggleVisibility(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsVisible)

	deleted, err := c.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)
}

func TestClientAPIErrors(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(Options{BaseURL: srv.URL + "/api"})
	ctx := context.Background()

	_, err := c.Get(ctx, "4e5d3c2b-1a09-4876-a543-210fedcba987")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.NotFound())
	assert.Equal(t, "Overlay not found", apiErr.Message)

	_, err = c.Create(ctx, domain.OverlayFields{Name: ptr("only a name")})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Name, type, and content are required fields", apiErr.Message)
}

func TestClientTransportErrors(t *testing.T) {
	html := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>proxy error</html>"))
	}))
	defer html.Close()

	_, err := NewClient(Options{BaseURL: html.URL}).List(context.Background())
	var tErr *TransportError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, "/overlays", tErr.Path)

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	_, err = NewClient(Options{BaseURL: slow.URL, Timeout: 50 * time.Millisecond}).List(context.Background())
	require.ErrorAs(t, err, &tErr)

	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	_, err = NewClient(Options{BaseURL: closed.URL}).List(context.Background())
	require.ErrorAs(t, err, &tErr)
	assert.False(t, errors.As(err, new(*APIError)))
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Options{})
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}
