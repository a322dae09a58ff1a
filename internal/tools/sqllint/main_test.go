package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOverlayQueriesCarryMarkers(t *testing.T) {
	violations, err := lint([]string{filepath.Join("..", "..", "sqlinline")})
	if err != nil {
		t.Fatalf("lint returned error: %v", err)
	}
	for _, v := range violations {
		t.Errorf("%s:%d %s (%s)", v.file, v.line, v.message, v.name)
	}
}

func TestLintReportsUnmarkedSQL(t *testing.T) {
	dir := t.TempDir()
	src := "package q\n\n" +
		"const QOk = `--sql 8e81ce9a-2b50-4d4e-8829-89f46972710d\nselect 1;`\n\n" +
		"const QBad = `select id from overlays;`\n\n" +
		"const QBadMarker = \"--sql not-a-uuid\\ndelete from overlays;\"\n\n" +
		"const Label = \"overlay\"\n"
	path := filepath.Join(dir, "q.go")
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	violations, err := lint([]string{dir})
	if err != nil {
		t.Fatalf("lint returned error: %v", err)
	}
	if len(violations) != 2 {
		t.Fatalf("expected 2 violations, got %+v", violations)
	}
	if violations[0].name != "QBad" || violations[1].name != "QBadMarker" {
		t.Fatalf("unexpected names: %s, %s", violations[0].name, violations[1].name)
	}
}

func TestLintMissingTarget(t *testing.T) {
	if _, err := lint([]string{filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Fatal("expected error for missing target")
	}
}
