package main

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestServeFile(t *testing.T) {
	// WHAT: An existing artifact is served as JSON; a missing one is 404.
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.json")
	os.WriteFile(path, []byte(`[{"title":"T"}]`), 0o644)

	h := serveFile(path, nil)
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest("GET", "/prompts.json", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content-type = %q", ct)
	}
	if rec.Body.String() != `[{"title":"T"}]` {
		t.Errorf("body = %q", rec.Body.String())
	}

	missing := serveFile(filepath.Join(dir, "nope.json"), nil)
	rec = httptest.NewRecorder()
	missing(rec, httptest.NewRequest("GET", "/stats.json", nil))
	if rec.Code != 404 {
		t.Errorf("missing artifact status = %d, want 404", rec.Code)
	}
}
