package comfy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func hostOf(srv *httptest.Server) string {
	return strings.TrimPrefix(srv.URL, "http://")
}

func TestInvalidateCallsRefreshEndpoint(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/nsw/refresh-models" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dir := t.TempDir()
	r := NewRefreshClient(afero.NewOsFs(), hostOf(srv), dir, 5*time.Second)
	r.Invalidate(context.Background())

	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Errorf("refresh endpoint called %d times, want 1", got)
	}
}

func TestInvalidateTouchesLorasDir(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dir := t.TempDir()
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(dir, past, past); err != nil {
		t.Fatal(err)
	}

	r := NewRefreshClient(afero.NewOsFs(), hostOf(srv), dir, 5*time.Second)
	r.Invalidate(context.Background())

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().After(past.Add(30 * time.Minute)) {
		t.Errorf("loras dir mtime not updated: %v", info.ModTime())
	}
}

func TestInvalidateSwallowsUnreachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	host := hostOf(srv)
	srv.Close() // nothing listens anymore

	r := NewRefreshClient(afero.NewOsFs(), host, t.TempDir(), time.Second)
	// Must not panic or propagate anything.
	r.Invalidate(context.Background())
}

func TestInvalidateSwallowsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "cache not found", http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewRefreshClient(afero.NewOsFs(), hostOf(srv), t.TempDir(), 5*time.Second)
	r.Invalidate(context.Background())
}

func TestInvalidateSwallowsMissingDir(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := NewRefreshClient(afero.NewOsFs(), hostOf(srv), "/does/not/exist", 5*time.Second)
	r.Invalidate(context.Background())
}
