package buildfetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vbauerster/mpb/v8"
)

func TestFetchDownloads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "Mozilla/5.0 (ComfyUI-Worker)" {
			t.Errorf("User-Agent = %q", got)
		}
		w.Write([]byte("model weights"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "loras", "better-bodies-xl.safetensors")
	p := mpb.New(mpb.WithOutput(io.Discard))
	err := Fetch(context.Background(), NewClient(10*time.Second), p, "better-bodies-xl", srv.URL, dest)
	p.Wait()
	if err != nil {
		t.Fatalf("Fetch() = %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("downloaded file missing: %v", err)
	}
	if string(data) != "model weights" {
		t.Errorf("content = %q", data)
	}
	if _, err := os.Stat(dest + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind")
	}
}

func TestFetchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such model", http.StatusUnauthorized)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "x.safetensors")
	p := mpb.New(mpb.WithOutput(io.Discard))
	err := Fetch(context.Background(), NewClient(10*time.Second), p, "x", srv.URL, dest)
	p.Wait()
	if err == nil {
		t.Fatal("Fetch() = nil, want error on 401")
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Errorf("file must not exist after failed fetch")
	}
}

func TestFetchInterruptedTransfer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "4096")
		w.Write([]byte("short"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "x.safetensors")
	p := mpb.New(mpb.WithOutput(io.Discard))
	err := Fetch(context.Background(), NewClient(10*time.Second), p, "x", srv.URL, dest)
	p.Wait()
	if err == nil {
		t.Fatal("Fetch() = nil, want error on truncated body")
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Errorf("file must not exist after truncated fetch")
	}
	if _, statErr := os.Stat(dest + ".tmp"); !os.IsNotExist(statErr) {
		t.Errorf("temp file must be cleaned up after truncated fetch")
	}
}
