package comfy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNodeClasses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/object_info" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"KSampler":{"input":{}},"NSWCreateRegionMask":{"input":{}}}`))
	}))
	defer srv.Close()

	classes, err := NodeClasses(context.Background(), hostOf(srv), 5*time.Second)
	if err != nil {
		t.Fatalf("NodeClasses() = %v", err)
	}
	if len(classes) != 2 {
		t.Errorf("got %d classes, want 2", len(classes))
	}
	if _, ok := classes["NSWCreateRegionMask"]; !ok {
		t.Errorf("NSWCreateRegionMask missing from %v", classes)
	}
}

func TestNodeClassesErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NodeClasses(context.Background(), hostOf(srv), 5*time.Second); err == nil {
		t.Fatal("NodeClasses() = nil error, want failure on 502")
	}
}
