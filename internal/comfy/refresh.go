// Package comfy talks to the local ComfyUI process over its HTTP API.
package comfy

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/spf13/afero"
)

// RefreshClient asks ComfyUI to drop its cached list of available models so
// newly downloaded character LoRA files pass workflow validation.
type RefreshClient struct {
	fs       afero.Fs
	client   *http.Client
	host     string
	lorasDir string
}

// NewRefreshClient creates a refresh client for the ComfyUI instance at
// host (host:port, no scheme).
func NewRefreshClient(fs afero.Fs, host, lorasDir string, timeout time.Duration) *RefreshClient {
	return &RefreshClient{
		fs: fs,
		client: &http.Client{
			Timeout: timeout,
		},
		host:     host,
		lorasDir: lorasDir,
	}
}

// Invalidate nudges ComfyUI to rebuild its model listing. Both steps are
// advisory: failures are logged and swallowed, never returned. Touching the
// loras directory covers ComfyUI versions that invalidate on mtime; the
// refresh endpoint (served by the nsw_refresh_models extension) clears the
// listing cache explicitly.
func (r *RefreshClient) Invalidate(ctx context.Context) {
	now := time.Now()
	if err := r.fs.Chtimes(r.lorasDir, now, now); err != nil {
		log.Printf("[nsw] Failed to touch loras dir: %v", err)
	} else {
		log.Printf("[nsw] Touched %s to update mtime", r.lorasDir)
	}

	url := fmt.Sprintf("http://%s/api/nsw/refresh-models", r.host)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		log.Printf("[nsw] Failed to create refresh request: %v", err)
		return
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		log.Printf("[nsw] Failed to call ComfyUI refresh endpoint: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		log.Printf("[nsw] ComfyUI model cache refreshed successfully")
		return
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	log.Printf("[nsw] ComfyUI refresh returned %d: %s", resp.StatusCode, body)
}
