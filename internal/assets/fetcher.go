// Package assets downloads per-job character LoRAs into ComfyUI's loras
// directory. Files already present on the shared volume are never
// re-fetched: presence implies validity.
package assets

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// userAgent identifies worker downloads to upstream storage.
const userAgent = "Mozilla/5.0 (ComfyUI-Worker)"

// DownloadRequest names one remote asset and where it lives under the
// loras directory. Filename may contain subdirectory segments, e.g.
// "characters/char_zanele_abc123.safetensors".
type DownloadRequest struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// Fetcher downloads character LoRAs into a loras directory.
type Fetcher struct {
	fs       afero.Fs
	client   *http.Client
	lorasDir string
}

// NewFetcher creates a fetcher writing under lorasDir with the given
// per-asset network timeout.
func NewFetcher(fs afero.Fs, lorasDir string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		fs: fs,
		client: &http.Client{
			Timeout: timeout,
		},
		lorasDir: lorasDir,
	}
}

// EnsurePresent downloads every requested asset that is not already cached,
// strictly in list order. Entries with a blank filename or URL are skipped
// with a warning. The first download failure aborts the remaining requests
// and is returned naming the failed asset; a partially written temp file is
// removed before returning.
func (f *Fetcher) EnsurePresent(ctx context.Context, requests []DownloadRequest) error {
	if len(requests) == 0 {
		return nil
	}

	for _, req := range requests {
		if req.Filename == "" || req.URL == "" {
			log.Printf("[nsw] Skipping invalid character LoRA download entry: %+v", req)
			continue
		}

		dest := filepath.Join(f.lorasDir, req.Filename)

		if info, err := f.fs.Stat(dest); err == nil && info.Mode().IsRegular() {
			log.Printf("[nsw] Character LoRA already cached: %s (%.1f MB)", req.Filename, float64(info.Size())/(1024*1024))
			continue
		}

		// Ensure subdirectory exists (e.g. loras/characters/)
		if err := f.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return fmt.Errorf("failed to download character LoRA %s: %w", req.Filename, err)
		}

		log.Printf("[nsw] Downloading character LoRA: %s", req.Filename)
		if err := f.download(ctx, req.URL, dest); err != nil {
			log.Printf("[nsw] Failed to download character LoRA %s: %v", req.Filename, err)
			return fmt.Errorf("failed to download character LoRA %s: %w", req.Filename, err)
		}

		if info, err := f.fs.Stat(dest); err == nil {
			log.Printf("[nsw] Downloaded character LoRA: %s (%.1f MB)", req.Filename, float64(info.Size())/(1024*1024))
		}
	}

	return nil
}

// download streams url to dest via a temporary sibling file so a reader
// never observes a partially written file under the final name.
func (f *Fetcher) download(ctx context.Context, url, dest string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	tmpPath := dest + ".tmp"
	file, err := f.fs.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		f.removeTemp(tmpPath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := file.Close(); err != nil {
		f.removeTemp(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := f.fs.Rename(tmpPath, dest); err != nil {
		f.removeTemp(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// removeTemp cleans up a partial download.
func (f *Fetcher) removeTemp(tmpPath string) {
	if err := f.fs.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
		log.Printf("[nsw] Failed to remove temp file %s: %v", tmpPath, err)
	}
}
