// Package buildfetch downloads model weights at Docker build time. Unlike
// the job-time fetcher it always downloads (the image is built once) and
// renders a progress bar per file for build logs.
package buildfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

const userAgent = "Mozilla/5.0 (ComfyUI-Worker)"

// Fetch streams url into dest, rendering progress on p. The file is written
// to a temporary sibling and renamed on success; on failure the temp file is
// removed and an error is returned.
func Fetch(ctx context.Context, client *http.Client, p *mpb.Progress, name, url, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	bar := newBar(p, name, resp.ContentLength)
	body := bar.ProxyReader(resp.Body)
	defer body.Close()

	tmpPath := dest + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		bar.Abort(true)
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(file, body); err != nil {
		file.Close()
		os.Remove(tmpPath)
		bar.Abort(true)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		bar.Abort(true)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		bar.Abort(true)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	// Close out the bar at whatever was read; covers responses without a
	// Content-Length header.
	bar.SetTotal(-1, true)
	return nil
}

// NewClient returns the HTTP client build downloads run through.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func newBar(p *mpb.Progress, name string, cLength int64) *mpb.Bar {
	barStyle := mpb.BarStyle().Lbound("╢").Filler("█").Tip("█").Padding("░").Rbound("╟")

	bar := p.New(0,
		barStyle,
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DindentRight}),
			decor.OnComplete(
				decor.AverageETA(decor.ET_STYLE_GO, decor.WC{W: 4}), "Complete",
			),
		),
		mpb.AppendDecorators(
			decor.AverageSpeed(decor.SizeB1024(0), "% .2f"),
		),
	)
	if cLength > 0 {
		bar.SetTotal(cLength, false)
	}
	return bar
}
