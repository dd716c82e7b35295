package comfy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// NodeClasses fetches the set of node class names ComfyUI has registered,
// from its /object_info endpoint. Used by the post-build diagnostic to
// confirm custom node extensions loaded.
func NodeClasses(ctx context.Context, host string, timeout time.Duration) (map[string]struct{}, error) {
	client := &http.Client{Timeout: timeout}

	url := fmt.Sprintf("http://%s/object_info", host)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to reach ComfyUI: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("object_info returned status %d", resp.StatusCode)
	}

	// /object_info maps class name -> node metadata; only the keys matter here.
	var info map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode object_info: %w", err)
	}

	classes := make(map[string]struct{}, len(info))
	for name := range info {
		classes[name] = struct{}{}
	}
	return classes, nil
}
