package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/G858-debug/No-Safe-Word/internal/assets"
)

// Invalidator asks the sibling ComfyUI process to drop its model listing
// cache. Best-effort: implementations never report failure.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Fetcher downloads the requested assets that are not already cached.
type Fetcher interface {
	EnsurePresent(ctx context.Context, requests []assets.DownloadRequest) error
}

// PreProcessor downloads a job's character LoRAs before handing the job to
// the wrapped handler.
type PreProcessor struct {
	fetcher     Fetcher
	invalidator Invalidator
	next        Handler
}

// NewPreProcessor creates a pre-processor delegating to next.
func NewPreProcessor(fetcher Fetcher, invalidator Invalidator, next Handler) *PreProcessor {
	return &PreProcessor{
		fetcher:     fetcher,
		invalidator: invalidator,
		next:        next,
	}
}

// Process pops the character_lora_downloads field from the job input,
// downloads the listed assets and refreshes ComfyUI's model cache, then
// delegates to the wrapped handler. A download failure fails the job before
// the handler runs. Jobs without downloads pass through with no side
// effects.
func (p *PreProcessor) Process(ctx context.Context, job *Job) (interface{}, error) {
	raw, ok := job.Input[downloadsKey]
	if !ok {
		return p.next(ctx, job)
	}
	delete(job.Input, downloadsKey)

	var downloads []assets.DownloadRequest
	if err := json.Unmarshal(raw, &downloads); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", downloadsKey, err)
	}

	if len(downloads) > 0 {
		log.Printf("[nsw] Job %s: downloading %d character LoRA(s)...", jobID(job), len(downloads))
		if err := p.fetcher.EnsurePresent(ctx, downloads); err != nil {
			return nil, err
		}
		p.invalidator.Invalidate(ctx)
		log.Printf("[nsw] All character LoRAs ready.")
	}

	return p.next(ctx, job)
}

func jobID(job *Job) string {
	if job.ID == "" {
		return "?"
	}
	return job.ID
}
