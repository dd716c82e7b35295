// Package worker wraps the serverless job handler with character LoRA
// pre-processing. The job-queue runtime and the downstream image handler
// are both injected; this package only owns the step in between.
package worker

import (
	"context"
	"encoding/json"
)

// Job is an inbound serverless job. Input keys other than the download list
// are kept as raw JSON so they reach the downstream handler byte-for-byte
// untouched.
type Job struct {
	ID    string                     `json:"id"`
	Input map[string]json.RawMessage `json:"input"`
}

// Handler processes one job and returns its result payload.
type Handler func(ctx context.Context, job *Job) (interface{}, error)

// downloadsKey is the input field carrying per-job asset downloads. It is
// consumed here and never reaches the downstream handler.
const downloadsKey = "character_lora_downloads"
