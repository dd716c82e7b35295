package worker

import (
	"context"
	"testing"
)

func TestWrapStartWithoutHandlerForwardsUnchanged(t *testing.T) {
	var got StartConfig
	start := func(cfg StartConfig) error {
		got = cfg
		return nil
	}

	wrapped := WrapStart(&fakeFetcher{}, &fakeInvalidator{}, start)
	if err := wrapped(StartConfig{}); err != nil {
		t.Fatalf("wrapped start = %v", err)
	}
	if got.Handler != nil {
		t.Errorf("config without handler was modified")
	}
}

func TestWrapStartInstallsPreProcessing(t *testing.T) {
	fetcher := &fakeFetcher{}
	inner := &capturingHandler{}

	var served Handler
	start := func(cfg StartConfig) error {
		served = cfg.Handler
		return nil
	}

	wrapped := WrapStart(fetcher, &fakeInvalidator{}, start)
	if err := wrapped(StartConfig{Handler: inner.handle}); err != nil {
		t.Fatalf("wrapped start = %v", err)
	}
	if served == nil {
		t.Fatal("start never received a handler")
	}

	job := newJob(t, "j1", `{
		"character_lora_downloads": [{"filename":"c1.safetensors","url":"http://example/c1"}],
		"prompt": "x"
	}`)
	if _, err := served(context.Background(), job); err != nil {
		t.Fatalf("served handler = %v", err)
	}

	if inner.calls != 1 {
		t.Fatalf("inner handler called %d times, want 1", inner.calls)
	}
	if _, ok := inner.job.Input["character_lora_downloads"]; ok {
		t.Errorf("served handler did not pre-process the job")
	}
	if len(fetcher.calls) != 1 {
		t.Errorf("fetcher called %d times, want 1", len(fetcher.calls))
	}
}
