package worker

import "log"

// StartConfig is what the job-queue runtime's entrypoint accepts: the
// handler it will serve jobs to.
type StartConfig struct {
	Handler Handler
}

// StartFunc begins serving jobs with the given configuration and blocks
// until the runtime shuts down. The real implementation belongs to the
// job-queue runtime; tests and local mode supply their own.
type StartFunc func(cfg StartConfig) error

// WrapStart returns a start function that installs pre-processing in front
// of the configured handler before forwarding to start. A config without a
// handler is forwarded unchanged.
func WrapStart(fetcher Fetcher, invalidator Invalidator, start StartFunc) StartFunc {
	return func(cfg StartConfig) error {
		if cfg.Handler == nil {
			return start(cfg)
		}
		pre := NewPreProcessor(fetcher, invalidator, cfg.Handler)
		cfg.Handler = pre.Process
		log.Printf("[nsw] Handler wrapped with character LoRA support")
		return start(cfg)
	}
}
