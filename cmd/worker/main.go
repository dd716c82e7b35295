// worker is the serverless entrypoint wrapper. It installs character LoRA
// pre-processing in front of whatever handler the job-queue runtime is
// configured with, then starts serving.
//
// In deployment the runtime's start function and the downstream handler are
// supplied by the hosting image; standalone it runs in local mode, reading a
// single job from a JSON file and printing the handler result, which is how
// the glue is smoke-tested inside the container.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"github.com/G858-debug/No-Safe-Word/internal/assets"
	"github.com/G858-debug/No-Safe-Word/internal/comfy"
	"github.com/G858-debug/No-Safe-Word/internal/config"
	"github.com/G858-debug/No-Safe-Word/internal/worker"
)

var (
	configPath string
	jobPath    string
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	app := cli.App{
		Name:      "worker",
		HelpName:  "worker",
		Usage:     "serverless handler wrapper with character LoRA support",
		UsageText: "worker [options]",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:        "config, c",
				Usage:       "path to config file (YAML)",
				Destination: &configPath,
			},
			cli.StringFlag{
				Name:        "job, j",
				Usage:       "path to a job JSON file (local mode)",
				Value:       "test_input.json",
				Destination: &jobPath,
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %s\n", err.Error())
		os.Exit(1)
	}
}

func run(_ *cli.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	instanceID := uuid.New().String()
	log.Printf("[nsw] worker-comfyui wrapper starting (instance %s, comfy dir %s)", instanceID, cfg.Comfy.Dir)

	fs := afero.NewOsFs()
	fetcher := assets.NewFetcher(fs, cfg.LorasDir(), cfg.AssetTimeout())
	refresher := comfy.NewRefreshClient(fs, cfg.Comfy.Host, cfg.LorasDir(), cfg.RefreshTimeout())

	start := worker.WrapStart(fetcher, refresher, localStart)
	return start(worker.StartConfig{Handler: echoHandler})
}

// localStart serves exactly one job read from jobPath and prints the
// handler result. It stands in for the job-queue runtime's start function
// when the worker runs outside the serverless platform.
func localStart(cfg worker.StartConfig) error {
	data, err := os.ReadFile(jobPath)
	if err != nil {
		return fmt.Errorf("failed to read job file: %w", err)
	}

	var job worker.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return fmt.Errorf("failed to parse job file: %w", err)
	}

	result, err := cfg.Handler(context.Background(), &job)
	if err != nil {
		return fmt.Errorf("job %s failed: %w", job.ID, err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// echoHandler is the local-mode downstream handler: it reports the input it
// received. In deployment the downstream is the image-generation handler
// supplied by the hosting image.
func echoHandler(_ context.Context, job *worker.Job) (interface{}, error) {
	return map[string]interface{}{
		"id":    job.ID,
		"input": job.Input,
	}, nil
}
