// fetch-loras downloads the baked-in CivitAI LoRA set at Docker build time.
// It needs CIVITAI_API_KEY; without one the step is skipped (exit 0) so
// builds without CivitAI access still succeed. Not intended for runtime use.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"

	"github.com/G858-debug/No-Safe-Word/internal/buildfetch"
	"github.com/G858-debug/No-Safe-Word/internal/config"
)

// civitaiLoras is the fixed manifest baked into the image. The numeric ID is
// CivitAI's model-version ID.
var civitaiLoras = []struct {
	versionID string
	filename  string
}{
	{"177674", "better-bodies-xl.safetensors"},
	{"2686970", "cinecolor-harmonizer.safetensors"},
	{"435833", "melanin-mix-xl.safetensors"},
	{"1746981", "couples-poses-xl.safetensors"},
}

var configPath string

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	app := cli.App{
		Name:      "fetch-loras",
		HelpName:  "fetch-loras",
		Usage:     "download the baked-in CivitAI LoRA set (build time)",
		UsageText: "fetch-loras [options]",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:        "config, c",
				Usage:       "path to config file (YAML)",
				Destination: &configPath,
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "fetch-loras: %s\n", err.Error())
		os.Exit(1)
	}
}

func run(_ *cli.Context) error {
	key := os.Getenv("CIVITAI_API_KEY")
	if key == "" {
		log.Println("[nsw] CIVITAI_API_KEY not set — skipping CivitAI LoRA downloads")
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := context.Background()
	client := buildfetch.NewClient(cfg.BuildTimeout())
	p := mpb.New(mpb.WithWidth(64))

	failed := 0
	for _, lora := range civitaiLoras {
		url := fmt.Sprintf("https://civitai.com/api/download/models/%s?token=%s", lora.versionID, key)
		dest := filepath.Join(cfg.LorasDir(), lora.filename)
		if err := buildfetch.Fetch(ctx, client, p, lora.filename, url, dest); err != nil {
			log.Printf("[nsw] Failed to download %s: %v", lora.filename, err)
			failed++
		}
	}
	p.Wait()

	log.Printf("[nsw] CivitAI LoRAs: %d/%d downloaded.", len(civitaiLoras)-failed, len(civitaiLoras))
	if failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", failed, len(civitaiLoras))
	}
	return nil
}
