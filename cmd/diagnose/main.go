// diagnose checks a running ComfyUI instance for the node classes the NSW
// workflows depend on (IPAdapter FaceID and the NSW mask nodes). Exit code
// is non-zero if the engine is unreachable or any expected class is missing.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli"

	"github.com/G858-debug/No-Safe-Word/internal/comfy"
	"github.com/G858-debug/No-Safe-Word/internal/config"
)

// defaultClasses are the custom nodes the multi-pass workflow requires.
var defaultClasses = []string{
	"IPAdapterFaceID",
	"IPAdapterUnifiedLoaderFaceID",
	"NSWCreateRegionMask",
	"NSWCreateSoftRegionMask",
}

var (
	configPath string
	classes    cli.StringSlice
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	app := cli.App{
		Name:      "diagnose",
		HelpName:  "diagnose",
		Usage:     "verify required custom node classes are registered in ComfyUI",
		UsageText: "diagnose [options]",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:        "config, c",
				Usage:       "path to config file (YAML)",
				Destination: &configPath,
			},
			cli.StringSliceFlag{
				Name:  "class, n",
				Usage: "node class to check for (repeatable, defaults to the NSW workflow set)",
				Value: &classes,
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "diagnose: %s\n", err.Error())
		os.Exit(1)
	}
}

func run(_ *cli.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	expected := classes
	if len(expected) == 0 {
		expected = defaultClasses
	}

	registered, err := comfy.NodeClasses(context.Background(), cfg.Comfy.Host, 30*time.Second)
	if err != nil {
		return err
	}

	fmt.Printf("=== ComfyUI node check (%s, %d classes registered) ===\n", cfg.Comfy.Host, len(registered))
	missing := 0
	for _, name := range expected {
		if _, ok := registered[name]; ok {
			fmt.Printf("  %s: OK\n", name)
		} else {
			fmt.Printf("  %s: MISSING\n", name)
			missing++
		}
	}

	if missing > 0 {
		return fmt.Errorf("%d of %d expected node classes missing", missing, len(expected))
	}
	return nil
}
