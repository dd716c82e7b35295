// fetch-insightface downloads and extracts the InsightFace buffalo_l models
// used by IPAdapter FaceID. Build time only; any failure fails the build.
package main

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"

	"github.com/G858-debug/No-Safe-Word/internal/buildfetch"
	"github.com/G858-debug/No-Safe-Word/internal/config"
)

const buffaloURL = "https://github.com/deepinsight/insightface/releases/download/v0.7/buffalo_l.zip"

var configPath string

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	app := cli.App{
		Name:      "fetch-insightface",
		HelpName:  "fetch-insightface",
		Usage:     "download and extract InsightFace buffalo_l models (build time)",
		UsageText: "fetch-insightface [options]",
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
		fmt.Fprintf(os.Stderr, "fetch-insightface: %s\n", err.Error())
		os.Exit(1)
	}
}

func run(_ *cli.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	archivePath := filepath.Join(os.TempDir(), "buffalo_l.zip")
	outDir := cfg.InsightFaceDir()

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	log.Println("[nsw] Downloading InsightFace buffalo_l models...")
	client := buildfetch.NewClient(cfg.BuildTimeout())
	p := mpb.New(mpb.WithWidth(64))
	if err := buildfetch.Fetch(context.Background(), client, p, "buffalo_l.zip", buffaloURL, archivePath); err != nil {
		return fmt.Errorf("failed to download buffalo_l: %w", err)
	}
	p.Wait()

	log.Println("[nsw] Extracting...")
	if err := extract(archivePath, outDir); err != nil {
		return fmt.Errorf("failed to extract buffalo_l: %w", err)
	}
	if err := os.Remove(archivePath); err != nil {
		log.Printf("[nsw] Failed to remove archive: %v", err)
	}

	log.Println("[nsw] InsightFace buffalo_l models installed.")
	return nil
}

// extract unpacks the zip archive into outDir, rejecting entries that would
// escape it.
func extract(archivePath, outDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		dest := filepath.Join(outDir, f.Name)
		if !strings.HasPrefix(dest, filepath.Clean(outDir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry escapes output directory: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		if err := extractFile(f, dest); err != nil {
			return fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}
	}
	return nil
}

func extractFile(f *zip.File, dest string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
