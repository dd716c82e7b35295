package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Comfy     ComfyConfig     `mapstructure:"comfy"`
	Downloads DownloadsConfig `mapstructure:"downloads"`
}

type ComfyConfig struct {
	Dir  string `mapstructure:"dir"`
	Host string `mapstructure:"host"`
}

type DownloadsConfig struct {
	AssetTimeoutSeconds   int `mapstructure:"asset_timeout_seconds"`
	RefreshTimeoutSeconds int `mapstructure:"refresh_timeout_seconds"`
	BuildTimeoutSeconds   int `mapstructure:"build_timeout_seconds"`
}

// LorasDir returns the directory character LoRAs are cached in.
func (c *Config) LorasDir() string {
	return filepath.Join(c.Comfy.Dir, "models", "loras")
}

// InsightFaceDir returns the directory InsightFace models are extracted into.
func (c *Config) InsightFaceDir() string {
	return filepath.Join(c.Comfy.Dir, "models", "insightface", "models")
}

// AssetTimeout is the per-asset network timeout for job-time downloads.
func (c *Config) AssetTimeout() time.Duration {
	return time.Duration(c.Downloads.AssetTimeoutSeconds) * time.Second
}

// RefreshTimeout is the timeout for the advisory cache-refresh call.
func (c *Config) RefreshTimeout() time.Duration {
	return time.Duration(c.Downloads.RefreshTimeoutSeconds) * time.Second
}

// BuildTimeout is the per-file network timeout for build-time downloads.
func (c *Config) BuildTimeout() time.Duration {
	return time.Duration(c.Downloads.BuildTimeoutSeconds) * time.Second
}

// Load reads configuration from an optional YAML file, environment
// variables and built-in defaults, in increasing order of precedence.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in common locations
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/nsw-worker")
	}

	// Set defaults
	v.SetDefault("comfy.dir", "/comfyui")
	v.SetDefault("comfy.host", "127.0.0.1:8188")
	v.SetDefault("downloads.asset_timeout_seconds", 120)
	v.SetDefault("downloads.refresh_timeout_seconds", 10)
	v.SetDefault("downloads.build_timeout_seconds", 300)

	// Read from environment variables (with priority)
	v.AutomaticEnv()
	v.SetEnvPrefix("NSW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Allow environment variable overrides
	if dir := os.Getenv("COMFY_DIR"); dir != "" {
		v.Set("comfy.dir", dir)
	}
	if host := os.Getenv("COMFY_HOST"); host != "" {
		v.Set("comfy.host", host)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}
