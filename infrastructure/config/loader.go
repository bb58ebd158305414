package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Extraction ExtractionConfig `yaml:"extraction"`
	YouTube    YouTubeConfig    `yaml:"youtube"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port int `yaml:"port"`
}

// StorageConfig contains scratch directory and retention settings
type StorageConfig struct {
	ScratchDirectory   string   `yaml:"scratch_directory"`
	SweepInterval      Duration `yaml:"sweep_interval"`
	MaxArtifactAge     Duration `yaml:"max_artifact_age"`
	DownloadGraceDelay Duration `yaml:"download_grace_delay"`
}

// ExtractionConfig contains extraction pipeline settings
type ExtractionConfig struct {
	MaxDurationSeconds int    `yaml:"max_duration_seconds"`
	FFmpegPath         string `yaml:"ffmpeg_path"`
}

// YouTubeConfig contains source platform settings.
// Provider is "innertube" (default, no credentials) or "api"
// (YouTube Data API via APIKey or CredentialsFile).
type YouTubeConfig struct {
	Provider        string `yaml:"provider"`
	APIKey          string `yaml:"api_key"`
	CredentialsFile string `yaml:"credentials_file"`
}

// Duration wraps time.Duration for YAML round-tripping ("1h", "5s").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the configuration used when no file is present.
// The values mirror the service's fixed operating parameters.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 3001},
		Storage: StorageConfig{
			ScratchDirectory:   "temp",
			SweepInterval:      Duration(time.Hour),
			MaxArtifactAge:     Duration(time.Hour),
			DownloadGraceDelay: Duration(5 * time.Second),
		},
		Extraction: ExtractionConfig{
			MaxDurationSeconds: 1200,
			FFmpegPath:         "ffmpeg",
		},
		YouTube: YouTubeConfig{Provider: "innertube"},
	}
}

// Load reads and parses the configuration from the specified YAML file,
// then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to defaults (plus
// environment overrides) when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		cfg.applyEnv()
		return cfg, nil
	}
	return Load(path)
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnv overrides file values from the environment. A .env file, if
// present, is loaded into the environment by the command layer first.
func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("SCRATCH_DIR"); v != "" {
		c.Storage.ScratchDirectory = v
	}
	if v := os.Getenv("FFMPEG_PATH"); v != "" {
		c.Extraction.FFmpegPath = v
	}
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		c.YouTube.APIKey = v
		if c.YouTube.Provider == "" || c.YouTube.Provider == "innertube" {
			c.YouTube.Provider = "api"
		}
	}
}
