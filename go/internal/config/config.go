package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/maelkermann/plouf-plouf/go/internal/spinner"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	StorageFile     = "file"
	StoragePostgres = "postgres"

	DefaultPath = "config.yaml"
)

type Config struct {
	Server struct {
		Port            string        `yaml:"port"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	LogLevel string `yaml:"log_level"`

	Spinner spinner.Config `yaml:"spinner"`

	Storage struct {
		Backend  string `yaml:"backend"`
		FilePath string `yaml:"file_path"`
	} `yaml:"storage"`

	NATS struct {
		URL           string `yaml:"url"`
		StreamName    string `yaml:"stream_name"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"nats"`
}

// Default returns the configuration used when no file or env is present
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = "8080"
	cfg.Server.ShutdownTimeout = 10 * time.Second
	cfg.LogLevel = "info"
	cfg.Spinner = spinner.DefaultConfig()
	cfg.Storage.Backend = StorageFile
	cfg.Storage.FilePath = "ploufPloufSavedLists.json"
	cfg.NATS.StreamName = "SPIN_EVENTS"
	cfg.NATS.SubjectPrefix = "plouf.events"
	return cfg
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Storage.Backend = strings.ToLower(getEnv("STORAGE", c.Storage.Backend))
	c.Storage.FilePath = getEnv("SAVED_LISTS_PATH", c.Storage.FilePath)
	c.NATS.URL = getEnv("NATS_URL", c.NATS.URL)

	c.Spinner.Duration = getEnvAsMillis("SPIN_DURATION_MS", c.Spinner.Duration)
	c.Spinner.MinDelay = getEnvAsMillis("SPIN_MIN_DELAY_MS", c.Spinner.MinDelay)
	c.Spinner.MaxDelay = getEnvAsMillis("SPIN_MAX_DELAY_MS", c.Spinner.MaxDelay)
}

func (c *Config) Validate() error {
	if c.Spinner.Duration <= 0 {
		return fmt.Errorf("spinner duration must be positive, got %s", c.Spinner.Duration)
	}
	if c.Spinner.MinDelay <= 0 {
		return fmt.Errorf("spinner min_delay must be positive, got %s", c.Spinner.MinDelay)
	}
	if c.Spinner.MaxDelay < c.Spinner.MinDelay {
		return fmt.Errorf("spinner max_delay %s is below min_delay %s", c.Spinner.MaxDelay, c.Spinner.MinDelay)
	}
	switch c.Storage.Backend {
	case StorageFile:
		if c.Storage.FilePath == "" {
			return errors.New("storage file_path is required for file storage")
		}
	case StoragePostgres:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// Level returns the configured zerolog level
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsMillis(key string, defaultValue time.Duration) time.Duration {
	ms := getEnvAsInt(key, -1)
	if ms < 0 {
		return defaultValue
	}
	return time.Duration(ms) * time.Millisecond
}
