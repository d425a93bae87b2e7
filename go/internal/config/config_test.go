package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Spinner.Duration != 4*time.Second || cfg.Spinner.MinDelay != 50*time.Millisecond || cfg.Spinner.MaxDelay != 500*time.Millisecond {
		t.Errorf("Spinner = %+v, want 4s/50ms/500ms", cfg.Spinner)
	}
	if cfg.Storage.Backend != StorageFile || cfg.Server.Port != "8080" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
log_level: debug
spinner:
  duration: 2s
  min_delay: 20ms
  max_delay: 300ms
storage:
  backend: postgres
nats:
  url: nats://bus:4222
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Port = %s", cfg.Server.Port)
	}
	if cfg.Spinner.Duration != 2*time.Second || cfg.Spinner.MinDelay != 20*time.Millisecond || cfg.Spinner.MaxDelay != 300*time.Millisecond {
		t.Errorf("Spinner = %+v", cfg.Spinner)
	}
	if cfg.Storage.Backend != StoragePostgres || cfg.NATS.URL != "nats://bus:4222" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.NATS.StreamName != "SPIN_EVENTS" {
		t.Errorf("StreamName default lost: %q", cfg.NATS.StreamName)
	}
	if cfg.Level() != zerolog.DebugLevel {
		t.Errorf("Level() = %v", cfg.Level())
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, "spinner:\n  duration: 2s\n")
	t.Setenv("SPIN_DURATION_MS", "1500")
	t.Setenv("PORT", "7000")
	t.Setenv("STORAGE", "FILE")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Spinner.Duration != 1500*time.Millisecond {
		t.Errorf("Duration = %s, want 1.5s", cfg.Spinner.Duration)
	}
	if cfg.Server.Port != "7000" || cfg.Storage.Backend != StorageFile {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"max below min", "spinner:\n  min_delay: 100ms\n  max_delay: 50ms\n"},
		{"unknown storage", "storage:\n  backend: redis\n"},
		{"bad level", "log_level: loud\n"},
		{"bad yaml", "spinner: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
