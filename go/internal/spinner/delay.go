package spinner

import (
	"math"
	"time"
)

// Config holds the timing of a run.
type Config struct {
	Duration time.Duration `yaml:"duration"`
	MinDelay time.Duration `yaml:"min_delay"`
	MaxDelay time.Duration `yaml:"max_delay"`
}

// DefaultConfig returns a 4s run decelerating from 50ms to 500ms ticks.
func DefaultConfig() Config {
	return Config{
		Duration: 4000 * time.Millisecond,
		MinDelay: 50 * time.Millisecond,
		MaxDelay: 500 * time.Millisecond,
	}
}

// withDefaults fills zero or inconsistent fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Duration <= 0 {
		c.Duration = def.Duration
	}
	if c.MinDelay <= 0 {
		c.MinDelay = def.MinDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = def.MaxDelay
	}
	if c.MaxDelay < c.MinDelay {
		c.MaxDelay = c.MinDelay
	}
	return c
}

// Progress returns the elapsed fraction of a run, clamped to [0, 1].
func Progress(start, now time.Time, total time.Duration) float64 {
	if total <= 0 {
		return 1
	}
	p := float64(now.Sub(start)) / float64(total)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// TickDelay maps run progress to the wait before the next tick:
// MinDelay + floor(progress * (MaxDelay - MinDelay)), in whole milliseconds.
func TickDelay(cfg Config, progress float64) time.Duration {
	cfg = cfg.withDefaults()
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	spanMs := float64((cfg.MaxDelay - cfg.MinDelay) / time.Millisecond)
	return cfg.MinDelay + time.Duration(math.Floor(progress*spanMs))*time.Millisecond
}
