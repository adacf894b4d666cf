// Package timeouts holds the per-operation deadlines handlers apply to
// MongoDB, storage and SMTP calls. Values are process-wide and set once
// from configuration.
package timeouts

import (
	"sync/atomic"
	"time"
)

// Defaults used until Configure is called.
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

// Config holds one deadline per operation class. Zero fields keep the
// current value when passed to Configure.
type Config struct {
	Ping   time.Duration // health check pings
	Short  time.Duration // single-document reads and writes
	Medium time.Duration // list queries and slug resolution
	Long   time.Duration // uploads and outbound mail
}

func defaults() Config {
	return Config{Ping: DefaultPing, Short: DefaultShort, Medium: DefaultMedium, Long: DefaultLong}
}

var current atomic.Pointer[Config]

func init() { Reset() }

// Ping returns the timeout for health checks.
func Ping() time.Duration { return current.Load().Ping }

// Short returns the timeout for single-document reads and writes.
func Short() time.Duration { return current.Load().Short }

// Medium returns the timeout for list queries and slug resolution.
func Medium() time.Duration { return current.Load().Medium }

// Long returns the timeout for uploads and outbound mail.
func Long() time.Duration { return current.Load().Long }

// Configure overlays the positive fields of cfg onto the current values.
func Configure(cfg Config) {
	next := *current.Load()
	if cfg.Ping > 0 {
		next.Ping = cfg.Ping
	}
	if cfg.Short > 0 {
		next.Short = cfg.Short
	}
	if cfg.Medium > 0 {
		next.Medium = cfg.Medium
	}
	if cfg.Long > 0 {
		next.Long = cfg.Long
	}
	current.Store(&next)
}

// Reset restores the defaults.
func Reset() {
	d := defaults()
	current.Store(&d)
}

// Current returns a copy of the active configuration.
func Current() Config { return *current.Load() }
