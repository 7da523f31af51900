package config

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DefaultRequestTimeout bounds each catalog and artifact request.
const DefaultRequestTimeout = 120 * time.Second

// Config is the resolved zksvm configuration.
type Config struct {
	// DataDir holds installed versions, the global pointer and install locks.
	DataDir string
	// RequestTimeout bounds a whole HTTP request including the body.
	RequestTimeout time.Duration
	// Keyring is an OpenPGP public keyring. When set, artifacts must carry a
	// valid detached signature.
	Keyring string
	// LogLevel overrides the verbosity flag when set ("debug", "info", ...).
	LogLevel string
	// FallbackBase replaces the host serving platforms without a dedicated list.
	FallbackBase string
	// Source is the config file that was read, empty when defaults were used.
	Source string
}

// Validate checks the config for consistency.
func (c *Config) Validate() error {
	if c.RequestTimeout < 0 {
		return fmt.Errorf("%s must be positive, got %s", luaFieldTimeout, c.RequestTimeout)
	}
	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("invalid %s %q", luaFieldLogLevel, c.LogLevel)
		}
	}
	return nil
}

// Timeout returns the request timeout, substituting the default for zero.
func (c *Config) Timeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return DefaultRequestTimeout
	}
	return c.RequestTimeout
}
