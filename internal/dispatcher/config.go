package dispatcher

import "time"

// Config holds dispatcher configuration options.
type Config struct {
	// RecoverFromPanic wraps handler execution in panic recovery.
	RecoverFromPanic bool

	// DefaultTimeout bounds handler execution. Zero means no timeout.
	DefaultTimeout time.Duration
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		RecoverFromPanic: true,
	}
}

// WithPanicRecovery returns a copy of the config with panic recovery set.
func (c Config) WithPanicRecovery(recover bool) Config {
	c.RecoverFromPanic = recover
	return c
}

// WithTimeout returns a copy of the config with the default timeout set.
func (c Config) WithTimeout(timeout time.Duration) Config {
	c.DefaultTimeout = timeout
	return c
}
