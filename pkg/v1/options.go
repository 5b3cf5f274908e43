package v1

import "github.com/charmbracelet/log"

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	scope    string
	dir      string
	inMemory bool
	logger   *log.Logger
}

// WithScope forces a specific scope (global or project).
func WithScope(scope string) Option {
	return func(c *clientConfig) {
		c.scope = scope
	}
}

// WithDir uses the workspace rooted at dir, creating it if needed.
func WithDir(dir string) Option {
	return func(c *clientConfig) {
		c.dir = dir
	}
}

// WithInMemory keeps everything in process memory. Nothing touches disk.
func WithInMemory() Option {
	return func(c *clientConfig) {
		c.inMemory = true
	}
}

// WithLogger sets the logger for storage warnings.
func WithLogger(logger *log.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}
