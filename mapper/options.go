package mapper

import "log"

// Logger receives diagnostics: unmapped accesses, ignored CHR-ROM writes
// and bank faults. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

type discard struct{}

func (discard) Printf(string, ...any) {}

// Discard drops every diagnostic.
var Discard Logger = discard{}

// Config holds the options a Factory was called with.
type Config struct {
	Logger Logger
	Trace  Logger // nil disables per-access tracing
}

// Option configures a board at creation time.
type Option func(*Config)

// WithLogger sets the diagnostic logger.
func WithLogger(l Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// WithTrace logs every bus access the board sees.
func WithTrace(l Logger) Option {
	return func(c *Config) {
		c.Trace = l
	}
}

// NewConfig applies opts over the defaults.
func NewConfig(opts ...Option) Config {
	c := Config{Logger: log.Default()}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
