// SPDX-License-Identifier: MIT
package jsonchunk

import (
	"runtime"

	"github.com/sirupsen/logrus"

	"gitlab.com/fisherprime/jsonchunk/lexer"
)

type (
	// Config defines configuration options for the Parse operations.
	Config struct {
		Logger logrus.FieldLogger

		// ChunkSize is the read size used to feed the lexer.
		ChunkSize int
		// MaxDepth limits bracket nesting; 0 disables the limit.
		MaxDepth int
		// Workers bounds the goroutines ParseAll runs inputs on.
		Workers int

		Debug bool
	}

	// Option defines the Config functional option type.
	Option func(*Config)
)

// DefaultConfig configures the Parse operations' Config.
func DefaultConfig() *Config {
	return &Config{
		Logger:    fLogger,
		ChunkSize: lexer.DefaultChunkSize,
		Workers:   runtime.NumCPU(),
	}
}

// Validate populates missing Config entries with defaults.
func (c *Config) Validate() {
	if c.Logger == nil {
		c.Logger = fLogger
	}
	if c.ChunkSize < 1 {
		c.ChunkSize = lexer.DefaultChunkSize
	}
	if c.MaxDepth < 0 {
		c.MaxDepth = 0
	}
	if c.Workers < 1 {
		c.Workers = runtime.NumCPU()
	}
}

// WithChunkSize configures the read size used to feed the lexer.
func WithChunkSize(size int) Option { return func(c *Config) { c.ChunkSize = size } }

// WithLogger configures the logger option.
func WithLogger(logger logrus.FieldLogger) Option { return func(c *Config) { c.Logger = logger } }

// WithDebug configures the debug option.
func WithDebug(debug bool) Option { return func(c *Config) { c.Debug = debug } }

// WithMaxDepth configures the bracket nesting limit.
func WithMaxDepth(depth int) Option { return func(c *Config) { c.MaxDepth = depth } }

// WithWorkers configures the ParseAll worker count.
func WithWorkers(workers int) Option { return func(c *Config) { c.Workers = workers } }

func newConfig(opts []Option) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.Validate()

	return cfg
}

func (c *Config) lexerOptions() []lexer.Option {
	return []lexer.Option{
		lexer.WithLogger(c.Logger),
		lexer.WithDebug(c.Debug),
		lexer.WithMaxDepth(c.MaxDepth),
	}
}
