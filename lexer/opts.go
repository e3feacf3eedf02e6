// SPDX-License-Identifier: MIT
package lexer

import (
	"github.com/sirupsen/logrus"
)

type (
	// Option defines the Lexer functional option type
	Option func(*Lexer)
)

const (
	defBufferSize = 64

	emptyRune rune = 0
)

// WithDebug configures the debug option.
//
// Debug logging of every emitted Item makes the emit path un-inlinable; leave it off outside of
// troubleshooting.
func WithDebug(debug bool) Option { return func(l *Lexer) { l.debug = debug } }

// WithLogger configures the logger option.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(l *Lexer) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMaxDepth limits the bracket nesting depth; 0 disables the limit.
func WithMaxDepth(depth int) Option {
	return func(l *Lexer) {
		if depth > 0 {
			l.maxDepth = depth
		}
	}
}

// WithBufferSize configures the initial rune capacity of the buffer.
func WithBufferSize(size int) Option {
	return func(l *Lexer) {
		if size > 0 {
			l.buffer = make([]rune, 0, size)
		}
	}
}
