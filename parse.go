// SPDX-License-Identifier: MIT
package jsonchunk

import (
	"context"
	"errors"
	"io"
	"strings"

	"gitlab.com/fisherprime/jsonchunk/lexer"
)

// Future holds the eventual result of a Parse.
type Future struct {
	done  chan struct{}
	value interface{}
	err   error
}

// Parse decodes the first JSON value read from r.
//
// r is read in Config.ChunkSize chunks on a separate goroutine & fed to a lexer while the value
// is built from its Items. Reading stops once the value resolves, though a Read already in
// progress is not interrupted.
func Parse(ctx context.Context, r io.Reader, opts ...Option) *Future {
	cfg := newConfig(opts)
	f := &Future{done: make(chan struct{})}

	ctx, cancel := context.WithCancel(ctx)
	l := lexer.New(cfg.lexerOptions()...)

	go func() {
		if err := l.Lex(ctx, r, cfg.ChunkSize); err != nil && !errors.Is(err, context.Canceled) {
			cfg.Logger.Debugf("parse: input: %v", err)
		}
	}()

	go func() {
		defer cancel()

		v, err := Build(ctx, l)
		f.resolve(v, err)
	}()

	return f
}

// ParseString decodes the first JSON value in s.
func ParseString(ctx context.Context, s string, opts ...Option) (interface{}, error) {
	return Parse(ctx, strings.NewReader(s), opts...).Wait(ctx)
}

// Done is closed once the Future resolves.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the Future resolves or the context is done.
func (f *Future) Wait(ctx context.Context) (interface{}, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.done:
		return f.value, f.err
	}
}

func (f *Future) resolve(v interface{}, err error) {
	f.value, f.err = v, err
	close(f.done)
}
