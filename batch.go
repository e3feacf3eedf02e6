// SPDX-License-Identifier: MIT
package jsonchunk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Result holds the outcome of parsing one of ParseAll's sources.
type Result struct {
	Value interface{}
	Err   error
}

// Worker pool errors.
var (
	ErrWorkerPool = errors.New("worker pool failure")
)

// ParseAll decodes the first JSON value of every source concurrently.
//
// Sources are parsed by independent lexers on a pool of Config.Workers goroutines; results are
// returned in source order. err only reports worker pool failures, per-source failures are held
// in the Result.
func ParseAll(ctx context.Context, sources []io.Reader, opts ...Option) (results []Result, err error) {
	cfg := newConfig(opts)
	results = make([]Result, len(sources))
	if len(sources) < 1 {
		return
	}

	var pool *ants.Pool
	if pool, err = ants.NewPool(cfg.Workers,
		ants.WithLogger(cfg.Logger),
		ants.WithPanicHandler(func(r interface{}) {
			cfg.Logger.Errorf("parse worker: %v: %v", ErrPanicked, r)
		}),
	); err != nil {
		err = fmt.Errorf("%w: %v", ErrWorkerPool, err)
		return
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for index := range sources {
		index := index

		wg.Add(1)
		if err = pool.Submit(func() {
			defer wg.Done()

			results[index].Value, results[index].Err = Parse(ctx, sources[index], opts...).Wait(ctx)
		}); err != nil {
			wg.Done()
			wg.Wait()

			err = fmt.Errorf("%w: source %d: %v", ErrWorkerPool, index, err)
			return
		}
	}
	wg.Wait()

	cfg.Logger.Debugf("parsed %d sources on %d workers", len(sources), cfg.Workers)

	return
}
