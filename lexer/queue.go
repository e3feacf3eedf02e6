// SPDX-License-Identifier: MIT
package lexer

import (
	"context"
	"io"
	"sync"
)

// queue is an unbounded single-producer, single-consumer Item queue.
//
// push never blocks so a Feed cannot stall on a slow consumer; pop suspends until an Item is
// available, the queue is terminated or the context is done.
type queue struct {
	mu    sync.Mutex
	items []Item
	done  bool

	// ready holds at most one pending wake-up for the consumer.
	ready chan struct{}
}

func newQueue() *queue {
	return &queue{
		items: make([]Item, 0, defBufferSize),
		ready: make(chan struct{}, 1),
	}
}

func (q *queue) push(i Item) {
	q.mu.Lock()
	q.items = append(q.items, i)
	if i.ID == ItemEOF {
		q.done = true
	}
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// pop returns the next Item, or io.EOF once the terminal Item has been consumed.
func (q *queue) pop(ctx context.Context) (i Item, err error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			i = q.items[0]
			q.items[0] = Item{}
			q.items = q.items[1:]
			q.mu.Unlock()

			return
		}
		done := q.done
		q.mu.Unlock()

		if done {
			err = io.EOF
			return
		}

		select {
		case <-ctx.Done():
			err = ctx.Err()
			return
		case <-q.ready:
		}
	}
}

// terminated reports whether the terminal Item has been queued.
func (q *queue) terminated() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.done
}

// size reports the number of queued Items.
func (q *queue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}
