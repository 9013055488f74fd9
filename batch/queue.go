package batch

import (
	"context"
	"sync"
)

type popOutcome int

const (
	popItem popOutcome = iota
	popExhausted
	popCancelled
	popTimeout
)

type item[B any] struct {
	index int
	batch B
}

// queue is a fixed-capacity FIFO between workers and the consumer.
// done is closed on cancellation, finished once every producer has returned.
type queue[B any] struct {
	items     chan item[B]
	done      chan struct{}
	finished  chan struct{}
	closeOnce sync.Once
}

func newQueue[B any](capacity int) *queue[B] {
	return &queue[B]{
		items:    make(chan item[B], capacity),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// push blocks while the queue is full. It returns false without inserting
// once the queue is cancelled.
func (q *queue[B]) push(it item[B]) bool {
	select {
	case <-q.done:
		return false
	default:
	}
	select {
	case q.items <- it:
		return true
	case <-q.done:
		return false
	}
}

// pop blocks until an item arrives, all producers finished with nothing left,
// the queue is cancelled, or ctx is done.
func (q *queue[B]) pop(ctx context.Context) (item[B], popOutcome) {
	var zero item[B]
	select {
	case <-q.done:
		return zero, popCancelled
	default:
	}
	select {
	case it := <-q.items:
		return it, popItem
	case <-q.done:
		return zero, popCancelled
	case <-q.finished:
		select {
		case <-q.done:
			return zero, popCancelled
		default:
		}
		// Producers are gone; anything they pushed is already buffered.
		select {
		case it := <-q.items:
			return it, popItem
		default:
			return zero, popExhausted
		}
	case <-ctx.Done():
		return zero, popTimeout
	}
}

// cancel wakes every blocked push and pop. Safe to call more than once.
func (q *queue[B]) cancel() {
	q.closeOnce.Do(func() { close(q.done) })
}

// drain discards buffered items without blocking and returns how many it dropped.
func (q *queue[B]) drain() int {
	n := 0
	for {
		select {
		case <-q.items:
			n++
		default:
			return n
		}
	}
}

func (q *queue[B]) len() int { return len(q.items) }

func (q *queue[B]) capacity() int { return cap(q.items) }
