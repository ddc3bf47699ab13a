// Package relay provides the unbounded ordered channel between the
// native callback context and the consumer-facing future/stream.
//
// The producer side (Send, Fail, End) is called from inside a
// ServiceRef's ProcessPending and must never block or panic; after the
// consumer hung up, producing becomes a silent no-op. The consumer
// side (Recv, Close) is the operation handle.
package relay

import (
	"context"
	"errors"
	"sync"

	"github.com/eapache/queue"
)

// ErrDone is returned by Recv after the producer ended the sequence
// and all queued items (and the terminal error, if any) were consumed.
var ErrDone = errors.New("relay: sequence ended")

// ErrClosed is returned by Recv after the consumer itself closed the
// relay.
var ErrClosed = errors.New("relay: closed by consumer")

// Relay is a single-producer single-consumer FIFO with unbounded
// buffering and terminal-error semantics.
type Relay[T any] struct {
	mu       sync.Mutex
	items    *queue.Queue
	terminal error // delivered once, after queued items
	ended    bool  // producer finished (End or Fail)
	closed   bool  // consumer hung up
	notify   chan struct{}
}

func New[T any]() *Relay[T] {
	return &Relay[T]{
		items:  queue.New(),
		notify: make(chan struct{}, 1),
	}
}

func (r *Relay[T]) signal() {
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// Send enqueues one item. Reports whether the item was accepted; after
// Close, End or Fail it is a no-op returning false.
func (r *Relay[T]) Send(v T) bool {
	r.mu.Lock()
	if r.closed || r.ended {
		r.mu.Unlock()
		return false
	}
	r.items.Add(v)
	r.mu.Unlock()
	r.signal()
	return true
}

// Fail ends the sequence with a terminal error. Items sent before Fail
// are still delivered first. No-op if the relay already ended or the
// consumer closed it.
func (r *Relay[T]) Fail(err error) {
	r.mu.Lock()
	if r.closed || r.ended {
		r.mu.Unlock()
		return
	}
	r.terminal = err
	r.ended = true
	r.mu.Unlock()
	r.signal()
}

// End ends the sequence without an error.
func (r *Relay[T]) End() {
	r.mu.Lock()
	if r.closed || r.ended {
		r.mu.Unlock()
		return
	}
	r.ended = true
	r.mu.Unlock()
	r.signal()
}

// Close hangs up the consumer side: queued items are discarded and all
// further Send/Fail/End calls become no-ops. Idempotent.
func (r *Relay[T]) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		r.items = queue.New()
	}
	r.mu.Unlock()
	r.signal()
}

// TryRecv dequeues the next item without blocking. The error is nil
// with ok=true for an item; ok=false with a nil error means the relay
// is currently empty but still open.
func (r *Relay[T]) TryRecv() (v T, ok bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return v, false, ErrClosed
	}
	if r.items.Length() > 0 {
		v = r.items.Remove().(T)
		if r.items.Length() > 0 || r.ended {
			// keep the signal armed for the rest of the backlog
			r.signal()
		}
		return v, true, nil
	}
	if r.ended {
		if r.terminal != nil {
			err = r.terminal
			r.terminal = nil
			return v, false, err
		}
		return v, false, ErrDone
	}
	return v, false, nil
}

// Recv dequeues the next item, blocking until one is available, the
// sequence ends, the consumer closes the relay, or ctx is done.
func (r *Relay[T]) Recv(ctx context.Context) (T, error) {
	for {
		v, ok, err := r.TryRecv()
		if ok || err != nil {
			return v, err
		}
		select {
		case <-r.notify:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// Len reports the number of queued, undelivered items.
func (r *Relay[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items.Length()
}
