package discovery

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/rescp17/dnssdbridge/internal/eventsource"
	"github.com/rescp17/dnssdbridge/internal/relay"
	"github.com/rescp17/dnssdbridge/pkg/engine"
)

// Operation states. Terminal states are absorbing.
const (
	stateArmed int32 = iota
	stateRunning
	stateCompleted
	stateCancelled
	stateFailed
)

// op binds one ServiceRef, its dispatch goroutine and its relay into a
// consumer-facing handle. It is the common core of every stream and
// future in this package.
type op[T any] struct {
	rel *relay.Relay[T]
	src *eventsource.Source
	ref engine.ServiceRef

	state     atomic.Int32
	closeOnce sync.Once
	closeErr  error
}

// newOp arms an operation: create must construct the ServiceRef with a
// callback that feeds rel. Creation failures are returned synchronously
// and leave no resources behind.
func newOp[T any](log *slog.Logger, create func(rel *relay.Relay[T]) (engine.ServiceRef, error)) (*op[T], error) {
	o := &op[T]{rel: relay.New[T]()}
	o.state.Store(stateArmed)

	ref, err := create(o.rel)
	if err != nil {
		o.state.Store(stateFailed)
		return nil, err
	}
	o.ref = ref
	o.src = eventsource.Spawn(ref, func(err error) {
		o.rel.Fail(err)
		o.toFailed()
	}, log)
	o.state.CompareAndSwap(stateArmed, stateRunning)
	return o, nil
}

// toFailed moves a non-terminal operation to Failed. Terminal states
// stay put.
func (o *op[T]) toFailed() {
	for {
		s := o.state.Load()
		if s != stateArmed && s != stateRunning {
			return
		}
		if o.state.CompareAndSwap(s, stateFailed) {
			return
		}
	}
}

// next delivers the next event. A terminal engine error moves the
// operation to Failed and is returned once; afterwards, and after the
// caller closed the handle, next returns ErrClosed.
func (o *op[T]) next(ctx context.Context) (T, error) {
	v, err := o.rel.Recv(ctx)
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, relay.ErrDone), errors.Is(err, relay.ErrClosed):
		var zero T
		return zero, ErrClosed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		var zero T
		return zero, err
	default:
		o.toFailed()
		var zero T
		return zero, err
	}
}

// close tears the operation down: the relay stops accepting sends
// first, then the dispatch goroutine is stopped and the ServiceRef
// released. Safe to call multiple times; only the first call does
// work. final is the state an open operation transitions to.
func (o *op[T]) close(final int32) error {
	o.closeOnce.Do(func() {
		o.rel.Close()
		o.closeErr = o.src.Close()
		o.state.CompareAndSwap(stateRunning, final)
		o.state.CompareAndSwap(stateArmed, final)
	})
	return o.closeErr
}

// Close cancels the operation.
func (o *op[T]) Close() error { return o.close(stateCancelled) }

// complete marks a successfully finished single-shot operation and
// releases its resources.
func (o *op[T]) complete() error { return o.close(stateCompleted) }
