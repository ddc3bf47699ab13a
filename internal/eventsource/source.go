// Package eventsource drives a ServiceRef's callback dispatch from its
// readiness signal.
//
// One goroutine per ServiceRef parks on Ready(), then repeatedly calls
// ProcessPending until the descriptor reports not-readable again. A
// single OS notification can cover several reply batches, so stopping
// after the first ProcessPending would strand buffered replies.
package eventsource

import (
	"log/slog"
	"sync"

	"github.com/rescp17/dnssdbridge/pkg/concurrency"
	"github.com/rescp17/dnssdbridge/pkg/engine"
)

// maxDrainIterations bounds one wake's drain loop. A healthy engine
// drains in a few iterations; hitting the bound means it keeps
// reporting readable, so we log and go back to the reactor instead of
// spinning.
const maxDrainIterations = 64

// Source owns the dispatch goroutine for one ServiceRef.
type Source struct {
	ref   engine.ServiceRef
	guard *concurrency.Guard
	log   *slog.Logger

	// fail delivers a terminal dispatch failure to the operation's
	// relay. Called at most once, from the dispatch goroutine.
	fail func(error)

	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// Spawn starts dispatching for ref. fail receives the terminal error
// if a dispatch cycle reports one; after that the goroutine exits and
// only Close remains to release the ref.
func Spawn(ref engine.ServiceRef, fail func(error), log *slog.Logger) *Source {
	if log == nil {
		log = slog.Default()
	}
	s := &Source{
		ref:     ref,
		guard:   concurrency.NewGuard(),
		log:     log,
		fail:    fail,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Source) run() {
	defer close(s.stopped)
	for {
		select {
		case <-s.done:
			return
		case _, ok := <-s.ref.Ready():
			if !ok {
				return
			}
		}
		if !s.drain() {
			return
		}
	}
}

// drain dispatches pending replies until the ref reports not-readable.
// Returns false on a terminal failure.
func (s *Source) drain() bool {
	for i := 0; i < maxDrainIterations; i++ {
		if err := s.process(); err != nil {
			s.fail(err)
			return false
		}
		readable, err := s.ref.Readable()
		if err != nil {
			s.fail(err)
			return false
		}
		if !readable {
			return true
		}
	}
	s.log.Warn("dispatch drain bound hit, yielding to reactor",
		"iterations", maxDrainIterations)
	return true
}

// process runs one ProcessPending under the reentrancy guard,
// converting panics from callback bodies into a terminal engine error
// so no unwind crosses into native stack frames.
func (s *Source) process() error {
	return s.guard.Execute(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("panic in callback dispatch", "panic", r)
				err = &engine.Error{Code: engine.Unknown}
			}
		}()
		return s.ref.ProcessPending()
	})
}

// Close stops the dispatch goroutine, waits for any in-flight dispatch
// cycle to finish, then releases the ServiceRef. After Close returns
// no further callback will be invoked for this ref. Idempotent.
func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		<-s.stopped
		s.closeErr = s.ref.Close()
	})
	return s.closeErr
}
