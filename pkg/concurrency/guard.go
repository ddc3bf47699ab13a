// Package concurrency provides small synchronization helpers shared by
// the bridge internals.
package concurrency

import (
	"errors"
	"sync"
)

// ErrReentered is returned when a guarded section is entered while a
// previous entry is still running.
var ErrReentered = errors.New("guarded section entered concurrently")

// Guard rejects overlapping executions of a critical section instead
// of queueing them. The bridge uses it around ProcessPending, which is
// not reentrant: overlapping calls indicate a dispatch bug and must
// fail loudly rather than corrupt native state.
type Guard struct {
	mu   sync.Mutex
	busy bool
}

func NewGuard() *Guard {
	return &Guard{}
}

// Execute runs task unless another task is already running, in which
// case it returns ErrReentered without running task.
func (g *Guard) Execute(task func() error) error {
	g.mu.Lock()
	if g.busy {
		g.mu.Unlock()
		return ErrReentered
	}
	g.busy = true
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.busy = false
		g.mu.Unlock()
	}()
	return task()
}
