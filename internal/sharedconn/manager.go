// Package sharedconn tracks logical requests multiplexed over one
// shared engine connection.
//
// Each request gets a client-assigned correlation id; the daemon
// echoes the id in its replies and a cancellation notice names the id
// of the request to abort. The map here is the only cross-operation
// mutable state in the bridge; access is confined to the goroutines of
// one connection and guarded by a single per-connection mutex.
package sharedconn

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rescp17/dnssdbridge/pkg/engine"
)

// ErrDuplicateID reports a correlation id collision. The counter makes
// this unreachable in practice; it is kept as a defensive invariant
// check.
var ErrDuplicateID = errors.New("sharedconn: duplicate correlation id")

// NoticeSender issues a cancellation notice for a request on the
// underlying connection.
type NoticeSender interface {
	CancelRequest(clientContext uint64) error
}

// PendingRequest identifies one in-flight request on a shared
// connection. Token is a diagnostic identity for logs; ID is the wire
// correlation id.
type PendingRequest struct {
	ID    uint64
	Token uuid.UUID
	Kind  engine.Kind
}

type pendingEntry struct {
	req PendingRequest
}

// Manager owns the pending-request map of one shared connection.
type Manager struct {
	mu      sync.Mutex
	send    NoticeSender
	next    uint64
	pending map[uint64]*pendingEntry
	log     *slog.Logger
}

func NewManager(send NoticeSender, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		send:    send,
		pending: make(map[uint64]*pendingEntry),
		log:     log,
	}
}

// Submit registers a new in-flight request and returns its identity.
func (m *Manager) Submit(kind engine.Kind) (PendingRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	id := m.next
	if _, exists := m.pending[id]; exists {
		return PendingRequest{}, ErrDuplicateID
	}
	req := PendingRequest{ID: id, Token: uuid.New(), Kind: kind}
	m.pending[id] = &pendingEntry{req: req}
	return req, nil
}

// Complete removes the entry for id after its terminal response.
// Reports whether the entry was still live.
func (m *Manager) Complete(id uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.pending[id]
	delete(m.pending, id)
	return ok
}

// Cancel removes the entry for id and, for kinds whose routing entry
// requires it, issues exactly one cancellation notice. Cancelling an
// already-completed or already-cancelled request is a no-op.
func (m *Manager) Cancel(id uint64) error {
	m.mu.Lock()
	entry, ok := m.pending[id]
	delete(m.pending, id)
	m.mu.Unlock()
	if !ok {
		return nil
	}
	if !engine.RouteFor(entry.req.Kind).CancelNotice {
		return nil
	}
	if err := m.send.CancelRequest(id); err != nil {
		m.log.Warn("cancel notice failed",
			"id", id, "token", entry.req.Token, "kind", entry.req.Kind.String(), "error", err)
		return err
	}
	return nil
}

// Len reports the number of live in-flight requests.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
