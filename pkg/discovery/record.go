package discovery

import (
	"sync"

	"golang.org/x/net/dns/dnsmessage"

	"github.com/rescp17/dnssdbridge/pkg/engine"
)

// Record is a handle to one resource record owned by a registration or
// a shared connection. Closing it removes the record, except for
// handles detached with Keep.
type Record struct {
	ref    engine.RecordRef
	rrType dnsmessage.Type

	mu      sync.Mutex
	keep    bool
	closed  bool
	special bool // default TXT record, cannot be removed individually
}

// Type returns the record's resource record type.
func (r *Record) Type() dnsmessage.Type { return r.rrType }

// Update replaces the record's rdata. Type and class cannot change.
func (r *Record) Update(rdata []byte, ttl uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	return r.ref.Update(0, rdata, ttl)
}

// Keep detaches the record from this handle: Close becomes a no-op
// and the record lives as long as its registration or connection.
func (r *Record) Keep() {
	r.mu.Lock()
	r.keep = true
	r.mu.Unlock()
}

// Close removes the record. Idempotent; a kept record is not removed.
func (r *Record) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.keep || r.special {
		r.closed = true
		return nil
	}
	r.closed = true
	return r.ref.Remove(0)
}
