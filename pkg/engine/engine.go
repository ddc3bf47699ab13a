// Package engine defines the contract between the bridge and a native
// DNS-SD engine (mDNSResponder-style daemon client library).
//
// The engine delivers results by synchronously invoking callbacks from
// inside ProcessPending. Implementations are not expected to be safe
// for concurrent use of a single ServiceRef; the bridge serializes all
// access to a ServiceRef on one goroutine.
package engine

// Callback signatures mirror the native reply callbacks. Every
// callback receives the raw flags and the native error code of the
// reply; payload arguments are only meaningful when the code is
// NoError.
type (
	// BrowseCallback receives one browse reply (service appeared or
	// disappeared, depending on FlagAdd).
	BrowseCallback func(flags Flags, ifIndex uint32, code Code, name, regType, domain string)

	// ResolveCallback receives one resolve reply.
	ResolveCallback func(flags Flags, ifIndex uint32, code Code, fullName, host string, port uint16, txt []byte)

	// RegisterCallback receives one service registration reply. The
	// engine may deliver several replies for one registration, e.g.
	// after a name-conflict rename.
	RegisterCallback func(flags Flags, code Code, name, regType, domain string)

	// QueryRecordCallback receives one record query reply.
	QueryRecordCallback func(flags Flags, ifIndex uint32, code Code, fullName string, rrType, rrClass uint16, rdata []byte, ttl uint32)

	// DomainCallback receives one domain enumeration reply.
	DomainCallback func(flags Flags, ifIndex uint32, code Code, domain string)

	// RecordCallback receives the completion status of a record
	// registered over a shared connection.
	RecordCallback func(flags Flags, code Code)
)

// ServiceRef is exclusive ownership of one native operation handle.
//
// ProcessPending drains the handle's buffered replies, synchronously
// invoking the callback registered at creation zero or more times
// before it returns. It must never be called concurrently with itself
// or with Close on the same ref; the bridge guarantees this.
type ServiceRef interface {
	// Ready returns a channel that receives a signal whenever the
	// underlying descriptor may have pending replies. The channel is
	// never closed by the engine; it simply stops firing once the ref
	// is closed.
	Ready() <-chan struct{}

	// Readable reports whether the underlying descriptor still has
	// buffered data. Used to re-drain after ProcessPending, since one
	// readiness signal can cover several reply batches.
	Readable() (bool, error)

	// ProcessPending dispatches all buffered replies. A non-nil error
	// is terminal for the operation.
	ProcessPending() error

	// Close releases the native resource. The owner calls it exactly
	// once; the engine does not need to make it idempotent.
	Close() error
}

// RecordRef is a handle to one resource record attached to a
// registration or a shared connection.
type RecordRef interface {
	// Update replaces the record's rdata. Type and class cannot change.
	Update(flags Flags, rdata []byte, ttl uint32) error

	// Remove deletes the record from the registration it belongs to.
	Remove(flags Flags) error
}

// Engine creates native operation handles. Creation failures carry the
// native status code as *Error and are reported synchronously; later
// failures arrive through the reply callbacks.
type Engine interface {
	Browse(flags Flags, ifIndex uint32, regType, domain string, cb BrowseCallback) (ServiceRef, error)
	Resolve(flags Flags, ifIndex uint32, name, regType, domain string, cb ResolveCallback) (ServiceRef, error)
	Register(flags Flags, ifIndex uint32, name, regType, domain, host string, port uint16, txt []byte, cb RegisterCallback) (ServiceRef, error)
	QueryRecord(flags Flags, ifIndex uint32, fullName string, rrType, rrClass uint16, cb QueryRecordCallback) (ServiceRef, error)
	EnumerateDomains(flags Flags, ifIndex uint32, cb DomainCallback) (ServiceRef, error)

	// CreateConnection opens a shared connection multiple record
	// registrations are multiplexed over.
	CreateConnection() (ServiceRef, error)

	// RegisterRecord registers an individual record over a shared
	// connection created by CreateConnection. The completion status for
	// the returned record arrives through cb on that connection's ref.
	RegisterRecord(conn ServiceRef, flags Flags, ifIndex uint32, fullName string, rrType, rrClass uint16, rdata []byte, ttl uint32, cb RecordCallback) (RecordRef, error)

	// AddRecord attaches an extra record to a service registration
	// created by Register. Status is synchronous; no callback fires.
	AddRecord(service ServiceRef, flags Flags, rrType uint16, rdata []byte, ttl uint32) (RecordRef, error)

	// DefaultTXTRecord returns the handle for the TXT record implicitly
	// created by Register, so it can be updated in place.
	DefaultTXTRecord(service ServiceRef) RecordRef

	// ReconfirmRecord tells the engine a cached record is suspected
	// stale and should be reverified. Fire and forget.
	ReconfirmRecord(flags Flags, ifIndex uint32, fullName string, rrType, rrClass uint16, rdata []byte) error

	// CancelRequest sends an explicit cancellation notice for a request
	// multiplexed on a shared connection, identified by its client
	// assigned correlation id.
	CancelRequest(conn ServiceRef, clientContext uint64) error
}
