package discovery

import (
	"context"
	"sync"

	"golang.org/x/net/dns/dnsmessage"

	"github.com/rescp17/dnssdbridge/internal/eventsource"
	"github.com/rescp17/dnssdbridge/internal/sharedconn"
	"github.com/rescp17/dnssdbridge/pkg/engine"
)

// Connection is a shared engine connection several individual record
// registrations are multiplexed over. Each registration gets its own
// correlation id; replies and cancellation notices name the id.
type Connection struct {
	client *Client
	ref    engine.ServiceRef
	src    *eventsource.Source
	mgr    *sharedconn.Manager

	mu      sync.Mutex
	pending map[uint64]*PendingRecord
	failed  error
	closed  bool

	closeOnce sync.Once
	closeErr  error
}

type noticeSender struct {
	eng engine.Engine
	ref engine.ServiceRef
}

func (n noticeSender) CancelRequest(clientContext uint64) error {
	return n.eng.CancelRequest(n.ref, clientContext)
}

// Connect opens a shared connection.
func (c *Client) Connect() (*Connection, error) {
	c.init()
	ref, err := c.eng.CreateConnection()
	if err != nil {
		return nil, err
	}
	conn := &Connection{
		client:  c,
		ref:     ref,
		pending: make(map[uint64]*PendingRecord),
	}
	conn.mgr = sharedconn.NewManager(noticeSender{eng: c.eng, ref: ref}, c.log)
	conn.src = eventsource.Spawn(ref, conn.fail, c.log)
	return conn, nil
}

// fail is the terminal dispatch failure of the connection itself.
// Every in-flight registration fails with the same error.
func (conn *Connection) fail(err error) {
	conn.mu.Lock()
	conn.failed = err
	pending := conn.pending
	conn.pending = make(map[uint64]*PendingRecord)
	conn.mu.Unlock()
	for id, pr := range pending {
		conn.mgr.Complete(id)
		pr.deliver(err)
	}
}

// RegisterRecordConfig configures an individual record registration.
type RegisterRecordConfig struct {
	// Flags must contain exactly one of Shared or Unique.
	Flags     Flags
	Interface Interface
	Class     dnsmessage.Class
	TTL       uint32
}

// DefaultRegisterRecordConfig registers a unique IN record on all
// interfaces with the conventional TTL for discovery records.
func DefaultRegisterRecordConfig() RegisterRecordConfig {
	return RegisterRecordConfig{
		Flags:     Unique,
		Interface: InterfaceAny,
		Class:     dnsmessage.ClassINET,
		TTL:       4500,
	}
}

// PendingRecord is a registration in flight on a shared connection.
// Exactly one of Wait or Cancel decides its outcome; both are safe to
// call more than once.
type PendingRecord struct {
	conn *Connection
	req  sharedconn.PendingRequest
	rec  *Record

	res  chan error
	once sync.Once
}

// RegisterRecord registers an individual record over the connection.
// The returned PendingRecord resolves once the daemon confirms or
// rejects the registration.
func (conn *Connection) RegisterRecord(fullName string, rrType dnsmessage.Type, rdata []byte, cfg RegisterRecordConfig) (*PendingRecord, error) {
	if err := cfg.Flags.validate(engine.KindRegisterRecord); err != nil {
		return nil, err
	}
	if fullName == "" {
		return nil, configErrf("register-record", "full name must not be empty")
	}

	conn.mu.Lock()
	if conn.closed {
		conn.mu.Unlock()
		return nil, ErrClosed
	}
	if conn.failed != nil {
		err := conn.failed
		conn.mu.Unlock()
		return nil, err
	}
	conn.mu.Unlock()

	req, err := conn.mgr.Submit(engine.KindRegisterRecord)
	if err != nil {
		return nil, err
	}
	pr := &PendingRecord{conn: conn, req: req, res: make(chan error, 1)}

	cb := func(fl engine.Flags, code engine.Code) {
		if !conn.mgr.Complete(req.ID) {
			return
		}
		conn.untrack(req.ID)
		if code != engine.NoError {
			pr.deliver(&engine.Error{Code: code})
			return
		}
		pr.deliver(nil)
	}
	ref, err := conn.client.eng.RegisterRecord(conn.ref,
		engine.Flags(cfg.Flags.Raw()), cfg.Interface.Raw(),
		fullName, uint16(rrType), uint16(cfg.Class), rdata, cfg.TTL, cb)
	if err != nil {
		conn.mgr.Complete(req.ID)
		return nil, err
	}
	pr.rec = &Record{ref: ref, rrType: rrType}

	// Re-check under the insertion lock: a Close or dispatch failure
	// that ran while the engine call was in flight has already failed
	// the old pending set, and this registration must not outlive it.
	conn.mu.Lock()
	if conn.closed || conn.failed != nil {
		err := conn.failed
		conn.mu.Unlock()
		if err == nil {
			err = ErrClosed
		}
		conn.mgr.Complete(req.ID)
		pr.deliver(err)
		return nil, err
	}
	conn.pending[req.ID] = pr
	conn.mu.Unlock()
	return pr, nil
}

func (conn *Connection) untrack(id uint64) {
	conn.mu.Lock()
	delete(conn.pending, id)
	conn.mu.Unlock()
}

// deliver resolves the future. Only the first outcome counts.
func (pr *PendingRecord) deliver(err error) {
	pr.once.Do(func() { pr.res <- err })
}

// Wait blocks until the daemon confirms the registration, returning
// the live record handle, or until the registration fails or ctx is
// done. A context error leaves the registration in flight; call Cancel
// to abandon it.
func (pr *PendingRecord) Wait(ctx context.Context) (*Record, error) {
	select {
	case err := <-pr.res:
		// Resolved futures stay resolved for repeated Wait calls.
		pr.res <- err
		if err != nil {
			return nil, err
		}
		return pr.rec, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel abandons the registration: the pending entry is dropped, a
// cancellation notice is sent if the registration was still in flight,
// and the record is removed. Cancelling a confirmed or failed
// registration only removes the record. Idempotent.
func (pr *PendingRecord) Cancel() error {
	pr.conn.untrack(pr.req.ID)
	err := pr.conn.mgr.Cancel(pr.req.ID)
	pr.deliver(ErrClosed)
	if pr.rec != nil {
		if rerr := pr.rec.Close(); err == nil {
			err = rerr
		}
	}
	return err
}

// Close tears the connection down. In-flight registrations fail with
// ErrClosed; records registered over the connection are released by
// the engine together with the connection. Idempotent.
func (conn *Connection) Close() error {
	conn.closeOnce.Do(func() {
		conn.mu.Lock()
		conn.closed = true
		pending := conn.pending
		conn.pending = make(map[uint64]*PendingRecord)
		conn.mu.Unlock()
		for id, pr := range pending {
			conn.mgr.Complete(id)
			pr.deliver(ErrClosed)
		}
		conn.closeErr = conn.src.Close()
	})
	return conn.closeErr
}
