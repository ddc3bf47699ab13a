package enginetest

import (
	"fmt"
	"sync"

	"github.com/rescp17/dnssdbridge/pkg/engine"
)

// Reply types script one callback invocation each.
type (
	BrowseReply struct {
		Flags   engine.Flags
		IfIndex uint32
		Code    engine.Code
		Name    string
		Type    string
		Domain  string
	}

	ResolveReply struct {
		Flags    engine.Flags
		IfIndex  uint32
		Code     engine.Code
		FullName string
		Host     string
		Port     uint16
		TXT      []byte
	}

	RegisterReply struct {
		Flags  engine.Flags
		Code   engine.Code
		Name   string
		Type   string
		Domain string
	}

	QueryReply struct {
		Flags    engine.Flags
		IfIndex  uint32
		Code     engine.Code
		FullName string
		RRType   uint16
		RRClass  uint16
		Data     []byte
		TTL      uint32
	}

	DomainReply struct {
		Flags   engine.Flags
		IfIndex uint32
		Code    engine.Code
		Domain  string
	}

	// RecordReply targets the nth record registered on a connection.
	RecordReply struct {
		Index int
		Flags engine.Flags
		Code  engine.Code
	}
)

// Ref implements engine.ServiceRef with a scripted batch queue.
type Ref struct {
	fake   *Fake
	kind   engine.Kind
	create Create

	mu         sync.Mutex
	batches    [][]func()
	processErr error
	closed     int
	panicNext  bool

	ready chan struct{}

	browseCB   engine.BrowseCallback
	resolveCB  engine.ResolveCallback
	registerCB engine.RegisterCallback
	queryCB    engine.QueryRecordCallback
	domainCB   engine.DomainCallback
	recordCBs  []engine.RecordCallback
}

// Kind returns the operation kind this ref was created for.
func (r *Ref) Kind() engine.Kind { return r.kind }

// Create returns the parameters the operation was created with.
func (r *Ref) Create() Create { return r.create }

func (r *Ref) Ready() <-chan struct{} { return r.ready }

func (r *Ref) Readable() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches) > 0 || r.processErr != nil, nil
}

// ProcessPending dispatches exactly one scripted batch, invoking the
// operation callback once per reply in that batch.
func (r *Ref) ProcessPending() error {
	r.mu.Lock()
	if r.closed > 0 {
		r.mu.Unlock()
		return &engine.Error{Code: engine.BadReference}
	}
	if r.panicNext {
		r.panicNext = false
		r.mu.Unlock()
		panic("scripted dispatch panic")
	}
	if err := r.processErr; err != nil {
		r.processErr = nil
		r.mu.Unlock()
		return err
	}
	if len(r.batches) == 0 {
		r.mu.Unlock()
		return nil
	}
	batch := r.batches[0]
	r.batches = r.batches[1:]
	r.mu.Unlock()

	for _, invoke := range batch {
		invoke()
	}
	return nil
}

func (r *Ref) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
	if r.closed > 1 {
		return fmt.Errorf("service ref closed %d times", r.closed)
	}
	return nil
}

func (r *Ref) closeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Closed reports whether the ref has been released.
func (r *Ref) Closed() bool { return r.closeCount() > 0 }

// Trigger fires the readiness signal without queueing anything.
func (r *Ref) Trigger() {
	select {
	case r.ready <- struct{}{}:
	default:
	}
}

// FailProcess makes the next ProcessPending return err.
func (r *Ref) FailProcess(err error) {
	r.mu.Lock()
	r.processErr = err
	r.mu.Unlock()
	r.Trigger()
}

// PanicProcess makes the next ProcessPending panic, to exercise the
// dispatch boundary's recover.
func (r *Ref) PanicProcess() {
	r.mu.Lock()
	r.panicNext = true
	r.mu.Unlock()
	r.Trigger()
}

func (r *Ref) queueBatch(batch []func()) {
	r.mu.Lock()
	r.batches = append(r.batches, batch)
	r.mu.Unlock()
	r.Trigger()
}

// DeliverBrowse queues one batch of browse replies.
func (r *Ref) DeliverBrowse(replies ...BrowseReply) {
	batch := make([]func(), 0, len(replies))
	for _, rep := range replies {
		rep := rep
		batch = append(batch, func() {
			r.browseCB(rep.Flags, rep.IfIndex, rep.Code, rep.Name, rep.Type, rep.Domain)
		})
	}
	r.queueBatch(batch)
}

// DeliverResolve queues one batch of resolve replies.
func (r *Ref) DeliverResolve(replies ...ResolveReply) {
	batch := make([]func(), 0, len(replies))
	for _, rep := range replies {
		rep := rep
		batch = append(batch, func() {
			r.resolveCB(rep.Flags, rep.IfIndex, rep.Code, rep.FullName, rep.Host, rep.Port, rep.TXT)
		})
	}
	r.queueBatch(batch)
}

// DeliverRegister queues one batch of registration replies.
func (r *Ref) DeliverRegister(replies ...RegisterReply) {
	batch := make([]func(), 0, len(replies))
	for _, rep := range replies {
		rep := rep
		batch = append(batch, func() {
			r.registerCB(rep.Flags, rep.Code, rep.Name, rep.Type, rep.Domain)
		})
	}
	r.queueBatch(batch)
}

// DeliverQuery queues one batch of record query replies.
func (r *Ref) DeliverQuery(replies ...QueryReply) {
	batch := make([]func(), 0, len(replies))
	for _, rep := range replies {
		rep := rep
		batch = append(batch, func() {
			r.queryCB(rep.Flags, rep.IfIndex, rep.Code, rep.FullName, rep.RRType, rep.RRClass, rep.Data, rep.TTL)
		})
	}
	r.queueBatch(batch)
}

// DeliverDomain queues one batch of domain enumeration replies.
func (r *Ref) DeliverDomain(replies ...DomainReply) {
	batch := make([]func(), 0, len(replies))
	for _, rep := range replies {
		rep := rep
		batch = append(batch, func() {
			r.domainCB(rep.Flags, rep.IfIndex, rep.Code, rep.Domain)
		})
	}
	r.queueBatch(batch)
}

// DeliverRecord queues one batch of record completion statuses on a
// connection ref.
func (r *Ref) DeliverRecord(replies ...RecordReply) {
	batch := make([]func(), 0, len(replies))
	for _, rep := range replies {
		rep := rep
		batch = append(batch, func() {
			r.mu.Lock()
			cb := r.recordCBs[rep.Index]
			r.mu.Unlock()
			cb(rep.Flags, rep.Code)
		})
	}
	r.queueBatch(batch)
}

var _ engine.ServiceRef = (*Ref)(nil)
