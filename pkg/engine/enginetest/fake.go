// Package enginetest provides a scripted in-process fake of the native
// discovery engine for bridge tests.
//
// Each operation constructor hands back a *Ref whose replies are
// scripted by the test: one Deliver call queues one batch, and one
// ProcessPending drains exactly one batch, invoking the operation's
// callback once per queued reply. Release and cancel-notice counters
// back the bridge's resource-lifetime assertions.
package enginetest

import (
	"fmt"
	"sync"

	"github.com/rescp17/dnssdbridge/pkg/engine"
)

// Fake implements engine.Engine.
type Fake struct {
	mu sync.Mutex

	refs          []*Ref
	records       []*Record
	cancelNotices []uint64
	reconfirms    int

	// createErr, when set for a kind, makes the next constructor of
	// that kind fail synchronously with the given code.
	createErr map[engine.Kind]engine.Code
}

func New() *Fake {
	return &Fake{createErr: make(map[engine.Kind]engine.Code)}
}

// FailCreation scripts a synchronous creation failure for the next
// constructor call of the given kind.
func (f *Fake) FailCreation(kind engine.Kind, code engine.Code) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createErr[kind] = code
}

func (f *Fake) takeCreateErr(kind engine.Kind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if code, ok := f.createErr[kind]; ok {
		delete(f.createErr, kind)
		return &engine.Error{Code: code}
	}
	return nil
}

// Refs returns every ServiceRef the fake has created, in order.
func (f *Fake) Refs() []*Ref {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Ref(nil), f.refs...)
}

// LastRef returns the most recently created ServiceRef.
func (f *Fake) LastRef() *Ref {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.refs) == 0 {
		return nil
	}
	return f.refs[len(f.refs)-1]
}

// Records returns every record handle created so far.
func (f *Fake) Records() []*Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Record(nil), f.records...)
}

// Releases counts how many ServiceRefs have been closed.
func (f *Fake) Releases() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.refs {
		n += r.closeCount()
	}
	return n
}

// CancelNotices returns the correlation ids cancel notices were sent
// for, in order.
func (f *Fake) CancelNotices() []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint64(nil), f.cancelNotices...)
}

// Reconfirms counts ReconfirmRecord calls.
func (f *Fake) Reconfirms() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reconfirms
}

func (f *Fake) newRef(kind engine.Kind, create Create) *Ref {
	r := &Ref{
		fake:   f,
		kind:   kind,
		create: create,
		ready:  make(chan struct{}, 1),
	}
	f.mu.Lock()
	f.refs = append(f.refs, r)
	f.mu.Unlock()
	return r
}

// Create captures the parameters an operation was created with.
type Create struct {
	Flags    engine.Flags
	IfIndex  uint32
	Name     string
	Type     string
	Domain   string
	Host     string
	FullName string
	RRType   uint16
	RRClass  uint16
	Port     uint16
	TXT      []byte
}

func (f *Fake) Browse(flags engine.Flags, ifIndex uint32, regType, domain string, cb engine.BrowseCallback) (engine.ServiceRef, error) {
	if err := f.takeCreateErr(engine.KindBrowse); err != nil {
		return nil, err
	}
	r := f.newRef(engine.KindBrowse, Create{Flags: flags, IfIndex: ifIndex, Type: regType, Domain: domain})
	r.browseCB = cb
	return r, nil
}

func (f *Fake) Resolve(flags engine.Flags, ifIndex uint32, name, regType, domain string, cb engine.ResolveCallback) (engine.ServiceRef, error) {
	if err := f.takeCreateErr(engine.KindResolve); err != nil {
		return nil, err
	}
	r := f.newRef(engine.KindResolve, Create{Flags: flags, IfIndex: ifIndex, Name: name, Type: regType, Domain: domain})
	r.resolveCB = cb
	return r, nil
}

func (f *Fake) Register(flags engine.Flags, ifIndex uint32, name, regType, domain, host string, port uint16, txt []byte, cb engine.RegisterCallback) (engine.ServiceRef, error) {
	if err := f.takeCreateErr(engine.KindRegister); err != nil {
		return nil, err
	}
	r := f.newRef(engine.KindRegister, Create{
		Flags: flags, IfIndex: ifIndex, Name: name, Type: regType,
		Domain: domain, Host: host, Port: port, TXT: txt,
	})
	r.registerCB = cb
	return r, nil
}

func (f *Fake) QueryRecord(flags engine.Flags, ifIndex uint32, fullName string, rrType, rrClass uint16, cb engine.QueryRecordCallback) (engine.ServiceRef, error) {
	if err := f.takeCreateErr(engine.KindQueryRecord); err != nil {
		return nil, err
	}
	r := f.newRef(engine.KindQueryRecord, Create{
		Flags: flags, IfIndex: ifIndex, FullName: fullName, RRType: rrType, RRClass: rrClass,
	})
	r.queryCB = cb
	return r, nil
}

func (f *Fake) EnumerateDomains(flags engine.Flags, ifIndex uint32, cb engine.DomainCallback) (engine.ServiceRef, error) {
	if err := f.takeCreateErr(engine.KindEnumerateDomains); err != nil {
		return nil, err
	}
	r := f.newRef(engine.KindEnumerateDomains, Create{Flags: flags, IfIndex: ifIndex})
	r.domainCB = cb
	return r, nil
}

func (f *Fake) CreateConnection() (engine.ServiceRef, error) {
	if err := f.takeCreateErr(engine.KindConnection); err != nil {
		return nil, err
	}
	return f.newRef(engine.KindConnection, Create{}), nil
}

func (f *Fake) RegisterRecord(conn engine.ServiceRef, flags engine.Flags, ifIndex uint32, fullName string, rrType, rrClass uint16, rdata []byte, ttl uint32, cb engine.RecordCallback) (engine.RecordRef, error) {
	if err := f.takeCreateErr(engine.KindRegisterRecord); err != nil {
		return nil, err
	}
	r, ok := conn.(*Ref)
	if !ok || r.kind != engine.KindConnection {
		return nil, &engine.Error{Code: engine.BadReference}
	}
	r.mu.Lock()
	r.recordCBs = append(r.recordCBs, cb)
	r.mu.Unlock()
	rec := &Record{fake: f, FullName: fullName, RRType: rrType, Data: rdata}
	f.mu.Lock()
	f.records = append(f.records, rec)
	f.mu.Unlock()
	return rec, nil
}

func (f *Fake) AddRecord(service engine.ServiceRef, flags engine.Flags, rrType uint16, rdata []byte, ttl uint32) (engine.RecordRef, error) {
	if err := f.takeCreateErr(engine.KindAddRecord); err != nil {
		return nil, err
	}
	rec := &Record{fake: f, RRType: rrType, Data: rdata}
	f.mu.Lock()
	f.records = append(f.records, rec)
	f.mu.Unlock()
	return rec, nil
}

func (f *Fake) DefaultTXTRecord(service engine.ServiceRef) engine.RecordRef {
	rec := &Record{fake: f, Default: true}
	f.mu.Lock()
	f.records = append(f.records, rec)
	f.mu.Unlock()
	return rec
}

func (f *Fake) ReconfirmRecord(flags engine.Flags, ifIndex uint32, fullName string, rrType, rrClass uint16, rdata []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reconfirms++
	return nil
}

func (f *Fake) CancelRequest(conn engine.ServiceRef, clientContext uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelNotices = append(f.cancelNotices, clientContext)
	return nil
}

var _ engine.Engine = (*Fake)(nil)

// Record implements engine.RecordRef and counts mutations.
type Record struct {
	fake *Fake
	mu   sync.Mutex

	FullName string
	RRType   uint16
	Data     []byte
	Default  bool

	updates int
	removes int
}

func (r *Record) Update(flags engine.Flags, rdata []byte, ttl uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Data = append([]byte(nil), rdata...)
	r.updates++
	return nil
}

func (r *Record) Remove(flags engine.Flags) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removes++
	if r.removes > 1 {
		return fmt.Errorf("record removed %d times", r.removes)
	}
	return nil
}

// Updates counts Update calls; Removes counts Remove calls.
func (r *Record) Updates() int { r.mu.Lock(); defer r.mu.Unlock(); return r.updates }
func (r *Record) Removes() int { r.mu.Lock(); defer r.mu.Unlock(); return r.removes }
