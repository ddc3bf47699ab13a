package discovery

import (
	"context"

	"golang.org/x/net/dns/dnsmessage"

	"github.com/rescp17/dnssdbridge/internal/relay"
	"github.com/rescp17/dnssdbridge/pkg/engine"
)

// RecordEvent is one answer to a record query.
type RecordEvent struct {
	Change     Change
	MoreComing bool
	Interface  Interface
	FullName   string
	Type       dnsmessage.Type
	Class      dnsmessage.Class
	Data       []byte
	TTL        uint32
}

// QueryStream is an ordered sequence of record query answers.
type QueryStream struct {
	op *op[RecordEvent]
}

// QueryRecord queries for records with the given full name, type and
// class. Whether the query keeps running and streams every change
// (LongLivedQuery) or is a one-off lookup is selected through flags;
// for the plain single-answer case LookupRecord is more convenient.
func (c *Client) QueryRecord(flags Flags, iface Interface, fullName string, rrType dnsmessage.Type, rrClass dnsmessage.Class) (*QueryStream, error) {
	if err := flags.validate(engine.KindQueryRecord); err != nil {
		return nil, err
	}
	if fullName == "" {
		return nil, configErrf("query-record", "full name must not be empty")
	}
	c.init()

	o, err := newOp(c.log, func(rel *relay.Relay[RecordEvent]) (engine.ServiceRef, error) {
		cb := func(fl engine.Flags, ifIndex uint32, code engine.Code, name string, t, cl uint16, rdata []byte, ttl uint32) {
			if code != engine.NoError {
				rel.Fail(&engine.Error{Code: code})
				return
			}
			change := Removed
			if fl.Has(engine.FlagAdd) {
				change = Added
			}
			rel.Send(RecordEvent{
				Change:     change,
				MoreComing: fl.Has(engine.FlagMoreComing),
				Interface:  InterfaceFromRaw(ifIndex),
				FullName:   name,
				Type:       dnsmessage.Type(t),
				Class:      dnsmessage.Class(cl),
				Data:       append([]byte(nil), rdata...),
				TTL:        ttl,
			})
		}
		return c.eng.QueryRecord(engine.Flags(flags.Raw()), iface.Raw(), fullName, uint16(rrType), uint16(rrClass), cb)
	})
	if err != nil {
		return nil, err
	}
	return &QueryStream{op: o}, nil
}

// LookupRecord performs a single-shot record query: it returns the
// first answer (or first error) and releases the native resource.
// LongLivedQuery is rejected here; use QueryRecord for streams.
func (c *Client) LookupRecord(ctx context.Context, flags Flags, iface Interface, fullName string, rrType dnsmessage.Type, rrClass dnsmessage.Class) (RecordEvent, error) {
	if flags.Has(LongLivedQuery) {
		return RecordEvent{}, configErrf("query-record", "long-lived queries stream results, use QueryRecord")
	}
	s, err := c.QueryRecord(flags, iface, fullName, rrType, rrClass)
	if err != nil {
		return RecordEvent{}, err
	}
	ev, err := s.op.next(ctx)
	if err != nil {
		s.Close()
		return RecordEvent{}, err
	}
	s.op.complete()
	return ev, nil
}

// Next returns the next answer.
func (s *QueryStream) Next(ctx context.Context) (RecordEvent, error) {
	return s.op.next(ctx)
}

// Close stops the query and releases the native resource. Idempotent.
func (s *QueryStream) Close() error { return s.op.Close() }
