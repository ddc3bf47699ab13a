package discovery

import (
	"context"

	"github.com/rescp17/dnssdbridge/internal/relay"
	"github.com/rescp17/dnssdbridge/pkg/engine"
)

// Change says whether an event adds or removes a result.
type Change int

const (
	Added Change = iota
	Removed
)

func (c Change) String() string {
	if c == Added {
		return "added"
	}
	return "removed"
}

// BrowseEvent is one service appearing on or disappearing from the
// network.
type BrowseEvent struct {
	Change     Change
	MoreComing bool
	Interface  Interface
	Name       string
	Type       string
	Domain     string
}

// BrowseStream is a never-ending sequence of BrowseEvents. It ends
// only on a terminal engine error or when the caller closes it.
//
// The engine groups bursts of events into batches, marking all but the
// last event of a batch with MoreComing. NextBatch is the default way
// to consume the stream: it returns one coalesced batch at a time so a
// consumer never acts on half a refresh. Next hands out individual
// events for callers that explicitly want per-event granularity.
type BrowseStream struct {
	op *op[BrowseEvent]

	// pending holds the already-received part of an open batch for
	// NextBatch. Single-consumer, no locking.
	pending []BrowseEvent
}

// Browse starts browsing for services of the given type (for example
// "_http._tcp") in domain (empty for the default domains).
func (c *Client) Browse(flags Flags, iface Interface, serviceType, domain string) (*BrowseStream, error) {
	if err := flags.validate(engine.KindBrowse); err != nil {
		return nil, err
	}
	if serviceType == "" {
		return nil, configErrf("browse", "service type must not be empty")
	}
	c.init()

	o, err := newOp(c.log, func(rel *relay.Relay[BrowseEvent]) (engine.ServiceRef, error) {
		cb := func(fl engine.Flags, ifIndex uint32, code engine.Code, name, regType, dom string) {
			if code != engine.NoError {
				rel.Fail(&engine.Error{Code: code})
				return
			}
			change := Removed
			if fl.Has(engine.FlagAdd) {
				change = Added
			}
			rel.Send(BrowseEvent{
				Change:     change,
				MoreComing: fl.Has(engine.FlagMoreComing),
				Interface:  InterfaceFromRaw(ifIndex),
				Name:       name,
				Type:       regType,
				Domain:     dom,
			})
		}
		return c.eng.Browse(engine.Flags(flags.Raw()), iface.Raw(), serviceType, domain, cb)
	})
	if err != nil {
		return nil, err
	}
	return &BrowseStream{op: o}, nil
}

// Next returns the next single event.
func (s *BrowseStream) Next(ctx context.Context) (BrowseEvent, error) {
	return s.op.next(ctx)
}

// NextBatch returns one coalesced batch: it accumulates events while
// MoreComing is set and returns them together with the batch-closing
// event. On a terminal error, events already collected for the open
// batch are returned alongside the error.
func (s *BrowseStream) NextBatch(ctx context.Context) ([]BrowseEvent, error) {
	for {
		ev, err := s.op.next(ctx)
		if err != nil {
			batch := s.pending
			s.pending = nil
			return batch, err
		}
		s.pending = append(s.pending, ev)
		if !ev.MoreComing {
			batch := s.pending
			s.pending = nil
			return batch, nil
		}
	}
}

// Close stops browsing and releases the native resource. After Close
// returns, no further events are delivered. Idempotent.
func (s *BrowseStream) Close() error { return s.op.Close() }
