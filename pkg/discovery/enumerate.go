package discovery

import (
	"context"

	"github.com/rescp17/dnssdbridge/internal/relay"
	"github.com/rescp17/dnssdbridge/pkg/engine"
)

// Enumerate selects which domain list to enumerate.
type Enumerate int

const (
	// EnumerateBrowseDomains lists domains recommended for browsing.
	EnumerateBrowseDomains Enumerate = iota
	// EnumerateRegistrationDomains lists domains recommended for
	// registering services on.
	EnumerateRegistrationDomains
)

func (e Enumerate) flags() Flags {
	if e == EnumerateRegistrationDomains {
		return RegistrationDomains
	}
	return BrowseDomains
}

// DomainEvent is one domain appearing on or disappearing from the
// recommended list.
type DomainEvent struct {
	Change     Change
	MoreComing bool
	// Default marks the default domain of the list (always combined
	// with Added).
	Default   bool
	Interface Interface
	Domain    string
}

// DomainStream is an ordered sequence of DomainEvents.
type DomainStream struct {
	op *op[DomainEvent]
}

// EnumerateDomains streams the domains recommended for browsing or
// registration.
func (c *Client) EnumerateDomains(which Enumerate, iface Interface) (*DomainStream, error) {
	flags := which.flags()
	if err := flags.validate(engine.KindEnumerateDomains); err != nil {
		return nil, err
	}
	c.init()

	o, err := newOp(c.log, func(rel *relay.Relay[DomainEvent]) (engine.ServiceRef, error) {
		cb := func(fl engine.Flags, ifIndex uint32, code engine.Code, domain string) {
			if code != engine.NoError {
				rel.Fail(&engine.Error{Code: code})
				return
			}
			change := Removed
			if fl.Has(engine.FlagAdd) {
				change = Added
			}
			rel.Send(DomainEvent{
				Change:     change,
				MoreComing: fl.Has(engine.FlagMoreComing),
				Default:    fl.Has(engine.FlagDefault),
				Interface:  InterfaceFromRaw(ifIndex),
				Domain:     domain,
			})
		}
		return c.eng.EnumerateDomains(engine.Flags(flags.Raw()), iface.Raw(), cb)
	})
	if err != nil {
		return nil, err
	}
	return &DomainStream{op: o}, nil
}

// Next returns the next domain event.
func (s *DomainStream) Next(ctx context.Context) (DomainEvent, error) {
	return s.op.next(ctx)
}

// Close ends the enumeration and releases the native resource.
// Idempotent.
func (s *DomainStream) Close() error { return s.op.Close() }
