package discovery

import (
	"context"

	"golang.org/x/net/dns/dnsmessage"

	"github.com/rescp17/dnssdbridge/internal/relay"
	"github.com/rescp17/dnssdbridge/pkg/engine"
)

// RegisterConfig carries the optional parameters of a service
// registration; the zero value of each field selects the engine
// default.
type RegisterConfig struct {
	// Flags must contain exactly one of Shared or Unique and may add
	// NoAutoRename.
	Flags     Flags
	Interface Interface
	// Name is the service instance name; empty means the hostname.
	Name string
	// Domain to advertise on; empty means the default domains.
	Domain string
	// Host is the SRV target; empty means the local hostname.
	Host string
	// TXT is the rdata of the service's TXT record. Use pkg/txt to
	// build it. Empty is treated by the engine as a single empty
	// string.
	TXT []byte
}

// DefaultRegisterConfig returns a RegisterConfig suitable for a plain
// service advertisement.
func DefaultRegisterConfig() RegisterConfig {
	return RegisterConfig{Flags: Shared}
}

// RegistrationEvent reports the name a service ended up registered
// under. More than one event can arrive over a registration's life,
// e.g. after the engine renamed the service away from a conflict.
type RegistrationEvent struct {
	Name   string
	Type   string
	Domain string
}

// Registration is a live service registration. It is a stream of
// RegistrationEvents; closing it unregisters the service.
type Registration struct {
	op     *op[RegistrationEvent]
	client *Client
}

// Register advertises a service of the given type on the given port.
// Unless NoAutoRename is set, a name conflict is renegotiated by the
// engine and surfaces as a fresh RegistrationEvent, not an error.
func (c *Client) Register(serviceType string, port uint16, cfg RegisterConfig) (*Registration, error) {
	if err := cfg.Flags.validate(engine.KindRegister); err != nil {
		return nil, err
	}
	if serviceType == "" {
		return nil, configErrf("register", "service type must not be empty")
	}
	c.init()

	o, err := newOp(c.log, func(rel *relay.Relay[RegistrationEvent]) (engine.ServiceRef, error) {
		cb := func(fl engine.Flags, code engine.Code, name, regType, domain string) {
			if code != engine.NoError {
				rel.Fail(&engine.Error{Code: code})
				return
			}
			rel.Send(RegistrationEvent{Name: name, Type: regType, Domain: domain})
		}
		return c.eng.Register(engine.Flags(cfg.Flags.Raw()), cfg.Interface.Raw(),
			cfg.Name, serviceType, cfg.Domain, cfg.Host, port, cfg.TXT, cb)
	})
	if err != nil {
		return nil, err
	}
	return &Registration{op: o, client: c}, nil
}

// Next returns the next registration event.
func (r *Registration) Next(ctx context.Context) (RegistrationEvent, error) {
	return r.op.next(ctx)
}

// AddRecord attaches an extra record to the registered service. The
// record lives until removed or until the registration is closed.
func (r *Registration) AddRecord(rrType dnsmessage.Type, rdata []byte, ttl uint32) (*Record, error) {
	ref, err := r.client.eng.AddRecord(r.op.ref, 0, uint16(rrType), rdata, ttl)
	if err != nil {
		return nil, err
	}
	return &Record{ref: ref, rrType: rrType}, nil
}

// DefaultTXTRecord returns a handle to the TXT record created with the
// registration, for in-place updates. Closing the handle does nothing
// useful; the record belongs to the registration.
func (r *Registration) DefaultTXTRecord() *Record {
	return &Record{
		ref:     r.client.eng.DefaultTXTRecord(r.op.ref),
		rrType:  dnsmessage.TypeTXT,
		keep:    true,
		special: true,
	}
}

// Close unregisters the service and releases the native resource.
// Idempotent.
func (r *Registration) Close() error { return r.op.Close() }
