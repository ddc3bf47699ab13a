package discovery

import (
	"context"

	"github.com/rescp17/dnssdbridge/internal/relay"
	"github.com/rescp17/dnssdbridge/pkg/engine"
)

// ResolvedService is the outcome of resolving one service instance.
type ResolvedService struct {
	Interface Interface
	FullName  string
	Host      string
	Port      uint16
	TXT       []byte
}

// Resolve finds host, port and TXT data for a named service instance.
// It completes on the first successful resolution or the first error;
// either way the native resource is released before Resolve returns.
func (c *Client) Resolve(ctx context.Context, flags Flags, iface Interface, name, serviceType, domain string) (ResolvedService, error) {
	if err := flags.validate(engine.KindResolve); err != nil {
		return ResolvedService{}, err
	}
	if name == "" || serviceType == "" || domain == "" {
		return ResolvedService{}, configErrf("resolve", "name, service type and domain must not be empty")
	}
	c.init()

	o, err := newOp(c.log, func(rel *relay.Relay[ResolvedService]) (engine.ServiceRef, error) {
		cb := func(fl engine.Flags, ifIndex uint32, code engine.Code, fullName, host string, port uint16, txt []byte) {
			if code != engine.NoError {
				rel.Fail(&engine.Error{Code: code})
				return
			}
			rel.Send(ResolvedService{
				Interface: InterfaceFromRaw(ifIndex),
				FullName:  fullName,
				Host:      host,
				Port:      port,
				TXT:       append([]byte(nil), txt...),
			})
		}
		return c.eng.Resolve(engine.Flags(flags.Raw()), iface.Raw(), name, serviceType, domain, cb)
	})
	if err != nil {
		return ResolvedService{}, err
	}

	svc, err := o.next(ctx)
	if err != nil {
		o.Close()
		return ResolvedService{}, err
	}
	o.complete()
	return svc, nil
}
