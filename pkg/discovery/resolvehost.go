package discovery

import (
	"context"
	"errors"
	"net"
	"sync"

	"golang.org/x/net/dns/dnsmessage"

	"github.com/rescp17/dnssdbridge/internal/relay"
)

// HostEvent is one address learned (or withdrawn) for a host name.
type HostEvent struct {
	Change     Change
	MoreComing bool
	Interface  Interface
	IP         net.IP
	TTL        uint32
}

// HostStream merges the A and AAAA query streams for one host name
// into a single ordered address stream.
type HostStream struct {
	v4, v6 *QueryStream
	rel    *relay.Relay[HostEvent]

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// ResolveHost looks up the IPv4 and IPv6 addresses of a host name.
// The name must be fully qualified ("some-host.local."). Flags take
// the same values QueryRecord accepts; pass LongLivedQuery to keep
// watching for address changes.
func (c *Client) ResolveHost(flags Flags, iface Interface, host string) (*HostStream, error) {
	if host == "" {
		return nil, configErrf("resolve-host", "host name must not be empty")
	}

	v4, err := c.QueryRecord(flags, iface, host, dnsmessage.TypeA, dnsmessage.ClassINET)
	if err != nil {
		return nil, err
	}
	v6, err := c.QueryRecord(flags, iface, host, dnsmessage.TypeAAAA, dnsmessage.ClassINET)
	if err != nil {
		v4.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &HostStream{v4: v4, v6: v6, rel: relay.New[HostEvent](), cancel: cancel}
	s.wg.Add(2)
	go s.pump(ctx, v4)
	go s.pump(ctx, v6)
	return s, nil
}

func (s *HostStream) pump(ctx context.Context, q *QueryStream) {
	defer s.wg.Done()
	for {
		ev, err := q.Next(ctx)
		if err != nil {
			if !errors.Is(err, ErrClosed) && ctx.Err() == nil {
				s.rel.Fail(err)
			}
			return
		}
		ip, ok := recordAddress(ev)
		if !ok {
			continue
		}
		s.rel.Send(HostEvent{
			Change:     ev.Change,
			MoreComing: ev.MoreComing,
			Interface:  ev.Interface,
			IP:         ip,
			TTL:        ev.TTL,
		})
	}
}

// recordAddress decodes an A or AAAA rdata. Replies with truncated
// rdata are dropped rather than failing the stream.
func recordAddress(ev RecordEvent) (net.IP, bool) {
	switch ev.Type {
	case dnsmessage.TypeA:
		if len(ev.Data) != net.IPv4len {
			return nil, false
		}
	case dnsmessage.TypeAAAA:
		if len(ev.Data) != net.IPv6len {
			return nil, false
		}
	default:
		return nil, false
	}
	return net.IP(append([]byte(nil), ev.Data...)), true
}

// Next returns the next address event.
func (s *HostStream) Next(ctx context.Context) (HostEvent, error) {
	v, err := s.rel.Recv(ctx)
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, relay.ErrDone), errors.Is(err, relay.ErrClosed):
		return HostEvent{}, ErrClosed
	default:
		return HostEvent{}, err
	}
}

// Close stops both underlying queries and releases their native
// resources. Idempotent.
func (s *HostStream) Close() error {
	s.closeOnce.Do(func() {
		s.rel.Close()
		s.cancel()
		err4 := s.v4.Close()
		err6 := s.v6.Close()
		s.wg.Wait()
		if err4 != nil {
			s.closeErr = err4
		} else {
			s.closeErr = err6
		}
	})
	return s.closeErr
}
