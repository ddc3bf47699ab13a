package discovery

import (
	"fmt"

	"github.com/rescp17/dnssdbridge/pkg/engine"
)

// Interface selects the network interface an operation applies to:
// either a single interface by OS index, or one of the reserved
// pseudo-interfaces. The reserved values never compare equal to a
// real index and survive a Raw round trip unchanged.
type Interface struct {
	raw uint32
}

var (
	// InterfaceAny selects all interfaces (multicast or unicast
	// depending on the domain).
	InterfaceAny = Interface{engine.InterfaceIndexAny}
	// InterfaceLocalOnly restricts the operation to the local machine.
	InterfaceLocalOnly = Interface{engine.InterfaceIndexLocalOnly}
	// InterfaceUnicast forces unicast operation.
	InterfaceUnicast = Interface{engine.InterfaceIndexUnicast}
	// InterfaceP2P includes peer-to-peer interfaces.
	InterfaceP2P = Interface{engine.InterfaceIndexP2P}
	// InterfaceBLE includes Bluetooth Low Energy transports.
	InterfaceBLE = Interface{engine.InterfaceIndexBLE}
)

// InterfaceIndex wraps a real adapter index, rejecting the reserved
// sentinel values.
func InterfaceIndex(ndx uint32) (Interface, error) {
	switch ndx {
	case engine.InterfaceIndexAny, engine.InterfaceIndexLocalOnly,
		engine.InterfaceIndexUnicast, engine.InterfaceIndexP2P, engine.InterfaceIndexBLE:
		return Interface{}, configErrf("interface", "index %d is a reserved value", ndx)
	}
	return Interface{raw: ndx}, nil
}

// InterfaceFromRaw maps a raw wire value, including the reserved ones,
// to an Interface. Reply decoding uses this.
func InterfaceFromRaw(raw uint32) Interface {
	return Interface{raw: raw}
}

// Raw returns the wire value.
func (i Interface) Raw() uint32 { return i.raw }

// Index returns the adapter index and true, or 0 and false for the
// reserved pseudo-interfaces.
func (i Interface) Index() (uint32, bool) {
	switch i.raw {
	case engine.InterfaceIndexAny, engine.InterfaceIndexLocalOnly,
		engine.InterfaceIndexUnicast, engine.InterfaceIndexP2P, engine.InterfaceIndexBLE:
		return 0, false
	}
	return i.raw, true
}

// ScopeID returns the index usable as an IPv6 scope id, or zero when
// no single interface is selected.
func (i Interface) ScopeID() uint32 {
	ndx, ok := i.Index()
	if !ok {
		return 0
	}
	return ndx
}

func (i Interface) String() string {
	switch i.raw {
	case engine.InterfaceIndexAny:
		return "any"
	case engine.InterfaceIndexLocalOnly:
		return "local-only"
	case engine.InterfaceIndexUnicast:
		return "unicast"
	case engine.InterfaceIndexP2P:
		return "p2p"
	case engine.InterfaceIndexBLE:
		return "ble"
	}
	return fmt.Sprintf("%d", i.raw)
}
