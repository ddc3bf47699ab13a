package engine

// Flags is the raw flag word used on the wire and in reply callbacks.
// Validated, operation-specific wrappers live in pkg/discovery; this
// package only names the bits.
type Flags uint32

const (
	FlagMoreComing          Flags = 0x1
	FlagAdd                 Flags = 0x2
	FlagDefault             Flags = 0x4
	FlagNoAutoRename        Flags = 0x8
	FlagShared              Flags = 0x10
	FlagUnique              Flags = 0x20
	FlagBrowseDomains       Flags = 0x40
	FlagRegistrationDomains Flags = 0x80
	FlagLongLivedQuery      Flags = 0x100
	FlagAllowRemoteQuery    Flags = 0x200
	FlagForceMulticast      Flags = 0x400
	FlagReturnIntermediates Flags = 0x1000
	FlagSuppressUnusable    Flags = 0x8000
	FlagTimeout             Flags = 0x10000
	FlagUnicastResponse     Flags = 0x400000
)

// Has reports whether every bit of mask is set.
func (f Flags) Has(mask Flags) bool {
	return f&mask == mask
}

// Reserved interface index values. Anything else identifies a single
// network interface by OS index.
const (
	InterfaceIndexAny       uint32 = 0
	InterfaceIndexLocalOnly uint32 = ^uint32(0)
	InterfaceIndexUnicast   uint32 = ^uint32(1)
	InterfaceIndexP2P       uint32 = ^uint32(2)
	InterfaceIndexBLE       uint32 = ^uint32(3)
)
