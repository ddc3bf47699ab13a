package discovery

import (
	"strings"

	"github.com/rescp17/dnssdbridge/pkg/engine"
)

// Flags is a validated operation flag set. Construction from raw bit
// patterns keeps every bit, including ones this package does not know
// about, so newer engine flags pass through unmodified; validation
// only rejects combinations of known bits that the target operation
// forbids.
type Flags uint32

const (
	MoreComing          = Flags(engine.FlagMoreComing)
	Add                 = Flags(engine.FlagAdd)
	DefaultDomain       = Flags(engine.FlagDefault)
	NoAutoRename        = Flags(engine.FlagNoAutoRename)
	Shared              = Flags(engine.FlagShared)
	Unique              = Flags(engine.FlagUnique)
	BrowseDomains       = Flags(engine.FlagBrowseDomains)
	RegistrationDomains = Flags(engine.FlagRegistrationDomains)
	LongLivedQuery      = Flags(engine.FlagLongLivedQuery)
	ForceMulticast      = Flags(engine.FlagForceMulticast)
	ReturnIntermediates = Flags(engine.FlagReturnIntermediates)
	SuppressUnusable    = Flags(engine.FlagSuppressUnusable)
	QueryTimeout        = Flags(engine.FlagTimeout)
	UnicastResponse     = Flags(engine.FlagUnicastResponse)
)

var flagNames = []struct {
	bit  Flags
	name string
}{
	{MoreComing, "more-coming"},
	{Add, "add"},
	{DefaultDomain, "default"},
	{NoAutoRename, "no-auto-rename"},
	{Shared, "shared"},
	{Unique, "unique"},
	{BrowseDomains, "browse-domains"},
	{RegistrationDomains, "registration-domains"},
	{LongLivedQuery, "long-lived-query"},
	{ForceMulticast, "force-multicast"},
	{ReturnIntermediates, "return-intermediates"},
	{SuppressUnusable, "suppress-unusable"},
	{QueryTimeout, "timeout"},
	{UnicastResponse, "unicast-response"},
}

// FlagsFromRaw wraps a raw flag word without dropping any bits.
func FlagsFromRaw(raw uint32) Flags { return Flags(raw) }

// Raw returns the flag word as passed to the engine, unknown bits
// included.
func (f Flags) Raw() uint32 { return uint32(f) }

// Has reports whether every bit of mask is set.
func (f Flags) Has(mask Flags) bool { return f&mask == mask }

// Known returns the subset of bits this package names.
func (f Flags) Known() Flags {
	var known Flags
	for _, fn := range flagNames {
		known |= fn.bit
	}
	return f & known
}

// Unknown returns the bits preserved for forward compatibility.
func (f Flags) Unknown() Flags { return f &^ f.Known() }

func (f Flags) String() string {
	if f == 0 {
		return "[]"
	}
	var names []string
	for _, fn := range flagNames {
		if f.Has(fn.bit) {
			names = append(names, fn.name)
		}
	}
	if u := f.Unknown(); u != 0 {
		names = append(names, "unknown-bits")
	}
	return "[" + strings.Join(names, ",") + "]"
}

// flagRule is the per-operation validation entry: which known bits are
// accepted as input, and which groups require exactly one member set.
type flagRule struct {
	allowed  Flags
	exactOne []Flags
}

var flagRules = map[engine.Kind]flagRule{
	engine.KindBrowse:  {},
	engine.KindResolve: {},
	engine.KindRegister: {
		allowed:  Shared | Unique | NoAutoRename,
		exactOne: []Flags{Shared | Unique},
	},
	engine.KindRegisterRecord: {
		allowed:  Shared | Unique,
		exactOne: []Flags{Shared | Unique},
	},
	engine.KindEnumerateDomains: {
		allowed:  BrowseDomains | RegistrationDomains,
		exactOne: []Flags{BrowseDomains | RegistrationDomains},
	},
	engine.KindQueryRecord: {
		allowed: LongLivedQuery | ForceMulticast | ReturnIntermediates |
			SuppressUnusable | QueryTimeout | UnicastResponse,
	},
	engine.KindReconfirmRecord: {},
	engine.KindAddRecord:       {},
	engine.KindUpdateRecord:    {},
	engine.KindRemoveRecord:    {},
}

// validate checks f against op's rule. Unknown bits always pass;
// known bits outside the allowed set, or a violated exactly-one-of
// group, produce a *ConfigError.
func (f Flags) validate(kind engine.Kind) error {
	rule, ok := flagRules[kind]
	if !ok {
		return configErrf(kind.String(), "flags not accepted by this operation")
	}
	if bad := f.Known() &^ rule.allowed; bad != 0 {
		return configErrf(kind.String(), "flags %s not valid here", bad)
	}
	for _, group := range rule.exactOne {
		set := f & group
		if set == 0 {
			return configErrf(kind.String(), "exactly one of %s must be set", group)
		}
		if set&(set-1) != 0 {
			return configErrf(kind.String(), "flags %s are mutually exclusive", set)
		}
	}
	return nil
}
