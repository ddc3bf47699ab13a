package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rescp17/dnssdbridge/pkg/engine"
)

func TestRegisterFlagValidation(t *testing.T) {
	tests := []struct {
		name  string
		flags Flags
		ok    bool
	}{
		{"shared", Shared, true},
		{"unique", Unique, true},
		{"shared with no-auto-rename", Shared | NoAutoRename, true},
		{"neither shared nor unique", 0, false},
		{"no-auto-rename only", NoAutoRename, false},
		{"both shared and unique", Shared | Unique, false},
		{"foreign bit browse-domains", Shared | BrowseDomains, false},
		{"unknown future bit passes", Shared | FlagsFromRaw(0x8000000), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.flags.validate(engine.KindRegister)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var cfgErr *ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestRegisterRecordFlagValidation(t *testing.T) {
	assert.NoError(t, Shared.validate(engine.KindRegisterRecord))
	assert.NoError(t, Unique.validate(engine.KindRegisterRecord))
	assert.Error(t, Flags(0).validate(engine.KindRegisterRecord))
	assert.Error(t, (Shared | Unique).validate(engine.KindRegisterRecord))
	assert.Error(t, (Unique | NoAutoRename).validate(engine.KindRegisterRecord))
}

func TestEnumerateFlagValidation(t *testing.T) {
	assert.NoError(t, BrowseDomains.validate(engine.KindEnumerateDomains))
	assert.NoError(t, RegistrationDomains.validate(engine.KindEnumerateDomains))
	assert.Error(t, Flags(0).validate(engine.KindEnumerateDomains))
	assert.Error(t, (BrowseDomains | RegistrationDomains).validate(engine.KindEnumerateDomains))
}

func TestQueryFlagValidation(t *testing.T) {
	assert.NoError(t, Flags(0).validate(engine.KindQueryRecord))
	assert.NoError(t, (LongLivedQuery | ForceMulticast).validate(engine.KindQueryRecord))
	assert.NoError(t, (QueryTimeout | UnicastResponse).validate(engine.KindQueryRecord))
	assert.Error(t, Shared.validate(engine.KindQueryRecord))
}

func TestBrowseAcceptsNoFlags(t *testing.T) {
	assert.NoError(t, Flags(0).validate(engine.KindBrowse))
	assert.Error(t, Shared.validate(engine.KindBrowse))
}

func TestFlagsRawRoundTrip(t *testing.T) {
	raw := uint32(0x80001011)
	f := FlagsFromRaw(raw)
	require.Equal(t, raw, f.Raw(), "unknown bits must survive the round trip")
	assert.NotZero(t, f.Unknown())
}

func TestFlagsString(t *testing.T) {
	assert.Equal(t, "[]", Flags(0).String())
	assert.Equal(t, "[shared]", Shared.String())
	assert.Contains(t, (Shared|NoAutoRename).String(), "no-auto-rename")
	assert.Contains(t, FlagsFromRaw(1<<30).String(), "unknown-bits")
}
