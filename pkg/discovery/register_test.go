package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/net/dns/dnsmessage"

	"github.com/rescp17/dnssdbridge/pkg/engine"
	"github.com/rescp17/dnssdbridge/pkg/engine/enginetest"
)

func TestRegister(t *testing.T) {
	fake := enginetest.New()
	c := New(fake)

	cfg := DefaultRegisterConfig()
	cfg.TXT = []byte{3, 'a', '=', '1'}
	reg, err := c.Register("_share._tcp", 4242, cfg)
	require.NoError(t, err)
	defer reg.Close()

	created := fake.LastRef().Create()
	assert.Equal(t, "_share._tcp", created.Type)
	assert.Equal(t, uint16(4242), created.Port)
	assert.Equal(t, cfg.TXT, created.TXT)
	assert.True(t, created.Flags.Has(engine.FlagShared))

	fake.LastRef().DeliverRegister(enginetest.RegisterReply{
		Name: "myhost", Type: "_share._tcp", Domain: "local.",
	})
	ev, err := reg.Next(testCtx(t))
	require.NoError(t, err)
	assert.Equal(t, "myhost", ev.Name)
	assert.Equal(t, "local.", ev.Domain)
}

func TestRegisterRename(t *testing.T) {
	fake := enginetest.New()
	c := New(fake)

	reg, err := c.Register("_share._tcp", 4242, DefaultRegisterConfig())
	require.NoError(t, err)
	defer reg.Close()

	// A conflict rename surfaces as a fresh event, not an error.
	fake.LastRef().DeliverRegister(
		enginetest.RegisterReply{Name: "myhost", Type: "_share._tcp", Domain: "local."},
		enginetest.RegisterReply{Name: "myhost (2)", Type: "_share._tcp", Domain: "local."},
	)
	ev, err := reg.Next(testCtx(t))
	require.NoError(t, err)
	assert.Equal(t, "myhost", ev.Name)
	ev, err = reg.Next(testCtx(t))
	require.NoError(t, err)
	assert.Equal(t, "myhost (2)", ev.Name)
}

func TestRegisterFlagGrid(t *testing.T) {
	c := New(enginetest.New())
	tests := []struct {
		name  string
		flags Flags
		ok    bool
	}{
		{"shared", Shared, true},
		{"unique", Unique, true},
		{"unique no-auto-rename", Unique | NoAutoRename, true},
		{"none", 0, false},
		{"both", Shared | Unique, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Register("_share._tcp", 1, RegisterConfig{Flags: tt.flags})
			if tt.ok {
				assert.NoError(t, err)
			} else {
				var cfgErr *ConfigError
				assert.ErrorAs(t, err, &cfgErr)
			}
		})
	}
}

func TestRegisterNameConflictError(t *testing.T) {
	fake := enginetest.New()
	c := New(fake)

	cfg := DefaultRegisterConfig()
	cfg.Flags = Unique | NoAutoRename
	reg, err := c.Register("_share._tcp", 4242, cfg)
	require.NoError(t, err)
	defer reg.Close()

	fake.LastRef().DeliverRegister(enginetest.RegisterReply{Code: engine.NameConflict})
	_, err = reg.Next(testCtx(t))
	require.Error(t, err)
	assert.Equal(t, engine.NameConflict, engine.CodeOf(err))
}

func TestRegisterCloseUnregisters(t *testing.T) {
	fake := enginetest.New()
	c := New(fake)

	reg, err := c.Register("_share._tcp", 4242, DefaultRegisterConfig())
	require.NoError(t, err)
	require.NoError(t, reg.Close())
	require.NoError(t, reg.Close())
	assert.Equal(t, 1, fake.Releases())
}

func TestRegisterAddRecord(t *testing.T) {
	fake := enginetest.New()
	c := New(fake)

	reg, err := c.Register("_share._tcp", 4242, DefaultRegisterConfig())
	require.NoError(t, err)
	defer reg.Close()

	rec, err := reg.AddRecord(dnsmessage.TypeTXT, []byte{1, 'x'}, 120)
	require.NoError(t, err)
	assert.Equal(t, dnsmessage.TypeTXT, rec.Type())

	require.NoError(t, rec.Update([]byte{1, 'y'}, 120))
	require.Len(t, fake.Records(), 1)
	assert.Equal(t, 1, fake.Records()[0].Updates())

	require.NoError(t, rec.Close())
	require.NoError(t, rec.Close())
	assert.Equal(t, 1, fake.Records()[0].Removes())

	assert.ErrorIs(t, rec.Update([]byte{1, 'z'}, 120), ErrClosed)
}

func TestRegisterKeptRecordSurvivesClose(t *testing.T) {
	fake := enginetest.New()
	c := New(fake)

	reg, err := c.Register("_share._tcp", 4242, DefaultRegisterConfig())
	require.NoError(t, err)
	defer reg.Close()

	rec, err := reg.AddRecord(dnsmessage.TypeTXT, []byte{1, 'x'}, 120)
	require.NoError(t, err)
	rec.Keep()
	require.NoError(t, rec.Close())
	assert.Zero(t, fake.Records()[0].Removes())
}

func TestRegisterDefaultTXTRecord(t *testing.T) {
	fake := enginetest.New()
	c := New(fake)

	reg, err := c.Register("_share._tcp", 4242, DefaultRegisterConfig())
	require.NoError(t, err)
	defer reg.Close()

	rec := reg.DefaultTXTRecord()
	assert.Equal(t, dnsmessage.TypeTXT, rec.Type())
	require.NoError(t, rec.Update([]byte{3, 'b', '=', '2'}, 0))
	require.NoError(t, rec.Close())

	recs := fake.Records()
	require.Len(t, recs, 1)
	assert.True(t, recs[0].Default)
	assert.Equal(t, 1, recs[0].Updates())
	assert.Zero(t, recs[0].Removes(), "the implicit TXT record belongs to the registration")
}
