package discovery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rescp17/dnssdbridge/pkg/engine"
	"github.com/rescp17/dnssdbridge/pkg/engine/enginetest"
)

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestBrowseFoundAndRemoved(t *testing.T) {
	fake := enginetest.New()
	c := New(fake)

	s, err := c.Browse(0, InterfaceAny, "_http._tcp", "")
	require.NoError(t, err)
	defer s.Close()

	ref := fake.LastRef()
	require.Equal(t, engine.KindBrowse, ref.Kind())
	assert.Equal(t, "_http._tcp", ref.Create().Type)

	ref.DeliverBrowse(enginetest.BrowseReply{
		Flags: engine.FlagAdd, IfIndex: 2, Name: "printer", Type: "_http._tcp", Domain: "local.",
	})
	ev, err := s.Next(testCtx(t))
	require.NoError(t, err)
	assert.Equal(t, Added, ev.Change)
	assert.Equal(t, "printer", ev.Name)
	assert.Equal(t, "_http._tcp", ev.Type)
	assert.Equal(t, "local.", ev.Domain)
	ndx, ok := ev.Interface.Index()
	assert.True(t, ok)
	assert.Equal(t, uint32(2), ndx)

	ref.DeliverBrowse(enginetest.BrowseReply{
		IfIndex: 2, Name: "printer", Type: "_http._tcp", Domain: "local.",
	})
	ev, err = s.Next(testCtx(t))
	require.NoError(t, err)
	assert.Equal(t, Removed, ev.Change)
}

func TestBrowseBatchGrouping(t *testing.T) {
	fake := enginetest.New()
	c := New(fake)

	s, err := c.Browse(0, InterfaceAny, "_ipp._tcp", "")
	require.NoError(t, err)
	defer s.Close()

	// One dispatch cycle carrying a three-reply burst; the first two
	// are marked more-coming.
	fake.LastRef().DeliverBrowse(
		enginetest.BrowseReply{Flags: engine.FlagAdd | engine.FlagMoreComing, Name: "a"},
		enginetest.BrowseReply{Flags: engine.FlagAdd | engine.FlagMoreComing, Name: "b"},
		enginetest.BrowseReply{Flags: engine.FlagAdd, Name: "c"},
	)

	batch, err := s.NextBatch(testCtx(t))
	require.NoError(t, err)
	require.Len(t, batch, 3)
	assert.Equal(t, "a", batch[0].Name)
	assert.True(t, batch[0].MoreComing)
	assert.Equal(t, "c", batch[2].Name)
	assert.False(t, batch[2].MoreComing)

	// A lone follow-up reply forms its own batch.
	fake.LastRef().DeliverBrowse(enginetest.BrowseReply{Flags: engine.FlagAdd, Name: "d"})
	batch, err = s.NextBatch(testCtx(t))
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "d", batch[0].Name)
}

func TestBrowseCloseReleasesOnce(t *testing.T) {
	fake := enginetest.New()
	c := New(fake)

	s, err := c.Browse(0, InterfaceAny, "_http._tcp", "")
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, fake.Releases())

	_, err = s.Next(testCtx(t))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestBrowseNoEventsAfterClose(t *testing.T) {
	fake := enginetest.New()
	c := New(fake)

	s, err := c.Browse(0, InterfaceAny, "_http._tcp", "")
	require.NoError(t, err)
	ref := fake.LastRef()
	require.NoError(t, s.Close())

	ref.DeliverBrowse(enginetest.BrowseReply{Flags: engine.FlagAdd, Name: "late"})
	_, err = s.Next(testCtx(t))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestBrowseEngineError(t *testing.T) {
	fake := enginetest.New()
	c := New(fake)

	s, err := c.Browse(0, InterfaceAny, "_http._tcp", "")
	require.NoError(t, err)
	defer s.Close()

	fake.LastRef().DeliverBrowse(enginetest.BrowseReply{Code: engine.ServiceNotRunning})
	_, err = s.Next(testCtx(t))
	require.Error(t, err)
	assert.Equal(t, engine.ServiceNotRunning, engine.CodeOf(err))

	// The terminal error is reported once; afterwards the stream is
	// simply over.
	_, err = s.Next(testCtx(t))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestBrowseErrorAfterPartialBatch(t *testing.T) {
	fake := enginetest.New()
	c := New(fake)

	s, err := c.Browse(0, InterfaceAny, "_http._tcp", "")
	require.NoError(t, err)
	defer s.Close()

	fake.LastRef().DeliverBrowse(
		enginetest.BrowseReply{Flags: engine.FlagAdd | engine.FlagMoreComing, Name: "a"},
		enginetest.BrowseReply{Code: engine.Unknown},
	)
	batch, err := s.NextBatch(testCtx(t))
	require.Error(t, err)
	require.Len(t, batch, 1, "the open batch is handed over alongside the error")
	assert.Equal(t, "a", batch[0].Name)
}

func TestBrowseCreationFailure(t *testing.T) {
	fake := enginetest.New()
	fake.FailCreation(engine.KindBrowse, engine.ServiceNotRunning)
	c := New(fake)

	_, err := c.Browse(0, InterfaceAny, "_http._tcp", "")
	require.Error(t, err)
	assert.Equal(t, engine.ServiceNotRunning, engine.CodeOf(err))
	assert.Empty(t, fake.Refs(), "no native resource may leak from a failed creation")
}

func TestBrowseValidation(t *testing.T) {
	c := New(enginetest.New())
	var cfgErr *ConfigError

	_, err := c.Browse(0, InterfaceAny, "", "")
	assert.ErrorAs(t, err, &cfgErr)

	_, err = c.Browse(Shared, InterfaceAny, "_http._tcp", "")
	assert.ErrorAs(t, err, &cfgErr)
}

func TestBrowseNextHonorsContext(t *testing.T) {
	fake := enginetest.New()
	c := New(fake)

	s, err := c.Browse(0, InterfaceAny, "_http._tcp", "")
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = s.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// A context miss does not tear down the stream.
	fake.LastRef().DeliverBrowse(enginetest.BrowseReply{Flags: engine.FlagAdd, Name: "still-on"})
	ev, err := s.Next(testCtx(t))
	require.NoError(t, err)
	assert.Equal(t, "still-on", ev.Name)
}
