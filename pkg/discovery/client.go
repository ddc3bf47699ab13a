package discovery

import (
	"log/slog"
	"os"
	"sync"

	"github.com/rescp17/dnssdbridge/pkg/engine"
)

// Client is the explicit context every operation hangs off. It wraps
// the native engine and carries the bridge's logger; there is no
// package-level mutable state.
type Client struct {
	eng      engine.Engine
	log      *slog.Logger
	initOnce sync.Once
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the structured logger used for dispatch diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a Client driving the given engine.
func New(eng engine.Engine, opts ...Option) *Client {
	c := &Client{eng: eng, log: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// init performs one-time process setup the engine needs. The Avahi
// compatibility shim prints a warning per process unless told not to.
func (c *Client) init() {
	c.initOnce.Do(func() {
		const noWarn = "AVAHI_COMPAT_NOWARN"
		if _, set := os.LookupEnv(noWarn); !set {
			os.Setenv(noWarn, "1")
		}
	})
}
