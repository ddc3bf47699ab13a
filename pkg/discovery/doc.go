// Package discovery exposes DNS-SD operations (browse, resolve,
// register, record queries, domain enumeration) as cancellable
// futures and ordered event streams on top of a callback-driven
// native engine.
//
// All operations hang off a Client, which wraps an engine.Engine.
// Stream handles deliver events in the exact order the engine
// produced them; closing a handle synchronously stops callback
// dispatch and releases the native resource, and any callback that
// raced with the close is silently discarded.
package discovery
