// Package live exposes a reflow engine over WebSocket. Each connected
// session owns its own reactive runtime and a key/value store; clients
// subscribe to keys and mutate them through small JSON messages. One
// lazy watch effect per subscribed key records changes, the session
// flushes the runtime's deferred queue at the end of every incoming
// message, and the coalesced changes go out as a single patch frame.
//
// The package is the reference consumer of the engine: it demonstrates
// the intended collaborator pattern of one scheduler-driven effect per
// renderable unit, seeded with an explicit first run.
package live
