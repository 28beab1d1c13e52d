// Package bedrock implements the command/event kernel behind a small
// multiplayer game backend. Callers submit Commands, registered Handlers
// turn them into EventDrafts, and the Kernel finalizes those drafts into
// sequenced, causally-stamped Events that are journaled and broadcast to
// subscribers.
//
// Typical usage looks like:
//   - Create one Kernel per game session with NewKernel
//   - Register a Handler for each command type a feature module owns
//   - Subscribe listeners (or the Wildcard) to mirror emitted events
//   - Dispatch commands translated from client input
//
// A Kernel is single-threaded by contract: Dispatch runs the handler,
// finalization, log append, and publish to completion before returning.
// Hosts that run many sessions isolate them by giving each its own Kernel.
//
// The subpackages provide the feature modules (terrain, world, player,
// gold), the per-session room adapter, optional persistence (journal), and
// host wiring (server). The examples/ directory contains a runnable demo.
package bedrock
