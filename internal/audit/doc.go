// Package audit implements async event dispatching for authenticate and credential
// migration outcomes.
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON writer, slog, no-op).
//   - [Dispatcher]: buffered async relay with drop-if-full / block-if-full semantics.
//   - [Event]: structured audit record with timestamp, type, user, credential form, reason.
//
// # Architecture boundaries
//
// This package owns event buffering and sink delivery. It does NOT decide which events
// to emit; that belongs to the Engine and the authenticate flow.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on business logic.
//   - Import goCred or any sibling internal package.
//   - Record plaintext passwords or stored credential strings.
package audit
