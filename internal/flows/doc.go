// Package flows contains pure-function orchestrators for Engine operations.
//
// RunAuthenticate accepts a typed dependency struct and returns results without
// side-effects beyond those dependencies. This keeps the Engine type thin and lets the
// lookup, verify and migrate sequence be tested with plain function fakes.
//
// # Architecture boundaries
//
// Flow functions coordinate calls to the user provider, the password verifier, the
// derivation pool, audit dispatcher and metrics. They do NOT own any of these resources;
// ownership stays with the Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goCred (to avoid import cycles).
//   - Perform I/O directly. All I/O is mediated through dependency functions.
package flows
