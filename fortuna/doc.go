// Package fortuna implements the Fortuna PRNG as described by Niels
// Ferguson, Bruce Schneier, and Tadayoshi Kohno in Cryptography
// Engineering, and as specified concretely by corecrypto's
// ccrng_fortuna: 32 entropy pools feeding a round-robin accumulator,
// a power-of-two reseed schedule over the pools, and an AES-256-CTR
// generator rekeyed on every draw for forward secrecy.
//
// Callers supply an entropy callback (GetEntropyFunc) at Init time.
// Refresh should be called whenever fresh entropy samples are
// available (a timer tick, an interrupt-coalesce deadline, ...); it
// uses a non-blocking try-lock so it is safe to call from contexts
// that cannot afford to wait, at the cost of a refresh occasionally
// being skipped when Generate is already running.
//
// Generate never touches the entropy callback and never blocks beyond
// acquiring the internal lock; it fails with errs.NotSeeded until a
// scheduled reseed has absorbed at least 1024 cumulative samples.
package fortuna
