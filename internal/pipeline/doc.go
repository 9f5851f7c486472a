// Package pipeline drives one harmonization run through its phases: merge,
// historical identity computation, per-variable extrapolation with the
// documented fallback chain, identity recomputation over the extended
// range, and the final validation gate.
//
// The ordering invariant of the whole engine lives here: primitives are
// extended first and derived variables are always recomputed from the
// extended primitives, never extrapolated directly, so the accounting
// identities hold by construction over the full year range.
package pipeline
