// Package forecast implements the per-series extrapolation strategies: a
// trend model fitting an ARMA(1,1) recursion on first differences, a
// compounded average-growth-rate extension, and an ordinary least-squares
// linear trend.
//
// Strategies are pure functions over their input slice. Given identical
// history they produce identical forecasts; there is no randomness and no
// global state. The Chain combinator expresses the documented fallback
// order as a lazy sequential try, short-circuiting on the first strategy
// that fits.
package forecast
