package forecast

import (
	"errors"
	"fmt"
)

// Extrapolation errors. Each one is recoverable: the orchestrator reacts by
// trying the next strategy in the fallback chain, never by aborting the run.
var (
	// ErrInsufficientHistory means the series is too short for the
	// strategy's minimum observation count.
	ErrInsufficientHistory = errors.New("forecast: insufficient history")
	// ErrNonPositiveBase means the terminal historical value is zero or
	// negative, so growth compounding is undefined.
	ErrNonPositiveBase = errors.New("forecast: non-positive terminal value")
	// ErrExhausted means every strategy in a chain failed.
	ErrExhausted = errors.New("forecast: all strategies failed")
)

// Extender extends one historical series n years into the future. history
// holds the present values of the series in year order; implementations
// must not mutate it.
type Extender interface {
	// Name identifies the strategy in quality events and logs.
	Name() string
	// Extend returns exactly n forecast values, one per future year in
	// year order, or an error when the strategy cannot fit the history.
	Extend(history []float64, n int) ([]float64, error)
}

// Attempt records one failed strategy inside a chain.
type Attempt struct {
	Strategy string
	Err      error
}

// Result is a successful chain extension.
type Result struct {
	// Values holds one forecast per future year.
	Values []float64
	// Strategy names the extender that produced the values.
	Strategy string
	// Fallbacks lists the strategies that failed before the successful
	// one, in attempt order. Empty when the first choice fit.
	Fallbacks []Attempt
}

// Chain is an ordered list of strategy attempts evaluated lazily. Extend
// tries each in turn and short-circuits on the first success.
type Chain []Extender

// Extend runs the chain. On total exhaustion it returns ErrExhausted with
// every attempt recorded in the error message.
func (c Chain) Extend(history []float64, n int) (Result, error) {
	var fallbacks []Attempt
	for _, strategy := range c {
		values, err := strategy.Extend(history, n)
		if err == nil {
			return Result{Values: values, Strategy: strategy.Name(), Fallbacks: fallbacks}, nil
		}
		fallbacks = append(fallbacks, Attempt{Strategy: strategy.Name(), Err: err})
	}
	return Result{Fallbacks: fallbacks}, fmt.Errorf("%w: %d attempts", ErrExhausted, len(fallbacks))
}
