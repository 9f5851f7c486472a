package forecast

import (
	"fmt"
	"math"
)

// AverageGrowth compounds the last historical value forward by the
// geometric mean of the year-over-year growth ratios observed in history.
//
// Ratios touching a zero or negative value are undefined and skipped when
// averaging; only a non-positive terminal value is fatal, because there is
// nothing to compound from.
type AverageGrowth struct{}

// Name implements Extender.
func (AverageGrowth) Name() string { return "average-growth" }

// Extend implements Extender.
func (AverageGrowth) Extend(history []float64, n int) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("forecast: horizon must be positive, got %d", n)
	}
	positive := 0
	for _, v := range history {
		if v > 0 {
			positive++
		}
	}
	if positive < 2 {
		return nil, fmt.Errorf("%w: average growth needs >= 2 positive points, got %d", ErrInsufficientHistory, positive)
	}

	base := history[len(history)-1]
	if base <= 0 {
		return nil, fmt.Errorf("%w: terminal value %g", ErrNonPositiveBase, base)
	}

	// Geometric mean of defined growth ratios via the mean of their logs.
	logSum, count := 0.0, 0
	for i := 1; i < len(history); i++ {
		prev, cur := history[i-1], history[i]
		if prev <= 0 || cur <= 0 {
			continue
		}
		logSum += math.Log(cur / prev)
		count++
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: no consecutive positive pairs to compute growth from", ErrInsufficientHistory)
	}
	ratio := math.Exp(logSum / float64(count))

	out := make([]float64, n)
	value := base
	for h := 0; h < n; h++ {
		value *= ratio
		out[h] = value
	}
	return out, nil
}
