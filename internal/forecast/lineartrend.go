package forecast

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// LinearTrend fits value against year index by ordinary least squares and
// forecasts by evaluating the fitted line at future indices. It always
// succeeds given at least two points; with exactly two the fit is exact.
type LinearTrend struct{}

// Name implements Extender.
func (LinearTrend) Name() string { return "linear-trend" }

// Extend implements Extender.
func (LinearTrend) Extend(history []float64, n int) ([]float64, error) {
	if len(history) < 2 {
		return nil, fmt.Errorf("%w: linear trend needs >= 2 points, got %d", ErrInsufficientHistory, len(history))
	}
	if n <= 0 {
		return nil, fmt.Errorf("forecast: horizon must be positive, got %d", n)
	}

	xs := make([]float64, len(history))
	for i := range xs {
		xs[i] = float64(i)
	}
	intercept, slope := stat.LinearRegression(xs, history, nil, false)

	out := make([]float64, n)
	for h := 0; h < n; h++ {
		out[h] = intercept + slope*float64(len(history)+h)
	}
	return out, nil
}
