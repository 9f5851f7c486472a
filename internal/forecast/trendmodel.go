package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Coefficients outside this band produce explosive forecasts, so fitted
// values are clamped into the stationary region.
const maxARMACoefficient = 0.98

// TrendModel is the ARIMA(1,1,1)-equivalent strategy: an AR(1) term plus an
// MA(1) error term fitted to the first differences of the series, forecast
// by iterating the fitted recursion.
//
// Estimation is the Hannan-Rissanen two-step regression: a first-pass AR
// fit on the differences estimates the innovations, then the differences
// are regressed on their own lag and the lagged innovation. Both steps are
// closed-form least squares, so the fit is deterministic.
type TrendModel struct{}

// Name implements Extender.
func (TrendModel) Name() string { return "trend-model" }

// Extend implements Extender.
func (TrendModel) Extend(history []float64, n int) ([]float64, error) {
	if len(history) < 4 {
		return nil, fmt.Errorf("%w: trend model needs >= 4 points, got %d", ErrInsufficientHistory, len(history))
	}
	if n <= 0 {
		return nil, fmt.Errorf("forecast: horizon must be positive, got %d", n)
	}

	// Difference once and demean; the recursion runs on centered diffs.
	m := len(history) - 1
	diffs := make([]float64, m)
	for i := 0; i < m; i++ {
		diffs[i] = history[i+1] - history[i]
	}
	drift := stat.Mean(diffs, nil)

	x := make([]float64, m)
	sumSq := 0.0
	for i, d := range diffs {
		x[i] = d - drift
		sumSq += x[i] * x[i]
	}

	// A flat differenced series has nothing to model; forecast pure drift.
	if sumSq < 1e-12 {
		return driftForecast(history[len(history)-1], drift, n), nil
	}

	phi, theta, eLast := fitARMA11(x)

	out := make([]float64, n)
	last := history[len(history)-1]
	z := phi*x[m-1] + theta*eLast
	for h := 0; h < n; h++ {
		last += drift + z
		out[h] = last
		z *= phi // innovations beyond the sample are zero in expectation
	}
	return out, nil
}

// fitARMA11 estimates phi and theta on the centered differences x and
// returns them with the final in-sample innovation.
func fitARMA11(x []float64) (phi, theta, eLast float64) {
	m := len(x)

	// Step 1: AR(1) first pass to estimate the innovations.
	num, den := 0.0, 0.0
	for t := 1; t < m; t++ {
		num += x[t] * x[t-1]
		den += x[t-1] * x[t-1]
	}
	phi0 := 0.0
	if den > 0 {
		phi0 = clampCoefficient(num / den)
	}
	e := make([]float64, m)
	for t := 1; t < m; t++ {
		e[t] = x[t] - phi0*x[t-1]
	}

	// Step 2: regress x_t on x_{t-1} and e_{t-1}.
	rows := m - 1
	X := mat.NewDense(rows, 2, nil)
	y := mat.NewVecDense(rows, nil)
	for t := 1; t < m; t++ {
		X.Set(t-1, 0, x[t-1])
		X.Set(t-1, 1, e[t-1])
		y.SetVec(t-1, x[t])
	}

	var b mat.Dense
	var xtx mat.Dense
	xtx.Mul(X.T(), X)
	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err == nil {
		var xty mat.Dense
		xty.Mul(X.T(), y)
		b.Mul(&xtxInv, &xty)
	} else {
		// Singular normal equations: minimum-norm least squares via SVD.
		var svd mat.SVD
		if !svd.Factorize(X, mat.SVDThin) {
			return phi0, 0, e[m-1]
		}
		svd.SolveTo(&b, y, svd.Rank(1e-12))
	}

	phi = clampCoefficient(b.At(0, 0))
	theta = clampCoefficient(b.At(1, 0))

	// Re-derive innovations under the final coefficients so the forecast
	// starts from a consistent state.
	for t := 1; t < m; t++ {
		e[t] = x[t] - phi*x[t-1] - theta*e[t-1]
	}
	return phi, theta, e[m-1]
}

func clampCoefficient(c float64) float64 {
	if math.IsNaN(c) {
		return 0
	}
	if c > maxARMACoefficient {
		return maxARMACoefficient
	}
	if c < -maxARMACoefficient {
		return -maxARMACoefficient
	}
	return c
}

func driftForecast(last, drift float64, n int) []float64 {
	out := make([]float64, n)
	for h := 0; h < n; h++ {
		last += drift
		out[h] = last
	}
	return out
}
