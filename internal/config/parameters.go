package config

import "fmt"

// ErrInvalidParameter is returned for any Parameters value that fails
// validation. Validation runs before any processing begins.
var ErrInvalidParameter = fmt.Errorf("config: invalid parameter")

// Parameters are the process-wide constants of one run. They are validated
// once at startup and never mutated afterwards; every component receives
// them by value.
type Parameters struct {
	// Alpha is the capital share in the Cobb-Douglas production function.
	Alpha float64 `yaml:"alpha" envconfig:"ALPHA" default:"0.3333333333333333"`
	// Kappa is the capital-output ratio used to anchor the base-year
	// capital stock: K_base = GDP_base * Kappa.
	Kappa float64 `yaml:"kappa" envconfig:"KAPPA" default:"3.0"`
	// BaseYear anchors the capital-stock level calculation.
	BaseYear int `yaml:"base_year" envconfig:"BASE_YEAR" default:"2017"`
	// StartYear and EndYear bound the panel's year domain. EndYear may
	// extend beyond source coverage; the gap is the extrapolation horizon.
	StartYear int `yaml:"start_year" envconfig:"START_YEAR" default:"1978"`
	EndYear   int `yaml:"end_year" envconfig:"END_YEAR" default:"2025"`
}

// Validate checks the parameter constraints: 0 < alpha < 1, kappa > 0,
// start_year <= base_year <= end_year.
func (p Parameters) Validate() error {
	if p.Alpha <= 0 || p.Alpha >= 1 {
		return fmt.Errorf("%w: alpha must be in (0, 1), got %g", ErrInvalidParameter, p.Alpha)
	}
	if p.Kappa <= 0 {
		return fmt.Errorf("%w: kappa must be positive, got %g", ErrInvalidParameter, p.Kappa)
	}
	if p.StartYear > p.BaseYear || p.BaseYear > p.EndYear {
		return fmt.Errorf("%w: need start_year <= base_year <= end_year, got %d <= %d <= %d",
			ErrInvalidParameter, p.StartYear, p.BaseYear, p.EndYear)
	}
	return nil
}

// Horizon returns the number of years between lastYear and the end of the
// panel domain, zero when coverage already reaches EndYear.
func (p Parameters) Horizon(lastYear int) int {
	if lastYear >= p.EndYear {
		return 0
	}
	return p.EndYear - lastYear
}
