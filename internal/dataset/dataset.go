package dataset

import (
	"fmt"
	"math"
	"sort"
)

// ErrDuplicateYear is returned when a Series already holds a value for the
// year being set. Overwriting historical observations is never allowed;
// conflicting sources must be resolved by the merge policy before the value
// reaches a Series.
var ErrDuplicateYear = fmt.Errorf("dataset: duplicate year for variable")

// Observation is a single (variable, year, value) data point.
type Observation struct {
	Variable string  `json:"variable"`
	Year     int     `json:"year"`
	Value    float64 `json:"value"`
	Missing  bool    `json:"missing,omitempty"`
}

// Present reports whether the observation carries a usable value.
func (o Observation) Present() bool {
	return !o.Missing && !math.IsNaN(o.Value) && !math.IsInf(o.Value, 0)
}

// Series holds the observations of one variable, keyed by year.
type Series struct {
	Variable string
	obs      map[int]Observation
}

// NewSeries creates an empty series for the named variable.
func NewSeries(variable string) *Series {
	return &Series{
		Variable: variable,
		obs:      make(map[int]Observation),
	}
}

// Set records a value for the given year. Setting a year that already holds
// an observation (present or missing) fails with ErrDuplicateYear.
func (s *Series) Set(year int, value float64) error {
	if _, exists := s.obs[year]; exists {
		return fmt.Errorf("%w: %s year %d", ErrDuplicateYear, s.Variable, year)
	}
	s.obs[year] = Observation{Variable: s.Variable, Year: year, Value: value}
	return nil
}

// SetMissing records an explicitly missing observation for the given year.
func (s *Series) SetMissing(year int) error {
	if _, exists := s.obs[year]; exists {
		return fmt.Errorf("%w: %s year %d", ErrDuplicateYear, s.Variable, year)
	}
	s.obs[year] = Observation{Variable: s.Variable, Year: year, Missing: true}
	return nil
}

// Replace overwrites the observation for a year that is currently missing.
// It refuses to touch a year that already holds a present value, preserving
// the append-only contract for historical data.
func (s *Series) Replace(year int, value float64) error {
	if existing, exists := s.obs[year]; exists && existing.Present() {
		return fmt.Errorf("%w: %s year %d holds a value", ErrDuplicateYear, s.Variable, year)
	}
	s.obs[year] = Observation{Variable: s.Variable, Year: year, Value: value}
	return nil
}

// At returns the observation for a year. The second return is false when the
// year was never recorded at all.
func (s *Series) At(year int) (Observation, bool) {
	o, ok := s.obs[year]
	return o, ok
}

// Value returns the value for a year and whether it is present.
func (s *Series) Value(year int) (float64, bool) {
	o, ok := s.obs[year]
	if !ok || !o.Present() {
		return 0, false
	}
	return o.Value, true
}

// Years returns all recorded years in ascending order.
func (s *Series) Years() []int {
	years := make([]int, 0, len(s.obs))
	for y := range s.obs {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// PresentYears returns the years holding a usable value, ascending.
func (s *Series) PresentYears() []int {
	years := make([]int, 0, len(s.obs))
	for y, o := range s.obs {
		if o.Present() {
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years
}

// LastPresentYear returns the latest year with a usable value. The second
// return is false for an all-missing series.
func (s *Series) LastPresentYear() (int, bool) {
	last, found := 0, false
	for y, o := range s.obs {
		if o.Present() && (!found || y > last) {
			last, found = y, true
		}
	}
	return last, found
}

// ValuesThrough returns the present values for years up to and including
// lastYear, in year order. Gaps are skipped, so the slice length equals the
// number of present observations, not the span.
func (s *Series) ValuesThrough(lastYear int) []float64 {
	years := s.PresentYears()
	values := make([]float64, 0, len(years))
	for _, y := range years {
		if y > lastYear {
			break
		}
		values = append(values, s.obs[y].Value)
	}
	return values
}

// Len returns the number of recorded observations, missing ones included.
func (s *Series) Len() int {
	return len(s.obs)
}

// Clone returns a deep copy of the series.
func (s *Series) Clone() *Series {
	dup := NewSeries(s.Variable)
	for y, o := range s.obs {
		dup.obs[y] = o
	}
	return dup
}

// Panel is the complete year-indexed table of all variables for one run.
// Every series shares the common year domain [StartYear, EndYear]; EndYear
// may extend beyond source coverage, that extension being the extrapolation
// target.
type Panel struct {
	StartYear int
	EndYear   int
	series    map[string]*Series
}

// NewPanel creates an empty panel over the given year domain.
func NewPanel(startYear, endYear int) *Panel {
	return &Panel{
		StartYear: startYear,
		EndYear:   endYear,
		series:    make(map[string]*Series),
	}
}

// Series returns the series for a variable, creating it on first use.
func (p *Panel) Series(variable string) *Series {
	s, ok := p.series[variable]
	if !ok {
		s = NewSeries(variable)
		p.series[variable] = s
	}
	return s
}

// Lookup returns the series for a variable without creating it.
func (p *Panel) Lookup(variable string) (*Series, bool) {
	s, ok := p.series[variable]
	return s, ok
}

// Variables returns all variable names in sorted order. Sorted iteration
// keeps every run byte-identical for identical input.
func (p *Panel) Variables() []string {
	names := make([]string, 0, len(p.series))
	for name := range p.series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Years returns the full year domain [StartYear, EndYear], ascending.
func (p *Panel) Years() []int {
	years := make([]int, 0, p.EndYear-p.StartYear+1)
	for y := p.StartYear; y <= p.EndYear; y++ {
		years = append(years, y)
	}
	return years
}

// Value returns the value of a variable in a year and whether it is present.
func (p *Panel) Value(variable string, year int) (float64, bool) {
	s, ok := p.series[variable]
	if !ok {
		return 0, false
	}
	return s.Value(year)
}

// ReplaceSeries swaps in a freshly built series for its variable. Used by
// the identity calculator to republish derived series after the primitives
// were extended; primitives keep their append-only contract because the
// calculator only ever replaces derived names.
func (p *Panel) ReplaceSeries(s *Series) {
	p.series[s.Variable] = s
}

// Clone returns a deep copy of the panel.
func (p *Panel) Clone() *Panel {
	dup := NewPanel(p.StartYear, p.EndYear)
	for name, s := range p.series {
		dup.series[name] = s.Clone()
	}
	return dup
}
