// Package sources loads raw per-source observation tables from on-disk
// snapshots of the statistical archives (World Bank WDI CSV exports and
// Penn World Table workbooks). Network retrieval is a collaborator concern;
// the engine only ever sees a Table of source-native values.
package sources

import "sort"

// Table holds the raw observations of one source in source-native units.
// Absence is explicit: a (variable, year) pair that was never added simply
// has no entry.
type Table struct {
	Source string
	obs    map[string]map[int]float64
}

// NewTable creates an empty table for the named source.
func NewTable(source string) *Table {
	return &Table{Source: source, obs: make(map[string]map[int]float64)}
}

// Add records a raw value. Adding the same (variable, year) twice keeps the
// last value; duplicate handling across sources is the merger's job, within
// one source the snapshot itself is authoritative.
func (t *Table) Add(variable string, year int, value float64) {
	years, ok := t.obs[variable]
	if !ok {
		years = make(map[int]float64)
		t.obs[variable] = years
	}
	years[year] = value
}

// Value returns the raw value for a (variable, year) and whether it exists.
func (t *Table) Value(variable string, year int) (float64, bool) {
	years, ok := t.obs[variable]
	if !ok {
		return 0, false
	}
	v, ok := years[year]
	return v, ok
}

// Variables returns the variable names present in the table, sorted.
func (t *Table) Variables() []string {
	names := make([]string, 0, len(t.obs))
	for name := range t.obs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Years returns the years recorded for a variable, ascending.
func (t *Table) Years(variable string) []int {
	years := make([]int, 0, len(t.obs[variable]))
	for y := range t.obs[variable] {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Len returns the total number of observations in the table.
func (t *Table) Len() int {
	n := 0
	for _, years := range t.obs {
		n += len(years)
	}
	return n
}
