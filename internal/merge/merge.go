// Package merge aligns raw per-source yearly observations into one
// unit-converted panel. The merger never mutates its inputs and never
// overwrites a historical value: conflicting duplicates are resolved by an
// explicit policy or reported as errors.
package merge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/fernando-duarte/china-data-sub002/internal/config"
	"github.com/fernando-duarte/china-data-sub002/internal/dataset"
	"github.com/fernando-duarte/china-data-sub002/internal/quality"
	"github.com/fernando-duarte/china-data-sub002/internal/sources"
)

// Merge errors. Both are fatal for the affected variable only; the
// remaining panel stays usable.
var (
	// ErrUnitConversion means a variable arrived from a source without a
	// catalog entry or conversion factor.
	ErrUnitConversion = errors.New("merge: no unit conversion for variable")
	// ErrDuplicateObservation means two sources disagree on the same
	// (variable, year) under the strict policy.
	ErrDuplicateObservation = errors.New("merge: conflicting duplicate observation")
)

// Policy resolves conflicting duplicate observations across sources.
type Policy string

const (
	// PolicyStrict treats any cross-source conflict as an error for the
	// affected variable.
	PolicyStrict Policy = "strict"
	// PolicyPreferFirst keeps the value from the earliest-listed source.
	PolicyPreferFirst Policy = "prefer-first"
	// PolicyPreferLast keeps the value from the latest-listed source.
	PolicyPreferLast Policy = "prefer-last"
)

// Values within this relative tolerance are the same observation reported
// twice, not a conflict.
const agreementTolerance = 1e-9

// Merger builds a panel from raw source tables.
type Merger struct {
	catalog config.Catalog
	policy  Policy
	logger  *slog.Logger
}

// NewMerger creates a merger over the given catalog and duplicate policy.
func NewMerger(catalog config.Catalog, policy Policy, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{catalog: catalog, policy: policy, logger: logger}
}

// Merge aligns the tables into one panel over [params.StartYear,
// params.EndYear], unit-converting every observation exactly once. Source
// order matters only for duplicate resolution under the prefer-* policies.
//
// Per-variable failures (missing conversion, strict-policy conflicts) drop
// the variable from the panel and are joined into the returned error; the
// panel itself remains valid for every surviving variable.
func (m *Merger) Merge(ctx context.Context, params config.Parameters, tables []*sources.Table, report *quality.Report) (*dataset.Panel, error) {
	panel := dataset.NewPanel(params.StartYear, params.EndYear)

	variables := unionVariables(tables)
	m.logger.InfoContext(ctx, "merging source tables",
		"sources", len(tables),
		"variables", len(variables),
		"policy", string(m.policy),
	)

	var failures []error
	for _, variable := range variables {
		if err := m.mergeVariable(ctx, panel, params, tables, variable, report); err != nil {
			m.logger.WarnContext(ctx, "variable dropped from merge",
				"variable", variable,
				"error", err,
			)
			failures = append(failures, err)
		}
	}
	return panel, errors.Join(failures...)
}

// mergeVariable merges one variable across all tables into the panel.
func (m *Merger) mergeVariable(ctx context.Context, panel *dataset.Panel, params config.Parameters, tables []*sources.Table, variable string, report *quality.Report) error {
	spec, err := m.catalog.Spec(variable)
	if err != nil {
		return fmt.Errorf("%w: %q has no catalog entry", ErrUnitConversion, variable)
	}
	if spec.Factor == 0 {
		return fmt.Errorf("%w: %q has no conversion factor", ErrUnitConversion, variable)
	}

	type provenance struct {
		value  float64
		source string
	}
	merged := make(map[int]provenance)

	for _, table := range tables {
		for _, year := range table.Years(variable) {
			if year < params.StartYear || year > params.EndYear {
				continue
			}
			raw, _ := table.Value(variable, year)
			converted := raw * spec.Factor

			existing, seen := merged[year]
			if !seen {
				merged[year] = provenance{value: converted, source: table.Source}
				continue
			}
			if agrees(existing.value, converted) {
				continue
			}

			switch m.policy {
			case PolicyPreferFirst:
				report.Add(quality.Event{
					Kind:     quality.KindDuplicateResolved,
					Variable: variable,
					Year:     year,
					Message:  fmt.Sprintf("kept %s value %g, discarded %s value %g", existing.source, existing.value, table.Source, converted),
				})
			case PolicyPreferLast:
				report.Add(quality.Event{
					Kind:     quality.KindDuplicateResolved,
					Variable: variable,
					Year:     year,
					Message:  fmt.Sprintf("replaced %s value %g with %s value %g", existing.source, existing.value, table.Source, converted),
				})
				merged[year] = provenance{value: converted, source: table.Source}
			default:
				return fmt.Errorf("%w: %s year %d: %s=%g vs %s=%g",
					ErrDuplicateObservation, variable, year, existing.source, existing.value, table.Source, converted)
			}
		}
	}

	series := panel.Series(variable)
	for year, p := range merged {
		if err := series.Set(year, p.value); err != nil {
			return fmt.Errorf("commit %s: %w", variable, err)
		}
	}
	m.logger.DebugContext(ctx, "variable merged",
		"variable", variable,
		"observations", len(merged),
	)
	return nil
}

func agrees(a, b float64) bool {
	scale := math.Max(math.Abs(a), math.Abs(b))
	if scale == 0 {
		return true
	}
	return math.Abs(a-b) <= agreementTolerance*scale
}

func unionVariables(tables []*sources.Table) []string {
	seen := make(map[string]bool)
	var names []string
	for _, t := range tables {
		for _, name := range t.Variables() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	// Variables() is sorted per table but the union across tables is not.
	sort.Strings(names)
	return names
}
