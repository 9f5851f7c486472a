// Package validate is the final completeness and plausibility gate before
// the panel is handed to output writers. Every check is non-fatal: findings
// are logged and added to the quality report, and the panel itself is never
// mutated.
package validate

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/fernando-duarte/china-data-sub002/internal/config"
	"github.com/fernando-duarte/china-data-sub002/internal/dataset"
	"github.com/fernando-duarte/china-data-sub002/internal/quality"
)

// Rounding slack for the saving-rate bound check.
const savingRateTolerance = 1e-9

// Gate runs the post-run panel checks.
type Gate struct {
	catalog config.Catalog
	logger  *slog.Logger
}

// NewGate creates a gate over the variable catalog.
func NewGate(catalog config.Catalog, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{catalog: catalog, logger: logger}
}

// Check annotates the report with coverage, gap, range and cross-variable
// findings.
func (g *Gate) Check(ctx context.Context, panel *dataset.Panel, report *quality.Report) {
	found := g.checkDeclared(panel, report)
	for _, variable := range panel.Variables() {
		series, _ := panel.Lookup(variable)
		if len(series.PresentYears()) == 0 {
			continue // already reported as missing data
		}
		found += g.checkGaps(panel, series, report)
		found += g.checkRange(series, report)
	}
	found += g.checkSavingRate(panel, report)

	g.logger.InfoContext(ctx, "validation gate finished",
		"variables", len(panel.Variables()),
		"findings", found,
	)
}

// checkDeclared flags catalog variables with no observations at all,
// typically the result of a variable dropped during merge.
func (g *Gate) checkDeclared(panel *dataset.Panel, report *quality.Report) int {
	declared := append(g.catalog.Primitives(), g.catalog.Derived()...)
	sort.Strings(declared)

	findings := 0
	for _, variable := range declared {
		if series, ok := panel.Lookup(variable); ok && len(series.PresentYears()) > 0 {
			continue
		}
		report.Add(quality.Event{
			Kind:     quality.KindMissingData,
			Variable: variable,
			Year:     panel.StartYear,
			EndYear:  panel.EndYear,
			Message:  "declared variable has no observations",
		})
		findings++
	}
	return findings
}

// checkGaps flags years without a usable value inside the panel domain.
// Consecutive missing years collapse into one event spanning the run.
func (g *Gate) checkGaps(panel *dataset.Panel, series *dataset.Series, report *quality.Report) int {
	findings := 0
	gapStart := 0
	inGap := false

	flush := func(endYear int) {
		report.Add(quality.Event{
			Kind:     quality.KindGapDetected,
			Variable: series.Variable,
			Year:     gapStart,
			EndYear:  endYear,
			Message:  "no value inside the panel domain",
		})
		findings++
	}

	for year := panel.StartYear; year <= panel.EndYear; year++ {
		if _, ok := series.Value(year); ok {
			if inGap {
				flush(year - 1)
				inGap = false
			}
			continue
		}
		if !inGap {
			gapStart = year
			inGap = true
		}
	}
	if inGap {
		flush(panel.EndYear)
	}
	return findings
}

// checkRange flags values outside the variable's plausible bounds.
func (g *Gate) checkRange(series *dataset.Series, report *quality.Report) int {
	// The saving rate has its own cross-variable check with tolerance.
	if series.Variable == config.VarSavingRate {
		return 0
	}
	spec, err := g.catalog.Spec(series.Variable)
	if err != nil || !spec.Bounds.Valid {
		return 0
	}
	findings := 0
	for _, year := range series.PresentYears() {
		value, _ := series.Value(year)
		if !spec.Bounds.Contains(value) {
			report.Add(quality.Event{
				Kind:     quality.KindRangeViolation,
				Variable: series.Variable,
				Year:     year,
				Message:  fmt.Sprintf("value %g outside plausible range [%g, %g]", value, spec.Bounds.Min, spec.Bounds.Max),
			})
			findings++
		}
	}
	return findings
}

// checkSavingRate verifies the cross-variable bound SavingRate in [-1, 1]
// up to rounding tolerance.
func (g *Gate) checkSavingRate(panel *dataset.Panel, report *quality.Report) int {
	series, ok := panel.Lookup(config.VarSavingRate)
	if !ok {
		return 0
	}
	findings := 0
	for _, year := range series.PresentYears() {
		rate, _ := series.Value(year)
		if math.Abs(rate) > 1+savingRateTolerance {
			report.Add(quality.Event{
				Kind:     quality.KindRangeViolation,
				Variable: config.VarSavingRate,
				Year:     year,
				Message:  fmt.Sprintf("saving rate %g outside [-1, 1]", rate),
			})
			findings++
		}
	}
	return findings
}
