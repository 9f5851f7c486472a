// Package identity computes the derived macro indicators from same-year
// primitive values using fixed accounting and production identities:
// net exports, the anchored capital stock, total factor productivity,
// openness, and the saving decomposition.
//
// The calculator is pure over the panel it is given: it reads primitives,
// republishes derived series, and retains nothing between calls. A missing
// or non-positive input yields a missing output for that year only;
// computation problems are recorded as quality events, not errors.
package identity

import (
	"context"
	"log/slog"
	"math"

	"github.com/fernando-duarte/china-data-sub002/internal/config"
	"github.com/fernando-duarte/china-data-sub002/internal/dataset"
	"github.com/fernando-duarte/china-data-sub002/internal/quality"
)

// Calculator evaluates the derived-variable identities over a panel.
type Calculator struct {
	params config.Parameters
	logger *slog.Logger
}

// NewCalculator creates a calculator for the given run parameters.
func NewCalculator(params config.Parameters, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{params: params, logger: logger}
}

// Compute evaluates every identity for every year of the panel domain where
// the inputs are present, replacing the derived series wholesale. Calling
// it again after the primitives were extended recomputes the derived
// variables over the full range, which is how the orchestrator preserves
// the accounting identities by construction.
func (c *Calculator) Compute(ctx context.Context, panel *dataset.Panel, report *quality.Report) {
	c.computeNetExports(panel)
	c.computeCapitalStock(ctx, panel, report)
	c.computeTFP(ctx, panel, report)
	c.computeOpenness(panel, report)
	c.computeSaving(panel, report)

	c.logger.DebugContext(ctx, "identities computed",
		"start_year", panel.StartYear,
		"end_year", panel.EndYear,
	)
}

// computeNetExports evaluates NetExports = Exports - Imports.
func (c *Calculator) computeNetExports(panel *dataset.Panel) {
	out := dataset.NewSeries(config.VarNetExports)
	for _, year := range panel.Years() {
		exports, okX := panel.Value(config.VarExports, year)
		imports, okM := panel.Value(config.VarImports, year)
		if !okX || !okM {
			continue
		}
		out.Set(year, exports-imports)
	}
	panel.ReplaceSeries(out)
}

// computeCapitalStock evaluates
//
//	K_t = (rkna_t / rkna_base) * K_base * (pl_t / pl_base)
//
// with K_base = GDP_base * kappa. The whole series is undefined when the
// base-year capital index or price level is missing or zero.
func (c *Calculator) computeCapitalStock(ctx context.Context, panel *dataset.Panel, report *quality.Report) {
	out := dataset.NewSeries(config.VarCapitalStock)
	defer panel.ReplaceSeries(out)

	base := c.params.BaseYear
	rknaBase, okR := panel.Value(config.VarCapitalIndex, base)
	plBase, okP := panel.Value(config.VarPriceLevel, base)
	gdpBase, okY := panel.Value(config.VarGDP, base)
	if !okR || !okP || !okY || rknaBase == 0 || plBase == 0 {
		report.Add(quality.Event{
			Kind:     quality.KindComputationSkipped,
			Variable: config.VarCapitalStock,
			Year:     base,
			Message:  "capital stock undefined: base-year capital index, price level or GDP missing or zero",
		})
		c.logger.WarnContext(ctx, "capital stock anchoring failed",
			"base_year", base,
			"capital_index_ok", okR && rknaBase != 0,
			"price_level_ok", okP && plBase != 0,
			"gdp_ok", okY,
		)
		return
	}

	kBase := gdpBase * c.params.Kappa
	for _, year := range panel.Years() {
		rkna, okR := panel.Value(config.VarCapitalIndex, year)
		pl, okP := panel.Value(config.VarPriceLevel, year)
		if !okR || !okP {
			continue
		}
		out.Set(year, (rkna/rknaBase)*kBase*(pl/plBase))
	}
}

// computeTFP evaluates the Cobb-Douglas residual
//
//	TFP_t = Y_t / (K_t^alpha * (L_t * H_t)^(1-alpha))
//
// A non-positive K, L or H makes the real exponent undefined, so those
// years stay missing and are recorded as quality events.
func (c *Calculator) computeTFP(ctx context.Context, panel *dataset.Panel, report *quality.Report) {
	out := dataset.NewSeries(config.VarTFP)
	alpha := c.params.Alpha

	for _, year := range panel.Years() {
		gdp, okY := panel.Value(config.VarGDP, year)
		capital, okK := panel.Value(config.VarCapitalStock, year)
		labor, okL := panel.Value(config.VarLaborForce, year)
		human, okH := panel.Value(config.VarHumanCapital, year)
		if !okY || !okK || !okL || !okH {
			continue
		}
		if capital <= 0 || labor <= 0 || human <= 0 {
			report.Add(quality.Event{
				Kind:     quality.KindComputationSkipped,
				Variable: config.VarTFP,
				Year:     year,
				Message:  "tfp undefined: non-positive capital, labor or human capital",
			})
			continue
		}
		denom := math.Pow(capital, alpha) * math.Pow(labor*human, 1-alpha)
		if denom == 0 {
			report.Add(quality.Event{
				Kind:     quality.KindComputationSkipped,
				Variable: config.VarTFP,
				Year:     year,
				Message:  "tfp undefined: zero production denominator",
			})
			continue
		}
		out.Set(year, gdp/denom)
	}
	panel.ReplaceSeries(out)
}

// computeOpenness evaluates Openness = (Exports + Imports) / GDP.
func (c *Calculator) computeOpenness(panel *dataset.Panel, report *quality.Report) {
	out := dataset.NewSeries(config.VarOpenness)
	for _, year := range panel.Years() {
		exports, okX := panel.Value(config.VarExports, year)
		imports, okM := panel.Value(config.VarImports, year)
		gdp, okY := panel.Value(config.VarGDP, year)
		if !okX || !okM || !okY {
			continue
		}
		if gdp == 0 {
			report.Add(quality.Event{
				Kind:     quality.KindComputationSkipped,
				Variable: config.VarOpenness,
				Year:     year,
				Message:  "openness undefined: zero GDP",
			})
			continue
		}
		out.Set(year, (exports+imports)/gdp)
	}
	panel.ReplaceSeries(out)
}

// computeSaving evaluates the saving block:
//
//	Saving        = GDP - Consumption - Government
//	PublicSaving  = TaxRevenue - Government
//	PrivateSaving = Saving - PublicSaving
//	SavingRate    = Saving / GDP
//
// PrivateSaving is defined as the residual, so the decomposition sums back
// to Saving exactly whenever both parts exist.
func (c *Calculator) computeSaving(panel *dataset.Panel, report *quality.Report) {
	saving := dataset.NewSeries(config.VarSaving)
	public := dataset.NewSeries(config.VarPublicSaving)
	private := dataset.NewSeries(config.VarPrivateSaving)
	rate := dataset.NewSeries(config.VarSavingRate)

	for _, year := range panel.Years() {
		gdp, okY := panel.Value(config.VarGDP, year)
		consumption, okC := panel.Value(config.VarConsumption, year)
		government, okG := panel.Value(config.VarGovernment, year)

		var total float64
		haveTotal := okY && okC && okG
		if haveTotal {
			total = gdp - consumption - government
			saving.Set(year, total)
			if gdp != 0 {
				rate.Set(year, total/gdp)
			} else {
				report.Add(quality.Event{
					Kind:     quality.KindComputationSkipped,
					Variable: config.VarSavingRate,
					Year:     year,
					Message:  "saving rate undefined: zero GDP",
				})
			}
		}

		tax, okT := panel.Value(config.VarTaxRevenue, year)
		if okT && okG {
			pub := tax - government
			public.Set(year, pub)
			if haveTotal {
				private.Set(year, total-pub)
			}
		}
	}

	panel.ReplaceSeries(saving)
	panel.ReplaceSeries(public)
	panel.ReplaceSeries(private)
	panel.ReplaceSeries(rate)
}
