package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/fernando-duarte/china-data-sub002/internal/config"
	"github.com/fernando-duarte/china-data-sub002/internal/dataset"
	"github.com/fernando-duarte/china-data-sub002/internal/forecast"
	"github.com/fernando-duarte/china-data-sub002/internal/identity"
	"github.com/fernando-duarte/china-data-sub002/internal/merge"
	"github.com/fernando-duarte/china-data-sub002/internal/quality"
	"github.com/fernando-duarte/china-data-sub002/internal/sources"
	"github.com/fernando-duarte/china-data-sub002/internal/validate"
)

// Result is the finished product of one run: the fully extended panel, the
// quality report for downstream writers, and the run state.
type Result struct {
	Panel  *dataset.Panel
	Report *quality.Report
	State  *RunState
}

// Orchestrator wires the merger, identity calculator, strategies and
// validation gate into the run state machine.
type Orchestrator struct {
	cfg     *config.Config
	catalog config.Catalog
	merger  *merge.Merger
	calc    *identity.Calculator
	gate    *validate.Gate
	logger  *slog.Logger
}

// New creates an orchestrator from a validated configuration.
func New(cfg *config.Config, catalog config.Catalog, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		cfg:     cfg,
		catalog: catalog,
		merger:  merge.NewMerger(catalog, merge.Policy(cfg.Run.MergePolicy), logger),
		calc:    identity.NewCalculator(cfg.Parameters, logger),
		gate:    validate.NewGate(catalog, logger),
		logger:  logger,
	}
}

// Run executes the full pipeline over the raw source tables. Only state
// machine violations surface as errors; every data problem degrades to
// missing values and quality events, leaving the rest of the panel usable.
func (o *Orchestrator) Run(ctx context.Context, tables []*sources.Table) (*Result, error) {
	state := NewRunState()
	report := quality.NewReport()
	params := o.cfg.Parameters

	o.logger.InfoContext(ctx, "pipeline run starting",
		"run_id", state.ID,
		"start_year", params.StartYear,
		"end_year", params.EndYear,
		"sources", len(tables),
	)

	panel, mergeErr := o.merger.Merge(ctx, params, tables, report)
	if mergeErr != nil {
		// Per-variable merge failures; the surviving panel is still good.
		o.logger.WarnContext(ctx, "merge completed with dropped variables", "error", mergeErr)
	}
	if err := state.Advance(PhaseMergeComplete); err != nil {
		state.Fail(err)
		return nil, err
	}

	o.calc.Compute(ctx, panel, report)
	if err := state.Advance(PhaseHistoricalIdentities); err != nil {
		state.Fail(err)
		return nil, err
	}

	if err := state.Advance(PhaseExtrapolating); err != nil {
		state.Fail(err)
		return nil, err
	}
	o.extrapolate(ctx, panel, report)

	// Derived variables are never extrapolated; they are recomputed from
	// the extended primitives so the identities hold over the full range.
	o.calc.Compute(ctx, panel, report)
	if err := state.Advance(PhaseIdentitiesRecomputed); err != nil {
		state.Fail(err)
		return nil, err
	}

	o.gate.Check(ctx, panel, report)
	if err := state.Advance(PhaseValidated); err != nil {
		state.Fail(err)
		return nil, err
	}

	summary := report.Summarize()
	o.logger.InfoContext(ctx, "pipeline run finished",
		"run_id", state.ID,
		"duration", state.Duration(),
		"quality_events", summary.Total,
		"extrapolation_failures", summary.ByKind[quality.KindExtrapolationFailure],
	)
	return &Result{Panel: panel, Report: report, State: state}, nil
}

// extension is the outcome of extending one primitive variable, captured in
// the worker and applied after the join so panel mutation and event order
// stay deterministic.
type extension struct {
	variable  string
	firstYear int
	values    []float64
	result    forecast.Result
	err       error
}

// extrapolate extends every primitive variable lacking coverage to the end
// year. The per-variable work fans out over a bounded errgroup; nothing is
// written to the panel until all workers have joined.
func (o *Orchestrator) extrapolate(ctx context.Context, panel *dataset.Panel, report *quality.Report) {
	primitives := o.catalog.Primitives()
	pending := make([]extension, 0, len(primitives))

	for _, variable := range primitives {
		series, ok := panel.Lookup(variable)
		if !ok || series.Len() == 0 {
			continue
		}
		last, found := series.LastPresentYear()
		if !found {
			continue
		}
		horizon := o.cfg.Parameters.Horizon(last)
		if horizon == 0 {
			continue
		}
		pending = append(pending, extension{
			variable:  variable,
			firstYear: last + 1,
			values:    series.ValuesThrough(last),
		})
	}
	if len(pending) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Run.Workers)
	for i := range pending {
		ext := &pending[i]
		g.Go(func() error {
			select {
			case <-gctx.Done():
				ext.err = gctx.Err()
				return nil
			default:
			}
			horizon := o.cfg.Parameters.EndYear - ext.firstYear + 1
			ext.result, ext.err = o.chainFor(ext.variable).Extend(ext.values, horizon)
			return nil
		})
	}
	g.Wait() // workers never return errors; failures live in each extension

	for i := range pending {
		o.apply(ctx, panel, report, &pending[i])
	}
}

// apply writes one extension outcome into the panel and the report.
func (o *Orchestrator) apply(ctx context.Context, panel *dataset.Panel, report *quality.Report, ext *extension) {
	for _, attempt := range ext.result.Fallbacks {
		report.Add(quality.Event{
			Kind:     quality.KindStrategyFallback,
			Variable: ext.variable,
			Year:     ext.firstYear,
			EndYear:  o.cfg.Parameters.EndYear,
			Message:  fmt.Sprintf("%s failed: %v", attempt.Strategy, attempt.Err),
		})
		o.logger.WarnContext(ctx, "extrapolation strategy fell back",
			"variable", ext.variable,
			"strategy", attempt.Strategy,
			"error", attempt.Err,
		)
	}

	if ext.err != nil {
		for year := ext.firstYear; year <= o.cfg.Parameters.EndYear; year++ {
			report.Add(quality.Event{
				Kind:     quality.KindExtrapolationFailure,
				Variable: ext.variable,
				Year:     year,
				Message:  fmt.Sprintf("no strategy could extend the series: %v", ext.err),
			})
		}
		o.logger.WarnContext(ctx, "variable left unforecast",
			"variable", ext.variable,
			"from_year", ext.firstYear,
			"to_year", o.cfg.Parameters.EndYear,
			"error", ext.err,
		)
		return
	}

	series, _ := panel.Lookup(ext.variable)
	for i, value := range ext.result.Values {
		year := ext.firstYear + i
		if err := series.Replace(year, value); err != nil {
			// A present value in the horizon would mean the coverage scan
			// was wrong; surface it loudly but keep the run alive.
			o.logger.ErrorContext(ctx, "refusing to overwrite historical value",
				"variable", ext.variable,
				"year", year,
				"error", err,
			)
			return
		}
	}
	o.logger.InfoContext(ctx, "variable extended",
		"variable", ext.variable,
		"strategy", ext.result.Strategy,
		"from_year", ext.firstYear,
		"to_year", o.cfg.Parameters.EndYear,
	)
}

// chainFor resolves a variable's assigned strategy class to the fallback
// chain: assigned strategy, then average growth, then linear trend, with
// duplicates collapsed.
func (o *Orchestrator) chainFor(variable string) forecast.Chain {
	assigned := config.StrategyTrendModel
	if spec, err := o.catalog.Spec(variable); err == nil && spec.Strategy != "" {
		assigned = spec.Strategy
	}

	chain := forecast.Chain{strategyFor(assigned)}
	if assigned != config.StrategyAverageGrowth {
		chain = append(chain, forecast.AverageGrowth{})
	}
	if assigned != config.StrategyLinearTrend {
		chain = append(chain, forecast.LinearTrend{})
	}
	return chain
}

func strategyFor(class config.StrategyClass) forecast.Extender {
	switch class {
	case config.StrategyAverageGrowth:
		return forecast.AverageGrowth{}
	case config.StrategyLinearTrend:
		return forecast.LinearTrend{}
	default:
		return forecast.TrendModel{}
	}
}
