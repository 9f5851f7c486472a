package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fernando-duarte/china-data-sub002/internal/config"
	"github.com/fernando-duarte/china-data-sub002/internal/dataset"
	"github.com/fernando-duarte/china-data-sub002/internal/quality"
)

// MarkdownWriter writes a human-readable run summary: coverage per
// variable plus the quality event counters.
type MarkdownWriter struct {
	catalog config.Catalog
	logger  *slog.Logger
}

// NewMarkdownWriter creates a Markdown writer.
func NewMarkdownWriter(catalog config.Catalog, logger *slog.Logger) *MarkdownWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &MarkdownWriter{catalog: catalog, logger: logger}
}

// Write writes the summary to path.
func (w *MarkdownWriter) Write(path string, panel *dataset.Panel, report *quality.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# China data panel %d-%d\n\n", panel.StartYear, panel.EndYear)

	b.WriteString("## Coverage\n\n")
	b.WriteString("| Variable | Unit | Kind | Years present | First | Last |\n")
	b.WriteString("|---|---|---|---:|---:|---:|\n")
	for _, variable := range panel.Variables() {
		series, _ := panel.Lookup(variable)
		years := series.PresentYears()
		unit, kind := "", ""
		if spec, err := w.catalog.Spec(variable); err == nil {
			unit, kind = spec.Unit, string(spec.Kind)
		}
		first, last := "-", "-"
		if len(years) > 0 {
			first = fmt.Sprintf("%d", years[0])
			last = fmt.Sprintf("%d", years[len(years)-1])
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %s | %s |\n", variable, unit, kind, len(years), first, last)
	}

	summary := report.Summarize()
	b.WriteString("\n## Quality events\n\n")
	if summary.Total == 0 {
		b.WriteString("No data-quality events recorded.\n")
	} else {
		b.WriteString("| Kind | Count |\n|---|---:|\n")
		for _, kind := range []quality.EventKind{
			quality.KindMissingData,
			quality.KindDuplicateResolved,
			quality.KindComputationSkipped,
			quality.KindStrategyFallback,
			quality.KindExtrapolationFailure,
			quality.KindRangeViolation,
			quality.KindGapDetected,
		} {
			if n := summary.ByKind[kind]; n > 0 {
				fmt.Fprintf(&b, "| %s | %d |\n", kind, n)
			}
		}
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write markdown summary: %w", err)
	}
	w.logger.Info("markdown summary written", slog.String("path", path))
	return nil
}
