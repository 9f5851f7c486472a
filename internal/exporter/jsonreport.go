package exporter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fernando-duarte/china-data-sub002/internal/quality"
)

// qualityDocument is the serialized shape of the quality report.
type qualityDocument struct {
	Summary quality.Summary `json:"summary"`
	Events  []quality.Event `json:"events"`
}

// WriteQualityJSON writes the structured quality report to path for
// machine consumers.
func WriteQualityJSON(path string, report *quality.Report, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	doc := qualityDocument{Summary: report.Summarize(), Events: report.Events()}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal quality report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write quality report: %w", err)
	}
	logger.Info("quality report written",
		slog.String("path", path),
		slog.Int("events", doc.Summary.Total),
	)
	return nil
}
