package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fernando-duarte/china-data-sub002/internal/config"
	"github.com/fernando-duarte/china-data-sub002/internal/dataset"
)

// CSVWriter writes the panel as one wide CSV: a year column followed by one
// column per variable.
type CSVWriter struct {
	catalog config.Catalog
	logger  *slog.Logger
}

// NewCSVWriter creates a CSV writer.
func NewCSVWriter(catalog config.Catalog, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{catalog: catalog, logger: logger}
}

// Write writes the panel to path. Missing observations become empty cells.
// A UTF-8 BOM is prefixed so Excel opens the file correctly.
func (w *CSVWriter) Write(path string, panel *dataset.Panel) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	variables := panel.Variables()
	header := make([]string, 0, len(variables)+1)
	header = append(header, "year")
	for _, variable := range variables {
		header = append(header, w.columnName(variable))
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, year := range panel.Years() {
		record := make([]string, 0, len(variables)+1)
		record = append(record, strconv.Itoa(year))
		for _, variable := range variables {
			if value, ok := panel.Value(variable, year); ok {
				record = append(record, strconv.FormatFloat(value, 'f', -1, 64))
			} else {
				record = append(record, "")
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write year %d: %w", year, err)
		}
	}

	w.logger.Info("panel csv written",
		slog.String("path", path),
		slog.Int("variables", len(variables)),
		slog.Int("years", len(panel.Years())),
	)
	return writer.Error()
}

func (w *CSVWriter) columnName(variable string) string {
	if spec, err := w.catalog.Spec(variable); err == nil && spec.Unit != "" {
		return fmt.Sprintf("%s (%s)", variable, spec.Unit)
	}
	return variable
}
