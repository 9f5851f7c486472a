package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/fernando-duarte/china-data-sub002/internal/config"
	"github.com/fernando-duarte/china-data-sub002/internal/dataset"
	"github.com/fernando-duarte/china-data-sub002/internal/quality"
)

const (
	sheetPanel   = "Panel"
	sheetQuality = "Quality"
)

// XLSXWriter writes the panel and quality report as one workbook with a
// data sheet and a quality sheet.
type XLSXWriter struct {
	catalog config.Catalog
	logger  *slog.Logger
}

// NewXLSXWriter creates an XLSX writer.
func NewXLSXWriter(catalog config.Catalog, logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{catalog: catalog, logger: logger}
}

// Write writes the workbook to path.
func (w *XLSXWriter) Write(path string, panel *dataset.Panel, report *quality.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	book := excelize.NewFile()
	defer book.Close()

	book.SetSheetName(book.GetSheetName(0), sheetPanel)
	if err := w.writePanelSheet(book, panel); err != nil {
		return err
	}
	if err := w.writeQualitySheet(book, report); err != nil {
		return err
	}

	if err := book.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	w.logger.Info("panel workbook written",
		slog.String("path", path),
		slog.Int("variables", len(panel.Variables())),
	)
	return nil
}

func (w *XLSXWriter) writePanelSheet(book *excelize.File, panel *dataset.Panel) error {
	stream, err := book.NewStreamWriter(sheetPanel)
	if err != nil {
		return fmt.Errorf("open panel stream: %w", err)
	}

	variables := panel.Variables()
	header := make([]interface{}, 0, len(variables)+1)
	header = append(header, "year")
	for _, variable := range variables {
		name := variable
		if spec, specErr := w.catalog.Spec(variable); specErr == nil && spec.Unit != "" {
			name = fmt.Sprintf("%s (%s)", variable, spec.Unit)
		}
		header = append(header, name)
	}
	if err := stream.SetRow("A1", header); err != nil {
		return fmt.Errorf("write panel header: %w", err)
	}

	for i, year := range panel.Years() {
		row := make([]interface{}, 0, len(variables)+1)
		row = append(row, year)
		for _, variable := range variables {
			if value, ok := panel.Value(variable, year); ok {
				row = append(row, value)
			} else {
				row = append(row, nil)
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := stream.SetRow(cell, row); err != nil {
			return fmt.Errorf("write panel year %d: %w", year, err)
		}
	}
	return stream.Flush()
}

func (w *XLSXWriter) writeQualitySheet(book *excelize.File, report *quality.Report) error {
	if _, err := book.NewSheet(sheetQuality); err != nil {
		return fmt.Errorf("create quality sheet: %w", err)
	}
	stream, err := book.NewStreamWriter(sheetQuality)
	if err != nil {
		return fmt.Errorf("open quality stream: %w", err)
	}
	if err := stream.SetRow("A1", []interface{}{"kind", "variable", "year", "end_year", "message"}); err != nil {
		return fmt.Errorf("write quality header: %w", err)
	}
	for i, event := range report.Events() {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{string(event.Kind), event.Variable, event.Year, event.EndYear, event.Message}
		if err := stream.SetRow(cell, row); err != nil {
			return fmt.Errorf("write quality row %d: %w", i, err)
		}
	}
	return stream.Flush()
}
