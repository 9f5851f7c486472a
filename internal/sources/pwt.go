package sources

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SourcePWT names the Penn World Table snapshot in merge provenance.
const SourcePWT = "pwt"

// pwtSheet is the data sheet of the released PWT workbook.
const pwtSheet = "Data"

// pwtColumns maps PWT column headers to canonical variable names.
var pwtColumns = map[string]string{
	"hc":      "human_capital",
	"rkna":    "capital_index",
	"pl_gdpo": "price_level",
}

// LoadPWTWorkbook reads the Penn World Table workbook and extracts the
// capital index, price level and human capital columns for one country.
// Blank cells (early years of hc, for example) are genuine absences.
func LoadPWTWorkbook(ctx context.Context, path, countryCode string, logger *slog.Logger) (*Table, error) {
	if logger == nil {
		logger = slog.Default()
	}

	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open pwt workbook: %w", err)
	}
	defer book.Close()

	rows, err := book.GetRows(pwtSheet)
	if err != nil {
		return nil, fmt.Errorf("read pwt sheet %q: %w", pwtSheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("pwt sheet %q has no data rows", pwtSheet)
	}

	countryCol, yearCol, varCols, err := mapPWTColumns(rows[0])
	if err != nil {
		return nil, err
	}

	table := NewTable(SourcePWT)
	for _, row := range rows[1:] {
		if countryCol >= len(row) || !strings.EqualFold(row[countryCol], countryCode) {
			continue
		}
		if yearCol >= len(row) {
			continue
		}
		year, err := strconv.Atoi(strings.TrimSpace(row[yearCol]))
		if err != nil {
			continue
		}
		for col, variable := range varCols {
			if col >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[col])
			if cell == "" {
				continue
			}
			value, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				logger.WarnContext(ctx, "unparseable pwt cell",
					"variable", variable,
					"year", year,
					"cell", cell,
				)
				continue
			}
			table.Add(variable, year, value)
		}
	}

	logger.InfoContext(ctx, "pwt snapshot loaded",
		"path", path,
		"country", countryCode,
		"observations", table.Len(),
	)
	return table, nil
}

// mapPWTColumns resolves the countrycode and year columns plus every
// catalog-relevant data column from the header row.
func mapPWTColumns(header []string) (countryCol, yearCol int, varCols map[int]string, err error) {
	countryCol, yearCol = -1, -1
	varCols = make(map[int]string)
	for col, name := range header {
		switch key := strings.ToLower(strings.TrimSpace(name)); key {
		case "countrycode":
			countryCol = col
		case "year":
			yearCol = col
		default:
			if variable, ok := pwtColumns[key]; ok {
				varCols[col] = variable
			}
		}
	}
	if countryCol < 0 || yearCol < 0 {
		return 0, 0, nil, fmt.Errorf("pwt sheet %q: countrycode or year column not found", pwtSheet)
	}
	if len(varCols) == 0 {
		return 0, 0, nil, fmt.Errorf("pwt sheet %q: no known data columns found", pwtSheet)
	}
	return countryCol, yearCol, varCols, nil
}
