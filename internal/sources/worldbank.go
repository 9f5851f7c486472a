package sources

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// SourceWorldBank names the WDI snapshot in merge provenance and events.
const SourceWorldBank = "worldbank"

// worldBankIndicators maps WDI indicator codes to canonical variable
// names. Codes absent from the map are skipped, so a full country export
// can be dropped into the data directory unedited.
var worldBankIndicators = map[string]string{
	"NY.GDP.MKTP.CD": "gdp",
	"NE.CON.PRVT.CD": "consumption",
	"NE.CON.GOVT.CD": "government",
	"NE.EXP.GNFS.CD": "exports",
	"NE.IMP.GNFS.CD": "imports",
	"GC.TAX.TOTL.CD": "tax_revenue",
	"SP.POP.TOTL":    "population",
	"SL.TLF.TOTL.IN": "labor_force",
}

// LoadWorldBankCSV reads a WDI country export in the wide year-column
// layout: Country Name, Country Code, Indicator Name, Indicator Code, then
// one column per year. Empty cells are genuine absences and produce no
// observation.
func LoadWorldBankCSV(ctx context.Context, path, countryCode string, logger *slog.Logger) (*Table, error) {
	if logger == nil {
		logger = slog.Default()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open world bank snapshot: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // WDI exports pad metadata rows unevenly

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read world bank snapshot: %w", err)
	}

	headerIdx, years, err := findWorldBankHeader(rows)
	if err != nil {
		return nil, err
	}

	table := NewTable(SourceWorldBank)
	for _, row := range rows[headerIdx+1:] {
		if len(row) < 4 || !strings.EqualFold(row[1], countryCode) {
			continue
		}
		variable, ok := worldBankIndicators[strings.TrimSpace(row[3])]
		if !ok {
			continue
		}
		for col, year := range years {
			if col >= len(row) {
				break
			}
			cell := strings.TrimSpace(row[col])
			if cell == "" || year == 0 {
				continue
			}
			value, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				logger.WarnContext(ctx, "unparseable world bank cell",
					"variable", variable,
					"year", year,
					"cell", cell,
				)
				continue
			}
			table.Add(variable, year, value)
		}
	}

	logger.InfoContext(ctx, "world bank snapshot loaded",
		"path", path,
		"country", countryCode,
		"observations", table.Len(),
	)
	return table, nil
}

// findWorldBankHeader locates the header row (exports often lead with
// metadata lines) and maps each column index to its year.
func findWorldBankHeader(rows [][]string) (int, map[int]int, error) {
	for i, row := range rows {
		if len(row) >= 5 && strings.TrimSpace(strings.TrimPrefix(row[0], "\uFEFF")) == "Country Name" {
			years := make(map[int]int)
			for col := 4; col < len(row); col++ {
				year, err := strconv.Atoi(strings.TrimSpace(row[col]))
				if err == nil {
					years[col] = year
				}
			}
			return i, years, nil
		}
	}
	return 0, nil, fmt.Errorf("world bank snapshot: header row not found")
}
