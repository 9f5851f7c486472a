package sources

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestTable(t *testing.T) {
	table := NewTable("worldbank")
	table.Add("gdp", 2021, 105e9)
	table.Add("gdp", 2020, 100e9)
	table.Add("exports", 2020, 20e9)

	assert.Equal(t, []string{"exports", "gdp"}, table.Variables())
	assert.Equal(t, []int{2020, 2021}, table.Years("gdp"))
	assert.Equal(t, 3, table.Len())

	value, ok := table.Value("gdp", 2020)
	require.True(t, ok)
	assert.Equal(t, 100e9, value)

	_, ok = table.Value("gdp", 2019)
	assert.False(t, ok, "an absent year has no observation")
}

func TestLoadWorldBankCSV(t *testing.T) {
	content := "" +
		"\uFEFF\"Data Source\",\"World Development Indicators\"\n" +
		"\"Last Updated Date\",\"2024-12-16\"\n" +
		"\n" +
		"\"Country Name\",\"Country Code\",\"Indicator Name\",\"Indicator Code\",\"2020\",\"2021\",\"2022\"\n" +
		"\"China\",\"CHN\",\"GDP (current US$)\",\"NY.GDP.MKTP.CD\",\"14687744162801.1\",\"17820459508452.9\",\"\"\n" +
		"\"China\",\"CHN\",\"Population, total\",\"SP.POP.TOTL\",\"1411100000\",\"1412360000\",\"1412175000\"\n" +
		"\"China\",\"CHN\",\"Armed forces personnel\",\"MS.MIL.TOTL.P1\",\"2695000\",\"2695000\",\"2695000\"\n" +
		"\"India\",\"IND\",\"GDP (current US$)\",\"NY.GDP.MKTP.CD\",\"2674852615566.5\",\"3167271160388.8\",\"3353470168930.7\"\n"

	path := filepath.Join(t.TempDir(), "worldbank_china.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := LoadWorldBankCSV(context.Background(), path, "CHN", nil)
	require.NoError(t, err)

	t.Run("maps indicator codes to variables", func(t *testing.T) {
		value, ok := table.Value("gdp", 2020)
		require.True(t, ok)
		assert.InDelta(t, 14687744162801.1, value, 1)

		value, ok = table.Value("population", 2022)
		require.True(t, ok)
		assert.Equal(t, 1412175000.0, value)
	})

	t.Run("empty cells are absences", func(t *testing.T) {
		_, ok := table.Value("gdp", 2022)
		assert.False(t, ok)
	})

	t.Run("unmapped indicators are skipped", func(t *testing.T) {
		assert.NotContains(t, table.Variables(), "MS.MIL.TOTL.P1")
	})

	t.Run("other countries are filtered out", func(t *testing.T) {
		value, ok := table.Value("gdp", 2021)
		require.True(t, ok)
		assert.InDelta(t, 17820459508452.9, value, 1, "must hold the CHN row, not IND")
	})
}

func TestLoadWorldBankCSVMissingHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\nc,d\n"), 0o644))

	_, err := LoadWorldBankCSV(context.Background(), path, "CHN", nil)
	assert.Error(t, err)
}

func TestLoadWorldBankCSVHeaderFirst(t *testing.T) {
	// Some exports carry no metadata preamble, so the encoding BOM lands
	// on the header row itself and must not defeat header detection.
	content := "" +
		"\uFEFF\"Country Name\",\"Country Code\",\"Indicator Name\",\"Indicator Code\",\"2020\",\"2021\"\n" +
		"\"China\",\"CHN\",\"GDP (current US$)\",\"NY.GDP.MKTP.CD\",\"14687744162801.1\",\"17820459508452.9\"\n"

	path := filepath.Join(t.TempDir(), "worldbank_china.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := LoadWorldBankCSV(context.Background(), path, "CHN", nil)
	require.NoError(t, err)

	value, ok := table.Value("gdp", 2021)
	require.True(t, ok)
	assert.InDelta(t, 17820459508452.9, value, 1)
}

func TestLoadPWTWorkbook(t *testing.T) {
	book := excelize.NewFile()
	sheet := "Data"
	_, err := book.NewSheet(sheet)
	require.NoError(t, err)

	rows := [][]interface{}{
		{"countrycode", "country", "year", "hc", "rkna", "pl_gdpo", "pop"},
		{"CHN", "China", 2020, 2.56, 5.215, 0.572, 1411.1},
		{"CHN", "China", 2021, 2.58, 5.502, 0.601, 1412.4},
		{"CHN", "China", 2022, "", 5.760, 0.615, 1412.2}, // hc not yet released
		{"USA", "United States", 2020, 3.75, 1.180, 1.0, 331.5},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, book.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "pwt.xlsx")
	require.NoError(t, book.SaveAs(path))
	require.NoError(t, book.Close())

	table, err := LoadPWTWorkbook(context.Background(), path, "CHN", nil)
	require.NoError(t, err)

	t.Run("maps pwt columns to variables", func(t *testing.T) {
		value, ok := table.Value("human_capital", 2020)
		require.True(t, ok)
		assert.InDelta(t, 2.56, value, 1e-9)

		value, ok = table.Value("capital_index", 2022)
		require.True(t, ok)
		assert.InDelta(t, 5.760, value, 1e-9)

		value, ok = table.Value("price_level", 2021)
		require.True(t, ok)
		assert.InDelta(t, 0.601, value, 1e-9)
	})

	t.Run("blank cells are absences", func(t *testing.T) {
		_, ok := table.Value("human_capital", 2022)
		assert.False(t, ok)
	})

	t.Run("unmapped columns are skipped", func(t *testing.T) {
		assert.NotContains(t, table.Variables(), "pop")
	})

	t.Run("other countries are filtered out", func(t *testing.T) {
		_, ok := table.Value("human_capital", 2020)
		require.True(t, ok)
		assert.Equal(t, 3, len(table.Years("capital_index")), "only the three CHN rows")
	})
}

func TestLoadPWTWorkbookMissingSheet(t *testing.T) {
	book := excelize.NewFile()
	path := filepath.Join(t.TempDir(), "pwt.xlsx")
	require.NoError(t, book.SaveAs(path))
	require.NoError(t, book.Close())

	_, err := LoadPWTWorkbook(context.Background(), path, "CHN", nil)
	assert.Error(t, err)
}
