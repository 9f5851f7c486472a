package exporter

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fernando-duarte/china-data-sub002/internal/config"
	"github.com/fernando-duarte/china-data-sub002/internal/dataset"
	"github.com/fernando-duarte/china-data-sub002/internal/quality"
)

func testPanel(t *testing.T) *dataset.Panel {
	t.Helper()
	panel := dataset.NewPanel(2020, 2022)
	require.NoError(t, panel.Series(config.VarGDP).Set(2020, 100))
	require.NoError(t, panel.Series(config.VarGDP).Set(2021, 105))
	require.NoError(t, panel.Series(config.VarGDP).Set(2022, 110.5))
	require.NoError(t, panel.Series(config.VarSavingRate).Set(2020, 0.3))
	return panel
}

func testReport() *quality.Report {
	report := quality.NewReport()
	report.Add(quality.Event{Kind: quality.KindStrategyFallback, Variable: config.VarGDP, Year: 2021, Message: "trend-model failed"})
	return report
}

func TestCSVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.csv")
	writer := NewCSVWriter(config.DefaultCatalog(), nil)
	require.NoError(t, writer.Write(path, testPanel(t)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	t.Run("BOM prefix for excel", func(t *testing.T) {
		assert.True(t, strings.HasPrefix(string(data), "\xef\xbb\xbf"))
	})

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(data), "\xef\xbb\xbf"))).ReadAll()
	require.NoError(t, err)

	t.Run("header carries units", func(t *testing.T) {
		assert.Equal(t, []string{"year", "gdp (bn USD)", "saving_rate (ratio)"}, records[0])
	})

	t.Run("one row per domain year", func(t *testing.T) {
		require.Len(t, records, 4) // header + 2020..2022
		assert.Equal(t, "2020", records[1][0])
		assert.Equal(t, "100", records[1][1])
		assert.Equal(t, "110.5", records[3][1])
	})

	t.Run("missing cells stay empty", func(t *testing.T) {
		assert.Equal(t, "", records[2][2], "saving_rate 2021 is missing")
	})
}

func TestXLSXWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.xlsx")
	writer := NewXLSXWriter(config.DefaultCatalog(), nil)
	require.NoError(t, writer.Write(path, testPanel(t), testReport()))

	book, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer book.Close()

	t.Run("panel sheet", func(t *testing.T) {
		rows, err := book.GetRows("Panel")
		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, "year", rows[0][0])
		assert.Equal(t, "2020", rows[1][0])
		assert.Equal(t, "100", rows[1][1])
	})

	t.Run("quality sheet", func(t *testing.T) {
		rows, err := book.GetRows("Quality")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "strategy_fallback", rows[1][0])
		assert.Equal(t, "gdp", rows[1][1])
	})
}

func TestMarkdownWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.md")
	writer := NewMarkdownWriter(config.DefaultCatalog(), nil)
	require.NoError(t, writer.Write(path, testPanel(t), testReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "# China data panel 2020-2022")
	assert.Contains(t, content, "| gdp | bn USD | primitive | 3 | 2020 | 2022 |")
	assert.Contains(t, content, "| strategy_fallback | 1 |")
}

func TestWriteQualityJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quality.json")
	require.NoError(t, WriteQualityJSON(path, testReport(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		Summary quality.Summary `json:"summary"`
		Events  []quality.Event `json:"events"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 1, doc.Summary.Total)
	require.Len(t, doc.Events, 1)
	assert.Equal(t, quality.KindStrategyFallback, doc.Events[0].Kind)
	assert.Equal(t, config.VarGDP, doc.Events[0].Variable)
}
