package merge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fernando-duarte/china-data-sub002/internal/config"
	"github.com/fernando-duarte/china-data-sub002/internal/quality"
	"github.com/fernando-duarte/china-data-sub002/internal/sources"
)

func testParams() config.Parameters {
	return config.Parameters{Alpha: 1.0 / 3.0, Kappa: 3.0, BaseYear: 2021, StartYear: 2020, EndYear: 2025}
}

func TestMergeUnitConversion(t *testing.T) {
	catalog := config.DefaultCatalog()
	params := testParams()

	t.Run("applies the factor exactly once", func(t *testing.T) {
		table := sources.NewTable("worldbank")
		table.Add(config.VarGDP, 2020, 100e9) // raw current USD

		m := NewMerger(catalog, PolicyStrict, nil)
		panel, err := m.Merge(context.Background(), params, []*sources.Table{table}, quality.NewReport())
		require.NoError(t, err)

		value, ok := panel.Value(config.VarGDP, 2020)
		require.True(t, ok)
		assert.InDelta(t, 100.0, value, 1e-9) // stored in billions
	})

	t.Run("unknown variable fails without dropping the rest", func(t *testing.T) {
		table := sources.NewTable("worldbank")
		table.Add(config.VarGDP, 2020, 100e9)
		table.Add("mystery_series", 2020, 1.0)

		m := NewMerger(catalog, PolicyStrict, nil)
		panel, err := m.Merge(context.Background(), params, []*sources.Table{table}, quality.NewReport())
		assert.ErrorIs(t, err, ErrUnitConversion)

		_, ok := panel.Lookup("mystery_series")
		assert.False(t, ok)
		_, ok = panel.Value(config.VarGDP, 2020)
		assert.True(t, ok, "surviving variables stay in the panel")
	})

	t.Run("years outside the domain are dropped", func(t *testing.T) {
		table := sources.NewTable("worldbank")
		table.Add(config.VarGDP, 1960, 5e9)
		table.Add(config.VarGDP, 2020, 100e9)

		m := NewMerger(catalog, PolicyStrict, nil)
		panel, err := m.Merge(context.Background(), params, []*sources.Table{table}, quality.NewReport())
		require.NoError(t, err)

		_, ok := panel.Value(config.VarGDP, 1960)
		assert.False(t, ok)
	})
}

func TestMergeDuplicates(t *testing.T) {
	catalog := config.DefaultCatalog()
	params := testParams()

	first := sources.NewTable("worldbank")
	first.Add(config.VarGDP, 2020, 100e9)
	second := sources.NewTable("pwt")
	second.Add(config.VarGDP, 2020, 200e9)
	tables := []*sources.Table{first, second}

	t.Run("strict policy rejects the conflict", func(t *testing.T) {
		m := NewMerger(catalog, PolicyStrict, nil)
		panel, err := m.Merge(context.Background(), params, tables, quality.NewReport())
		assert.ErrorIs(t, err, ErrDuplicateObservation)

		_, ok := panel.Lookup(config.VarGDP)
		assert.False(t, ok, "conflicting variable is dropped under strict policy")
	})

	t.Run("prefer-first keeps the earlier source", func(t *testing.T) {
		report := quality.NewReport()
		m := NewMerger(catalog, PolicyPreferFirst, nil)
		panel, err := m.Merge(context.Background(), params, tables, report)
		require.NoError(t, err)

		value, ok := panel.Value(config.VarGDP, 2020)
		require.True(t, ok)
		assert.InDelta(t, 100.0, value, 1e-9)
		assert.Equal(t, 1, report.CountByKind(quality.KindDuplicateResolved))
	})

	t.Run("prefer-last keeps the later source", func(t *testing.T) {
		report := quality.NewReport()
		m := NewMerger(catalog, PolicyPreferLast, nil)
		panel, err := m.Merge(context.Background(), params, tables, report)
		require.NoError(t, err)

		value, ok := panel.Value(config.VarGDP, 2020)
		require.True(t, ok)
		assert.InDelta(t, 200.0, value, 1e-9)
		assert.Equal(t, 1, report.CountByKind(quality.KindDuplicateResolved))
	})

	t.Run("agreeing duplicates are not conflicts", func(t *testing.T) {
		a := sources.NewTable("worldbank")
		a.Add(config.VarGDP, 2020, 100e9)
		b := sources.NewTable("mirror")
		b.Add(config.VarGDP, 2020, 100e9*(1+1e-12))

		report := quality.NewReport()
		m := NewMerger(catalog, PolicyStrict, nil)
		_, err := m.Merge(context.Background(), params, []*sources.Table{a, b}, report)
		require.NoError(t, err)
		assert.Equal(t, 0, report.CountByKind(quality.KindDuplicateResolved))
	})
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	catalog := config.DefaultCatalog()
	table := sources.NewTable("worldbank")
	table.Add(config.VarGDP, 2020, 100e9)

	m := NewMerger(catalog, PolicyStrict, nil)
	_, err := m.Merge(context.Background(), testParams(), []*sources.Table{table}, quality.NewReport())
	require.NoError(t, err)

	raw, ok := table.Value(config.VarGDP, 2020)
	require.True(t, ok)
	assert.Equal(t, 100e9, raw, "merger must not write converted values back into the source table")
}
