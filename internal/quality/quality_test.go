package quality

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportOrdering(t *testing.T) {
	report := NewReport()
	report.Add(Event{Kind: KindGapDetected, Variable: "tfp", Year: 2024})
	report.Add(Event{Kind: KindStrategyFallback, Variable: "gdp", Year: 2024})
	report.Add(Event{Kind: KindExtrapolationFailure, Variable: "gdp", Year: 2025})

	events := report.Events()
	require.Len(t, events, 3)
	assert.Equal(t, "gdp", events[0].Variable)
	assert.Equal(t, 2024, events[0].Year)
	assert.Equal(t, 2025, events[1].Year)
	assert.Equal(t, "tfp", events[2].Variable)
}

func TestReportCounters(t *testing.T) {
	report := NewReport()
	report.Add(Event{Kind: KindExtrapolationFailure, Variable: "tax_revenue", Year: 2024})
	report.Add(Event{Kind: KindExtrapolationFailure, Variable: "tax_revenue", Year: 2025})
	report.Add(Event{Kind: KindRangeViolation, Variable: "population", Year: 2020})

	assert.Equal(t, 2, report.CountByKind(KindExtrapolationFailure))
	assert.Equal(t, 1, report.CountByKind(KindRangeViolation))
	assert.Zero(t, report.CountByKind(KindGapDetected))

	summary := report.Summarize()
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.ByKind[KindExtrapolationFailure])
}

func TestReportConcurrentAdd(t *testing.T) {
	report := NewReport()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(year int) {
			defer wg.Done()
			report.Add(Event{Kind: KindStrategyFallback, Variable: "gdp", Year: year})
		}(2020 + i)
	}
	wg.Wait()

	assert.Equal(t, 8, report.CountByKind(KindStrategyFallback))
}

func TestEventString(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{
			"single year",
			Event{Kind: KindRangeViolation, Variable: "population", Year: 2020, Message: "negative"},
			"[range_violation] population 2020: negative",
		},
		{
			"year span",
			Event{Kind: KindGapDetected, Variable: "gdp", Year: 2022, EndYear: 2023, Message: "no value"},
			"[gap_detected] gdp 2022-2023: no value",
		},
		{
			"no year",
			Event{Kind: KindDuplicateResolved, Variable: "gdp", Message: "kept first"},
			"[duplicate_resolved] gdp: kept first",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.String())
		})
	}
}
