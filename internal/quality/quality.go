// Package quality collects the data-quality events raised while a run
// merges, derives, extends and validates the panel. The report is carried
// through the pipeline and handed to output writers alongside the panel;
// nothing in here aborts a run.
package quality

import (
	"fmt"
	"sort"
	"sync"
)

// EventKind classifies a data-quality event.
type EventKind string

const (
	KindMissingData          EventKind = "missing_data"
	KindDuplicateResolved    EventKind = "duplicate_resolved"
	KindComputationSkipped   EventKind = "computation_skipped"
	KindStrategyFallback     EventKind = "strategy_fallback"
	KindExtrapolationFailure EventKind = "extrapolation_failure"
	KindRangeViolation       EventKind = "range_violation"
	KindGapDetected          EventKind = "gap_detected"
)

// Event is one recorded data-quality finding for a variable.
type Event struct {
	Kind     EventKind `json:"kind"`
	Variable string    `json:"variable"`
	Year     int       `json:"year,omitempty"`
	EndYear  int       `json:"end_year,omitempty"`
	Message  string    `json:"message"`
}

func (e Event) String() string {
	if e.Year != 0 && e.EndYear > e.Year {
		return fmt.Sprintf("[%s] %s %d-%d: %s", e.Kind, e.Variable, e.Year, e.EndYear, e.Message)
	}
	if e.Year != 0 {
		return fmt.Sprintf("[%s] %s %d: %s", e.Kind, e.Variable, e.Year, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Variable, e.Message)
}

// Report accumulates events for one run. It is safe for concurrent use so
// that parallel per-variable extrapolation can record fallbacks directly.
type Report struct {
	mu     sync.Mutex
	events []Event
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{}
}

// Add records an event.
func (r *Report) Add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of all recorded events in a deterministic order:
// by variable, then year, then kind, then insertion.
func (r *Report) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Variable != out[j].Variable {
			return out[i].Variable < out[j].Variable
		}
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// CountByKind returns the number of recorded events of one kind.
func (r *Report) CountByKind(kind EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// ByVariable returns all events recorded for one variable, in order.
func (r *Report) ByVariable(variable string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Variable == variable {
			out = append(out, e)
		}
	}
	return out
}

// Summary holds per-kind counters for serialization.
type Summary struct {
	Total  int               `json:"total"`
	ByKind map[EventKind]int `json:"by_kind"`
}

// Summarize builds the per-kind counters.
func (r *Report) Summarize() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Summary{Total: len(r.events), ByKind: make(map[EventKind]int)}
	for _, e := range r.events {
		s.ByKind[e.Kind]++
	}
	return s
}
