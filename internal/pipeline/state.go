package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Phase is one step of the run state machine. Transitions are strictly
// forward; a run that fails keeps the phase it failed in.
type Phase string

const (
	PhasePending              Phase = "pending"
	PhaseMergeComplete        Phase = "merge_complete"
	PhaseHistoricalIdentities Phase = "historical_identities_computed"
	PhaseExtrapolating        Phase = "extrapolating"
	PhaseIdentitiesRecomputed Phase = "identities_recomputed"
	PhaseValidated            Phase = "validated"
)

// phaseOrder defines the only legal transition sequence.
var phaseOrder = map[Phase]Phase{
	PhasePending:              PhaseMergeComplete,
	PhaseMergeComplete:        PhaseHistoricalIdentities,
	PhaseHistoricalIdentities: PhaseExtrapolating,
	PhaseExtrapolating:        PhaseIdentitiesRecomputed,
	PhaseIdentitiesRecomputed: PhaseValidated,
}

// RunState tracks the lifecycle of one pipeline run.
type RunState struct {
	mu sync.RWMutex

	ID        string     `json:"id"`
	Phase     Phase      `json:"phase"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Err       error      `json:"error,omitempty"`
}

// NewRunState creates a pending run state with a fresh run ID.
func NewRunState() *RunState {
	return &RunState{
		ID:        uuid.NewString(),
		Phase:     PhasePending,
		StartTime: time.Now(),
	}
}

// Advance moves the run to the next phase, enforcing the forward-only
// transition order.
func (s *RunState) Advance(next Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if phaseOrder[s.Phase] != next {
		return fmt.Errorf("pipeline: illegal transition %s -> %s", s.Phase, next)
	}
	s.Phase = next
	if next == PhaseValidated {
		now := time.Now()
		s.EndTime = &now
	}
	return nil
}

// Fail records the error that stopped the run in its current phase.
func (s *RunState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Err = err
}

// Current returns the phase the run is in.
func (s *RunState) Current() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Phase
}

// Duration returns how long the run has been going, or took in total.
func (s *RunState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return time.Since(s.StartTime)
}
