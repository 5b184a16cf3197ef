// Package tplan implements the phase-contract protocol used by the multi-phase
// task coordinator: the closed phase sequence, the session record, the marker
// grammar embedded in dispatch text, and the per-phase contract rules.
package tplan

import (
	"fmt"
	"time"
)

// Phase is one stage of the task protocol.
type Phase string

const (
	PhaseIntent   Phase = "INTENT"
	PhaseExplore  Phase = "EXPLORE"
	PhaseScout    Phase = "SCOUT"
	PhaseValidate Phase = "VALIDATE"
)

// SchemaVersion is the record shape written by this package. Version 2 dropped
// the separate validation counter; VALIDATE artifacts derive from DraftVersion.
const SchemaVersion = 2

// TimestampLayout matches ISO-8601 with millisecond precision in UTC.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// AllPhases returns the phases in protocol order.
func AllPhases() []Phase {
	return []Phase{PhaseIntent, PhaseExplore, PhaseScout, PhaseValidate}
}

// ParsePhase returns the phase with the exact (case-sensitive) name.
func ParsePhase(name string) (Phase, error) {
	for _, p := range AllPhases() {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPhase, name)
}

// IsValid reports whether p is in the closed phase set.
func (p Phase) IsValid() bool {
	_, err := ParsePhase(string(p))
	return err == nil
}

// HasContract reports whether a subagent finishing in this phase must leave
// an artifact behind. INTENT is captured by the orchestrator itself.
func (p Phase) HasContract() bool {
	_, ok := phaseContracts[p]
	return ok
}

// State is the on-disk session record (<root>/<marker>/<session>/state.json).
type State struct {
	SchemaVersion int    `json:"schema_version" yaml:"schema_version"`
	SessionID     string `json:"session_id" yaml:"session_id"`
	Phase         Phase  `json:"phase" yaml:"phase"`
	DraftVersion  int    `json:"draft_version" yaml:"draft_version"`
	CreatedAt     string `json:"created_at" yaml:"created_at"`
	UpdatedAt     string `json:"updated_at" yaml:"updated_at"`
}

// Timestamp formats t the way records store it.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// NewState returns the record written when a session starts.
func NewState(sessionID string, now time.Time) *State {
	ts := Timestamp(now)
	return &State{
		SchemaVersion: SchemaVersion,
		SessionID:     sessionID,
		Phase:         PhaseIntent,
		DraftVersion:  0,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
}

// WithPhase returns a copy of s moved to phase. Backward moves are allowed so
// an orchestrator can re-explore after a failed validation.
func (s State) WithPhase(phase Phase, now time.Time) *State {
	s.Phase = phase
	s.UpdatedAt = Timestamp(now)
	return &s
}

// WithNextDraft returns a copy of s with DraftVersion incremented by one.
func (s State) WithNextDraft(now time.Time) *State {
	s.DraftVersion++
	s.UpdatedAt = Timestamp(now)
	return &s
}
