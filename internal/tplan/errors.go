package tplan

import "errors"

// Sentinel errors for the tplan package. Callers match with errors.Is; the
// contract sentinel doubles as the message prefix host tooling keys off.
var (
	// ErrContractUnfulfilled prefixes every reason a subagent may not stop.
	ErrContractUnfulfilled = errors.New("CONTRACT UNFULFILLED")

	// ErrUnknownPhase is returned when a phase name is outside the closed set.
	ErrUnknownPhase = errors.New("unknown phase")
)
