package tplan

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// versionPlaceholder marks where the zero-padded draft version goes.
const versionPlaceholder = "{version}"

// phaseContracts maps each contract-bearing phase to its artifact template.
var phaseContracts = map[Phase]string{
	PhaseExplore:  "explore.md",
	PhaseScout:    "scout.md",
	PhaseValidate: "validation-v" + versionPlaceholder + ".json",
}

// pathFields are the event fields that may name a project root, most
// specific first.
var pathFields = []string{"cwd", "project_root", "repo_root", "workspace_root"}

// ContractTemplate returns the artifact template for phase, or "" when the
// phase carries no contract.
func ContractTemplate(phase Phase) string {
	return phaseContracts[phase]
}

// ResolveContractFilename returns the artifact a subagent must write in phase.
// Versioned templates need draftVersion >= 1; it is padded to three digits.
func ResolveContractFilename(phase Phase, draftVersion int) (string, error) {
	template, ok := phaseContracts[phase]
	if !ok {
		return "", fmt.Errorf("%w: %s has no contract", ErrUnknownPhase, phase)
	}

	if !strings.Contains(template, versionPlaceholder) {
		return template, nil
	}

	if draftVersion < 1 {
		return "", fmt.Errorf("%w: state.draft_version must be >= 1 for %s", ErrContractUnfulfilled, phase)
	}

	return strings.Replace(template, versionPlaceholder, fmt.Sprintf("%03d", draftVersion), 1), nil
}

// ValidateDraftVersion checks that the version recorded in an artifact equals
// the session's. Numbers and decimal strings are both accepted.
func ValidateDraftVersion(fileValue, stateValue any) error {
	fileDraft, fileOK := coerceInt(fileValue)
	stateDraft, stateOK := coerceInt(stateValue)

	if !fileOK || !stateOK {
		return fmt.Errorf("%w: draft_version must be an integer (got %s vs %s)",
			ErrContractUnfulfilled, displayValue(fileValue), displayValue(stateValue))
	}

	if fileDraft != stateDraft {
		return fmt.Errorf("%w: validation draft_version (%d) != state (%d)",
			ErrContractUnfulfilled, fileDraft, stateDraft)
	}

	return nil
}

// ValidateValidationJSON checks the decoded VALIDATE artifact: a JSON object
// whose draft_version matches expectedDraft and which carries a status key.
// Extra keys are ignored.
func ValidateValidationJSON(content any, expectedDraft int) error {
	obj, ok := content.(map[string]any)
	if !ok || obj == nil {
		return fmt.Errorf("%w: validation must be a JSON object", ErrContractUnfulfilled)
	}

	if err := ValidateDraftVersion(obj["draft_version"], expectedDraft); err != nil {
		return err
	}

	if _, ok := obj["status"]; !ok {
		return fmt.Errorf("%w: validation JSON missing required field 'status'", ErrContractUnfulfilled)
	}

	return nil
}

// BuildPathCandidates lists directories worth searching for a session record:
// string-valued path fields of the event in priority order, then fallback.
func BuildPathCandidates(fields map[string]any, fallback string) []string {
	candidates := make([]string, 0, len(pathFields)+1)
	for _, key := range pathFields {
		if value, ok := fields[key].(string); ok && value != "" {
			candidates = append(candidates, value)
		}
	}
	return append(candidates, fallback)
}

// BuildPathCandidatesFromCwd is BuildPathCandidates with the process working
// directory as the fallback.
func BuildPathCandidatesFromCwd(fields map[string]any) []string {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return BuildPathCandidates(fields, cwd)
}

func coerceInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := strconv.Atoi(n.String())
		return i, err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	default:
		return 0, false
	}
}

func displayValue(v any) string {
	if v == nil {
		return "null"
	}
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return fmt.Sprint(v)
}
