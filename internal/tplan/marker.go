package tplan

import (
	"regexp"
	"strings"
)

const (
	// DefaultProtocolTag is the tag inside phase markers: [T-PLAN PHASE=SCOUT].
	DefaultProtocolTag = "T-PLAN"

	// DefaultSessionPlaceholder is substituted in CONTRACT_OUTPUT paths.
	DefaultSessionPlaceholder = "${CLAUDE_SESSION_ID}"
)

// contractOutputRe matches CONTRACT_OUTPUT:<path>; the path runs to the next
// whitespace.
var contractOutputRe = regexp.MustCompile(`CONTRACT_OUTPUT:\s*(\S+)`)

// relativePrefixRe strips one leading "./" or ".".
var relativePrefixRe = regexp.MustCompile(`^\./?`)

// Markers recognizes the two fixed-syntax tokens embedded in dispatch text.
type Markers struct {
	phaseRe     *regexp.Regexp
	placeholder string
}

// NewMarkers builds the marker grammar for a protocol tag. Empty arguments
// fall back to the defaults.
func NewMarkers(tag, placeholder string) *Markers {
	if tag == "" {
		tag = DefaultProtocolTag
	}
	if placeholder == "" {
		placeholder = DefaultSessionPlaceholder
	}

	names := make([]string, 0, len(AllPhases()))
	for _, p := range AllPhases() {
		names = append(names, string(p))
	}
	pattern := `\[` + regexp.QuoteMeta(tag) + ` PHASE=(` + strings.Join(names, "|") + `)\]`

	return &Markers{
		phaseRe:     regexp.MustCompile(pattern),
		placeholder: placeholder,
	}
}

// DefaultMarkers returns the grammar for [T-PLAN PHASE=...].
func DefaultMarkers() *Markers {
	return NewMarkers("", "")
}

// DetectPhase returns the phase named by the first well-formed marker in text.
// Matching is exact: wrong case, a missing "=", or an unknown name never match.
func (m *Markers) DetectPhase(text string) (Phase, bool) {
	match := m.phaseRe.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	return Phase(match[1]), true
}

// ResolveContractOutputPath extracts the CONTRACT_OUTPUT path from prompt,
// substitutes the session placeholder and strips one relative prefix.
func (m *Markers) ResolveContractOutputPath(prompt, sessionID string) (string, bool) {
	match := contractOutputRe.FindStringSubmatch(prompt)
	if match == nil || match[1] == "" {
		return "", false
	}

	path := strings.ReplaceAll(match[1], m.placeholder, sessionID)
	path = relativePrefixRe.ReplaceAllString(path, "")
	if path == "" {
		return "", false
	}
	return path, true
}
