package hooks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// maxInputBytes caps stdin reads. Event payloads are small JSON objects.
const maxInputBytes = 1 << 20

// ErrEmptyInput is returned when the host sent nothing on stdin.
var ErrEmptyInput = errors.New("empty hook input")

// Input is the event payload delivered by the host on stdin.
type Input struct {
	SessionID     string         `json:"session_id"`
	Cwd           string         `json:"cwd"`
	ToolName      string         `json:"tool_name"`
	HookEventName string         `json:"hook_event_name"`
	ToolInput     map[string]any `json:"tool_input"`

	// Raw keeps every field, including the optional path fields some host
	// versions add (project_root, repo_root, workspace_root).
	Raw map[string]any `json:"-"`
}

// ParseInput decodes a payload. Whitespace-only data yields ErrEmptyInput.
func ParseInput(data []byte) (*Input, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyInput
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode hook input: %w", err)
	}

	in := &Input{Raw: raw}
	in.SessionID = stringField(raw, "session_id")
	in.Cwd = stringField(raw, "cwd")
	in.ToolName = stringField(raw, "tool_name")
	in.HookEventName = stringField(raw, "hook_event_name")
	if ti, ok := raw["tool_input"].(map[string]any); ok {
		in.ToolInput = ti
	}
	return in, nil
}

// ReadInput reads and decodes at most maxInputBytes from r.
func ReadInput(r io.Reader) (*Input, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxInputBytes))
	if err != nil {
		return nil, fmt.Errorf("read hook input: %w", err)
	}
	return ParseInput(data)
}

// ToolInputString returns a string field of tool_input, or "" when the field
// is absent or not a string.
func (in *Input) ToolInputString(key string) string {
	return stringField(in.ToolInput, key)
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}
