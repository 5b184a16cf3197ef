package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/boshu2/conductor/embedded"
)

var hooksOutputFormat string

// HookEntry represents a single hook command (e.g., {"type": "command", "command": "..."}).
type HookEntry struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Timeout int    `json:"timeout,omitempty"`
	Once    bool   `json:"once,omitempty"`
}

// HookGroup represents a hook group with optional matcher and a hooks array.
type HookGroup struct {
	Matcher string      `json:"matcher,omitempty"`
	Hooks   []HookEntry `json:"hooks"`
}

// HooksConfig represents the hook events conductor registers.
type HooksConfig struct {
	PreToolUse   []HookGroup `json:"PreToolUse,omitempty"`
	SubagentStop []HookGroup `json:"SubagentStop,omitempty"`
}

// AllEventNames returns the events conductor registers, in manifest order.
func AllEventNames() []string {
	return []string{"PreToolUse", "SubagentStop"}
}

// GetEventGroups returns the hook groups for a given event name.
func (c *HooksConfig) GetEventGroups(event string) []HookGroup {
	switch event {
	case "PreToolUse":
		return c.PreToolUse
	case "SubagentStop":
		return c.SubagentStop
	default:
		return nil
	}
}

// hooksManifest wraps the hooks.json file format which has a top-level "hooks" key.
type hooksManifest struct {
	Hooks *HooksConfig `json:"hooks"`
}

// ReadHooksManifest parses a hooks.json manifest from raw bytes.
func ReadHooksManifest(data []byte) (*HooksConfig, error) {
	var manifest hooksManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse hooks manifest: %w", err)
	}
	if manifest.Hooks == nil {
		return nil, fmt.Errorf("hooks manifest missing 'hooks' key")
	}
	return manifest.Hooks, nil
}

var hooksCmd = &cobra.Command{
	Use:   "hooks",
	Short: "Print and inspect the plugin hooks manifest",
	Long: `The hooks command prints the hooks manifest that wires conductor into the host.

Subcommands:
  init      Print the hooks configuration
  show      Display conductor hooks found in ~/.claude/settings.json

Registered hooks:
  PreToolUse *              hook session-init (once per session)
  PreToolUse Task           hook coordinate
  PreToolUse Bash           hook worktree-guard
  PreToolUse ExitPlanMode   hook plan-review
  SubagentStop              hook contract`,
}

var hooksInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Print hooks configuration",
	Long: `Print the conductor hooks configuration.

Output formats:
  json     hooks.json manifest for a plugin or settings.json
  shell    One line per hook with its matcher, for verification`,
	Args: cobra.NoArgs,
	RunE: runHooksInit,
}

var hooksShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display installed conductor hooks",
	Long:  `Display the conductor hook groups present in ~/.claude/settings.json.`,
	Args:  cobra.NoArgs,
	RunE:  runHooksShow,
}

func init() {
	rootCmd.AddCommand(hooksCmd)
	hooksCmd.AddCommand(hooksInitCmd)
	hooksCmd.AddCommand(hooksShowCmd)

	hooksInitCmd.Flags().StringVar(&hooksOutputFormat, "format", "json", "Output format: json, shell")
}

func runHooksInit(cmd *cobra.Command, args []string) error {
	hooks, err := ReadHooksManifest(embedded.HooksJSON)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	switch hooksOutputFormat {
	case "json":
		wrapper := hooksManifest{Hooks: hooks}
		data, err := json.MarshalIndent(wrapper, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal hooks: %w", err)
		}
		fmt.Fprintln(w, string(data))

	case "shell":
		for _, event := range AllEventNames() {
			for _, g := range hooks.GetEventGroups(event) {
				matcher := g.Matcher
				if matcher == "" {
					matcher = "*"
				}
				fmt.Fprintf(w, "# %s %s\n", event, matcher)
				for _, h := range g.Hooks {
					fmt.Fprintln(w, h.Command)
				}
			}
		}

	default:
		return fmt.Errorf("unknown format: %s (use json or shell)", hooksOutputFormat)
	}

	return nil
}

func runHooksShow(cmd *cobra.Command, args []string) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("get home directory: %w", err)
	}
	return showInstalledHooks(cmd.OutOrStdout(), filepath.Join(homeDir, ".claude", "settings.json"))
}

// showInstalledHooks prints the conductor-managed commands per event.
func showInstalledHooks(w io.Writer, settingsPath string) error {
	hooksMap, err := loadHooksMap(w, settingsPath)
	if err != nil || hooksMap == nil {
		return err
	}

	found := 0
	for _, event := range AllEventNames() {
		groups, _ := hooksMap[event].([]any)
		cmds := conductorCommands(groups)
		if len(cmds) == 0 {
			fmt.Fprintf(w, "  - %-14s not installed\n", event)
			continue
		}
		found++
		for _, c := range cmds {
			fmt.Fprintf(w, "  ✓ %-14s %s\n", event, c)
		}
	}

	fmt.Fprintln(w)
	if found == len(AllEventNames()) {
		fmt.Fprintln(w, "✓ conductor hooks are installed")
	} else {
		fmt.Fprintln(w, "⚠ conductor hooks incomplete. Run 'conductor hooks init' and add the output to your settings.")
	}
	return nil
}

func loadHooksMap(w io.Writer, settingsPath string) (map[string]any, error) {
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(w, "No Claude settings found at", settingsPath)
			return nil, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var settings map[string]any
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}

	hooksMap, ok := settings["hooks"].(map[string]any)
	if !ok {
		fmt.Fprintln(w, "No hooks configured in", settingsPath)
		return nil, nil
	}
	return hooksMap, nil
}

// conductorCommands returns the conductor hook commands in raw hook groups.
func conductorCommands(groups []any) []string {
	var cmds []string
	for _, g := range groups {
		group, ok := g.(map[string]any)
		if !ok {
			continue
		}
		hooks, _ := group["hooks"].([]any)
		for _, h := range hooks {
			hook, ok := h.(map[string]any)
			if !ok {
				continue
			}
			if c, ok := hook["command"].(string); ok && isConductorHookCommand(c) {
				cmds = append(cmds, c)
			}
		}
	}
	return cmds
}

func isConductorHookCommand(cmd string) bool {
	return strings.Contains(cmd, "conductor hook ")
}
