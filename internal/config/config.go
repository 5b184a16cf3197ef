// Package config provides configuration management for conductor.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (CONDUCTOR_*)
// 3. Project config (.conductor/config.yaml in cwd, or $CONDUCTOR_CONFIG)
// 4. Home config (~/.conductor/config.yaml)
// 5. Defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all conductor configuration.
type Config struct {
	// Output controls the default output format (table, json, yaml).
	Output string `yaml:"output" json:"output"`

	// Verbose enables verbose output.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// MarkerDir is the directory under a project root holding session
	// records (default: .t-plan).
	MarkerDir string `yaml:"marker_dir" json:"marker_dir"`

	// ProtocolTag is the tag inside phase markers, as in [T-PLAN PHASE=SCOUT].
	ProtocolTag string `yaml:"protocol_tag" json:"protocol_tag"`

	// SessionPlaceholder is replaced by the session id in CONTRACT_OUTPUT paths.
	SessionPlaceholder string `yaml:"session_placeholder" json:"session_placeholder"`

	// DispatchTool is the tool name whose calls delegate a sub-task.
	DispatchTool string `yaml:"dispatch_tool" json:"dispatch_tool"`

	// BlockExitCode is the exit status that tells the host to block.
	BlockExitCode int `yaml:"block_exit_code" json:"block_exit_code"`

	// Log settings for hook diagnostics.
	Log LogConfig `yaml:"log" json:"log"`

	// PlanReview settings for the ExitPlanMode gate.
	PlanReview PlanReviewConfig `yaml:"plan_review" json:"plan_review"`
}

// LogConfig controls diagnostic output on stderr.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" json:"level"`
	// Format is console or json.
	Format string `yaml:"format" json:"format"`
}

// PlanReviewConfig holds plan-review gate settings.
type PlanReviewConfig struct {
	// MaxReviews is the number of review cycles after which the gate opens
	// with a warning.
	MaxReviews int `yaml:"max_reviews" json:"max_reviews"`
	// MinLines is the plan length below which review is skipped.
	MinLines int `yaml:"min_lines" json:"min_lines"`
	// BypassMarker skips review when present anywhere in the plan.
	BypassMarker string `yaml:"bypass_marker" json:"bypass_marker"`
	// PlansDir is the fallback plans directory (default: ~/.claude/plans).
	PlansDir string `yaml:"plans_dir" json:"plans_dir"`
}

// Default config values (used in resolution and validation).
const (
	defaultOutput             = "table"
	defaultMarkerDir          = ".t-plan"
	defaultProtocolTag        = "T-PLAN"
	defaultSessionPlaceholder = "${CLAUDE_SESSION_ID}"
	defaultDispatchTool       = "Task"
	defaultBlockExitCode      = 2
	defaultLogLevel           = "warn"
	defaultLogFormat          = "console"
)

// Default returns the default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Output:             defaultOutput,
		Verbose:            false,
		MarkerDir:          defaultMarkerDir,
		ProtocolTag:        defaultProtocolTag,
		SessionPlaceholder: defaultSessionPlaceholder,
		DispatchTool:       defaultDispatchTool,
		BlockExitCode:      defaultBlockExitCode,
		Log: LogConfig{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		PlanReview: PlanReviewConfig{
			MaxReviews:   3,
			MinLines:     50,
			BypassMarker: "<!-- QUICK -->",
			PlansDir:     filepath.Join(homeDir, ".claude", "plans"),
		},
	}
}

// Validate rejects settings that would make hooks misbehave.
func (c *Config) Validate() error {
	if c.MarkerDir == "" || strings.ContainsRune(c.MarkerDir, filepath.Separator) || c.MarkerDir == "." || c.MarkerDir == ".." {
		return fmt.Errorf("marker_dir must be a single directory name, got %q", c.MarkerDir)
	}
	if strings.TrimSpace(c.ProtocolTag) == "" {
		return fmt.Errorf("protocol_tag must not be empty")
	}
	if c.BlockExitCode < 2 || c.BlockExitCode > 255 {
		return fmt.Errorf("block_exit_code must be between 2 and 255, got %d", c.BlockExitCode)
	}
	if c.PlanReview.MaxReviews < 1 {
		return fmt.Errorf("plan_review.max_reviews must be >= 1, got %d", c.PlanReview.MaxReviews)
	}
	return nil
}

// Load loads configuration with proper precedence.
// Priority: flags > env > project > home > defaults
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()

	// Load home config
	homeConfig, _ := loadFromPath(homeConfigPath())
	if homeConfig != nil {
		cfg = merge(cfg, homeConfig)
	}

	// Load project config
	projectConfig, _ := loadFromPath(projectConfigPath())
	if projectConfig != nil {
		cfg = merge(cfg, projectConfig)
	}

	cfg = applyEnv(cfg)

	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// homeConfigPath returns the home config path.
func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".conductor", "config.yaml")
}

// projectConfigPath returns the project config path.
func projectConfigPath() string {
	if override := strings.TrimSpace(os.Getenv("CONDUCTOR_CONFIG")); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".conductor", "config.yaml")
}

// loadFromPath loads config from a YAML file.
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) *Config {
	if v := os.Getenv("CONDUCTOR_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v, ok := getEnvBool("CONDUCTOR_VERBOSE"); ok {
		cfg.Verbose = v
	}
	if v := os.Getenv("CONDUCTOR_MARKER_DIR"); v != "" {
		cfg.MarkerDir = v
	}
	if v := os.Getenv("CONDUCTOR_PROTOCOL_TAG"); v != "" {
		cfg.ProtocolTag = v
	}
	if v := os.Getenv("CONDUCTOR_SESSION_PLACEHOLDER"); v != "" {
		cfg.SessionPlaceholder = v
	}
	if v := os.Getenv("CONDUCTOR_DISPATCH_TOOL"); v != "" {
		cfg.DispatchTool = v
	}
	if v := os.Getenv("CONDUCTOR_BLOCK_EXIT_CODE"); v != "" {
		if code, err := strconv.Atoi(v); err == nil {
			cfg.BlockExitCode = code
		}
	}
	if v := os.Getenv("CONDUCTOR_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CONDUCTOR_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("CONDUCTOR_PLANS_DIR"); v != "" {
		cfg.PlanReview.PlansDir = v
	}
	return cfg
}

// mergeStr overwrites dst with src when src is non-empty.
func mergeStr(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// mergeInt overwrites dst with src when src is non-zero.
func mergeInt(dst *int, src int) {
	if src != 0 {
		*dst = src
	}
}

// merge merges src into dst, with src values taking precedence.
// Booleans only ever turn on; there is no way to switch verbose off from a
// lower-precedence layer.
func merge(dst, src *Config) *Config {
	mergeStr(&dst.Output, src.Output)
	if src.Verbose {
		dst.Verbose = true
	}
	mergeStr(&dst.MarkerDir, src.MarkerDir)
	mergeStr(&dst.ProtocolTag, src.ProtocolTag)
	mergeStr(&dst.SessionPlaceholder, src.SessionPlaceholder)
	mergeStr(&dst.DispatchTool, src.DispatchTool)
	mergeInt(&dst.BlockExitCode, src.BlockExitCode)

	mergeStr(&dst.Log.Level, src.Log.Level)
	mergeStr(&dst.Log.Format, src.Log.Format)

	mergeInt(&dst.PlanReview.MaxReviews, src.PlanReview.MaxReviews)
	mergeInt(&dst.PlanReview.MinLines, src.PlanReview.MinLines)
	mergeStr(&dst.PlanReview.BypassMarker, src.PlanReview.BypassMarker)
	mergeStr(&dst.PlanReview.PlansDir, src.PlanReview.PlansDir)

	return dst
}

// Source represents where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceHome    Source = "~/.conductor/config.yaml"
	SourceProject Source = ".conductor/config.yaml"
	SourceEnv     Source = "environment"
	SourceFlag    Source = "flag"
)

// getEnvBool returns the boolean value and whether the env var was set to
// something recognizable.
func getEnvBool(key string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	default:
		return false, false
	}
}

type resolved struct {
	Value  interface{} `json:"value" yaml:"value"`
	Source Source      `json:"source" yaml:"source"`
}

// resolveStringField resolves a string through the precedence chain.
func resolveStringField(home, project, env, flag, def string) resolved {
	result := resolved{Value: def, Source: SourceDefault}
	if home != "" {
		result = resolved{Value: home, Source: SourceHome}
	}
	if project != "" {
		result = resolved{Value: project, Source: SourceProject}
	}
	if env != "" {
		result = resolved{Value: env, Source: SourceEnv}
	}
	if flag != "" {
		result = resolved{Value: flag, Source: SourceFlag}
	}
	return result
}

// ResolvedConfig shows config values with their sources.
type ResolvedConfig struct {
	Output        resolved `json:"output" yaml:"output"`
	MarkerDir     resolved `json:"marker_dir" yaml:"marker_dir"`
	ProtocolTag   resolved `json:"protocol_tag" yaml:"protocol_tag"`
	DispatchTool  resolved `json:"dispatch_tool" yaml:"dispatch_tool"`
	BlockExitCode resolved `json:"block_exit_code" yaml:"block_exit_code"`
	LogLevel      resolved `json:"log_level" yaml:"log_level"`
	Verbose       resolved `json:"verbose" yaml:"verbose"`
}

// Resolve returns configuration with source tracking.
// Uses precedence chain: flags > env > project > home > defaults.
func Resolve(flagOutput string, flagVerbose bool) *ResolvedConfig {
	home, _ := loadFromPath(homeConfigPath())
	project, _ := loadFromPath(projectConfigPath())
	if home == nil {
		home = &Config{}
	}
	if project == nil {
		project = &Config{}
	}

	field := func(get func(*Config) string, envKey, flag, def string) resolved {
		return resolveStringField(get(home), get(project), os.Getenv(envKey), flag, def)
	}

	exitCode := func(c *Config) string {
		if c.BlockExitCode == 0 {
			return ""
		}
		return strconv.Itoa(c.BlockExitCode)
	}

	rc := &ResolvedConfig{
		Output:        field(func(c *Config) string { return c.Output }, "CONDUCTOR_OUTPUT", flagOutput, defaultOutput),
		MarkerDir:     field(func(c *Config) string { return c.MarkerDir }, "CONDUCTOR_MARKER_DIR", "", defaultMarkerDir),
		ProtocolTag:   field(func(c *Config) string { return c.ProtocolTag }, "CONDUCTOR_PROTOCOL_TAG", "", defaultProtocolTag),
		DispatchTool:  field(func(c *Config) string { return c.DispatchTool }, "CONDUCTOR_DISPATCH_TOOL", "", defaultDispatchTool),
		BlockExitCode: field(exitCode, "CONDUCTOR_BLOCK_EXIT_CODE", "", strconv.Itoa(defaultBlockExitCode)),
		LogLevel:      field(func(c *Config) string { return c.Log.Level }, "CONDUCTOR_LOG_LEVEL", "", defaultLogLevel),
		Verbose:       resolved{Value: false, Source: SourceDefault},
	}

	// Verbose has OR semantics through the chain.
	if home.Verbose {
		rc.Verbose = resolved{Value: true, Source: SourceHome}
	}
	if project.Verbose {
		rc.Verbose = resolved{Value: true, Source: SourceProject}
	}
	if v, ok := getEnvBool("CONDUCTOR_VERBOSE"); ok && v {
		rc.Verbose = resolved{Value: true, Source: SourceEnv}
	}
	if flagVerbose {
		rc.Verbose = resolved{Value: true, Source: SourceFlag}
	}

	return rc
}
