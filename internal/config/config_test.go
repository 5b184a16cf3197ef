package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("CONDUCTOR_CONFIG", filepath.Join(dir, "missing.yaml"))
	for _, k := range []string{
		"CONDUCTOR_OUTPUT", "CONDUCTOR_VERBOSE", "CONDUCTOR_MARKER_DIR",
		"CONDUCTOR_PROTOCOL_TAG", "CONDUCTOR_SESSION_PLACEHOLDER", "CONDUCTOR_DISPATCH_TOOL",
		"CONDUCTOR_BLOCK_EXIT_CODE", "CONDUCTOR_LOG_LEVEL", "CONDUCTOR_LOG_FORMAT", "CONDUCTOR_PLANS_DIR",
	} {
		t.Setenv(k, "")
	}
	return dir
}

func writeYAML(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "table", cfg.Output)
	assert.Equal(t, ".t-plan", cfg.MarkerDir)
	assert.Equal(t, "T-PLAN", cfg.ProtocolTag)
	assert.Equal(t, "${CLAUDE_SESSION_ID}", cfg.SessionPlaceholder)
	assert.Equal(t, "Task", cfg.DispatchTool)
	assert.Equal(t, 2, cfg.BlockExitCode)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 3, cfg.PlanReview.MaxReviews)
	assert.Equal(t, 50, cfg.PlanReview.MinLines)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"nested marker dir", func(c *Config) { c.MarkerDir = "a/b" }},
		{"dot marker dir", func(c *Config) { c.MarkerDir = "." }},
		{"empty tag", func(c *Config) { c.ProtocolTag = "  " }},
		{"exit code zero", func(c *Config) { c.BlockExitCode = 1 }},
		{"exit code too large", func(c *Config) { c.BlockExitCode = 300 }},
		{"no reviews", func(c *Config) { c.PlanReview.MaxReviews = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestMerge(t *testing.T) {
	dst := Default()
	src := &Config{
		ProtocolTag:   "X-PLAN",
		BlockExitCode: 3,
		Verbose:       true,
		PlanReview:    PlanReviewConfig{MinLines: 10},
	}

	got := merge(dst, src)
	assert.Equal(t, "X-PLAN", got.ProtocolTag)
	assert.Equal(t, 3, got.BlockExitCode)
	assert.True(t, got.Verbose)
	assert.Equal(t, 10, got.PlanReview.MinLines)
	assert.Equal(t, 3, got.PlanReview.MaxReviews, "zero values keep lower layer")
	assert.Equal(t, "Task", got.DispatchTool)
}

func TestApplyEnv(t *testing.T) {
	isolate(t)
	t.Setenv("CONDUCTOR_DISPATCH_TOOL", "Agent")
	t.Setenv("CONDUCTOR_BLOCK_EXIT_CODE", "7")
	t.Setenv("CONDUCTOR_VERBOSE", "yes")
	t.Setenv("CONDUCTOR_LOG_FORMAT", "json")

	cfg := applyEnv(Default())
	assert.Equal(t, "Agent", cfg.DispatchTool)
	assert.Equal(t, 7, cfg.BlockExitCode)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestApplyEnv_IgnoresBadExitCode(t *testing.T) {
	isolate(t)
	t.Setenv("CONDUCTOR_BLOCK_EXIT_CODE", "two")
	assert.Equal(t, 2, applyEnv(Default()).BlockExitCode)
}

func TestLoadFromPath(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		cfg, err := loadFromPath("")
		assert.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		writeYAML(t, path, "marker_dir: [unterminated")
		_, err := loadFromPath(path)
		assert.Error(t, err)
	})

	t.Run("nested sections", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ok.yaml")
		writeYAML(t, path, "marker_dir: .plans\nlog:\n  level: debug\nplan_review:\n  max_reviews: 5\n")
		cfg, err := loadFromPath(path)
		require.NoError(t, err)
		assert.Equal(t, ".plans", cfg.MarkerDir)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, 5, cfg.PlanReview.MaxReviews)
	})
}

func TestLoad_Precedence(t *testing.T) {
	home := isolate(t)
	writeYAML(t, filepath.Join(home, ".conductor", "config.yaml"),
		"protocol_tag: HOME-TAG\ndispatch_tool: HomeTool\nmarker_dir: .home\n")

	project := filepath.Join(t.TempDir(), "project.yaml")
	writeYAML(t, project, "dispatch_tool: ProjectTool\nmarker_dir: .project\n")
	t.Setenv("CONDUCTOR_CONFIG", project)
	t.Setenv("CONDUCTOR_MARKER_DIR", ".env")

	cfg, err := Load(&Config{Output: "json"})
	require.NoError(t, err)

	assert.Equal(t, "HOME-TAG", cfg.ProtocolTag)
	assert.Equal(t, "ProjectTool", cfg.DispatchTool)
	assert.Equal(t, ".env", cfg.MarkerDir)
	assert.Equal(t, "json", cfg.Output)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	isolate(t)
	t.Setenv("CONDUCTOR_BLOCK_EXIT_CODE", "1")
	_, err := Load(nil)
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	home := isolate(t)
	writeYAML(t, filepath.Join(home, ".conductor", "config.yaml"), "protocol_tag: HOME-TAG\nverbose: true\n")
	t.Setenv("CONDUCTOR_DISPATCH_TOOL", "Agent")

	rc := Resolve("yaml", false)

	assert.Equal(t, resolved{Value: "yaml", Source: SourceFlag}, rc.Output)
	assert.Equal(t, resolved{Value: "HOME-TAG", Source: SourceHome}, rc.ProtocolTag)
	assert.Equal(t, resolved{Value: "Agent", Source: SourceEnv}, rc.DispatchTool)
	assert.Equal(t, resolved{Value: ".t-plan", Source: SourceDefault}, rc.MarkerDir)
	assert.Equal(t, resolved{Value: "2", Source: SourceDefault}, rc.BlockExitCode)
	assert.Equal(t, resolved{Value: true, Source: SourceHome}, rc.Verbose)
}

func TestResolve_VerboseFlagWins(t *testing.T) {
	isolate(t)
	rc := Resolve("", true)
	assert.Equal(t, SourceFlag, rc.Verbose.Source)
	assert.Equal(t, resolved{Value: "table", Source: SourceDefault}, rc.Output)
}
