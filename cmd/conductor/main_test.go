package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/boshu2/conductor/internal/storage"
	"github.com/boshu2/conductor/internal/tplan"
)

type cliResult struct {
	stdout string
	stderr string
	code   int
}

// isolateEnv points HOME and the project config at empty temp locations.
func isolateEnv(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CONDUCTOR_CONFIG", filepath.Join(home, "none.yaml"))
	t.Setenv("CONDUCTOR_BLOCK_EXIT_CODE", "")
	t.Setenv("CONDUCTOR_OUTPUT", "")
	t.Setenv("CONDUCTOR_MARKER_DIR", "")
	t.Setenv("CONDUCTOR_LOG_LEVEL", "")
}

// runCLI executes the root command with fresh global flag values.
func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()

	dryRun, verbose, output, cfgFile = false, false, "", ""
	statusSession, statusWatch, statusCwd = "", false, ""
	draftSession, draftCwd = "", ""
	hooksOutputFormat = "json"

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	code := run(rootCmd, &stderr)
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func seedSession(t *testing.T, root, sid string, phase tplan.Phase, draft int) string {
	t.Helper()
	now := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	st := tplan.NewState(sid, now).WithPhase(phase, now)
	st.DraftVersion = draft
	dir := storage.NewStateStore().SessionDir(root, sid)
	require.NoError(t, storage.WriteState(dir, st))
	return dir
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
