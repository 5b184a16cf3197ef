package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/boshu2/conductor/internal/config"
	"github.com/boshu2/conductor/internal/logging"
)

var (
	// Global flags
	dryRun  bool
	verbose bool
	output  string
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "conductor",
	Short: "Phase-contract hooks for multi-phase agent tasks",
	Long: `conductor keeps a multi-phase task protocol honest.

The host calls conductor's hooks on every tool use and subagent stop:
INTENT, EXPLORE, SCOUT and VALIDATE phases are recorded per session under
.t-plan/<session_id>/state.json, and a subagent may not stop until it has
written the artifact its phase requires.

Hook Entry Points (called by the host):
  hook session-init     Create the session record
  hook coordinate       Record the phase of a dispatched sub-task
  hook contract         Enforce the phase artifact on subagent stop
  hook worktree-guard   Block raw git worktree commands
  hook plan-review      Gate ExitPlanMode on an approved review

Operator Commands:
  status       Show session records and artifact status
  draft bump   Advance a session's draft version
  hooks        Print the plugin hooks manifest
  config       Show resolved configuration
  version      Show version information`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		syncConfigFlagToEnv()
	},
}

// exitError carries a non-zero exit status without an error message.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	os.Exit(run(rootCmd, os.Stderr))
}

// run executes cmd and maps its result to a process exit code.
func run(cmd *cobra.Command, stderr io.Writer) int {
	err := cmd.Execute()
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintln(stderr, "Error:", err)
	return 1
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Show what would happen without writing anything")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "Output format (json, table, yaml)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: .conductor/config.yaml)")
}

// GetOutput returns the output format for use by subcommands.
func GetOutput() string {
	return output
}

// VerbosePrintf prints to w only when verbose mode is enabled.
func VerbosePrintf(w io.Writer, format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(w, format, args...)
	}
}

func syncConfigFlagToEnv() {
	path := strings.TrimSpace(cfgFile)
	if path == "" {
		return
	}
	_ = os.Setenv("CONDUCTOR_CONFIG", path)
}

// loadConfig applies global flags on top of the layered configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(&config.Config{Output: output, Verbose: verbose})
}

// loadHookConfig never fails: a bad config falls back to defaults so hooks
// keep running.
func loadHookConfig(stderr io.Writer) (*config.Config, *zap.Logger) {
	cfg, cfgErr := loadConfig()
	if cfgErr != nil {
		cfg = config.Default()
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, stderr)
	if err != nil {
		log, _ = logging.New("warn", logging.FormatConsole, stderr)
	}
	if cfgErr != nil {
		log.Warn("invalid configuration, using defaults", zap.Error(cfgErr))
	}
	return cfg, log
}
