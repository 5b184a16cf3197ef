package main

import (
	"github.com/spf13/cobra"

	"github.com/boshu2/conductor/internal/hooks"
	"github.com/boshu2/conductor/internal/logging"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Hook entry points called by the host",
	Long: `Hook entry points read one JSON event from stdin.

Allowed actions exit 0 with no output. Blocked actions print the reason on
stderr and exit with block_exit_code (default 2). Internal faults never
block; they are logged and the action is allowed.`,
	Args: cobra.NoArgs,
}

func init() {
	rootCmd.AddCommand(hookCmd)

	for _, name := range hooks.Names() {
		hookCmd.AddCommand(newHookHandlerCmd(name))
	}
}

// newHookHandlerCmd wraps a registered handler. Hidden from help output:
// these are called by the host, not by operators.
func newHookHandlerCmd(name string) *cobra.Command {
	return &cobra.Command{
		Use:    name,
		Short:  "Run the " + name + " hook on stdin",
		Args:   cobra.NoArgs,
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHook(cmd, name)
		},
	}
}

func runHook(cmd *cobra.Command, name string) error {
	cfg, log := loadHookConfig(cmd.ErrOrStderr())
	defer func() { _ = logging.Sync(log) }()

	handler, ok := hooks.Lookup(name)
	if !ok {
		return nil
	}

	env := hooks.NewEnv(cfg, log.Named(name))
	env.DryRun = dryRun

	d := hooks.Run(cmd.Context(), env, name, handler, cmd.InOrStdin())
	if code := hooks.Emit(d, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.BlockExitCode); code != 0 {
		return &exitError{code: code}
	}
	return nil
}
