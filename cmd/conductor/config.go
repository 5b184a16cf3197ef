package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boshu2/conductor/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect conductor configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show resolved configuration and where each value came from",
	Long: `Show configuration values with their sources.

Precedence (highest first):
  flags > CONDUCTOR_* environment > .conductor/config.yaml ($CONDUCTOR_CONFIG)
  > ~/.conductor/config.yaml > defaults`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	rc := config.Resolve(output, verbose)
	w := cmd.OutOrStdout()

	format := output
	if format == "" {
		format, _ = rc.Output.Value.(string)
	}
	if done, err := writeStructured(w, format, rc); done {
		return err
	}

	rows := []struct {
		key string
		val any
		src config.Source
	}{
		{"output", rc.Output.Value, rc.Output.Source},
		{"marker_dir", rc.MarkerDir.Value, rc.MarkerDir.Source},
		{"protocol_tag", rc.ProtocolTag.Value, rc.ProtocolTag.Source},
		{"dispatch_tool", rc.DispatchTool.Value, rc.DispatchTool.Source},
		{"block_exit_code", rc.BlockExitCode.Value, rc.BlockExitCode.Source},
		{"log_level", rc.LogLevel.Value, rc.LogLevel.Source},
		{"verbose", rc.Verbose.Value, rc.Verbose.Source},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%-16s %-12v (%s)\n", r.key+":", r.val, r.src)
	}
	return nil
}
