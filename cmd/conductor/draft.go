package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/boshu2/conductor/internal/storage"
)

var (
	draftSession string
	draftCwd     string
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Manage a session's draft version",
	Long: `The draft version counts iterations of the primary output. VALIDATE
artifacts are named after it (validation-v001.json for draft 1), so the
orchestrator bumps it after writing each new draft.`,
}

var draftBumpCmd = &cobra.Command{
	Use:   "bump",
	Short: "Increment the draft version by one",
	Long: `Increment draft_version of a session record by exactly one and print the
new value. The record is found by searching the working directory and its
ancestors.

Examples:
  conductor draft bump --session abc123`,
	Args: cobra.NoArgs,
	RunE: runDraftBump,
}

func init() {
	rootCmd.AddCommand(draftCmd)
	draftCmd.AddCommand(draftBumpCmd)

	draftBumpCmd.Flags().StringVar(&draftSession, "session", "", "Session ID (required)")
	draftBumpCmd.Flags().StringVar(&draftCwd, "cwd", "", "Project directory (default: current directory)")
	_ = draftBumpCmd.MarkFlagRequired("session")
}

func runDraftBump(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if draftSession == "" {
		return storage.ErrSessionIDRequired
	}

	root, err := resolveCwd(draftCwd)
	if err != nil {
		return err
	}
	store := storage.NewStateStore(storage.WithMarkerDir(cfg.MarkerDir))

	dir, ok := store.FindSessionDir(root, draftSession)
	if !ok {
		return fmt.Errorf("%w: session %s not found from %s", storage.ErrStateNotFound, draftSession, root)
	}
	st, err := storage.ReadState(dir)
	if err != nil {
		return err
	}

	next := st.WithNextDraft(time.Now())
	if dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "[dry-run] Would bump draft_version %d -> %d in %s\n",
			st.DraftVersion, next.DraftVersion, storage.StatePath(dir))
		return nil
	}
	if err := storage.WriteState(dir, next); err != nil {
		return fmt.Errorf("write state: %w", err)
	}

	VerbosePrintf(cmd.ErrOrStderr(), "Updated %s\n", storage.StatePath(dir))
	fmt.Fprintln(cmd.OutOrStdout(), next.DraftVersion)
	return nil
}
