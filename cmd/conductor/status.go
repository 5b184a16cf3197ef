package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/boshu2/conductor/internal/formatter"
	"github.com/boshu2/conductor/internal/storage"
	"github.com/boshu2/conductor/internal/tplan"
)

var (
	statusSession string
	statusWatch   bool
	statusCwd     string
)

// sessionStatus is one row of status output.
type sessionStatus struct {
	SessionID      string                 `json:"session_id" yaml:"session_id"`
	Phase          tplan.Phase            `json:"phase" yaml:"phase"`
	DraftVersion   int                    `json:"draft_version" yaml:"draft_version"`
	Artifact       string                 `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	ArtifactStatus storage.ArtifactStatus `json:"artifact_status" yaml:"artifact_status"`
	UpdatedAt      string                 `json:"updated_at" yaml:"updated_at"`
	Dir            string                 `json:"dir" yaml:"dir"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session records and artifact status",
	Long: `Show the phase, draft version and contract artifact of t-plan sessions.

Without --session, every session under <cwd>/.t-plan is listed, most
recently updated first. With --session, the record is found by searching
the working directory and its ancestors.

Examples:
  conductor status
  conductor status --session abc123 -o json
  conductor status --session abc123 --watch`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVar(&statusSession, "session", "", "Session ID to show")
	statusCmd.Flags().BoolVar(&statusWatch, "watch", false, "Reprint whenever the session record changes (requires --session)")
	statusCmd.Flags().StringVar(&statusCwd, "cwd", "", "Project directory (default: current directory)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if statusWatch && statusSession == "" {
		return fmt.Errorf("--watch requires --session")
	}

	root, err := resolveCwd(statusCwd)
	if err != nil {
		return err
	}
	store := storage.NewStateStore(storage.WithMarkerDir(cfg.MarkerDir))
	w := cmd.OutOrStdout()

	if statusSession == "" {
		summaries, err := store.ListSessions(root)
		if err != nil {
			return err
		}
		if len(summaries) == 0 && cfg.Output != "json" && cfg.Output != "yaml" {
			fmt.Fprintf(w, "No sessions under %s\n", store.MarkerRoot(root))
			return nil
		}
		rows := make([]sessionStatus, 0, len(summaries))
		for _, s := range summaries {
			rows = append(rows, newSessionStatus(s.Dir, s.State))
		}
		return renderStatus(w, cfg.Output, rows)
	}

	dir, ok := store.FindSessionDir(root, statusSession)
	if !ok {
		return fmt.Errorf("%w: session %s not found from %s", storage.ErrStateNotFound, statusSession, root)
	}

	if !statusWatch {
		st, err := storage.ReadState(dir)
		if err != nil {
			return err
		}
		return renderStatus(w, cfg.Output, []sessionStatus{newSessionStatus(dir, st)})
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return watchStatus(ctx, w, cfg.Output, dir)
}

// watchStatus reprints the session until ctx is cancelled.
func watchStatus(ctx context.Context, w io.Writer, format, dir string) error {
	var renderErr error
	err := storage.WatchState(ctx, dir, func(change storage.StateChange) {
		if change.Err != nil {
			fmt.Fprintf(w, "%s: %v\n", dir, change.Err)
			return
		}
		if err := renderStatus(w, format, []sessionStatus{newSessionStatus(dir, change.State)}); err != nil {
			renderErr = err
		}
	})
	if err != nil {
		return err
	}
	return renderErr
}

func newSessionStatus(dir string, st *tplan.State) sessionStatus {
	artifact, status := storage.CheckArtifact(dir, st)
	return sessionStatus{
		SessionID:      st.SessionID,
		Phase:          st.Phase,
		DraftVersion:   st.DraftVersion,
		Artifact:       artifact,
		ArtifactStatus: status,
		UpdatedAt:      st.UpdatedAt,
		Dir:            dir,
	}
}

func renderStatus(w io.Writer, format string, rows []sessionStatus) error {
	if done, err := writeStructured(w, format, rows); done {
		return err
	}

	tbl := formatter.NewTable(w, "SESSION", "PHASE", "DRAFT", "ARTIFACT", "STATUS", "UPDATED")
	tbl.SetMaxWidth(0, 36)
	tbl.SetColor(1, phaseColor)
	tbl.SetColor(4, artifactColor)
	for _, r := range rows {
		artifact := r.Artifact
		if artifact == "" {
			artifact = "-"
		}
		tbl.AddRow(r.SessionID, string(r.Phase), fmt.Sprint(r.DraftVersion), artifact, string(r.ArtifactStatus), r.UpdatedAt)
	}
	return tbl.Render()
}

func phaseColor(v string) *color.Color {
	switch tplan.Phase(v) {
	case tplan.PhaseIntent:
		return color.New(color.FgCyan)
	case tplan.PhaseExplore:
		return color.New(color.FgBlue)
	case tplan.PhaseScout:
		return color.New(color.FgYellow)
	case tplan.PhaseValidate:
		return color.New(color.FgGreen)
	default:
		return nil
	}
}

func artifactColor(v string) *color.Color {
	switch storage.ArtifactStatus(v) {
	case storage.ArtifactOK:
		return color.New(color.FgGreen)
	case storage.ArtifactEmpty:
		return color.New(color.FgYellow)
	case storage.ArtifactMissing:
		return color.New(color.FgRed)
	default:
		return nil
	}
}

// resolveCwd returns dir, or the process working directory when dir is empty.
func resolveCwd(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return wd, nil
}
