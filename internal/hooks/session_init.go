package hooks

import (
	"context"

	"go.uber.org/zap"

	"github.com/boshu2/conductor/internal/storage"
	"github.com/boshu2/conductor/internal/tplan"
)

// SessionInit creates a fresh INTENT record for the session. It needs both
// cwd and session_id; without them it does nothing. A rerun overwrites the
// existing record.
func SessionInit(_ context.Context, env *Env, in *Input) (Decision, error) {
	if in.Cwd == "" || in.SessionID == "" {
		return Allow(), nil
	}

	sessionDir := env.Store.SessionDir(in.Cwd, in.SessionID)
	st := tplan.NewState(in.SessionID, env.Now())

	if env.DryRun {
		env.Log.Info("dry run: would initialize session", zap.String("dir", sessionDir))
		return Allow(), nil
	}

	if err := storage.EnsureGitignore(env.Store.MarkerRoot(in.Cwd)); err != nil {
		return Allow(), err
	}
	if err := storage.WriteState(sessionDir, st); err != nil {
		return Allow(), err
	}

	env.Log.Debug("session initialized",
		zap.String("session_id", in.SessionID),
		zap.String("dir", sessionDir),
	)
	return Allow(), nil
}
