package hooks

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/boshu2/conductor/internal/storage"
)

// Coordinate records the phase named by a dispatch description and clears
// any stale artifact at the prompt's CONTRACT_OUTPUT path. It never blocks.
func Coordinate(_ context.Context, env *Env, in *Input) (Decision, error) {
	if in.ToolName != env.Config.DispatchTool {
		return Allow(), nil
	}

	phase, ok := env.Markers.DetectPhase(in.ToolInputString("description"))
	if !ok {
		return Allow(), nil
	}

	log := env.Log.With(zap.String("phase", string(phase)))
	if in.SessionID == "" {
		log.Debug("dispatch without session id")
		return Allow(), nil
	}

	cwd := env.workdir(in)
	sessionDir := env.Store.SessionDir(cwd, in.SessionID)

	st, err := storage.ReadState(sessionDir)
	if err != nil {
		log.Warn("no session record for dispatch, skipping", zap.String("dir", sessionDir), zap.Error(err))
		return Allow(), nil
	}

	next := st.WithPhase(phase, env.Now())
	if env.DryRun {
		log.Info("dry run: would set phase", zap.String("from", string(st.Phase)))
	} else if err := storage.WriteState(sessionDir, next); err != nil {
		return Allow(), fmt.Errorf("write state: %w", err)
	}

	target, ok := env.Markers.ResolveContractOutputPath(in.ToolInputString("prompt"), in.SessionID)
	if !ok {
		return Allow(), nil
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(cwd, target)
	}
	if env.DryRun {
		log.Info("dry run: would truncate contract output", zap.String("path", target))
		return Allow(), nil
	}

	truncated, err := storage.TruncateIfExists(target)
	if err != nil {
		return Allow(), fmt.Errorf("clear contract output: %w", err)
	}
	if truncated {
		log.Debug("cleared stale contract output", zap.String("path", target))
	}
	return Allow(), nil
}
