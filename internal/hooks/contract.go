package hooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/boshu2/conductor/internal/storage"
	"github.com/boshu2/conductor/internal/tplan"
)

// EnforceContract blocks a subagent from stopping until the artifact its
// phase requires exists in the session directory. VALIDATE artifacts must
// also be JSON objects matching the session's draft version.
func EnforceContract(_ context.Context, env *Env, in *Input) (Decision, error) {
	if in.SessionID == "" {
		return Allow(), nil
	}

	fallback, err := env.Getwd()
	if err != nil {
		fallback = "."
	}
	candidates := tplan.BuildPathCandidates(in.Raw, fallback)

	sessionDir, ok := env.Store.FindFirstSessionDir(candidates, in.SessionID)
	if !ok {
		return Allow(), nil
	}

	st, err := storage.ReadState(sessionDir)
	if err != nil {
		env.Log.Warn("unreadable session record, allowing", zap.String("dir", sessionDir), zap.Error(err))
		return Allow(), nil
	}
	if !st.Phase.HasContract() {
		return Allow(), nil
	}

	filename, err := tplan.ResolveContractFilename(st.Phase, st.DraftVersion)
	if err != nil {
		return BlockErr(err), nil
	}

	artifact := filepath.Join(sessionDir, filename)
	info, err := os.Stat(artifact)
	if errors.Is(err, fs.ErrNotExist) {
		return Block(fmt.Sprintf("%s: %s must write %s", tplan.ErrContractUnfulfilled, st.Phase, filename)), nil
	}
	if err != nil {
		return Allow(), fmt.Errorf("stat %s: %w", artifact, err)
	}
	if info.Size() == 0 {
		return Block(fmt.Sprintf("%s: %s is empty", tplan.ErrContractUnfulfilled, filename)), nil
	}

	if st.Phase != tplan.PhaseValidate {
		return Allow(), nil
	}

	data, err := os.ReadFile(artifact)
	if err != nil {
		return Allow(), fmt.Errorf("read %s: %w", artifact, err)
	}

	var content any
	if err := json.Unmarshal(data, &content); err != nil {
		return Block(fmt.Sprintf("%s: %s is not valid JSON", tplan.ErrContractUnfulfilled, filename)), nil
	}
	if err := tplan.ValidateValidationJSON(content, st.DraftVersion); err != nil {
		return BlockErr(err), nil
	}
	return Allow(), nil
}
