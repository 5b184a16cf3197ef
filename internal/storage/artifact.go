package storage

import (
	"os"
	"path/filepath"

	"github.com/boshu2/conductor/internal/tplan"
)

// ArtifactStatus describes the contract artifact of a session's current phase.
type ArtifactStatus string

const (
	ArtifactOK      ArtifactStatus = "ok"
	ArtifactMissing ArtifactStatus = "missing"
	ArtifactEmpty   ArtifactStatus = "empty"
	// ArtifactNone means the phase carries no contract.
	ArtifactNone ArtifactStatus = "n/a"
)

// CheckArtifact reports the expected artifact file name for st's phase and
// its state in sessionDir. When the name cannot be resolved (VALIDATE before
// the first draft) it returns "" and ArtifactMissing.
func CheckArtifact(sessionDir string, st *tplan.State) (string, ArtifactStatus) {
	if !st.Phase.HasContract() {
		return "", ArtifactNone
	}

	name, err := tplan.ResolveContractFilename(st.Phase, st.DraftVersion)
	if err != nil {
		return "", ArtifactMissing
	}

	info, err := os.Stat(filepath.Join(sessionDir, name))
	switch {
	case err != nil:
		return name, ArtifactMissing
	case info.Size() == 0:
		return name, ArtifactEmpty
	default:
		return name, ArtifactOK
	}
}
