package hooks

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boshu2/conductor/internal/storage"
	"github.com/boshu2/conductor/internal/tplan"
)

func TestSessionInit_CreatesIntentRecord(t *testing.T) {
	root := t.TempDir()
	env := newTestEnv(t, root)

	d, err := SessionInit(context.Background(), env.Env, &Input{Cwd: root, SessionID: "sess-a"})
	require.NoError(t, err)
	assert.False(t, d.Blocked)

	st, err := storage.ReadState(filepath.Join(root, ".t-plan", "sess-a"))
	require.NoError(t, err)
	assert.Equal(t, tplan.PhaseIntent, st.Phase)
	assert.Equal(t, 0, st.DraftVersion)
	assert.Equal(t, 2, st.SchemaVersion)
	assert.Equal(t, "sess-a", st.SessionID)
	assert.Equal(t, "2026-03-01T12:00:00.000Z", st.CreatedAt)
	assert.Equal(t, st.CreatedAt, st.UpdatedAt)

	ignore, err := os.ReadFile(filepath.Join(root, ".t-plan", ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, "*\n!.gitignore\n", string(ignore))
}

func TestSessionInit_MissingFieldsIsNoop(t *testing.T) {
	root := t.TempDir()
	env := newTestEnv(t, root)

	for _, in := range []*Input{
		{Cwd: root},
		{SessionID: "s"},
		{},
	} {
		d, err := SessionInit(context.Background(), env.Env, in)
		require.NoError(t, err)
		assert.False(t, d.Blocked)
	}

	_, err := os.Stat(filepath.Join(root, ".t-plan"))
	assert.True(t, os.IsNotExist(err))
}

func TestSessionInit_RerunResetsRecordKeepsIgnoreMarker(t *testing.T) {
	root := t.TempDir()
	env := newTestEnv(t, root)
	dir := seedState(t, root, "s", tplan.PhaseScout, 4)
	writeFile(t, filepath.Join(root, ".t-plan", ".gitignore"), "custom\n")

	env.now = t1
	_, err := SessionInit(context.Background(), env.Env, &Input{Cwd: root, SessionID: "s"})
	require.NoError(t, err)

	st, err := storage.ReadState(dir)
	require.NoError(t, err)
	assert.Equal(t, tplan.PhaseIntent, st.Phase)
	assert.Equal(t, 0, st.DraftVersion)
	assert.Equal(t, tplan.Timestamp(t1), st.CreatedAt)

	ignore, err := os.ReadFile(filepath.Join(root, ".t-plan", ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, "custom\n", string(ignore))
}

func TestSessionInit_DryRunWritesNothing(t *testing.T) {
	root := t.TempDir()
	env := newTestEnv(t, root)
	env.DryRun = true

	_, err := SessionInit(context.Background(), env.Env, &Input{Cwd: root, SessionID: "s"})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, ".t-plan"))
	assert.True(t, os.IsNotExist(err))
}

func TestSessionInit_CustomMarkerDir(t *testing.T) {
	root := t.TempDir()
	env := newTestEnv(t, root)
	env.Store = storage.NewStateStore(storage.WithMarkerDir(".plans"))

	_, err := SessionInit(context.Background(), env.Env, &Input{Cwd: root, SessionID: "s"})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(root, ".plans", "s", "state.json"))
	assert.FileExists(t, filepath.Join(root, ".plans", ".gitignore"))
}
