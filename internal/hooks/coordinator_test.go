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

func dispatch(root, sid, description, prompt string) *Input {
	return &Input{
		SessionID: sid,
		Cwd:       root,
		ToolName:  "Task",
		ToolInput: map[string]any{"description": description, "prompt": prompt},
	}
}

func TestCoordinate_SetsPhase(t *testing.T) {
	root := t.TempDir()
	env := newTestEnv(t, root)
	dir := seedState(t, root, "s", tplan.PhaseIntent, 0)
	env.now = t1

	d, err := Coordinate(context.Background(), env.Env, dispatch(root, "s", "[T-PLAN PHASE=SCOUT] investigate X", ""))
	require.NoError(t, err)
	assert.False(t, d.Blocked)

	st, err := storage.ReadState(dir)
	require.NoError(t, err)
	assert.Equal(t, tplan.PhaseScout, st.Phase)
	assert.Equal(t, tplan.Timestamp(t0), st.CreatedAt)
	assert.Equal(t, tplan.Timestamp(t1), st.UpdatedAt)
	assert.Equal(t, 0, st.DraftVersion)
}

func TestCoordinate_ValidateKeepsDraftVersion(t *testing.T) {
	root := t.TempDir()
	env := newTestEnv(t, root)
	dir := seedState(t, root, "s", tplan.PhaseScout, 3)

	_, err := Coordinate(context.Background(), env.Env, dispatch(root, "s", "[T-PLAN PHASE=VALIDATE] check", ""))
	require.NoError(t, err)

	st, err := storage.ReadState(dir)
	require.NoError(t, err)
	assert.Equal(t, tplan.PhaseValidate, st.Phase)
	assert.Equal(t, 3, st.DraftVersion)
}

func TestCoordinate_AllowsBackwardTransition(t *testing.T) {
	root := t.TempDir()
	env := newTestEnv(t, root)
	dir := seedState(t, root, "s", tplan.PhaseValidate, 1)

	_, err := Coordinate(context.Background(), env.Env, dispatch(root, "s", "[T-PLAN PHASE=EXPLORE] again", ""))
	require.NoError(t, err)

	st, err := storage.ReadState(dir)
	require.NoError(t, err)
	assert.Equal(t, tplan.PhaseExplore, st.Phase)
}

func TestCoordinate_IgnoresUnrelatedEvents(t *testing.T) {
	root := t.TempDir()
	env := newTestEnv(t, root)
	dir := seedState(t, root, "s", tplan.PhaseIntent, 0)

	tests := []struct {
		name string
		in   *Input
	}{
		{"other tool", &Input{SessionID: "s", Cwd: root, ToolName: "Bash",
			ToolInput: map[string]any{"description": "[T-PLAN PHASE=SCOUT]"}}},
		{"no marker", dispatch(root, "s", "investigate X", "")},
		{"lowercase marker", dispatch(root, "s", "[t-plan phase=scout]", "")},
		{"marker in prompt only", dispatch(root, "s", "plain", "[T-PLAN PHASE=SCOUT]")},
		{"no session id", dispatch(root, "", "[T-PLAN PHASE=SCOUT]", "")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Coordinate(context.Background(), env.Env, tt.in)
			require.NoError(t, err)
			assert.False(t, d.Blocked)

			st, err := storage.ReadState(dir)
			require.NoError(t, err)
			assert.Equal(t, tplan.PhaseIntent, st.Phase)
		})
	}
}

func TestCoordinate_MissingRecordAllowsAndLogs(t *testing.T) {
	root := t.TempDir()
	env := newTestEnv(t, root)

	d, err := Coordinate(context.Background(), env.Env, dispatch(root, "ghost", "[T-PLAN PHASE=EXPLORE]", ""))
	require.NoError(t, err)
	assert.False(t, d.Blocked)
	assert.Equal(t, 1, env.logs.FilterMessage("no session record for dispatch, skipping").Len())

	_, err = os.Stat(filepath.Join(root, ".t-plan", "ghost"))
	assert.True(t, os.IsNotExist(err), "coordinator must not create records")
}

func TestCoordinate_TruncatesContractOutput(t *testing.T) {
	root := t.TempDir()
	env := newTestEnv(t, root)
	dir := seedState(t, root, "s", tplan.PhaseIntent, 0)
	writeFile(t, filepath.Join(root, "t-plan", "s", "explore.md"), "stale findings")
	writeFile(t, filepath.Join(dir, "scout.md"), "untouched")

	prompt := "Explore the repo.\nCONTRACT_OUTPUT: ./t-plan/${CLAUDE_SESSION_ID}/explore.md\n"
	_, err := Coordinate(context.Background(), env.Env, dispatch(root, "s", "[T-PLAN PHASE=EXPLORE]", prompt))
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(root, "t-plan", "s", "explore.md"))
	require.NoError(t, err)
	assert.Zero(t, info.Size())

	data, err := os.ReadFile(filepath.Join(dir, "scout.md"))
	require.NoError(t, err)
	assert.Equal(t, "untouched", string(data))
}

func TestCoordinate_ContractOutputAbsentFileIsNotCreated(t *testing.T) {
	root := t.TempDir()
	env := newTestEnv(t, root)
	seedState(t, root, "s", tplan.PhaseIntent, 0)

	_, err := Coordinate(context.Background(), env.Env,
		dispatch(root, "s", "[T-PLAN PHASE=SCOUT]", "CONTRACT_OUTPUT: out/scout.md"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, "out", "scout.md"))
	assert.True(t, os.IsNotExist(err))
}

func TestCoordinate_AbsoluteContractOutput(t *testing.T) {
	root := t.TempDir()
	env := newTestEnv(t, root)
	seedState(t, root, "s", tplan.PhaseIntent, 0)
	target := filepath.Join(t.TempDir(), "explore.md")
	writeFile(t, target, "old")

	_, err := Coordinate(context.Background(), env.Env,
		dispatch(root, "s", "[T-PLAN PHASE=EXPLORE]", "CONTRACT_OUTPUT:"+target))
	require.NoError(t, err)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestCoordinate_FallsBackToProcessCwd(t *testing.T) {
	root := t.TempDir()
	env := newTestEnv(t, root)
	dir := seedState(t, root, "s", tplan.PhaseIntent, 0)

	in := dispatch("", "s", "[T-PLAN PHASE=EXPLORE]", "")
	_, err := Coordinate(context.Background(), env.Env, in)
	require.NoError(t, err)

	st, err := storage.ReadState(dir)
	require.NoError(t, err)
	assert.Equal(t, tplan.PhaseExplore, st.Phase)
}

func TestCoordinate_DryRun(t *testing.T) {
	root := t.TempDir()
	env := newTestEnv(t, root)
	env.DryRun = true
	dir := seedState(t, root, "s", tplan.PhaseIntent, 0)

	_, err := Coordinate(context.Background(), env.Env, dispatch(root, "s", "[T-PLAN PHASE=SCOUT]", ""))
	require.NoError(t, err)

	st, err := storage.ReadState(dir)
	require.NoError(t, err)
	assert.Equal(t, tplan.PhaseIntent, st.Phase)
}
