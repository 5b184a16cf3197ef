// Package hooks implements the host event handlers: session initialization,
// phase coordination on dispatch, contract enforcement on subagent stop, and
// the worktree and plan-review guards.
//
// Every handler runs inside Guard. Internal faults allow the action; only an
// explicit Block decision stops it.
package hooks

import (
	"context"
	"errors"
	"io"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/boshu2/conductor/internal/config"
	"github.com/boshu2/conductor/internal/storage"
	"github.com/boshu2/conductor/internal/tplan"
)

// Handler evaluates one event. A returned error means an internal fault.
type Handler func(ctx context.Context, env *Env, in *Input) (Decision, error)

// Env carries the collaborators shared by every handler.
type Env struct {
	Config  *config.Config
	Store   *storage.StateStore
	Markers *tplan.Markers
	Log     *zap.Logger

	// DryRun logs writes instead of performing them.
	DryRun bool

	Now   func() time.Time
	Getwd func() (string, error)
}

// NewEnv wires an Env from configuration.
func NewEnv(cfg *config.Config, log *zap.Logger) *Env {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Env{
		Config:  cfg,
		Store:   storage.NewStateStore(storage.WithMarkerDir(cfg.MarkerDir)),
		Markers: tplan.NewMarkers(cfg.ProtocolTag, cfg.SessionPlaceholder),
		Log:     log,
		Now:     func() time.Time { return time.Now().UTC() },
		Getwd:   os.Getwd,
	}
}

// workdir returns the event cwd, or the process working directory.
func (e *Env) workdir(in *Input) string {
	if in.Cwd != "" {
		return in.Cwd
	}
	if wd, err := e.Getwd(); err == nil {
		return wd
	}
	return "."
}

var registry = map[string]Handler{
	"session-init":   SessionInit,
	"coordinate":     Coordinate,
	"contract":       EnforceContract,
	"worktree-guard": WorktreeGuard,
	"plan-review":    PlanReview,
}

// Names lists the registered hook names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the handler registered under name.
func Lookup(name string) (Handler, bool) {
	h, ok := registry[name]
	return h, ok
}

// Run reads one event from r and evaluates it with h under Guard.
// Empty or undecodable input allows.
func Run(ctx context.Context, env *Env, name string, h Handler, r io.Reader) Decision {
	return Guard(env.Log, name, func() (Decision, error) {
		in, err := ReadInput(r)
		if errors.Is(err, ErrEmptyInput) {
			env.Log.Debug("no hook input", zap.String("hook", name))
			return Allow(), nil
		}
		if err != nil {
			return Allow(), err
		}
		return h(ctx, env, in)
	})
}
