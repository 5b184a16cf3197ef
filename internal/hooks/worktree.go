package hooks

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/shlex"
	"go.uber.org/zap"
)

// blockedCommands are argv prefixes that bypass managed worktrees.
var blockedCommands = [][]string{
	{"git", "worktree", "add"},
	{"git", "worktree", "remove"},
	{"git", "worktree", "prune"},
	{"git", "worktree", "move"},
	{"git", "worktree", "repair"},
	{"git", "branch", "-D"},
}

const worktreeGuide = `Blocked raw git worktree/branch command: %s

This bypasses worktree management. Use the CLI instead:
  /worktree delete <name>      remove a worktree safely
  /worktree prune --force      clean up several at once
  /worktree list [--json]      inspect managed worktrees`

// WorktreeGuard blocks shell commands that manage git worktrees or force
// delete branches directly.
func WorktreeGuard(_ context.Context, env *Env, in *Input) (Decision, error) {
	if in.ToolName != "" && in.ToolName != "Bash" {
		return Allow(), nil
	}

	argv, ok := commandArgv(in)
	if !ok {
		return Allow(), nil
	}

	for _, prefix := range blockedCommands {
		if hasPrefix(argv, prefix) {
			cmd := quoteArgv(argv)
			env.Log.Debug("blocked worktree command", zap.String("command", cmd))
			return Block(fmt.Sprintf(worktreeGuide, cmd)), nil
		}
	}
	return Allow(), nil
}

// commandArgv extracts the command from tool_input.command or a top-level
// command field. Strings are split with shell rules; arrays are used as is.
func commandArgv(in *Input) ([]string, bool) {
	raw, ok := in.ToolInput["command"]
	if !ok {
		raw, ok = in.Raw["command"]
	}
	if !ok {
		return nil, false
	}

	switch cmd := raw.(type) {
	case string:
		argv, err := shlex.Split(cmd)
		if err != nil || len(argv) == 0 {
			return nil, false
		}
		return argv, true
	case []any:
		argv := make([]string, 0, len(cmd))
		for _, part := range cmd {
			s, ok := part.(string)
			if !ok {
				return nil, false
			}
			argv = append(argv, s)
		}
		return argv, len(argv) > 0
	default:
		return nil, false
	}
}

func hasPrefix(argv, prefix []string) bool {
	if len(argv) < len(prefix) {
		return false
	}
	for i, p := range prefix {
		if argv[i] != p {
			return false
		}
	}
	return true
}

var safeShellWord = regexp.MustCompile(`^[A-Za-z0-9@%+=:,./_-]+$`)

// quoteArgv renders argv so it can be pasted back into a shell.
func quoteArgv(argv []string) string {
	quoted := make([]string, len(argv))
	for i, part := range argv {
		if safeShellWord.MatchString(part) {
			quoted[i] = part
			continue
		}
		quoted[i] = "'" + strings.ReplaceAll(part, "'", `'"'"'`) + "'"
	}
	return strings.Join(quoted, " ")
}
