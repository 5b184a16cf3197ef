package hooks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// planStatusRe matches the review section a reviewed plan carries.
var planStatusRe = regexp.MustCompile(`(?m)## Plan Review Status\s*\nReviews:\s*(\d+)/\d+\s*\nStatus:\s*(\w+)`)

// planStatus is the parsed review section of a plan.
type planStatus struct {
	Present  bool
	Reviews  int
	Approved bool
}

func parsePlanStatus(plan string) planStatus {
	m := planStatusRe.FindStringSubmatch(plan)
	if m == nil {
		return planStatus{}
	}
	n, _ := strconv.Atoi(m[1])
	return planStatus{
		Present:  true,
		Reviews:  n,
		Approved: strings.ToUpper(m[2]) == "APPROVED",
	}
}

// findPlanFile returns the most recently modified *.md in <cwd>/.claude/plans,
// falling back to fallbackDir when that directory does not exist.
func findPlanFile(cwd, fallbackDir string) (string, bool) {
	dir := filepath.Join(cwd, ".claude", "plans")
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		if fallbackDir == "" {
			return "", false
		}
		dir = fallbackDir
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil || len(matches) == 0 {
		return "", false
	}

	var newest string
	var newestMod int64
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if mod := info.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest, newestMod = path, mod
		}
	}
	return newest, newest != ""
}

const reviewInstructions = `BLOCKED: Plan requires review before execution.

Plan file: %s
Review cycle: %d/%d

Review the plan with two independent agents using the Task tool:
  1. an architecture reviewer challenging structural decisions
  2. a simplification reviewer looking for unnecessary complexity
Then resume each agent with the other's findings and settle disputed points.

Update the plan with the agreed changes and add:

## Plan Review Status
Reviews: %d/%d
Status: APPROVED

Then call ExitPlanMode again.

Bypass: add %s to the plan for trivial changes; plans under %d lines skip review.`

// PlanReview blocks ExitPlanMode until the current plan records an approved
// review. After the configured number of cycles it lets the plan through
// with a warning.
func PlanReview(_ context.Context, env *Env, in *Input) (Decision, error) {
	if in.ToolName != "ExitPlanMode" {
		return Allow(), nil
	}
	cfg := env.Config.PlanReview

	path, ok := findPlanFile(env.workdir(in), cfg.PlansDir)
	if !ok {
		return Allow(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		env.Log.Debug("plan unreadable, allowing", zap.String("path", path), zap.Error(err))
		return Allow(), nil
	}
	plan := string(data)

	if cfg.BypassMarker != "" && strings.Contains(plan, cfg.BypassMarker) {
		return Allow(), nil
	}
	if lines := len(strings.Split(strings.TrimSpace(plan), "\n")); lines < cfg.MinLines {
		return Allow(), nil
	}

	status := parsePlanStatus(plan)
	if status.Approved {
		return Allow(), nil
	}

	if status.Reviews >= cfg.MaxReviews {
		msg, err := json.Marshal(map[string]string{
			"systemMessage": fmt.Sprintf("Warning: Plan approved after %d review cycles without full consensus.", cfg.MaxReviews),
		})
		if err != nil {
			return Allow(), err
		}
		return Decision{Stdout: string(msg)}, nil
	}

	next := status.Reviews + 1
	return Block(fmt.Sprintf(reviewInstructions,
		path, next, cfg.MaxReviews, next, cfg.MaxReviews, cfg.BypassMarker, cfg.MinLines)), nil
}
