// Package spawn implements the critical-path pipeline that turns a
// (taskId, capability, name, parent, depth, ...) request into a running,
// addressable agent. It is the only writer that creates agents, touching
// config, the run registry, the session store, the worktree manager, the
// overlay renderer, the hook-guard engine, the tracker, the identity
// store, and the multiplexer, in that order.
//
// It follows the same "resolve config, build command, create
// multiplexer session, set env, optional wait/verify, then record"
// structure used elsewhere in this repo for standing up a supervised
// process, generalized to a full precondition and staggering rule set,
// and split into numbered steps so failure semantics — every error
// carries the agent name — can be enforced uniformly.
package spawn

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/xcawolfe-amzn/overstory/internal/config"
	"github.com/xcawolfe-amzn/overstory/internal/errs"
	"github.com/xcawolfe-amzn/overstory/internal/hookguard"
	"github.com/xcawolfe-amzn/overstory/internal/identity"
	"github.com/xcawolfe-amzn/overstory/internal/overlay"
	"github.com/xcawolfe-amzn/overstory/internal/sessionstore"
	"github.com/xcawolfe-amzn/overstory/internal/style"
	"github.com/xcawolfe-amzn/overstory/internal/tmux"
	"github.com/xcawolfe-amzn/overstory/internal/worktree"
)

// Tracker is the external task-tracker collaborator: the tracker itself
// is out of scope, this is the narrow contract the spawn pipeline needs
// from it.
type Tracker struct {
	// IssueStatus returns the tracker status of taskID ("open",
	// "in_progress", ...). A nil func treats every task as valid,
	// matching SkipTrackerCheck semantics for tests and CLIs that don't
	// wire a tracker.
	IssueStatus func(taskID string) (string, error)
	// Claim marks taskID claimed by agentName. Best-effort: failures are
	// logged, never fatal.
	Claim func(taskID, agentName string) error
}

// Deps bundles every collaborator the pipeline needs.
type Deps struct {
	Config       *config.Config
	Manifest     *config.Manifest
	Sessions     *sessionstore.Store
	Worktree     *worktree.Manager
	Tmux         *tmux.Tmux
	Tracker      Tracker
	WorktreesDir string
	MetadataDir  string
	// ProjectRoot is where coordinator/monitor agents run, pinned
	// without an owned worktree.
	ProjectRoot string
	Now          func() time.Time // overridable for tests; defaults to time.Now
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Request is the spawn pipeline's input.
type Request struct {
	TaskID          string
	Capability      config.Capability
	Name            string
	Parent          string
	Depth           int
	FileScope       []string
	SpecPath        string
	DomainTags      []string
	DomainKnowledge string
	SkipScout       bool
	BypassHierarchy bool
}

// Result is what a successful spawn produces.
type Result struct {
	Session      *sessionstore.Session
	RunID        string
	WorktreePath string
	Branch       string
}

func fail(name string, code errs.Code, format string, args ...any) error {
	e := errs.New(code, format, args...)
	if name != "" {
		e = e.WithContext("agentName", name)
	}
	return e
}

// Spawn runs the full 16-step ordered pipeline. Any error
// after the worktree is created triggers best-effort worktree removal;
// errors after the multiplexer session is created do not kill the
// session automatically.
func Spawn(deps Deps, req Request) (*Result, error) {
	now := deps.now()

	// --- Preconditions ---
	pinnedCapability := req.Capability == config.CapabilityCoordinator || req.Capability == config.CapabilityMonitor
	if req.TaskID == "" && !pinnedCapability {
		return nil, fail(req.Name, errs.Validation, "taskId must not be empty")
	}
	if req.Name == "" {
		return nil, fail(req.Name, errs.Validation, "name must not be empty")
	}
	existing, err := deps.Sessions.GetByName(req.Name)
	if err != nil {
		return nil, fail(req.Name, errs.Generic, "checking existing session: %v", err)
	}
	if existing != nil && !existing.State.Terminal() {
		return nil, fail(req.Name, errs.Validation, "session %q already exists and is not terminal", req.Name)
	}
	if os.Geteuid() == 0 && runtime.GOOS != "windows" {
		return nil, fail(req.Name, errs.Validation, "refusing to spawn as superuser")
	}
	if req.Depth > deps.Config.MaxDepth {
		return nil, fail(req.Name, errs.Validation, "depth %d exceeds maxDepth %d", req.Depth, deps.Config.MaxDepth)
	}
	if req.Parent == "" && req.Capability != config.CapabilityLead && !req.BypassHierarchy {
		return nil, fail(req.Name, errs.Hierarchy, "capability %q requires a parent (only lead may spawn without one)", req.Capability)
	}
	if !deps.Manifest.Has(req.Capability) {
		return nil, fail(req.Name, errs.Validation, "capability %q not present in manifest", req.Capability)
	}

	active, err := deps.Sessions.GetActive()
	if err != nil {
		return nil, fail(req.Name, errs.Generic, "listing active sessions: %v", err)
	}
	if deps.Config.MaxConcurrent > 0 && len(active) >= deps.Config.MaxConcurrent {
		return nil, fail(req.Name, errs.Validation, "maxConcurrent %d reached", deps.Config.MaxConcurrent)
	}

	holder := ""
	if req.TaskID != "" {
		for _, s := range active {
			if s.TaskID == req.TaskID && s.Name != req.Parent {
				holder = s.Name
				break
			}
		}
	}
	if holder != "" {
		return nil, fail(req.Name, errs.Validation, "task %q is already held by non-terminal session %q", req.TaskID, holder)
	}

	if req.SpecPath != "" {
		resolved, err := resolveSpecPath(req.SpecPath)
		if err != nil {
			return nil, fail(req.Name, errs.Validation, "spec path %q: %v", req.SpecPath, err)
		}
		req.SpecPath = resolved
	}

	if req.Capability == config.CapabilityBuilder && req.Parent != "" {
		spawnedScout, err := parentEverSpawnedScout(deps, req.Parent)
		if err == nil && !spawnedScout {
			style.PrintWarning("parent %s has never spawned a scout before spawning builder %s", req.Parent, req.Name)
		}
	}

	// Step 1/2: manifest already validated above; resolve or create run.
	run, err := resolveOrCreateRun(deps.MetadataDir, deps.Sessions)
	if err != nil {
		return nil, fail(req.Name, errs.Generic, "resolving run: %v", err)
	}
	if deps.Config.MaxSessionsPerRun > 0 && run.AgentCount >= deps.Config.MaxSessionsPerRun {
		return nil, fail(req.Name, errs.Validation, "maxSessionsPerRun %d reached for run %s", deps.Config.MaxSessionsPerRun, run.ID)
	}

	// Step 4: stagger.
	if delay := calculateStaggerDelay(active, deps.Config.StaggerDelayMs, now); delay > 0 {
		time.Sleep(delay)
	}

	// Step 5: tracker issue-state validation.
	if !deps.Config.SkipTrackerCheck && deps.Tracker.IssueStatus != nil {
		status, err := deps.Tracker.IssueStatus(req.TaskID)
		if err != nil {
			return nil, fail(req.Name, errs.Tracker, "checking tracker status for %q: %v", req.TaskID, err)
		}
		if status != "open" && status != "in_progress" {
			return nil, fail(req.Name, errs.Tracker, "task %q has status %q, expected open or in_progress", req.TaskID, status)
		}
	}

	// Step 6: worktree + branch. Coordinator/monitor are pinned to the
	// project root with no owned worktree or branch.
	var worktreePath, branch string
	cleanup := func() {}
	if pinnedCapability {
		worktreePath = deps.ProjectRoot
	} else {
		var err error
		worktreePath, branch, err = deps.Worktree.Create(req.Name, req.TaskID, deps.WorktreesDir)
		if err != nil {
			return nil, fail(req.Name, errs.Worktree, "%v", err)
		}
		cleanup = func() {
			_ = deps.Worktree.Remove(branch, worktreePath, worktree.RemoveOptions{Force: true, ForceBranch: true})
		}
	}

	def := deps.Manifest.Get(req.Capability)

	// Step 7: overlay document.
	if err := overlay.Render(overlay.Data{
		Name: req.Name, TaskID: req.TaskID, SpecPath: req.SpecPath, Branch: branch,
		WorktreePath: worktreePath, FileScope: req.FileScope, DomainTags: req.DomainTags,
		Parent: req.Parent, Depth: req.Depth, CanSpawn: req.Capability != config.CapabilityBuilder,
		Capability: string(req.Capability), BaseDefinition: def.Definition,
		DomainKnowledge: req.DomainKnowledge, SkipScout: req.SkipScout,
		QualityGates: def.QualityGate, TrackerCLI: deps.Config.TrackerCLI,
	}); err != nil {
		cleanup()
		return nil, fail(req.Name, errs.Worktree, "rendering overlay: %v", err)
	}

	// Step 8: hook guards.
	guards := hookguard.BuildGuards(req.Capability, req.Name, deps.Config.TrackerCLI)
	if _, err := hookguard.Deploy(worktreePath, guards); err != nil {
		cleanup()
		return nil, fail(req.Name, errs.Worktree, "deploying hook guards: %v", err)
	}

	// Step 9: claim tracker issue (best-effort).
	if deps.Tracker.Claim != nil {
		if err := deps.Tracker.Claim(req.TaskID, req.Name); err != nil {
			style.PrintWarning("tracker claim failed for %s: %v", req.Name, err)
		}
	}

	// Step 10: identity record.
	idPath := identity.Path(deps.MetadataDir, req.Name)
	if _, err := identity.EnsureCreated(idPath, req.Name, string(req.Capability), now); err != nil {
		cleanup()
		return nil, fail(req.Name, errs.Agent, "creating identity record: %v", err)
	}

	// Step 11: preflight.
	if !deps.Tmux.IsAvailable() {
		cleanup()
		return nil, fail(req.Name, errs.Agent, "multiplexer binary not available")
	}

	// Step 12: create multiplexer session.
	tmuxName := fmt.Sprintf("%s-%s", deps.Config.ProjectName, req.Name)
	env := map[string]string{
		"OVERSTORY_AGENT_NAME":     req.Name,
		"OVERSTORY_WORKTREE_PATH":  worktreePath,
		"OVERSTORY_MODEL":          def.Model,
	}
	for k, v := range def.Env {
		env[k] = v
	}
	command := buildLaunchCommand(def.Model)
	if err := deps.Tmux.NewSessionWithCommand(tmuxName, worktreePath, command, env); err != nil {
		cleanup()
		return nil, fail(req.Name, errs.Agent, "creating multiplexer session: %v", err)
	}

	// Step 13: record session before anything that could emit a hook
	// event, then bump the run's agent count.
	pid, err := deps.Tmux.GetPanePID(tmuxName)
	if err != nil {
		style.PrintWarning("%s: reading pane pid: %v", req.Name, err)
	}
	sess := &sessionstore.Session{
		Name: req.Name, Capability: string(req.Capability), Depth: req.Depth,
		ParentAgent: req.Parent, TaskID: req.TaskID, Branch: branch,
		WorktreePath: worktreePath, TmuxSession: tmuxName, State: sessionstore.StateBooting,
		PID: pid, RunID: run.ID,
	}
	if err := deps.Sessions.Upsert(sess); err != nil {
		cleanup()
		return nil, fail(req.Name, errs.Agent, "recording session: %v", err)
	}
	if err := deps.Sessions.IncrementAgentCount(run.ID); err != nil {
		style.PrintWarning("incrementing agent count for run %s: %v", run.ID, err)
	}

	// Step 14: wait for TUI ready marker.
	readyTimeout := time.Duration(deps.Config.TUIReadyTimeoutMs) * time.Millisecond
	readyPoll := time.Duration(deps.Config.TUIReadyPollMs) * time.Millisecond
	if err := deps.Tmux.WaitForReadyMarker(tmuxName, deps.Config.ReadyMarker, readyTimeout, readyPoll); err != nil {
		style.PrintWarning("%s: TUI ready marker not observed: %v", req.Name, err)
	}

	// Step 15: startup beacon + delayed empty submissions.
	beacon := FormatStartupBeacon(BeaconData{
		Name: req.Name, Capability: string(req.Capability), TaskID: req.TaskID,
		Depth: req.Depth, Parent: req.Parent, TrackerCLI: deps.Config.TrackerCLI,
	}, now)
	if err := deps.Tmux.NudgeSession(tmuxName, beacon); err != nil {
		style.PrintWarning("%s: sending startup beacon: %v", req.Name, err)
	}
	for _, d := range BeaconDelays {
		time.Sleep(d)
		_ = deps.Tmux.SendKeysDebounced(tmuxName, "", 0)
	}

	return &Result{Session: sess, RunID: run.ID, WorktreePath: worktreePath, Branch: branch}, nil
}

func resolveSpecPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(abs); err != nil {
		return "", err
	}
	return abs, nil
}

func parentEverSpawnedScout(deps Deps, parent string) (bool, error) {
	all, err := deps.Sessions.GetAll()
	if err != nil {
		return false, err
	}
	for _, s := range all {
		if s.ParentAgent == parent && s.Capability == string(config.CapabilityScout) {
			return true, nil
		}
	}
	return false, nil
}

func buildLaunchCommand(model string) string {
	if model == "" || model == "default" {
		return "claude"
	}
	return fmt.Sprintf("claude --model %s", model)
}
