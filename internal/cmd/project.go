package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xcawolfe-amzn/overstory/internal/config"
	"github.com/xcawolfe-amzn/overstory/internal/doctor"
	"github.com/xcawolfe-amzn/overstory/internal/eventstore"
	"github.com/xcawolfe-amzn/overstory/internal/mailstore"
	"github.com/xcawolfe-amzn/overstory/internal/metricsstore"
	"github.com/xcawolfe-amzn/overstory/internal/sessionstore"
	"github.com/xcawolfe-amzn/overstory/internal/spawn"
	"github.com/xcawolfe-amzn/overstory/internal/tmux"
	"github.com/xcawolfe-amzn/overstory/internal/worktree"
)

const metadataDirName = ".overstory"

// project bundles every collaborator a command needs, opened once per
// invocation and closed when the command returns.
type project struct {
	Root         string
	MetadataDir  string
	WorktreesDir string
	Config       *config.Config
	Manifest     *config.Manifest
	Sessions     *sessionstore.Store
	Mail         *mailstore.Store
	Events       *eventstore.Store
	Metrics      *metricsstore.Store
	Worktree     *worktree.Manager
	Tmux         *tmux.Tmux
}

// openProject locates the project root (the nearest ancestor of the
// working directory containing .overstory) and opens every store.
func openProject() (*project, error) {
	root, err := findProjectRoot()
	if err != nil {
		return nil, err
	}
	metadataDir := filepath.Join(root, metadataDirName)

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	manifest, err := config.LoadManifest(root)
	if err != nil {
		return nil, err
	}
	sessions, err := sessionstore.Open(filepath.Join(metadataDir, "sessions.db"))
	if err != nil {
		return nil, err
	}
	mail, err := mailstore.Open(filepath.Join(metadataDir, "mail.db"))
	if err != nil {
		sessions.Close()
		return nil, err
	}
	events, err := eventstore.Open(filepath.Join(metadataDir, "events.db"))
	if err != nil {
		sessions.Close()
		mail.Close()
		return nil, err
	}
	metrics, err := metricsstore.Open(filepath.Join(metadataDir, "metrics.db"))
	if err != nil {
		sessions.Close()
		mail.Close()
		events.Close()
		return nil, err
	}

	return &project{
		Root:         root,
		MetadataDir:  metadataDir,
		WorktreesDir: filepath.Join(metadataDir, "worktrees"),
		Config:       cfg,
		Manifest:     manifest,
		Sessions:     sessions,
		Mail:         mail,
		Events:       events,
		Metrics:      metrics,
		Worktree:     worktree.NewManager(root, metadataDir),
		Tmux:         tmux.NewTmux(cfg.TmuxBinary),
	}, nil
}

func (p *project) Close() {
	p.Sessions.Close()
	p.Mail.Close()
	p.Events.Close()
	p.Metrics.Close()
}

// findProjectRoot walks up from the current directory looking for
// .overstory, the usual "nearest ancestor" convention for locating a
// workspace root.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if info, err := os.Stat(filepath.Join(dir, metadataDirName)); err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not an overstory project (no %s found in any parent directory); run 'overstory init' first", metadataDirName)
		}
		dir = parent
	}
}

// spawnDeps builds the spawn.Deps collaborator bundle for p, pinning
// coordinator/monitor agents to the project root.
func (p *project) spawnDeps() spawn.Deps {
	return spawn.Deps{
		Config:       p.Config,
		Manifest:     p.Manifest,
		Sessions:     p.Sessions,
		Worktree:     p.Worktree,
		Tmux:         p.Tmux,
		Tracker:      spawn.Tracker{},
		WorktreesDir: p.WorktreesDir,
		MetadataDir:  p.MetadataDir,
		ProjectRoot:  p.Root,
	}
}

// doctorContext builds the doctor.CheckContext for p.
func (p *project) doctorContext(verbose bool) *doctor.CheckContext {
	return &doctor.CheckContext{
		ProjectRoot:  p.Root,
		MetadataDir:  p.MetadataDir,
		WorktreesDir: p.WorktreesDir,
		Verbose:      verbose,
	}
}
