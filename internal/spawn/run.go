package spawn

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/xcawolfe-amzn/overstory/internal/sessionstore"
)

// currentRunPointerName is the advisory pointer file at
// .overstory/current-run.txt.
const currentRunPointerName = "current-run.txt"

// resolveOrCreateRun reads the current-run pointer file; if absent, it
// creates a new run and writes the pointer. The read-or-create section
// is guarded by a file lock since two processes racing to create the
// first run of a project must not each create a distinct run row.
func resolveOrCreateRun(metadataDir string, sessions *sessionstore.Store) (*sessionstore.Run, error) {
	pointerPath := filepath.Join(metadataDir, currentRunPointerName)
	lock := flock.New(pointerPath + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, err
	}
	defer lock.Unlock()

	if data, err := os.ReadFile(pointerPath); err == nil {
		id := strings.TrimSpace(string(data))
		if id != "" {
			if run, err := sessions.GetRun(id); err == nil && run != nil {
				return run, nil
			}
		}
	}

	run, err := sessions.CreateRun(uuid.New().String())
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(metadataDir, 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(pointerPath, []byte(run.ID+"\n"), 0o644); err != nil {
		return nil, err
	}
	return run, nil
}
