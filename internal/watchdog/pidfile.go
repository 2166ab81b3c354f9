package watchdog

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// staleAfter is how old an unlocked PID file must be before a new
// daemon is allowed to remove and replace it (defense against a crash
// that left a file behind without releasing its flock).
const staleAfter = 24 * time.Hour

// AcquireStartupLock enforces the "PID file absent or stale before
// starting" precondition: it takes an exclusive, non-blocking flock on
// path+".lock", so two daemons racing to start never both pass the
// absent-or-stale check. Callers must keep the returned lock held for
// the daemon's lifetime and Unlock() it on shutdown.
func AcquireStartupLock(path string) (*flock.Flock, error) {
	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("another watchdog already holds the startup lock for %s", path)
	}
	return lock, nil
}

// WritePIDFile writes the current process PID to path. Callers acquire
// the startup lock separately via AcquireStartupLock before calling this.
func WritePIDFile(path string) error {
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644)
}

// RemovePIDFile removes the PID file, called on graceful shutdown before
// the process exits.
func RemovePIDFile(path string) error {
	err := os.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// IsStale reports whether the PID file at path is old enough that a new
// daemon may remove and replace it without a live flock check.
func IsStale(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) > staleAfter
}

// ReadPIDFile returns the PID recorded at path.
func ReadPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parsing pid file %s: %w", path, err)
	}
	return pid, nil
}
