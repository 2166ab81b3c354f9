package watchdog

import (
	"path/filepath"
	"testing"
	"time"
)

func TestWriteReadRemovePIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchdog.pid")
	if err := WritePIDFile(path); err != nil {
		t.Fatal(err)
	}
	pid, err := ReadPIDFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if pid <= 0 {
		t.Fatalf("pid = %d", pid)
	}
	if err := RemovePIDFile(path); err != nil {
		t.Fatal(err)
	}
	if err := RemovePIDFile(path); err != nil {
		t.Fatalf("removing absent pid file should be a no-op, got %v", err)
	}
}

func TestIsStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchdog.pid")
	if IsStale(path) {
		t.Fatal("missing file should not be stale")
	}
	if err := WritePIDFile(path); err != nil {
		t.Fatal(err)
	}
	if IsStale(path) {
		t.Fatal("freshly written file should not be stale")
	}
}

func TestAcquireStartupLockRejectsSecondHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchdog.pid")
	lock, err := AcquireStartupLock(path)
	if err != nil {
		t.Fatal(err)
	}
	defer lock.Unlock()

	if _, err := AcquireStartupLock(path); err == nil {
		t.Fatal("expected second AcquireStartupLock to fail while first holds the lock")
	}

	// Release the first lock and confirm reacquisition succeeds.
	_ = lock.Unlock()
	time.Sleep(10 * time.Millisecond)
	lock2, err := AcquireStartupLock(path)
	if err != nil {
		t.Fatalf("expected to reacquire after unlock: %v", err)
	}
	lock2.Unlock()
}
