// Package applyengine implements identedit's Apply Engine: the per-file
// exclusive advisory lock, the re-parse/re-resolve/verify/splice/write
// state machine, and the two-phase validate-all-then-commit-all barrier
// across files (spec.md 4.8). Grounded on the teacher's
// core/atomicwriter.go (FileLock with PID-file stale-lock detection,
// temp-file+fsync+rename atomic write).
package applyengine

import (
	"fmt"
	"os"
	"time"

	"github.com/oxhq/identedit/internal/apperr"
)

// fileLock is an exclusive advisory lock realized as a sibling ".lock"
// file containing the holder's PID, so a crashed holder's lock can be
// detected as stale and reclaimed.
type fileLock struct {
	path string
	file *os.File
}

const lockStaleAfter = 30 * time.Second

// acquireLock creates path+".identedit.lock" exclusively. If the lock file
// already exists, is younger than lockStaleAfter, and its PID is alive,
// returns resource_busy. A lock file that is older than lockStaleAfter, or
// whose PID is dead (or unreadable), is treated as stale and reclaimed.
func acquireLock(path string) (*fileLock, error) {
	lockPath := path + ".identedit.lock"

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err == nil {
		fmt.Fprintf(f, "%d\n", os.Getpid())
		f.Sync()
		return &fileLock{path: lockPath, file: f}, nil
	}
	if !os.IsExist(err) {
		return nil, apperr.Wrap(apperr.IOError, "acquiring lock", err)
	}

	if isStale(lockPath) {
		os.Remove(lockPath)
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, apperr.New(apperr.ResourceBusy, path+": lock held by another process")
		}
		fmt.Fprintf(f, "%d\n", os.Getpid())
		f.Sync()
		return &fileLock{path: lockPath, file: f}, nil
	}

	return nil, apperr.New(apperr.ResourceBusy, path+": lock held by another process")
}

func (l *fileLock) release() {
	if l == nil {
		return
	}
	if l.file != nil {
		l.file.Close()
	}
	os.Remove(l.path)
}

func isStale(lockPath string) bool {
	info, err := os.Stat(lockPath)
	if err != nil {
		return true
	}
	if time.Since(info.ModTime()) > lockStaleAfter {
		return true
	}
	content, err := os.ReadFile(lockPath)
	if err != nil {
		return true
	}
	var pid int
	if _, err := fmt.Sscanf(string(content), "%d", &pid); err != nil {
		return true
	}
	return !processAlive(pid)
}

