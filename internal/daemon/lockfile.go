package daemon

import (
	"errors"
	"fmt"
	"os"
)

var ErrLockHeld = errors.New("another outliner daemon holds the socket")

// LockFile is an exclusive advisory lock held for the daemon's lifetime.
type LockFile struct {
	path string
	file *os.File
}

func NewLockFile(path string) *LockFile {
	return &LockFile{path: path}
}

func (l *LockFile) Acquire() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}
	if err := l.platformLock(f); err != nil {
		f.Close()
		return err
	}
	l.file = f
	return nil
}

// Release unlocks and removes the lock file. It is a no-op when the lock is
// not held.
func (l *LockFile) Release() error {
	if l.file == nil {
		return nil
	}
	l.platformUnlock(l.file)
	err := l.file.Close()
	l.file = nil
	os.Remove(l.path)
	return err
}

func (l *LockFile) IsLocked() bool {
	return l.file != nil
}
