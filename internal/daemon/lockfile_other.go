//go:build !unix

package daemon

import (
	"fmt"
	"os"
)

// Without flock the lock is a marker file created exclusively next to the
// one opened by Acquire.
func (l *LockFile) platformLock(_ *os.File) error {
	marker, err := os.OpenFile(l.path+".held", os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		if os.IsExist(err) {
			return ErrLockHeld
		}
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	return marker.Close()
}

func (l *LockFile) platformUnlock(_ *os.File) {
	os.Remove(l.path + ".held")
}
