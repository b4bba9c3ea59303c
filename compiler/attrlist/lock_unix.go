//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd

package attrlist

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFile blocks until an exclusive lock on the whole file is held. The lock
// belongs to the open file description, so two descriptors of the same file
// exclude each other even within one process.
func lockFile(f *os.File) error {
	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX)
		if err != unix.EINTR {
			return err
		}
	}
}

func unlockFile(f *os.File) error {
	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_UN)
		if err != unix.EINTR {
			return err
		}
	}
}
