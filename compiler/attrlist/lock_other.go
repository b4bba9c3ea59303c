//go:build !(darwin || dragonfly || freebsd || linux || netbsd || openbsd || windows)

package attrlist

import "os"

func lockFile(f *os.File) error {
	return ErrLockUnsupported
}

func unlockFile(f *os.File) error {
	return ErrLockUnsupported
}
