package attrlist

import "errors"

var (
	ErrNotRegularFile  = errors.New("function list is not a regular file")
	ErrNotFound        = errors.New("function list does not exist")
	ErrOpen            = errors.New("failed to open function list")
	ErrRead            = errors.New("failed to read function list")
	ErrWrite           = errors.New("failed to write function list")
	ErrLock            = errors.New("unable to lock function list")
	ErrUnlock          = errors.New("unable to unlock function list")
	ErrLockUnsupported = errors.New("file locking is not supported on this platform")
	ErrClosed          = errors.New("function list store is closed")
)
