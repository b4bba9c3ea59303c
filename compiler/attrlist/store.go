// Package attrlist persists the set of preserve-none functions in a plain
// text file shared between compiler processes.
//
// The file holds one function name per line and is only ever appended to.
// Writers hold an exclusive advisory lock for the duration of a single
// append. Readers load the whole file once without locking.
package attrlist

import (
	"io/fs"
	"os"

	"github.com/pkg/errors"

	"omibyte.io/preservenone/ir"
)

// Store is the view of one compiler pass on a function list file. A store is
// used either to record functions or to apply the recorded functions, not
// both.
type Store struct {
	path   string
	names  NameSet
	file   *os.File
	loaded bool
	closed bool
}

func NewStore(path string) *Store {
	return &Store{
		path:  path,
		names: NameSet{},
	}
}

func (s *Store) Path() string {
	return s.path
}

// Names returns the names recorded or loaded so far.
func (s *Store) Names() NameSet {
	return s.names
}

// Record appends the name of fn to the file unless this store has already
// recorded it. It reports whether a line was appended. If the lock could not
// be released after the line was written, Record returns true along with an
// ErrUnlock error.
func (s *Store) Record(fn *ir.Function) (bool, error) {
	if s.closed {
		return false, ErrClosed
	}

	// Nothing to record for a function without a body here.
	if fn.IsDeclaration() {
		return false, nil
	}

	if s.names.Has(fn.Name) {
		return false, nil
	}

	if s.file == nil {
		if err := checkRegularFile(s.path); err != nil && !errors.Is(err, ErrNotFound) {
			return false, err
		}

		f, err := os.OpenFile(s.path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return false, errors.Wrapf(ErrOpen, "%s: %v", s.path, err)
		}
		s.file = f
	}

	err := withLock(s.file, func() error {
		// A single write so that concurrent appenders never interleave.
		if _, err := s.file.WriteString(fn.Name + "\n"); err != nil {
			return errors.Wrapf(ErrWrite, "%s: %v", s.path, err)
		}
		return nil
	})

	switch {
	case err == nil:
	case errors.Is(err, ErrUnlock):
		// The line is already in the file.
		s.names.Add(fn.Name)
		return true, err
	default:
		return false, err
	}

	s.names.Add(fn.Name)
	return true, nil
}

// Apply marks fn as preserve-none if its name is listed in the file. The
// file is read on the first call only and the names are kept for the
// lifetime of the store. A failure to read the file is returned once, after
// which the list is treated as empty.
func (s *Store) Apply(fn *ir.Function) (bool, error) {
	if s.closed {
		return false, ErrClosed
	}

	if fn.IsDeclaration() {
		return false, nil
	}

	if !s.loaded {
		s.loaded = true
		names, err := Load(s.path)
		if err != nil {
			return false, err
		}
		s.names = names
	}

	if s.names.Has(fn.Name) {
		fn.AddFnAttr(ir.AttrNoCalleeSavedRegisters, "1")
		return true, nil
	}
	return false, nil
}

// Close releases the file handle held by the store.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if s.file != nil {
		err := s.file.Close()
		s.file = nil
		return errors.WithStack(err)
	}
	return nil
}

// Load reads the function list at path.
func Load(path string) (NameSet, error) {
	if err := checkRegularFile(path); err != nil {
		return NameSet{}, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return NameSet{}, errors.Wrapf(ErrRead, "%s: %v", path, err)
	}
	return ParseNames(b), nil
}

func checkRegularFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errors.Wrapf(ErrNotFound, "%s", path)
		}
		return errors.Wrapf(ErrOpen, "%s: %v", path, err)
	}
	if !info.Mode().IsRegular() {
		return errors.Wrapf(ErrNotRegularFile, "%s", path)
	}
	return nil
}

// withLock runs fn while holding an exclusive lock on f. The lock is released
// on every path once it was acquired.
func withLock(f *os.File, fn func() error) (err error) {
	if lockErr := lockFile(f); lockErr != nil {
		return errors.Wrapf(ErrLock, "%s: %v", f.Name(), lockErr)
	}

	defer func() {
		if unlockErr := unlockFile(f); unlockErr != nil && err == nil {
			err = errors.Wrapf(ErrUnlock, "%s: %v", f.Name(), unlockErr)
		}
	}()

	return fn()
}
