package attrlist

import (
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// NameSet is a set of function names.
type NameSet map[string]struct{}

// ParseNames returns the set of names listed in b, one per line. Leading and
// trailing whitespace is ignored and blank lines are skipped.
func ParseNames(b []byte) NameSet {
	names := NameSet{}
	for _, line := range strings.Split(string(b), "\n") {
		if name := strings.TrimSpace(line); len(name) > 0 {
			names.Add(name)
		}
	}
	return names
}

// Add inserts the name and reports whether it was not present before.
func (s NameSet) Add(name string) bool {
	if _, ok := s[name]; ok {
		return false
	}
	s[name] = struct{}{}
	return true
}

func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s NameSet) Len() int {
	return len(s)
}

// Sorted returns the names in lexical order.
func (s NameSet) Sorted() []string {
	names := maps.Keys(s)
	slices.Sort(names)
	return names
}
