package compiler

import "omibyte.io/preservenone/ir"

// Statistics counts what the preserve-none passes did.
type Statistics struct {
	// NumPreserveNone is the number of functions found or made
	// preserve-none. Every function is counted once, no matter how many
	// passes see it marked.
	NumPreserveNone int `json:"numPreserveNone"`

	// NumPreserveNoneInfected is the number of callers infected by
	// propagation.
	NumPreserveNoneInfected int `json:"numPreserveNoneInfected"`

	// NumRecorded is the number of names appended to the function list.
	NumRecorded int `json:"numRecorded"`

	// NumApplied is the number of functions marked from a loaded list.
	NumApplied int `json:"numApplied"`

	marked map[*ir.Function]struct{}
}

// countMarked counts fn towards NumPreserveNone unless it was counted
// before.
func (s *Statistics) countMarked(fn *ir.Function) {
	if s.marked == nil {
		s.marked = map[*ir.Function]struct{}{}
	}
	if _, ok := s.marked[fn]; ok {
		return
	}
	s.marked[fn] = struct{}{}
	s.NumPreserveNone++
}
