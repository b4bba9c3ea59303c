package compiler

import (
	"errors"

	"omibyte.io/preservenone/compiler/attrlist"
	"omibyte.io/preservenone/ir"
)

// PreserveNonePass shares preserve-none functions between compiler
// processes through a function list. Depending on the options it either
// appends every preserve-none function it sees to the list, or marks the
// functions named in the list. Writing takes priority when both lists are
// configured.
type PreserveNonePass struct {
	options Options
	log     *Logger
	stats   *Statistics
	store   *attrlist.Store
}

func NewPreserveNonePass(options Options, stats *Statistics) *PreserveNonePass {
	if stats == nil {
		stats = &Statistics{}
	}
	return &PreserveNonePass{
		options: options,
		log:     newLogger(options.Output, options.Verbosity),
		stats:   stats,
	}
}

func (p *PreserveNonePass) Name() string {
	return "Preserve-None"
}

// Mode returns the active mode of the pass.
func (p *PreserveNonePass) Mode() Mode {
	switch {
	case IsActive(p.options.WriteListPath):
		return WriteMode
	case IsActive(p.options.LoadListPath):
		return LoadMode
	}
	return NoMode
}

// RunOnFunction reports whether fn was changed or recorded.
func (p *PreserveNonePass) RunOnFunction(fn *ir.Function) bool {
	if !fn.Lowered {
		return false
	}

	switch p.Mode() {
	case WriteMode:
		return p.writeList(fn)
	case LoadMode:
		return p.loadList(fn)
	}
	return false
}

// Store returns the function list store, creating it on first use.
func (p *PreserveNonePass) Store() *attrlist.Store {
	if p.store == nil {
		switch p.Mode() {
		case WriteMode:
			p.store = attrlist.NewStore(p.options.WriteListPath)
		case LoadMode:
			p.store = attrlist.NewStore(p.options.LoadListPath)
		}
	}
	return p.store
}

func (p *PreserveNonePass) writeList(fn *ir.Function) bool {
	if !fn.HasPreserveNone() {
		return false
	}

	recorded, err := p.Store().Record(fn)
	if err != nil {
		switch {
		case errors.Is(err, attrlist.ErrNotRegularFile):
			p.log.Warnf("failed, found a non-regular file: %v", err)
		default:
			p.log.Warnf("could not record %s: %v", fn.Name, err)
		}
	}

	if recorded {
		p.stats.NumRecorded++
		p.log.Debugf("recorded %s in %s", fn.Name, p.options.WriteListPath)
	}
	return recorded
}

func (p *PreserveNonePass) loadList(fn *ir.Function) bool {
	applied, err := p.Store().Apply(fn)
	if err != nil {
		p.log.Warnf("failed to load function list: %v", err)
		return false
	}

	if applied {
		p.stats.NumApplied++
		p.stats.countMarked(fn)
		p.log.Debugf("applied preserve-none to %s", fn.Name)
	}
	return applied
}

// Dispose releases the function list.
func (p *PreserveNonePass) Dispose() error {
	if p.store == nil {
		return nil
	}
	return p.store.Close()
}
