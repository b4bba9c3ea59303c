package compiler

import (
	"omibyte.io/preservenone/ir"
)

// InfectionPass propagates the preserve-none convention from the functions
// that already carry it into their callers, as long as every function on the
// way may change its convention without breaking callers outside of the
// module.
type InfectionPass struct {
	options Options
	log     *Logger
	stats   *Statistics
}

func NewInfectionPass(options Options, stats *Statistics) *InfectionPass {
	if stats == nil {
		stats = &Statistics{}
	}
	return &InfectionPass{
		options: options,
		log:     newLogger(options.Output, options.Verbosity),
		stats:   stats,
	}
}

func (p *InfectionPass) Name() string {
	return "Preserve-None Infection"
}

// RunOnModule reports whether any function was infected.
func (p *InfectionPass) RunOnModule(m *ir.Module) bool {
	return p.Run(m) > 0
}

// isInfectable reports whether the convention of fn can be changed. Callers
// outside of the module could still expect the original convention of a
// function that is visible to the linker.
func isInfectable(fn *ir.Function) bool {
	return !fn.IsWeakForLinker() && fn.HasLocalLinkage() && !fn.IsDeclaration()
}

// Run marks every eligible caller of a preserve-none function, transitively,
// and returns the number of functions it marked.
func (p *InfectionPass) Run(m *ir.Module) int {
	if !p.options.Infect {
		return 0
	}

	// Nothing to infect in an empty module.
	if m == nil || m.Empty() {
		return 0
	}

	// Collect the seeds before anything is mutated.
	var worklist []*ir.Function
	for _, fn := range m.Functions() {
		// Functions without machine code are never considered.
		if !fn.Lowered {
			continue
		}

		if fn.HasPreserveNone() {
			p.log.Infof("found preserve-none function %s, start infecting", fn.Name)
			p.stats.countMarked(fn)
			worklist = append(worklist, fn)
		}
	}

	visited := map[int64]struct{}{}
	infected := 0
	for len(worklist) > 0 {
		fn := worklist[0]
		worklist = worklist[1:]

		if _, ok := visited[fn.ID()]; ok {
			continue
		}
		visited[fn.ID()] = struct{}{}

		marked := fn.HasPreserveNone()
		if !marked && (!isInfectable(fn) || fn.NonCallUses() > 0) {
			p.log.Debugf("cannot infect %s", fn.Name)
			continue
		}

		for _, caller := range m.Callers(fn) {
			if !caller.Lowered {
				continue
			}
			if _, ok := visited[caller.ID()]; !ok && !caller.HasPreserveNone() {
				worklist = append(worklist, caller)
			}
		}

		if !marked {
			fn.AddFnAttr(ir.AttrNoCalleeSavedRegisters, "1")
			infected++
			p.stats.countMarked(fn)
			p.log.Infof("infect the function %s to preserve-none", fn.Name)
		}
	}

	p.stats.NumPreserveNoneInfected += infected
	return infected
}
