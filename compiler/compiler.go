package compiler

import (
	"omibyte.io/preservenone/ir"
)

type ModulePass interface {
	Name() string
	RunOnModule(m *ir.Module) bool
}

type FunctionPass interface {
	Name() string
	RunOnFunction(fn *ir.Function) bool
}

// Compiler runs the preserve-none passes over a module.
type Compiler struct {
	options Options
	stats   Statistics
	log     *Logger

	infection    *InfectionPass
	preserveNone *PreserveNonePass
}

func NewCompiler(options Options) *Compiler {
	cc := &Compiler{
		options: options,
		log:     newLogger(options.Output, options.Verbosity),
	}
	cc.infection = NewInfectionPass(options, &cc.stats)
	cc.preserveNone = NewPreserveNonePass(options, &cc.stats)
	return cc
}

// Run runs the passes over m and reports whether anything changed. In load
// mode the function list is applied before infection so that the loaded
// functions seed the propagation. In write mode the infection runs first so
// that the infected functions are recorded too.
func (c *Compiler) Run(m *ir.Module) bool {
	var changed bool
	switch c.preserveNone.Mode() {
	case LoadMode:
		changed = c.runFunctionPass(c.preserveNone, m)
		changed = c.runModulePass(c.infection, m) || changed
	default:
		changed = c.runModulePass(c.infection, m)
		changed = c.runFunctionPass(c.preserveNone, m) || changed
	}
	return changed
}

func (c *Compiler) runModulePass(pass ModulePass, m *ir.Module) bool {
	c.log.Debugf("running %s on %s", pass.Name(), m.Name)
	return pass.RunOnModule(m)
}

func (c *Compiler) runFunctionPass(pass FunctionPass, m *ir.Module) bool {
	c.log.Debugf("running %s on %s", pass.Name(), m.Name)
	changed := false
	for _, fn := range m.Functions() {
		if pass.RunOnFunction(fn) {
			changed = true
		}
	}
	return changed
}

func (c *Compiler) Mode() Mode {
	return c.preserveNone.Mode()
}

func (c *Compiler) Statistics() Statistics {
	return c.stats
}

// Dispose releases the resources held by the passes.
func (c *Compiler) Dispose() error {
	return c.preserveNone.Dispose()
}
