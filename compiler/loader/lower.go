package loader

import (
	"cmp"
	"errors"
	"fmt"
	"go/token"
	"slices"

	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"

	"omibyte.io/preservenone/ir"
)

type positioner interface {
	Position(p token.Pos) token.Position
}

const packageInitializer = "package initializer"

type lowerer struct {
	module   *ir.Module
	symbols  *SymbolInfoStore
	packages map[*ssa.Package]int
	funcs    map[*ssa.Function]*ir.Function
	err      error
}

// Lower creates a module from the functions of the given SSA packages. The
// packages are expected in dependency order, which is the order the
// functions appear in the module. Functions of other packages that are
// called or referenced become declarations.
func Lower(name string, pkgs []*ssa.Package, symbols *SymbolInfoStore) (*ir.Module, error) {
	if len(pkgs) == 0 {
		return nil, ErrNoPackages
	}
	if symbols == nil {
		symbols = NewSymbolInfoStore()
	}

	l := &lowerer{
		module:   ir.NewModule(name),
		symbols:  symbols,
		packages: map[*ssa.Package]int{},
		funcs:    map[*ssa.Function]*ir.Function{},
	}
	for i, pkg := range pkgs {
		l.packages[pkg] = i
	}

	// Collect the functions defined by the packages.
	var defined []*ssa.Function
	for fn := range ssautil.AllFunctions(pkgs[0].Prog) {
		if l.isDefined(fn) {
			defined = append(defined, fn)
		}
	}
	slices.SortFunc(defined, func(a, b *ssa.Function) int {
		if c := cmp.Compare(l.packages[a.Pkg], l.packages[b.Pkg]); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Pos(), b.Pos()); c != 0 {
			return c
		}
		return cmp.Compare(a.String(), b.String())
	})

	for _, fn := range defined {
		l.define(fn)
	}

	// Record the uses of every function.
	for _, fn := range defined {
		l.lowerUses(fn)
	}

	return l.module, l.err
}

func (l *lowerer) isDefined(fn *ssa.Function) bool {
	if _, ok := l.packages[fn.Pkg]; !ok || fn.Pkg == nil {
		return false
	}

	// Wrappers, thunks and bound methods are not lowered as functions of
	// their own.
	return len(fn.Synthetic) == 0 || fn.Synthetic == packageInitializer || fn.Origin() != nil
}

func isGeneric(fn *ssa.Function) bool {
	return fn.TypeParams().Len() > 0 && len(fn.TypeArgs()) == 0
}

func (l *lowerer) define(fn *ssa.Function) *ir.Function {
	f := ir.NewFunction(fn.String(), l.linkage(fn))
	f.Declaration = len(fn.Blocks) == 0 && !isGeneric(fn)

	// Generic bodies are only compiled through their instances.
	f.Lowered = !f.Declaration && !isGeneric(fn)

	if info, ok := l.symbols.Lookup(symbolName(fn)); ok {
		if info.PreserveNone {
			f.AddFnAttr(ir.AttrPreserveNone, "")
		}
		if len(info.CallingConv) > 0 {
			cc, err := ir.ParseCallingConv(info.CallingConv)
			if err != nil {
				l.err = errors.Join(l.err, fmt.Errorf("%s: %w", fn, err))
			}
			f.CallingConv = cc
		}
	}

	l.add(fn, f)
	return f
}

func (l *lowerer) linkage(fn *ssa.Function) ir.Linkage {
	if info, ok := l.symbols.Lookup(symbolName(fn)); ok {
		if len(info.Linkage) > 0 {
			linkage, err := ir.ParseLinkage(info.Linkage)
			if err != nil {
				l.err = errors.Join(l.err, fmt.Errorf("%s: %w", fn, err))
			} else {
				return linkage
			}
		}
		if info.ExternalLinkage || info.Exported || len(info.LinkName) > 0 {
			return ir.ExternalLinkage
		}
	}

	switch {
	case fn.Synthetic == packageInitializer:
		// Called by the runtime.
		return ir.ExternalLinkage
	case fn.Origin() != nil:
		// Every package instantiating a generic function emits its own copy.
		return ir.LinkOnceODRLinkage
	case fn.Parent() != nil:
		return ir.InternalLinkage
	case fn.Object() != nil && fn.Object().Exported():
		return ir.ExternalLinkage
	case fn.Pkg.Pkg.Name() == "main" && fn.Name() == "main":
		return ir.ExternalLinkage
	}
	return ir.InternalLinkage
}

func (l *lowerer) add(fn *ssa.Function, f *ir.Function) {
	if err := l.module.AddFunction(f); err != nil {
		l.err = errors.Join(l.err, err)
		return
	}
	l.funcs[fn] = f
}

// lookup returns the module function for fn, declaring functions from other
// packages on first use.
func (l *lowerer) lookup(fn *ssa.Function) *ir.Function {
	if f, ok := l.funcs[fn]; ok {
		return f
	}

	f := ir.NewFunction(fn.String(), ir.ExternalLinkage)
	f.Declaration = true
	f.Lowered = false
	l.add(fn, f)
	return f
}

func (l *lowerer) lowerUses(fn *ssa.Function) {
	user, ok := l.funcs[fn]
	if !ok {
		return
	}

	// Methods can be reached through method tables.
	if fn.Signature.Recv() != nil {
		l.reference(nil, user)
	}

	var operands []*ssa.Value
	for _, block := range fn.Blocks {
		for _, instr := range block.Instrs {
			var callee *ssa.Value
			if call, ok := instr.(*ssa.Call); ok {
				if target, ok := call.Call.Value.(*ssa.Function); ok {
					callee = &call.Call.Value
					if err := l.module.AddCall(user, l.lookup(target)); err != nil {
						l.err = errors.Join(l.err, err)
					}
				}
			}

			operands = instr.Operands(operands[:0])
			for _, operand := range operands {
				if operand == nil || operand == callee {
					continue
				}
				if target, ok := (*operand).(*ssa.Function); ok {
					l.reference(user, l.lookup(target))
				}
			}
		}
	}
}

func (l *lowerer) reference(user, fn *ir.Function) {
	if err := l.module.AddReference(user, fn); err != nil {
		l.err = errors.Join(l.err, err)
	}
}
