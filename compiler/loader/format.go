package loader

import (
	"go/types"

	"golang.org/x/tools/go/ssa"
)

func qualifiedName(name string, p *types.Package) string {
	if p != nil {
		return p.Path() + "." + name
	}
	return name
}

func qualifiedFuncName(obj *types.Func) string {
	signature := obj.Type().(*types.Signature)

	// Get the name of the method receiver's named type.
	var typename string
	if recv := signature.Recv(); recv != nil {
		T := recv.Type()
		if ptr, ok := T.(*types.Pointer); ok {
			T = ptr.Elem()
		}
		if named, ok := T.(*types.Named); ok {
			typename = named.Obj().Name()
		}
	}

	if len(typename) > 0 {
		return qualifiedName(typename+"."+obj.Name(), obj.Pkg())
	}
	return qualifiedName(obj.Name(), obj.Pkg())
}

// symbolName returns the name pragmas use to refer to fn.
func symbolName(fn *ssa.Function) string {
	if obj, ok := fn.Object().(*types.Func); ok && fn.Parent() == nil {
		return qualifiedFuncName(obj)
	}
	return fn.String()
}
