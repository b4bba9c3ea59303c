package testutil

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// Package is a type checked source package in SSA form.
type Package struct {
	Fset  *token.FileSet
	Files []*ast.File
	Types *types.Package
	SSA   *ssa.Package
}

// ProgramString builds the package at path from a single source file.
// Comments are kept so pragmas can be parsed from the files.
func ProgramString(path, src string) (*Package, error) {
	// Parse the source code
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "main.go", src, parser.ParseComments|parser.AllErrors)
	if err != nil {
		return nil, err
	}

	// Type check and build the SSA package
	mode := ssa.SanityCheckFunctions | ssa.InstantiateGenerics
	conf := &types.Config{Importer: importer.Default()}
	pkg := types.NewPackage(path, "")
	ssaPkg, _, err := ssautil.BuildPackage(conf, fset, pkg, []*ast.File{f}, mode)
	if err != nil {
		return nil, err
	}

	return &Package{
		Fset:  fset,
		Files: []*ast.File{f},
		Types: pkg,
		SSA:   ssaPkg,
	}, nil
}

// Filter returns the instructions of type T in the package level function
// fn.
func Filter[T ssa.Instruction](pkg *ssa.Package, fn string) []T {
	var out []T
	ssaFn := pkg.Func(fn)
	if ssaFn == nil {
		return nil
	}

	// Traverse the SSA representation and process the desired instructions
	for _, b := range ssaFn.Blocks {
		for _, instr := range b.Instrs {
			if actual, ok := instr.(T); ok {
				out = append(out, actual)
			}
		}
	}
	return out
}
