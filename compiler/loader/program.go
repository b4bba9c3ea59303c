package loader

import (
	"context"
	"errors"
	"hash/fnv"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
	"gonum.org/v1/gonum/graph/multi"
	"gonum.org/v1/gonum/graph/topo"

	"omibyte.io/preservenone/ir"
)

type ProgramConfig struct {
	Tags        []string
	Environment []string
	Dir         string
	Patterns    []string

	// AllPackages lowers the dependencies of the loaded packages too.
	AllPackages bool
}

type Program struct {
	Packages        map[string]*packages.Package
	Initial         []*packages.Package
	OrderedPackages []*packages.Package
	Symbols         *SymbolInfoStore
	Config          *ProgramConfig
	SSA             *ssa.Program

	ssaPackages  map[*packages.Package]*ssa.Package
	packageNodes map[*packages.Package]*packageNode
}

type packageNode struct {
	pkg *packages.Package
	id  int64
}

func (p *packageNode) ID() int64 {
	return p.id
}

func NewProgram(config *ProgramConfig) *Program {
	return &Program{
		Packages:     map[string]*packages.Package{},
		Symbols:      NewSymbolInfoStore(),
		Config:       config,
		ssaPackages:  map[*packages.Package]*ssa.Package{},
		packageNodes: map[*packages.Package]*packageNode{},
	}
}

func (p *Program) makeNode(pkg *packages.Package) *packageNode {
	// Look up an existing node for this package.
	if node, ok := p.packageNodes[pkg]; ok {
		return node
	}

	// Make a new node for this package.
	hasher := fnv.New64()
	hasher.Write([]byte(pkg.PkgPath))
	node := &packageNode{
		pkg: pkg,
		id:  int64(hasher.Sum64()),
	}
	p.packageNodes[pkg] = node
	return node
}

// Parse loads the configured packages and their dependencies.
func (p *Program) Parse(ctx context.Context) error {
	if len(p.Config.Patterns) == 0 {
		return ErrNoPackages
	}

	// Create the parser configuration.
	parserConfig := packages.Config{
		Mode:    packages.NeedName | packages.NeedFiles | packages.NeedImports | packages.NeedDeps | packages.NeedTypes | packages.NeedSyntax | packages.NeedTypesInfo | packages.NeedModule | packages.NeedCompiledGoFiles,
		Context: ctx,
		Dir:     p.Config.Dir,
		Env:     p.Config.Environment,
		Tests:   false,
	}
	if len(p.Config.Tags) > 0 {
		parserConfig.BuildFlags = []string{"-tags=" + strings.Join(p.Config.Tags, ",")}
	}

	// Parse the packages.
	pkgs, err := packages.Load(&parserConfig, p.Config.Patterns...)
	if err != nil {
		return errors.Join(ErrParserError, err)
	}
	p.Initial = pkgs

	// Add all parse packages (including their imported packages).
	for _, pkg := range pkgs {
		if pkgErr := p.AddPackage(pkg); pkgErr != nil {
			err = errors.Join(err, pkgErr)
		}
	}

	// Return early with error.
	if err != nil {
		return errors.Join(ErrParserError, err)
	}

	// Compute dependency graph.
	return p.computePackageOrder()
}

func (p *Program) computePackageOrder() error {
	// Create a directed graph that will be used to sort the packaged topologically in order of dependency.
	graph := multi.NewDirectedGraph()
	for _, pkg := range p.Packages {
		pkgNode := p.makeNode(pkg)
		if graph.Node(pkgNode.ID()) == nil {
			graph.AddNode(pkgNode)
		}

		// Add edges to imported packages.
		for _, imported := range pkg.Imports {
			importedPkgNode := p.makeNode(imported)
			graph.SetLine(graph.NewLine(importedPkgNode, pkgNode))
		}
	}

	sorted, sortErr := topo.Sort(graph)
	if sortErr != nil {
		return sortErr
	}

	p.OrderedPackages = make([]*packages.Package, len(sorted))
	for i, node := range sorted {
		p.OrderedPackages[i] = node.(*packageNode).pkg
	}

	return nil
}

func (p *Program) AddPackage(pkg *packages.Package) (err error) {
	if _, ok := p.Packages[pkg.PkgPath]; ok {
		// Do not process this package again.
		return nil
	}

	defer func() {
		// Update package mappings.
		p.Packages[pkg.PkgPath] = pkg
	}()

	// Fail early by returning errors (if any).
	if len(pkg.Errors) > 0 {
		for _, pkgErr := range pkg.Errors {
			pos := strings.Split(pkgErr.Pos, ":")
			for i := 0; i < len(pos); i++ {
				evalPkgDir, symlinkErr := filepath.EvalSymlinks(pos[i])
				if symlinkErr == nil {
					pos[i] = evalPkgDir
				}
			}

			pkgErr.Pos = strings.Join(pos, ":")
			err = errors.Join(err, pkgErr)
		}
		return err
	}

	// Parse all comments for pragmas.
	for _, file := range pkg.Syntax {
		if pragmaErr := p.Symbols.ParsePragmas(file, pkg.Types, pkg.Fset); pragmaErr != nil {
			err = errors.Join(err, pragmaErr)
		}
	}

	// Add any imported package.
	for _, imported := range pkg.Imports {
		if pkgErr := p.AddPackage(imported); pkgErr != nil {
			err = errors.Join(err, pkgErr)
		}
	}

	return err
}

// Build creates the SSA form of every loaded package.
func (p *Program) Build() {
	prog, ssaPkgs := ssautil.AllPackages(p.Initial, ssa.InstantiateGenerics)
	p.SSA = prog

	// Map every loaded package onto its SSA package.
	for _, pkg := range p.Packages {
		if ssaPkg := prog.Package(pkg.Types); ssaPkg != nil {
			p.ssaPackages[pkg] = ssaPkg
		}
	}
	for i, pkg := range p.Initial {
		if ssaPkgs[i] != nil {
			p.ssaPackages[pkg] = ssaPkgs[i]
		}
	}

	prog.Build()
}

// Module lowers the program into a module. Unless all packages are
// requested, only the functions of the packages matching the load patterns
// are defined.
func (p *Program) Module(name string) (*ir.Module, error) {
	if p.SSA == nil {
		p.Build()
	}

	initial := map[*packages.Package]bool{}
	for _, pkg := range p.Initial {
		initial[pkg] = true
	}

	var pkgs []*ssa.Package
	for _, pkg := range p.OrderedPackages {
		if !p.Config.AllPackages && !initial[pkg] {
			continue
		}
		if ssaPkg, ok := p.ssaPackages[pkg]; ok {
			pkgs = append(pkgs, ssaPkg)
		}
	}

	return Lower(name, pkgs, p.Symbols)
}
