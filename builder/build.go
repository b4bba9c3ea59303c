package builder

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"omibyte.io/preservenone/compiler"
	"omibyte.io/preservenone/compiler/loader"
	"omibyte.io/preservenone/ir"
	"omibyte.io/preservenone/targets"
)

// Result describes the outcome of a build.
type Result struct {
	Module     *ir.Module
	Target     targets.TargetInfo
	Mode       compiler.Mode
	Statistics compiler.Statistics

	// Marked lists the preserve-none functions of the module in sorted
	// order.
	Marked []string
	Cycles [][]string
}

// Build loads the packages, lowers them into a module and runs the
// preserve-none passes over it.
func Build(ctx context.Context, options Options) (*Result, error) {
	if len(options.Packages) == 0 {
		return nil, ErrNoPackages
	}

	log := compiler.NewLogger("pnone:", options.Output, options.Verbosity)

	// Get the target
	target, err := targets.All().Find(options.Target)
	if err != nil {
		return nil, errors.Wrapf(ErrUnknownTarget, "%q", options.Target)
	}

	compilerOptions := options.compilerOptions()
	if !target.PreserveNone {
		log.Warnf("%v: %s, skipping the preserve-none passes", ErrPreserveNoneTarget, target.Architecture)
		compilerOptions = compilerOptions.
			WithInfect(false).
			WithWriteList(compiler.Inactive).
			WithLoadList(compiler.Inactive)
	}

	// Create a new program
	prog := loader.NewProgram(&loader.ProgramConfig{
		Tags:        options.BuildTags,
		Environment: options.environment(),
		Dir:         options.Dir,
		Patterns:    options.Packages,
		AllPackages: options.AllPackages,
	})

	// Parse the program
	if err = prog.Parse(ctx); err != nil {
		return nil, err
	}

	// Lower the program
	m, err := prog.Module(strings.Join(options.Packages, " "))
	if err != nil {
		return nil, err
	}
	log.Infof("lowered %d functions from %s", m.Len(), m.Name)

	// Create a compiler
	cc := compiler.NewCompiler(compilerOptions)

	// Run the passes
	cc.Run(m)

	// Clean up the compiler
	if err = cc.Dispose(); err != nil {
		log.Warnf("could not close function list: %v", err)
	}

	result := &Result{
		Module:     m,
		Target:     target,
		Mode:       cc.Mode(),
		Statistics: cc.Statistics(),
	}
	for _, fn := range m.Functions() {
		if fn.HasPreserveNone() {
			result.Marked = append(result.Marked, fn.Name)
		}
	}
	slices.Sort(result.Marked)

	// Report the cycles of the call graph
	for _, cycle := range m.Cycles() {
		var names []string
		for _, fn := range cycle {
			names = append(names, fn.Name)
		}
		log.Debugf("call graph cycle: %s", strings.Join(names, ", "))
		result.Cycles = append(result.Cycles, names)
	}

	// Write the optional outputs
	if len(options.DotOutput) > 0 {
		if err = dumpModule(m, options.DotOutput); err != nil {
			return result, err
		}
	}
	if len(options.StatsOutput) > 0 {
		if err = dumpStatistics(result, options.StatsOutput); err != nil {
			return result, err
		}
	}

	return result, nil
}

func (o Options) environment() []string {
	if len(o.Environment) == 0 {
		return nil
	}

	// Later entries take precedence over the process environment.
	env := os.Environ()
	if goRoot := o.Environment.Value("GOROOT"); len(goRoot) > 0 {
		env = append(env, "GOROOT="+goRoot)
	}
	return env
}

func makeOutputDir(fname string) error {
	// The path to the output must exist. Create it if it doesn't
	if stat, err := os.Stat(filepath.Dir(fname)); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(fname), 0750); err != nil {
			return errors.WithStack(err)
		}
	} else if err != nil {
		return errors.WithStack(err)
	} else if !stat.IsDir() {
		return errors.Wrapf(ErrUnexpectedOutput, "%s", fname)
	}
	return nil
}
