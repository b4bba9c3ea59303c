package builder

import (
	"io"
	"strings"

	"github.com/pkg/errors"

	"omibyte.io/preservenone/compiler"
)

type Options struct {
	Packages    []string
	Dir         string
	Environment Env
	BuildTags   []string
	Target      string

	// WriteList and LoadList are function list paths. "-" or an empty path
	// disables the list.
	WriteList string
	LoadList  string
	Infect    bool

	// AllPackages also runs the passes over the dependencies of Packages.
	AllPackages bool

	Verbosity compiler.Verbosity
	Output    io.Writer

	// DotOutput and StatsOutput optionally receive the call graph and the
	// pass statistics.
	DotOutput   string
	StatsOutput string
}

// DefaultOptions returns the options described by env.
func DefaultOptions(env Env) Options {
	return Options{
		Environment: env,
		Target:      env.Value("PNONE_TARGET"),
		WriteList:   env.Value("PNONE_WRITE_LIST"),
		LoadList:    env.Value("PNONE_LOAD_LIST"),
		Infect:      env.Bool("PNONE_INFECT"),
		Verbosity:   compiler.Warning,
	}
}

func (o Options) compilerOptions() compiler.Options {
	return compiler.NewOptions().
		WithWriteList(o.WriteList).
		WithLoadList(o.LoadList).
		WithInfect(o.Infect).
		WithVerbosity(o.Verbosity).
		WithOutput(o.Output)
}

func ParseVerbosity(s string) (compiler.Verbosity, error) {
	switch strings.ToLower(s) {
	case "quiet":
		return compiler.Quiet, nil
	case "warning", "":
		return compiler.Warning, nil
	case "info":
		return compiler.Info, nil
	case "debug":
		return compiler.Debug, nil
	default:
		return compiler.Quiet, errors.Wrapf(ErrUnknownVerbosity, "%q", s)
	}
}
