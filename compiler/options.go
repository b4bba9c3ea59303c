package compiler

import "io"

type Verbosity int

const (
	Quiet Verbosity = iota
	Warning
	Info
	Debug
)

// Inactive is the path value that disables reading or writing a function
// list.
const Inactive = "-"

type Options struct {
	// WriteListPath is the function list the names of preserve-none
	// functions are appended to.
	WriteListPath string

	// LoadListPath is the function list previously recorded names are read
	// from.
	LoadListPath string

	// Infect enables propagating preserve-none into eligible callers.
	Infect bool

	Verbosity Verbosity
	Output    io.Writer
}

func NewOptions() Options {
	return Options{
		WriteListPath: Inactive,
		LoadListPath:  Inactive,
		Verbosity:     Warning,
	}
}

func (o Options) WithWriteList(path string) Options {
	o.WriteListPath = path
	return o
}

func (o Options) WithLoadList(path string) Options {
	o.LoadListPath = path
	return o
}

func (o Options) WithInfect(infect bool) Options {
	o.Infect = infect
	return o
}

func (o Options) WithVerbosity(verbosity Verbosity) Options {
	o.Verbosity = verbosity
	return o
}

func (o Options) WithOutput(w io.Writer) Options {
	o.Output = w
	return o
}

// IsActive reports whether path names a function list.
func IsActive(path string) bool {
	return len(path) > 0 && path != Inactive
}
