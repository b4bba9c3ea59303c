package builder

import (
	"os"

	"github.com/mewkiz/pkg/jsonutil"
	"github.com/pkg/errors"

	"omibyte.io/preservenone/compiler"
	"omibyte.io/preservenone/ir"
)

// Report is the JSON form of a build result.
type Report struct {
	Module     string              `json:"module"`
	Target     string              `json:"target"`
	Mode       string              `json:"mode"`
	Statistics compiler.Statistics `json:"statistics"`
	Marked     []string            `json:"marked"`
	Cycles     [][]string          `json:"cycles,omitempty"`
}

func (r *Result) Report() Report {
	return Report{
		Module:     r.Module.Name,
		Target:     r.Target.Architecture,
		Mode:       r.Mode.String(),
		Statistics: r.Statistics,
		Marked:     r.Marked,
		Cycles:     r.Cycles,
	}
}

func dumpStatistics(result *Result, fname string) error {
	if err := makeOutputDir(fname); err != nil {
		return err
	}
	return errors.WithStack(jsonutil.WriteFile(fname, result.Report()))
}

func dumpModule(m *ir.Module, fname string) error {
	if err := makeOutputDir(fname); err != nil {
		return err
	}

	f, err := os.Create(fname)
	if err != nil {
		return errors.WithStack(err)
	}

	// Finally, dump the module
	if err = m.WriteDOT(f); err != nil {
		f.Close()
		return err
	}
	return errors.WithStack(f.Close())
}
