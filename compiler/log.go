package compiler

import (
	"io"
	"log"
	"os"

	"github.com/mewkiz/pkg/term"
)

// Logger writes progress and failure messages gated by a verbosity level.
type Logger struct {
	// dbg logs progress messages.
	dbg *log.Logger
	// warn logs failures.
	warn      *log.Logger
	verbosity Verbosity
}

// NewLogger returns a logger that prefixes every message with prefix. A nil
// writer logs to standard error.
func NewLogger(prefix string, w io.Writer, verbosity Verbosity) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{
		dbg:       log.New(w, term.MagentaBold(prefix)+" ", 0),
		warn:      log.New(w, term.RedBold(prefix)+" ", 0),
		verbosity: verbosity,
	}
}

func newLogger(w io.Writer, verbosity Verbosity) *Logger {
	return NewLogger("preserve-none:", w, verbosity)
}

func (l *Logger) Infof(format string, args ...any) {
	if l.verbosity >= Info {
		l.dbg.Printf(format, args...)
	}
}

func (l *Logger) Debugf(format string, args ...any) {
	if l.verbosity >= Debug {
		l.dbg.Printf(format, args...)
	}
}

func (l *Logger) Warnf(format string, args ...any) {
	if l.verbosity >= Warning {
		l.warn.Printf(format, args...)
	}
}
