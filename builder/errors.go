package builder

import "errors"

var (
	ErrNoPackages         = errors.New("no packages specified")
	ErrUnknownTarget      = errors.New("unknown target")
	ErrUnknownVerbosity   = errors.New("unknown verbosity")
	ErrInvalidConfig      = errors.New("invalid configuration file")
	ErrUnexpectedOutput   = errors.New("unexpected output path provided")
	ErrPreserveNoneTarget = errors.New("target does not support the preserve_none calling convention")
)
