package loader

import "errors"

var (
	ErrParserError  = errors.New("parser error occurred")
	ErrPragmaSyntax = errors.New("malformed pragma")
	ErrNoPackages   = errors.New("no packages to load")
)
