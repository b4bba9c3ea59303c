package ir

import "errors"

var (
	ErrUnknownLinkage     = errors.New("unknown linkage")
	ErrUnknownCallingConv = errors.New("unknown calling convention")
	ErrDuplicateFunction  = errors.New("function already defined in module")
	ErrForeignFunction    = errors.New("function does not belong to this module")
)
