package ir

import (
	"strings"

	"github.com/pkg/errors"
)

type CallingConv int

const (
	C CallingConv = iota
	Fast
	Cold
	PreserveMost
	PreserveAll
	PreserveNone
)

var callingConvNames = map[CallingConv]string{
	C:            "c",
	Fast:         "fast",
	Cold:         "cold",
	PreserveMost: "preserve_most",
	PreserveAll:  "preserve_all",
	PreserveNone: "preserve_none",
}

func (c CallingConv) String() string {
	if name, ok := callingConvNames[c]; ok {
		return name
	}
	return "unknown"
}

func ParseCallingConv(s string) (CallingConv, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for cc, name := range callingConvNames {
		if name == s {
			return cc, nil
		}
	}
	return C, errors.Wrapf(ErrUnknownCallingConv, "%q", s)
}
