package ir

import (
	"strings"

	"github.com/pkg/errors"
)

type Linkage int

const (
	ExternalLinkage Linkage = iota
	AvailableExternallyLinkage
	LinkOnceAnyLinkage
	LinkOnceODRLinkage
	WeakAnyLinkage
	WeakODRLinkage
	AppendingLinkage
	InternalLinkage
	PrivateLinkage
	ExternalWeakLinkage
	CommonLinkage
)

var linkageNames = map[Linkage]string{
	ExternalLinkage:            "external",
	AvailableExternallyLinkage: "available_externally",
	LinkOnceAnyLinkage:         "linkonce",
	LinkOnceODRLinkage:         "linkonce_odr",
	WeakAnyLinkage:             "weak",
	WeakODRLinkage:             "weak_odr",
	AppendingLinkage:           "appending",
	InternalLinkage:            "internal",
	PrivateLinkage:             "private",
	ExternalWeakLinkage:        "extern_weak",
	CommonLinkage:              "common",
}

func (l Linkage) String() string {
	if name, ok := linkageNames[l]; ok {
		return name
	}
	return "unknown"
}

// IsLocal reports whether symbols with this linkage are invisible outside
// of the module.
func (l Linkage) IsLocal() bool {
	return l == InternalLinkage || l == PrivateLinkage
}

// IsWeakForLinker reports whether the linker may replace a definition with
// this linkage by another one.
func (l Linkage) IsWeakForLinker() bool {
	switch l {
	case LinkOnceAnyLinkage, LinkOnceODRLinkage, WeakAnyLinkage, WeakODRLinkage, CommonLinkage, ExternalWeakLinkage:
		return true
	}
	return false
}

// ParseLinkage converts the textual form of a linkage into its value.
func ParseLinkage(s string) (Linkage, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for linkage, name := range linkageNames {
		if name == s {
			return linkage, nil
		}
	}
	return ExternalLinkage, errors.Wrapf(ErrUnknownLinkage, "%q", s)
}
