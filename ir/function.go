package ir

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph/encoding"
)

const (
	// AttrNoCalleeSavedRegisters marks a function that does not expect its
	// callers to preserve callee-saved registers across the call.
	AttrNoCalleeSavedRegisters = "no_callee_saved_registers"

	// AttrPreserveNone is the alternate spelling of the same marker.
	AttrPreserveNone = "preserve_none"
)

type Function struct {
	Name        string
	Linkage     Linkage
	CallingConv CallingConv

	// Declaration is set when the body of the function lives outside of
	// the module.
	Declaration bool

	// Lowered is set when the function has a machine-level representation.
	Lowered bool

	id          int64
	module      *Module
	attrs       map[string]string
	nonCallUses int
	recursive   bool
}

// NewFunction returns a lowered definition with the given linkage.
func NewFunction(name string, linkage Linkage) *Function {
	return &Function{
		Name:    name,
		Linkage: linkage,
		Lowered: true,
		attrs:   map[string]string{},
	}
}

func (f *Function) ID() int64 {
	return f.id
}

func (f *Function) Module() *Module {
	return f.module
}

func (f *Function) String() string {
	return f.Name
}

func (f *Function) IsDeclaration() bool {
	return f.Declaration
}

func (f *Function) HasLocalLinkage() bool {
	return f.Linkage.IsLocal()
}

func (f *Function) IsWeakForLinker() bool {
	return f.Linkage.IsWeakForLinker()
}

func (f *Function) HasFnAttr(key string) bool {
	_, ok := f.attrs[key]
	return ok
}

func (f *Function) FnAttr(key string) (string, bool) {
	value, ok := f.attrs[key]
	return value, ok
}

func (f *Function) AddFnAttr(key, value string) {
	if f.attrs == nil {
		f.attrs = map[string]string{}
	}
	f.attrs[key] = value
}

func (f *Function) RemoveFnAttr(key string) {
	delete(f.attrs, key)
}

// FnAttrKeys returns the attribute keys of the function in sorted order.
func (f *Function) FnAttrKeys() []string {
	keys := maps.Keys(f.attrs)
	slices.Sort(keys)
	return keys
}

// HasPreserveNone reports whether any of the equivalent preserve-none
// markers is present on the function.
func (f *Function) HasPreserveNone() bool {
	return f.HasFnAttr(AttrNoCalleeSavedRegisters) ||
		f.CallingConv == PreserveNone ||
		f.HasFnAttr(AttrPreserveNone)
}

// NonCallUses returns the number of uses of the function that are not the
// callee operand of a call.
func (f *Function) NonCallUses() int {
	return f.nonCallUses
}

// IsRecursive reports whether the function calls itself directly.
func (f *Function) IsRecursive() bool {
	return f.recursive
}

// DOTID implements the dot.Node interface.
func (f *Function) DOTID() string {
	return f.Name
}

// Attributes implements the encoding.Attributer interface.
func (f *Function) Attributes() []encoding.Attribute {
	var attrs []encoding.Attribute
	if f.HasPreserveNone() {
		attrs = append(attrs, encoding.Attribute{Key: "color", Value: "red"})
	}
	if f.Declaration {
		attrs = append(attrs, encoding.Attribute{Key: "style", Value: "dashed"})
	}
	if !f.Linkage.IsLocal() {
		attrs = append(attrs, encoding.Attribute{Key: "shape", Value: "box"})
	}
	return attrs
}
