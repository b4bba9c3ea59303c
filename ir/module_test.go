package ir

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func names(fns []*Function) []string {
	result := make([]string, len(fns))
	for i, fn := range fns {
		result[i] = fn.Name
	}
	return result
}

func buildModule(t *testing.T, calls [][2]string, fns ...string) *Module {
	t.Helper()
	m := NewModule("test")
	for _, name := range fns {
		if err := m.AddFunction(NewFunction(name, InternalLinkage)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	for _, call := range calls {
		if err := m.AddCall(m.Function(call[0]), m.Function(call[1])); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	return m
}

func TestModuleCallers(t *testing.T) {
	m := buildModule(t, [][2]string{
		{"a", "c"},
		{"b", "c"},
		{"b", "c"},
		{"c", "d"},
	}, "a", "b", "c", "d")

	if got := strings.Join(names(m.Callers(m.Function("c"))), ","); got != "a,b" {
		t.Errorf("expected callers a,b, got %s", got)
	}
	if got := strings.Join(names(m.Callees(m.Function("c"))), ","); got != "d" {
		t.Errorf("expected callees d, got %s", got)
	}
	if got := m.CallSites(m.Function("b"), m.Function("c")); got != 2 {
		t.Errorf("expected 2 call sites, got %d", got)
	}
	if got := len(m.Callers(m.Function("a"))); got != 0 {
		t.Errorf("expected no callers, got %d", got)
	}
}

func TestModuleDuplicateFunction(t *testing.T) {
	m := NewModule("test")
	if err := m.AddFunction(NewFunction("f", InternalLinkage)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := m.AddFunction(NewFunction("f", InternalLinkage))
	if !errors.Is(err, ErrDuplicateFunction) {
		t.Errorf("expected ErrDuplicateFunction, got %v", err)
	}
}

func TestModuleForeignFunction(t *testing.T) {
	m0 := buildModule(t, nil, "f")
	m1 := buildModule(t, nil, "g")
	if err := m0.AddCall(m0.Function("f"), m1.Function("g")); !errors.Is(err, ErrForeignFunction) {
		t.Errorf("expected ErrForeignFunction, got %v", err)
	}
	if err := m1.AddFunction(m0.Function("f")); !errors.Is(err, ErrForeignFunction) {
		t.Errorf("expected ErrForeignFunction, got %v", err)
	}
}

func TestModuleReferences(t *testing.T) {
	m := buildModule(t, nil, "f", "g")
	if err := m.AddReference(m.Function("f"), m.Function("g")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.AddReference(nil, m.Function("g")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.Function("g").NonCallUses(); got != 2 {
		t.Errorf("expected 2 non-call uses, got %d", got)
	}
	if got := m.Function("f").NonCallUses(); got != 0 {
		t.Errorf("expected 0 non-call uses, got %d", got)
	}
}

func TestModuleCycles(t *testing.T) {
	m := buildModule(t, [][2]string{
		{"a", "b"},
		{"b", "c"},
		{"c", "a"},
		{"d", "d"},
		{"e", "a"},
	}, "a", "b", "c", "d", "e")

	cycles := m.Cycles()
	if len(cycles) != 2 {
		t.Fatalf("expected 2 cycles, got %d", len(cycles))
	}
	if got := strings.Join(names(cycles[0]), ","); got != "a,b,c" {
		t.Errorf("expected cycle a,b,c, got %s", got)
	}
	if got := strings.Join(names(cycles[1]), ","); got != "d" {
		t.Errorf("expected cycle d, got %s", got)
	}
	if !m.Function("d").IsRecursive() {
		t.Errorf("expected d to be recursive")
	}
}

func TestHasPreserveNone(t *testing.T) {
	tests := []struct {
		name  string
		setup func(fn *Function)
		want  bool
	}{
		{"none", func(fn *Function) {}, false},
		{"attribute", func(fn *Function) { fn.AddFnAttr(AttrNoCalleeSavedRegisters, "1") }, true},
		{"alternate", func(fn *Function) { fn.AddFnAttr(AttrPreserveNone, "") }, true},
		{"callconv", func(fn *Function) { fn.CallingConv = PreserveNone }, true},
		{"other", func(fn *Function) { fn.CallingConv = PreserveMost }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fn := NewFunction("f", InternalLinkage)
			tc.setup(fn)
			if got := fn.HasPreserveNone(); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestLinkage(t *testing.T) {
	tests := []struct {
		linkage Linkage
		local   bool
		weak    bool
	}{
		{ExternalLinkage, false, false},
		{InternalLinkage, true, false},
		{PrivateLinkage, true, false},
		{WeakAnyLinkage, false, true},
		{WeakODRLinkage, false, true},
		{LinkOnceAnyLinkage, false, true},
		{LinkOnceODRLinkage, false, true},
		{CommonLinkage, false, true},
		{ExternalWeakLinkage, false, true},
		{AvailableExternallyLinkage, false, false},
	}

	for _, tc := range tests {
		t.Run(tc.linkage.String(), func(t *testing.T) {
			if got := tc.linkage.IsLocal(); got != tc.local {
				t.Errorf("IsLocal: expected %v, got %v", tc.local, got)
			}
			if got := tc.linkage.IsWeakForLinker(); got != tc.weak {
				t.Errorf("IsWeakForLinker: expected %v, got %v", tc.weak, got)
			}
			parsed, err := ParseLinkage(tc.linkage.String())
			if err != nil || parsed != tc.linkage {
				t.Errorf("ParseLinkage: expected %v, got %v (%v)", tc.linkage, parsed, err)
			}
		})
	}

	if _, err := ParseLinkage("bogus"); !errors.Is(err, ErrUnknownLinkage) {
		t.Errorf("expected ErrUnknownLinkage, got %v", err)
	}
}

func TestParseCallingConv(t *testing.T) {
	cc, err := ParseCallingConv(" Preserve_None ")
	if err != nil || cc != PreserveNone {
		t.Errorf("expected preserve_none, got %v (%v)", cc, err)
	}
	if _, err := ParseCallingConv("stdcall"); !errors.Is(err, ErrUnknownCallingConv) {
		t.Errorf("expected ErrUnknownCallingConv, got %v", err)
	}
}

func TestWriteDOT(t *testing.T) {
	m := buildModule(t, [][2]string{{"a", "b"}}, "a", "b")
	m.Function("b").AddFnAttr(AttrNoCalleeSavedRegisters, "1")

	var buf bytes.Buffer
	if err := m.WriteDOT(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"digraph", "a -> b", "color=red"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q:\n%s", want, out)
		}
	}
}
