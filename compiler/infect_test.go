package compiler

import (
	"bytes"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"golang.org/x/exp/slices"

	"omibyte.io/preservenone/ir"
)

type funcSpec struct {
	name      string
	linkage   ir.Linkage
	decl      bool
	marked    bool
	ref       bool
	unlowered bool
}

func local(name string) funcSpec {
	return funcSpec{name: name, linkage: ir.InternalLinkage}
}

func seed(name string) funcSpec {
	return funcSpec{name: name, linkage: ir.InternalLinkage, marked: true}
}

func buildModule(t *testing.T, specs []funcSpec, calls [][2]string) *ir.Module {
	t.Helper()
	m := ir.NewModule("test")
	for _, spec := range specs {
		fn := ir.NewFunction(spec.name, spec.linkage)
		fn.Declaration = spec.decl
		fn.Lowered = !spec.unlowered
		if spec.marked {
			fn.AddFnAttr(ir.AttrPreserveNone, "")
		}
		if err := m.AddFunction(fn); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	for _, spec := range specs {
		if spec.ref {
			if err := m.AddReference(nil, m.Function(spec.name)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
	}
	for _, call := range calls {
		caller, callee := m.Function(call[0]), m.Function(call[1])
		if caller == nil || callee == nil {
			t.Fatalf("bad call %v", call)
		}
		if err := m.AddCall(caller, callee); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	return m
}

func markedNames(m *ir.Module) []string {
	var names []string
	for _, fn := range m.Functions() {
		if fn.HasPreserveNone() {
			names = append(names, fn.Name)
		}
	}
	slices.Sort(names)
	return names
}

func quietOptions() Options {
	return NewOptions().WithInfect(true).WithVerbosity(Quiet)
}

func TestInfection(t *testing.T) {
	tests := []struct {
		name     string
		funcs    []funcSpec
		calls    [][2]string
		expected []string
	}{
		{
			"chain",
			[]funcSpec{local("a"), local("b"), local("c"), seed("d")},
			[][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}},
			[]string{"a", "b", "c", "d"},
		},
		{
			"diamond",
			[]funcSpec{local("a"), local("b"), local("c"), seed("d")},
			[][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}},
			[]string{"a", "b", "c", "d"},
		},
		{
			"cycle",
			[]funcSpec{local("a"), local("b"), local("c"), seed("d")},
			[][2]string{{"a", "b"}, {"b", "c"}, {"c", "b"}, {"c", "d"}},
			[]string{"a", "b", "c", "d"},
		},
		{
			"cycleThroughSeed",
			[]funcSpec{seed("a"), local("b")},
			[][2]string{{"a", "b"}, {"b", "a"}},
			[]string{"a", "b"},
		},
		{
			"recursion",
			[]funcSpec{local("a"), local("b"), seed("c")},
			[][2]string{{"a", "b"}, {"b", "b"}, {"b", "c"}},
			[]string{"a", "b", "c"},
		},
		{
			"scenario",
			[]funcSpec{{name: "A", linkage: ir.ExternalLinkage}, local("B"), seed("C"), local("D")},
			[][2]string{{"A", "B"}, {"B", "C"}, {"D", "C"}},
			[]string{"B", "C", "D"},
		},
		{
			"scenarioEligible",
			[]funcSpec{local("A"), local("B"), seed("C"), local("D")},
			[][2]string{{"A", "B"}, {"B", "C"}, {"D", "C"}},
			[]string{"A", "B", "C", "D"},
		},
		{
			"externalStops",
			[]funcSpec{local("a"), {name: "b", linkage: ir.ExternalLinkage}, seed("c")},
			[][2]string{{"a", "b"}, {"b", "c"}},
			[]string{"c"},
		},
		{
			"weakStops",
			[]funcSpec{local("a"), {name: "b", linkage: ir.WeakODRLinkage}, seed("c")},
			[][2]string{{"a", "b"}, {"b", "c"}},
			[]string{"c"},
		},
		{
			"declarationStops",
			[]funcSpec{local("a"), {name: "b", linkage: ir.InternalLinkage, decl: true}, seed("c")},
			[][2]string{{"a", "b"}, {"b", "c"}},
			[]string{"c"},
		},
		{
			"addressTakenStops",
			[]funcSpec{local("a"), {name: "b", linkage: ir.InternalLinkage, ref: true}, seed("c")},
			[][2]string{{"a", "b"}, {"b", "c"}},
			[]string{"c"},
		},
		{
			"unloweredSkipped",
			[]funcSpec{local("a"), {name: "b", linkage: ir.InternalLinkage, unlowered: true}, seed("c")},
			[][2]string{{"a", "b"}, {"b", "c"}},
			[]string{"c"},
		},
		{
			"externalSeedPropagates",
			[]funcSpec{local("a"), {name: "b", linkage: ir.ExternalLinkage, marked: true}},
			[][2]string{{"a", "b"}},
			[]string{"a", "b"},
		},
		{
			"siblingUnaffected",
			[]funcSpec{local("a"), {name: "b", linkage: ir.ExternalLinkage}, seed("c"), local("d")},
			[][2]string{{"a", "b"}, {"b", "c"}, {"d", "c"}},
			[]string{"c", "d"},
		},
		{
			"noSeeds",
			[]funcSpec{local("a"), local("b")},
			[][2]string{{"a", "b"}},
			nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := buildModule(t, tc.funcs, tc.calls)
			seeds := len(markedNames(m))

			stats := &Statistics{}
			pass := NewInfectionPass(quietOptions(), stats)
			infected := pass.Run(m)

			got := markedNames(m)
			if diff := pretty.Diff(got, tc.expected); len(diff) > 0 {
				t.Errorf("unexpected marked set %v: %v", got, diff)
			}
			if infected != len(tc.expected)-seeds {
				t.Errorf("expected %d infected, got %d", len(tc.expected)-seeds, infected)
			}
			if stats.NumPreserveNoneInfected != infected {
				t.Errorf("expected statistic %d, got %d", infected, stats.NumPreserveNoneInfected)
			}

			// A second run finds nothing left to infect.
			if again := pass.Run(m); again != 0 {
				t.Errorf("expected idempotent second run, got %d", again)
			}
			if pass.RunOnModule(m) {
				t.Errorf("expected no change on third run")
			}
		})
	}
}

func TestInfectionDisabled(t *testing.T) {
	m := buildModule(t, []funcSpec{local("a"), seed("b")}, [][2]string{{"a", "b"}})
	pass := NewInfectionPass(NewOptions().WithVerbosity(Quiet), nil)
	if pass.RunOnModule(m) {
		t.Errorf("expected no change with infection disabled")
	}
	if diff := pretty.Diff(markedNames(m), []string{"b"}); len(diff) > 0 {
		t.Errorf("unexpected marked set: %v", diff)
	}
}

func TestInfectionEmptyModule(t *testing.T) {
	pass := NewInfectionPass(quietOptions(), nil)
	if pass.RunOnModule(ir.NewModule("empty")) {
		t.Errorf("expected no change on an empty module")
	}
	if pass.RunOnModule(nil) {
		t.Errorf("expected no change without a module")
	}
}

func TestInfectionMarkerKinds(t *testing.T) {
	m := buildModule(t, []funcSpec{local("a"), local("b"), local("c"), local("x"), local("y"), local("z")},
		[][2]string{{"a", "x"}, {"b", "y"}, {"c", "z"}})
	m.Function("x").AddFnAttr(ir.AttrNoCalleeSavedRegisters, "1")
	m.Function("y").AddFnAttr(ir.AttrPreserveNone, "")
	m.Function("z").CallingConv = ir.PreserveNone

	NewInfectionPass(quietOptions(), nil).Run(m)
	for _, name := range []string{"a", "b", "c"} {
		value, ok := m.Function(name).FnAttr(ir.AttrNoCalleeSavedRegisters)
		if !ok || value != "1" {
			t.Errorf("expected %s to be infected, got %q", name, value)
		}
	}
}

func TestInfectionLogging(t *testing.T) {
	m := buildModule(t, []funcSpec{local("caller"), seed("callee")}, [][2]string{{"caller", "callee"}})

	var buf bytes.Buffer
	options := quietOptions().WithVerbosity(Info).WithOutput(&buf)
	NewInfectionPass(options, nil).Run(m)

	out := buf.String()
	for _, want := range []string{
		"found preserve-none function callee, start infecting",
		"infect the function caller to preserve-none",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log to contain %q, got:\n%s", want, out)
		}
	}
}

// closure computes the expected marked set by iterating to a fixed point.
func closure(m *ir.Module) []string {
	marked := map[*ir.Function]bool{}
	for _, fn := range m.Functions() {
		if fn.Lowered && fn.HasPreserveNone() {
			marked[fn] = true
		}
	}

	for changed := true; changed; {
		changed = false
		for fn := range marked {
			for _, caller := range m.Callers(fn) {
				if marked[caller] || !caller.Lowered || caller.HasPreserveNone() {
					continue
				}
				if isInfectable(caller) && caller.NonCallUses() == 0 {
					marked[caller] = true
					changed = true
				}
			}
		}
	}

	var names []string
	for _, fn := range m.Functions() {
		if marked[fn] || fn.HasPreserveNone() {
			names = append(names, fn.Name)
		}
	}
	slices.Sort(names)
	return names
}

func TestInfectionRandomGraphs(t *testing.T) {
	rng := rand.New(rand.NewSource(67))
	linkages := []ir.Linkage{ir.InternalLinkage, ir.InternalLinkage, ir.InternalLinkage, ir.PrivateLinkage, ir.ExternalLinkage, ir.WeakAnyLinkage}

	for i := 0; i < 100; i++ {
		const size = 30
		specs := make([]funcSpec, size)
		for j := range specs {
			specs[j] = funcSpec{
				name:      fmt.Sprintf("f%d", j),
				linkage:   linkages[rng.Intn(len(linkages))],
				decl:      rng.Intn(10) == 0,
				marked:    rng.Intn(8) == 0,
				ref:       rng.Intn(10) == 0,
				unlowered: rng.Intn(20) == 0,
			}
		}

		var calls [][2]string
		for j := 0; j < size*2; j++ {
			calls = append(calls, [2]string{
				fmt.Sprintf("f%d", rng.Intn(size)),
				fmt.Sprintf("f%d", rng.Intn(size)),
			})
		}

		m := buildModule(t, specs, calls)
		expected := closure(m)
		NewInfectionPass(quietOptions(), nil).Run(m)
		if diff := pretty.Diff(markedNames(m), expected); len(diff) > 0 {
			t.Fatalf("graph %d: unexpected marked set: %v", i, diff)
		}
	}
}
