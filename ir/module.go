package ir

import (
	"cmp"
	"io"
	"slices"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/multi"
	"gonum.org/v1/gonum/graph/topo"
)

// Module is a set of functions together with the call graph between them.
// Every call site is a line from the caller to the callee, so a caller
// calling the same function twice is connected by two parallel lines.
type Module struct {
	Name string

	functions []*Function
	byName    map[string]*Function
	graph     *multi.DirectedGraph
	nextID    int64
}

func NewModule(name string) *Module {
	return &Module{
		Name:   name,
		byName: map[string]*Function{},
		graph:  multi.NewDirectedGraph(),
	}
}

// AddFunction inserts the function into the module. Functions are kept in
// insertion order, which is the order every pass iterates them in.
func (m *Module) AddFunction(fn *Function) error {
	if _, ok := m.byName[fn.Name]; ok {
		return errors.Wrapf(ErrDuplicateFunction, "%s", fn.Name)
	}
	if fn.module != nil {
		return errors.Wrapf(ErrForeignFunction, "%s", fn.Name)
	}

	fn.id = m.nextID
	fn.module = m
	if fn.attrs == nil {
		fn.attrs = map[string]string{}
	}
	m.nextID++

	m.functions = append(m.functions, fn)
	m.byName[fn.Name] = fn
	m.graph.AddNode(fn)
	return nil
}

// Function returns the function with the given name or nil.
func (m *Module) Function(name string) *Function {
	return m.byName[name]
}

// Functions returns the functions of the module in insertion order. The
// returned slice must not be modified.
func (m *Module) Functions() []*Function {
	return m.functions
}

func (m *Module) Len() int {
	return len(m.functions)
}

func (m *Module) Empty() bool {
	return len(m.functions) == 0
}

func (m *Module) owns(fn *Function) bool {
	return fn != nil && fn.module == m
}

// AddCall records a call site in caller that calls callee directly.
func (m *Module) AddCall(caller, callee *Function) error {
	if !m.owns(caller) {
		return errors.Wrapf(ErrForeignFunction, "caller %v", caller)
	}
	if !m.owns(callee) {
		return errors.Wrapf(ErrForeignFunction, "callee %v", callee)
	}

	if caller == callee {
		// Direct recursion never changes which callers are reachable.
		callee.recursive = true
		return nil
	}

	m.graph.SetLine(m.graph.NewLine(caller, callee))
	return nil
}

// AddReference records a use of fn that is not a call, such as taking the
// address of the function. The user is nil when the use is not inside of a
// function (a global initializer for example).
func (m *Module) AddReference(user, fn *Function) error {
	if user != nil && !m.owns(user) {
		return errors.Wrapf(ErrForeignFunction, "user %v", user)
	}
	if !m.owns(fn) {
		return errors.Wrapf(ErrForeignFunction, "%v", fn)
	}
	fn.nonCallUses++
	return nil
}

// Callers returns the distinct functions that call fn directly, in module
// order.
func (m *Module) Callers(fn *Function) []*Function {
	return m.collect(m.graph.To(fn.ID()))
}

// Callees returns the distinct functions that fn calls directly, in module
// order.
func (m *Module) Callees(fn *Function) []*Function {
	return m.collect(m.graph.From(fn.ID()))
}

// CallSites returns the number of call sites in caller that call callee.
func (m *Module) CallSites(caller, callee *Function) int {
	if caller == callee {
		if caller.recursive {
			return 1
		}
		return 0
	}
	return m.graph.Lines(caller.ID(), callee.ID()).Len()
}

func (m *Module) collect(nodes graph.Nodes) []*Function {
	result := make([]*Function, 0, nodes.Len())
	for nodes.Next() {
		result = append(result, nodes.Node().(*Function))
	}
	slices.SortFunc(result, func(a, b *Function) int {
		return cmp.Compare(a.id, b.id)
	})
	return result
}

// Cycles returns the groups of functions that call each other recursively.
// Directly recursive functions form a group of their own.
func (m *Module) Cycles() [][]*Function {
	var cycles [][]*Function
	for _, component := range topo.TarjanSCC(m.graph) {
		if len(component) == 1 && !component[0].(*Function).recursive {
			continue
		}

		group := make([]*Function, len(component))
		for i, node := range component {
			group[i] = node.(*Function)
		}
		slices.SortFunc(group, func(a, b *Function) int {
			return cmp.Compare(a.id, b.id)
		})
		cycles = append(cycles, group)
	}

	slices.SortFunc(cycles, func(a, b []*Function) int {
		return cmp.Compare(a[0].id, b[0].id)
	})
	return cycles
}

// WriteDOT renders the call graph in the DOT language.
func (m *Module) WriteDOT(w io.Writer) error {
	b, err := dot.MarshalMulti(m.graph, m.Name, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}
	_, err = w.Write(b)
	return errors.WithStack(err)
}
