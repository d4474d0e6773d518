// Package scope implements the hierarchical function/method/variable lookup
// chain Opath expressions are evaluated against: each scope holds its own
// registrations and falls back to its parent on a miss, so a child scope
// shadows same-named entries without copying them.
package scope

import (
	"sort"

	"github.com/kodegenix/kgtree/pkg/opath/nodeset"
)

// Func is a free function implementation: given the unevaluated argument
// expressions' already-evaluated NodeSets, produce a result NodeSet.
type Func func(args []nodeset.NodeSet) (nodeset.NodeSet, error)

// Method is a method implementation bound to a receiver NodeSet.
type Method func(target nodeset.NodeSet, args []nodeset.NodeSet) (nodeset.NodeSet, error)

// Scope is one level of the lookup chain: its own funcs/methods/vars, plus
// an optional parent scope consulted on a local miss.
type Scope struct {
	funcs   map[string]Func
	methods map[string]Method
	vars    map[string]nodeset.NodeSet
	parent  *Scope
}

// New creates a root scope with no parent.
func New() *Scope {
	return &Scope{
		funcs:   make(map[string]Func),
		methods: make(map[string]Method),
		vars:    make(map[string]nodeset.NodeSet),
	}
}

// NewChild creates a scope whose lookups fall back to parent on a local
// miss. Variables set in the child shadow same-named variables in parent.
func NewChild(parent *Scope) *Scope {
	s := New()
	s.parent = parent

	return s
}

// Parent returns the enclosing scope, or nil at the root.
func (s *Scope) Parent() *Scope { return s.parent }

// SetFunc registers a free function in this scope.
func (s *Scope) SetFunc(name string, f Func) { s.funcs[name] = f }

// SetMethod registers a method in this scope.
func (s *Scope) SetMethod(name string, m Method) { s.methods[name] = m }

// SetVar binds a variable in this scope.
func (s *Scope) SetVar(name string, v nodeset.NodeSet) { s.vars[name] = v }

// GetFunc resolves a free function by walking up the parent chain.
func (s *Scope) GetFunc(name string) (Func, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if f, ok := cur.funcs[name]; ok {
			return f, true
		}
	}

	return nil, false
}

// GetMethod resolves a method by walking up the parent chain.
func (s *Scope) GetMethod(name string) (Method, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if m, ok := cur.methods[name]; ok {
			return m, true
		}
	}

	return nil, false
}

// GetVar resolves a variable by walking up the parent chain.
func (s *Scope) GetVar(name string) (nodeset.NodeSet, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}

	return nodeset.NodeSet{}, false
}

// ClearFuncs removes every function registered directly in this scope
// (parent scopes are untouched).
func (s *Scope) ClearFuncs() { s.funcs = make(map[string]Func) }

// ClearMethods removes every method registered directly in this scope.
func (s *Scope) ClearMethods() { s.methods = make(map[string]Method) }

// ClearVars removes every variable bound directly in this scope.
func (s *Scope) ClearVars() { s.vars = make(map[string]nodeset.NodeSet) }

// FuncNames returns the sorted names of functions registered directly in
// this scope (not including parents).
func (s *Scope) FuncNames() []string { return sortedKeysFunc(s.funcs) }

// MethodNames returns the sorted names of methods registered directly in
// this scope (not including parents).
func (s *Scope) MethodNames() []string { return sortedKeysMethod(s.methods) }

// VarNames returns the sorted names of variables bound directly in this
// scope (not including parents).
func (s *Scope) VarNames() []string { return sortedKeysVar(s.vars) }

func sortedKeysFunc(m map[string]Func) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

func sortedKeysMethod(m map[string]Method) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

func sortedKeysVar(m map[string]nodeset.NodeSet) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
