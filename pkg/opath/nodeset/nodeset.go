// Package nodeset defines the result type produced by evaluating an Opath
// expression: a set of zero, one, or many tree nodes. Kept as its own
// package (rather than living in pkg/opath/eval) because both
// pkg/opath/scope (variable bindings) and pkg/opath/eval (expression
// results) need it, and eval itself depends on scope.
package nodeset

import "github.com/kodegenix/kgtree/pkg/tree"

// Kind discriminates the three NodeSet shapes.
type Kind int

const (
	Empty Kind = iota
	One
	Many
)

// NodeSet is an immutable result value: the nodes selected or produced by
// evaluating an Opath expression against a tree.
type NodeSet struct {
	kind  Kind
	one   *tree.Node
	nodes []*tree.Node
}

// NewEmpty returns the empty set.
func NewEmpty() NodeSet { return NodeSet{kind: Empty} }

// NewOne wraps a single node.
func NewOne(n *tree.Node) NodeSet { return NodeSet{kind: One, one: n} }

// NewMany wraps zero or more nodes as a Many set, even if nodes has length
// 0 or 1 -- callers that want Empty/One canonicalization should use
// FromSlice instead.
func NewMany(nodes []*tree.Node) NodeSet { return NodeSet{kind: Many, nodes: nodes} }

// FromSlice builds the canonical NodeSet for a result slice: Empty for
// none, One for exactly one, Many otherwise.
func FromSlice(nodes []*tree.Node) NodeSet {
	switch len(nodes) {
	case 0:
		return NewEmpty()
	case 1:
		return NewOne(nodes[0])
	default:
		return NewMany(nodes)
	}
}

// Kind reports which shape this set holds.
func (s NodeSet) Kind() Kind { return s.kind }

// IsEmpty reports whether the set holds no nodes.
func (s NodeSet) IsEmpty() bool { return s.kind == Empty || (s.kind == Many && len(s.nodes) == 0) }

// Len returns the number of nodes in the set.
func (s NodeSet) Len() int {
	switch s.kind {
	case Empty:
		return 0
	case One:
		return 1
	default:
		return len(s.nodes)
	}
}

// First returns the first node and true, or (nil, false) if empty.
func (s NodeSet) First() (*tree.Node, bool) {
	switch s.kind {
	case One:
		return s.one, true
	case Many:
		if len(s.nodes) > 0 {
			return s.nodes[0], true
		}
	}

	return nil, false
}

// Single returns the sole node and true only if the set has exactly one
// element (regardless of whether it is the One or a single-element Many).
func (s NodeSet) Single() (*tree.Node, bool) {
	if s.kind == One {
		return s.one, true
	}

	if s.kind == Many && len(s.nodes) == 1 {
		return s.nodes[0], true
	}

	return nil, false
}

// All returns every node in the set, in order.
func (s NodeSet) All() []*tree.Node {
	switch s.kind {
	case Empty:
		return nil
	case One:
		return []*tree.Node{s.one}
	default:
		return s.nodes
	}
}
