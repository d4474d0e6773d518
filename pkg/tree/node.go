package tree

import (
	"errors"

	"github.com/kodegenix/kgtree/pkg/symbol"
)

// Sentinel errors for tree mutation, wrapped with context by callers per the
// repository-wide fmt.Errorf("...: %w", Err) convention.
var (
	ErrNotContainer           = errors.New("node is not an array or object")
	ErrIndexOutOfRange        = errors.New("index out of range")
	ErrKeyNotFound            = errors.New("key not found")
	ErrUnsupportedGenericType = errors.New("unsupported generic value type")
)

// Metadata holds a Node's position within its owning tree: its parent (nil
// at the root), its index (position in an Array parent, or position among
// an Object parent's entries), its key (property name in an Object parent,
// the zero Symbol otherwise), and an optional file provenance handle.
type Metadata struct {
	parent *Node
	index  int
	key    symbol.Symbol
	file   *FileInfo
}

// Node is a single element of the tree: metadata plus a Value payload.
// Container values (Array/Object) hold further Nodes as children, so a tree
// is simply a graph of Nodes rooted at one with no parent.
//
// NodeRef is an alias for *Node: with a garbage collector, "shared
// ownership" is just pointer identity and the parent back-reference is an
// ordinary non-owning pointer field, so a detached subtree never keeps its
// former parent alive.
type NodeRef = *Node

// Node is a single tree element: see NodeRef.
type Node struct {
	metadata Metadata
	value    Value
	// shared is true once this node has been linked into a tree as someone's
	// child. A node that has never been shared is "consumable": it may be
	// adopted as a child elsewhere without a defensive deep copy, since no
	// other part of the tree can be holding a reference to it.
	shared bool
}

// New wraps a Value in a fresh, parentless, consumable Node.
func New(v Value) *Node { return &Node{value: v} }

// NewNull, NewBool, ... are convenience constructors over New.
func NewNull() *Node           { return New(Null()) }
func NewBool(b bool) *Node     { return New(Bool(b)) }
func NewInt(n int64) *Node     { return New(Int(n)) }
func NewFloat(f float64) *Node { return New(Float(f)) }
func NewString(s string) *Node { return New(Str(s)) }
func NewBinary(b []byte) *Node { return New(Bin(b)) }

// NewArray builds an Array node from children, fixing up each child's
// parent/index metadata and marking them shared.
func NewArray(children ...*Node) *Node {
	n := New(Arr(nil))
	for _, c := range children {
		_ = n.appendArrayChild(c)
	}

	return n
}

// ObjectEntry is one key/value pair used by NewObject.
type ObjectEntry struct {
	Key   string
	Value *Node
}

// NewObject builds an Object node from entries in the given order, fixing
// up each child's parent/key metadata and marking them shared.
func NewObject(entries ...ObjectEntry) *Node {
	n := New(Obj())
	for _, e := range entries {
		_ = n.setObjectChild(symbol.New(e.Key), e.Value)
	}

	return n
}

// Value returns the node's payload.
func (n *Node) Value() Value { return n.value }

// SetValue replaces the node's scalar payload. Replacing a container value
// this way bypasses AddChild's metadata bookkeeping and should only be used
// for scalar kinds; use AddChild/RemoveChild to mutate containers.
func (n *Node) SetValue(v Value) { n.value = v }

// Kind returns the node's value kind.
func (n *Node) Kind() Kind { return n.value.Kind() }

// Parent returns the owning Node, or nil at the root.
func (n *Node) Parent() *Node { return n.metadata.parent }

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool { return n.metadata.parent == nil }

// Index returns the node's position within an Array parent, or its position
// among an Object parent's entries (both are 0 at the root).
func (n *Node) Index() int { return n.metadata.index }

// Key returns the node's property name within an Object parent (the zero
// Symbol otherwise).
func (n *Node) Key() symbol.Symbol { return n.metadata.key }

// Level returns the node's depth: 0 at the root, incrementing by one per
// ancestor.
func (n *Node) Level() int {
	level := 0
	for p := n.metadata.parent; p != nil; p = p.metadata.parent {
		level++
	}

	return level
}

// File returns the node's file provenance, inherited from the nearest
// ancestor that has one set (§3 invariant 5).
func (n *Node) File() *FileInfo {
	for cur := n; cur != nil; cur = cur.metadata.parent {
		if cur.metadata.file != nil {
			return cur.metadata.file
		}
	}

	return nil
}

// SetFile attaches file provenance directly to this node (not inherited).
func (n *Node) SetFile(fi *FileInfo) { n.metadata.file = fi }

// OwnFile returns the file metadata set directly on this node, ignoring
// inheritance (nil if this node has none of its own).
func (n *Node) OwnFile() *FileInfo { return n.metadata.file }

// IsConsumable reports whether this node may be adopted as a child of
// another container without a defensive deep copy.
func (n *Node) IsConsumable() bool { return !n.shared }

// ChildrenCount returns the number of children for Array/Object nodes.
func (n *Node) ChildrenCount() (int, bool) { return n.value.ChildrenCount() }

// DeepCopy returns a fully independent copy of the subtree rooted at n. The
// copy is parentless and consumable, which is what adoption sites need when
// a shared node must be re-parented without aliasing.
func (n *Node) DeepCopy() *Node {
	switch n.value.kind {
	case KindArray:
		children := make([]*Node, len(n.value.array))
		for i, c := range n.value.array {
			children[i] = c.DeepCopy()
		}

		cp := NewArray(children...)
		cp.metadata.file = n.metadata.file

		return cp
	case KindObject:
		entries := make([]ObjectEntry, 0, n.value.object.len())
		for _, k := range n.value.object.keys {
			v, _ := n.value.object.get(k)
			entries = append(entries, ObjectEntry{Key: k.String(), Value: v.DeepCopy()})
		}

		cp := NewObject(entries...)
		cp.metadata.file = n.metadata.file

		return cp
	default:
		cp := &Node{value: n.value}
		cp.metadata.file = n.metadata.file

		return cp
	}
}

func (n *Node) appendArrayChild(c *Node) error {
	if n.value.kind != KindArray {
		return ErrNotContainer
	}

	idx := len(n.value.array)
	n.value.array = append(n.value.array, c)
	c.metadata.parent = n
	c.metadata.index = idx
	c.metadata.key = symbol.Symbol{}
	c.shared = true

	return nil
}

func (n *Node) setObjectChild(k symbol.Symbol, c *Node) error {
	if n.value.kind != KindObject {
		return ErrNotContainer
	}

	if n.value.object == nil {
		n.value.object = newOrderedMap()
	}

	n.value.object.set(k, c)

	idx := n.value.object.idx[k]
	c.metadata.parent = n
	c.metadata.index = idx
	c.metadata.key = k
	c.shared = true

	return nil
}

// AddChild inserts or replaces a child of a container node. For Array
// nodes, index selects the position to overwrite (or append, if index is
// nil or out of range); key is ignored. For Object nodes, key selects the
// property to overwrite (or append, if absent); index is ignored. This is
// the exact operation the tree resolver uses to splice a freshly resolved
// value back into its parent at the same position the original occupied.
func (n *Node) AddChild(index *int, key *symbol.Symbol, child *Node) error {
	switch n.value.kind {
	case KindArray:
		if index != nil && *index >= 0 && *index < len(n.value.array) {
			n.value.array[*index] = child
			child.metadata.parent = n
			child.metadata.index = *index
			child.metadata.key = symbol.Symbol{}
			child.shared = true

			return nil
		}

		return n.appendArrayChild(child)
	case KindObject:
		var k symbol.Symbol
		if key != nil {
			k = *key
		}

		return n.setObjectChild(k, child)
	default:
		return ErrNotContainer
	}
}

// RemoveChildAt removes the child at index from an Array node, shifting and
// reindexing the remaining elements.
func (n *Node) RemoveChildAt(index int) (*Node, error) {
	if n.value.kind != KindArray {
		return nil, ErrNotContainer
	}

	if index < 0 || index >= len(n.value.array) {
		return nil, ErrIndexOutOfRange
	}

	removed := n.value.array[index]
	n.value.array = append(n.value.array[:index], n.value.array[index+1:]...)

	for i := index; i < len(n.value.array); i++ {
		n.value.array[i].metadata.index = i
	}

	removed.metadata.parent = nil
	removed.shared = false

	return removed, nil
}

// RemoveChildKey removes a property from an Object node, reindexing the
// remaining entries' position metadata.
func (n *Node) RemoveChildKey(key string) (*Node, error) {
	if n.value.kind != KindObject {
		return nil, ErrNotContainer
	}

	k := symbol.New(key)

	removed, ok := n.value.object.get(k)
	if !ok {
		return nil, ErrKeyNotFound
	}

	n.value.object.delete(k)

	for i, kk := range n.value.object.keys {
		v, _ := n.value.object.get(kk)
		v.metadata.index = i
	}

	removed.metadata.parent = nil
	removed.metadata.key = symbol.Symbol{}
	removed.shared = false

	return removed, nil
}

// Extend appends children to an Array node in order.
func (n *Node) Extend(children []*Node) error {
	if n.value.kind != KindArray {
		return ErrNotContainer
	}

	for _, c := range children {
		if err := n.appendArrayChild(c); err != nil {
			return err
		}
	}

	return nil
}

// ExtendObject appends or overwrites properties on an Object node in order.
func (n *Node) ExtendObject(entries []ObjectEntry) error {
	if n.value.kind != KindObject {
		return ErrNotContainer
	}

	for _, e := range entries {
		if err := n.setObjectChild(symbol.New(e.Key), e.Value); err != nil {
			return err
		}
	}

	return nil
}

// VisitRecursive walks the subtree rooted at n in pre-order, calling fn with
// (root, parent, node) for every node -- root is always n, parent is nil
// only for n itself. fn returns whether to descend into node's children.
// The walk is iterative (an explicit stack of frames) rather than using
// native recursion, so that deeply nested documents cannot overflow the
// goroutine stack.
func (n *Node) VisitRecursive(fn func(root, parent, node *Node) bool) {
	type frame struct {
		parent *Node
		node   *Node
	}

	stack := []frame{{nil, n}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !fn(n, f.parent, f.node) {
			continue
		}

		switch f.node.value.kind {
		case KindArray:
			for i := len(f.node.value.array) - 1; i >= 0; i-- {
				stack = append(stack, frame{f.node, f.node.value.array[i]})
			}
		case KindObject:
			keys := f.node.value.object.keys
			for i := len(keys) - 1; i >= 0; i-- {
				v, _ := f.node.value.object.get(keys[i])
				stack = append(stack, frame{f.node, v})
			}
		}
	}
}
