package diff

import (
	"github.com/kodegenix/kgtree/pkg/opath/cache"
	"github.com/kodegenix/kgtree/pkg/opath/nodeset"
	"github.com/kodegenix/kgtree/pkg/opath/scope"
	"github.com/kodegenix/kgtree/pkg/tree"
)

// Env captures the correspondence between two diffed trees so that a node
// in one can be mapped to its counterpart in the other: moved subtrees map
// through the detected move pairs, everything else maps through its
// structural position. It backs the findNew/findOld functions, which only
// exist inside a diff environment.
type Env struct {
	oldRoot  *tree.Node
	newRoot  *tree.Node
	oldToNew map[*tree.Node]*tree.Node
	newToOld map[*tree.Node]*tree.Node
}

// NewEnv diffs a against b (move detection forced on, so renames become
// usable correspondences) and returns the resulting environment.
func NewEnv(a, b *tree.Node, opts Options) *Env {
	opts.DetectMove = true

	changes := diffChanges(a, b, opts, cache.NewMap())

	env := &Env{
		oldRoot:  a,
		newRoot:  b,
		oldToNew: make(map[*tree.Node]*tree.Node),
		newToOld: make(map[*tree.Node]*tree.Node),
	}

	for _, c := range changes {
		if c.kind != Moved {
			continue
		}

		env.oldToNew[c.oldNode] = c.newNode
		env.newToOld[c.newNode] = c.oldNode
	}

	return env
}

// FindNew maps a node of the old tree to its counterpart in the new tree,
// or nil when the node (or its position) no longer exists there.
func (e *Env) FindNew(n *tree.Node) *tree.Node {
	return e.find(n, e.oldToNew, e.newRoot)
}

// FindOld maps a node of the new tree to its counterpart in the old tree,
// or nil when the node had no previous incarnation.
func (e *Env) FindOld(n *tree.Node) *tree.Node {
	return e.find(n, e.newToOld, e.oldRoot)
}

// find walks up from n looking for a moved ancestor; if one is found the
// remaining route below it is resolved inside the moved counterpart,
// otherwise the full route resolves against the other tree's root.
func (e *Env) find(n *tree.Node, moved map[*tree.Node]*tree.Node, otherRoot *tree.Node) *tree.Node {
	var below []pathSeg

	for cur := n; cur != nil; cur = cur.Parent() {
		if counterpart, ok := moved[cur]; ok {
			return resolveRoute(counterpart, reverseSegs(below))
		}

		if cur.IsRoot() {
			break
		}

		below = append(below, segOf(cur))
	}

	return resolveRoute(otherRoot, reverseSegs(below))
}

func segOf(n *tree.Node) pathSeg {
	if n.Parent().Value().IsArray() {
		return pathSeg{isIndex: true, index: n.Index()}
	}

	return pathSeg{key: n.Key()}
}

func reverseSegs(rev []pathSeg) []pathSeg {
	segs := make([]pathSeg, len(rev))
	for i, s := range rev {
		segs[len(rev)-1-i] = s
	}

	return segs
}

// Register installs findNew and findOld into s. Each maps every node of its
// argument through the environment, dropping nodes with no counterpart.
func (e *Env) Register(s *scope.Scope) {
	s.SetFunc("findNew", func(args []nodeset.NodeSet) (nodeset.NodeSet, error) {
		return e.mapAll(args, e.FindNew)
	})

	s.SetFunc("findOld", func(args []nodeset.NodeSet) (nodeset.NodeSet, error) {
		return e.mapAll(args, e.FindOld)
	})
}

func (e *Env) mapAll(args []nodeset.NodeSet, f func(*tree.Node) *tree.Node) (nodeset.NodeSet, error) {
	var out []*tree.Node

	for _, a := range args {
		for _, n := range a.All() {
			if m := f(n); m != nil {
				out = append(out, m)
			}
		}
	}

	return nodeset.FromSlice(out), nil
}
