package diff

import (
	"github.com/kodegenix/kgtree/pkg/symbol"
	"github.com/kodegenix/kgtree/pkg/tree"
)

// pathSeg is one structural step from a tree's root: either "descend into
// array index N" or "descend into object key K". A sequence of these
// describes a node's position independent of which tree instance it lives
// in, which is what lets the full-diff ancestor pass re-resolve an a-side
// node's position against the b-side tree (see routeFromRoot and
// resolveRoute below).
type pathSeg struct {
	isIndex bool
	index   int
	key     symbol.Symbol
}

// routeFromRoot returns n's position as a sequence of steps from its root,
// nearest-root first.
func routeFromRoot(n *tree.Node) []pathSeg {
	var rev []pathSeg

	for cur := n; cur != nil && !cur.IsRoot(); cur = cur.Parent() {
		if cur.Parent().Value().IsArray() {
			rev = append(rev, pathSeg{isIndex: true, index: cur.Index()})
		} else {
			rev = append(rev, pathSeg{key: cur.Key()})
		}
	}

	segs := make([]pathSeg, len(rev))
	for i, s := range rev {
		segs[len(rev)-1-i] = s
	}

	return segs
}

// resolveRoute walks root down through segs, returning nil if the route
// does not exist in this tree (a differently-shaped ancestor chain).
func resolveRoute(root *tree.Node, segs []pathSeg) *tree.Node {
	cur := root

	for _, s := range segs {
		v := cur.Value()

		if s.isIndex {
			if !v.IsArray() || s.index < 0 || s.index >= len(v.Array()) {
				return nil
			}

			cur = v.Array()[s.index]

			continue
		}

		n, ok := v.ObjectGet(s.key)
		if !ok {
			return nil
		}

		cur = n
	}

	return cur
}

// pathOf renders n's position as a canonical Opath string, delegating to the
// tree package's canonical path renderer so that diff output, `@path` meta
// access, and Opath.FromNode all agree on one spelling.
func pathOf(n *tree.Node) string {
	return n.Path()
}
