package diff

import (
	"container/heap"

	"github.com/kodegenix/kgtree/pkg/opath/cache"
	"github.com/kodegenix/kgtree/pkg/symbol"
	"github.com/kodegenix/kgtree/pkg/tree"
)

// change is the engine's internal working representation of a NodeChange:
// the actual node pointers it was derived from, carried alongside the kind
// so that move detection and full-diff expansion never need to re-resolve a
// path string back into a node -- the pointers are already in hand. Path
// strings are computed from the pointers through the path cache pc, which
// memoizes them across the walk and the full-diff expansion.
type change struct {
	kind    ChangeKind
	oldNode *tree.Node
	newNode *tree.Node
}

// orderedKeyUnion returns the union of aKeys and bKeys, each key positioned
// at the end of the order in which it was last seen, so a key common to
// both lists ends up ordered by its position in bKeys, not aKeys. This is
// what makes a removed-only property surface before the keys both sides
// share in minimal-diff output.
func orderedKeyUnion(aKeys, bKeys []symbol.Symbol) []symbol.Symbol {
	var order []symbol.Symbol

	seen := make(map[symbol.Symbol]int)

	push := func(k symbol.Symbol) {
		if i, ok := seen[k]; ok {
			order = append(order[:i], order[i+1:]...)

			for kk, idx := range seen {
				if idx > i {
					seen[kk] = idx - 1
				}
			}
		}

		seen[k] = len(order)
		order = append(order, k)
	}

	for _, k := range aKeys {
		push(k)
	}

	for _, k := range bKeys {
		push(k)
	}

	return order
}

// diffNode performs the lockstep minimal-diff walk: identical (by pointer)
// nodes contribute nothing; same-kind scalars differing in value become a
// single Updated; Object/Object and Array/Array recurse into their shared
// positions and report Added/Removed for the rest; any other kind mismatch
// reports the node itself Updated plus every child of whichever side is a
// container as Added/Removed.
func diffNode(a, b *tree.Node, changes *[]change, pc cache.Cache) {
	if a == b {
		return
	}

	av, bv := a.Value(), b.Value()

	switch {
	case av.IsObject() && bv.IsObject():
		for _, k := range orderedKeyUnion(av.ObjectKeys(), bv.ObjectKeys()) {
			an, aok := av.ObjectGet(k)
			bn, bok := bv.ObjectGet(k)

			switch {
			case aok && bok:
				diffNode(an, bn, changes, pc)
			case aok:
				pc.Get(an, pathOf)
				*changes = append(*changes, change{kind: Removed, oldNode: an})
			case bok:
				pc.Get(bn, pathOf)
				*changes = append(*changes, change{kind: Added, newNode: bn})
			}
		}

	case av.IsArray() && bv.IsArray():
		aa, bb := av.Array(), bv.Array()

		n := len(aa)
		if len(bb) < n {
			n = len(bb)
		}

		for i := 0; i < n; i++ {
			diffNode(aa[i], bb[i], changes, pc)
		}

		for _, extra := range aa[n:] {
			pc.Get(extra, pathOf)
			*changes = append(*changes, change{kind: Removed, oldNode: extra})
		}

		for _, extra := range bb[n:] {
			pc.Get(extra, pathOf)
			*changes = append(*changes, change{kind: Added, newNode: extra})
		}

	case av.Kind() == bv.Kind() && !av.IsContainer():
		if !av.Equal(bv) {
			pc.Get(a, pathOf)
			pc.Get(b, pathOf)
			*changes = append(*changes, change{kind: Updated, oldNode: a, newNode: b})
		}

	default:
		pc.Get(a, pathOf)
		pc.Get(b, pathOf)
		*changes = append(*changes, change{kind: Updated, oldNode: a, newNode: b})

		switch {
		case av.IsObject():
			for _, k := range av.ObjectKeys() {
				c, _ := av.ObjectGet(k)
				pc.Get(c, pathOf)
				*changes = append(*changes, change{kind: Removed, oldNode: c})
			}
		case av.IsArray():
			for _, c := range av.Array() {
				pc.Get(c, pathOf)
				*changes = append(*changes, change{kind: Removed, oldNode: c})
			}
		}

		switch {
		case bv.IsObject():
			for _, k := range bv.ObjectKeys() {
				c, _ := bv.ObjectGet(k)
				pc.Get(c, pathOf)
				*changes = append(*changes, change{kind: Added, newNode: c})
			}
		case bv.IsArray():
			for _, c := range bv.Array() {
				pc.Get(c, pathOf)
				*changes = append(*changes, change{kind: Added, newNode: c})
			}
		}
	}
}

// moveCandidate is one Added/Removed pairing considered during move
// detection, ordered by ascending distance then by the add/del change's
// position in the minimal-diff list (so ties resolve deterministically in
// document order).
type moveCandidate struct {
	distance float64
	addIndex int
	delIndex int
}

type moveHeap []moveCandidate

func (h moveHeap) Len() int { return len(h) }

func (h moveHeap) Less(i, j int) bool {
	if h[i].distance != h[j].distance {
		return h[i].distance < h[j].distance
	}

	if h[i].addIndex != h[j].addIndex {
		return h[i].addIndex < h[j].addIndex
	}

	return h[i].delIndex < h[j].delIndex
}

func (h moveHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *moveHeap) Push(x any) { *h = append(*h, x.(moveCandidate)) }

func (h *moveHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]

	return item
}

// detectMoves scans changes for Added/Removed pairs within opts.maxDistance
// of each other, greedily converts the closest pairs (by the moveHeap order)
// into single Moved changes, and returns the resulting list with consumed
// Added/Removed entries removed.
func detectMoves(changes []change, opts Options) []change {
	adds, dels := 0, 0

	for _, c := range changes {
		switch c.kind {
		case Added:
			adds++
		case Removed:
			dels++
		}
	}

	if adds == 0 || dels == 0 {
		return changes
	}

	maxDistance := opts.maxDistance()

	h := make(moveHeap, 0, adds*dels)

	for ai, ac := range changes {
		if ac.kind != Added {
			continue
		}

		for di, dc := range changes {
			if dc.kind != Removed {
				continue
			}

			d := Distance(dc.oldNode, ac.newNode, opts.MinCount)
			if d <= maxDistance {
				h = append(h, moveCandidate{distance: d, addIndex: ai, delIndex: di})
			}
		}
	}

	heap.Init(&h)

	used := make([]bool, len(changes))
	moved := make(map[int]change)

	for h.Len() > 0 {
		m := heap.Pop(&h).(moveCandidate)
		if used[m.addIndex] || used[m.delIndex] {
			continue
		}

		used[m.addIndex] = true
		used[m.delIndex] = true

		idx := m.addIndex
		if m.delIndex < idx {
			idx = m.delIndex
		}

		moved[idx] = change{kind: Moved, oldNode: changes[m.delIndex].oldNode, newNode: changes[m.addIndex].newNode}
	}

	result := make([]change, 0, len(changes))

	for i, c := range changes {
		if used[i] {
			if mc, ok := moved[i]; ok {
				result = append(result, mc)
			}

			continue
		}

		result = append(result, c)
	}

	return result
}

func diffChanges(a, b *tree.Node, opts Options, pc cache.Cache) []change {
	var changes []change

	diffNode(a, b, &changes, pc)

	if !opts.DetectMove {
		return changes
	}

	return detectMoves(changes, opts)
}

// expandFull turns a minimal change list into a full one: every ancestor of
// a changed node not already reported gets its own Updated entry (nearest
// root first), and every descendant of a top-level Added/Removed subtree
// gets its own entry of the same kind. Ancestor positions are always
// resolved against rootB, even for a Removed change whose own node only
// exists in the old tree, since the ancestor itself is assumed to still be
// present in both trees.
func expandFull(minimal []change, rootB *tree.Node, pc cache.Cache) []change {
	var res []change

	for _, c := range minimal {
		var start *tree.Node
		if c.kind == Removed {
			start = c.oldNode.Parent()
		} else {
			start = c.newNode.Parent()
		}

		route := routeFromRoot(start)

		var ancestors []*tree.Node

		for {
			anc := resolveRoute(rootB, route)
			if anc == nil || pc.Contains(anc) {
				break
			}

			pc.Get(anc, pathOf)
			ancestors = append(ancestors, anc)

			if len(route) == 0 {
				break
			}

			route = route[:len(route)-1]
		}

		for i := len(ancestors) - 1; i >= 0; i-- {
			res = append(res, change{kind: Updated, oldNode: ancestors[i], newNode: ancestors[i]})
		}

		res = append(res, c)

		switch c.kind {
		case Removed:
			c.oldNode.VisitRecursive(func(_, _, n *tree.Node) bool {
				if n != c.oldNode {
					pc.Get(n, pathOf)
					res = append(res, change{kind: Removed, oldNode: n})
				}

				return true
			})
		case Added:
			c.newNode.VisitRecursive(func(_, _, n *tree.Node) bool {
				if n != c.newNode {
					pc.Get(n, pathOf)
					res = append(res, change{kind: Added, newNode: n})
				}

				return true
			})
		}
	}

	return res
}

func toNodeChange(c change, pc cache.Cache) NodeChange {
	nc := NodeChange{Kind: c.kind}

	if c.oldNode != nil {
		p := pc.Get(c.oldNode, pathOf)
		nc.OldPath = &p
	}

	if c.newNode != nil {
		p := pc.Get(c.newNode, pathOf)
		nc.NewPath = &p
	}

	return nc
}

func toNodeChanges(changes []change, pc cache.Cache) []NodeChange {
	out := make([]NodeChange, len(changes))

	for i, c := range changes {
		out[i] = toNodeChange(c, pc)
	}

	return out
}

// Minimal reports the smallest set of changes that turns a into b: for each
// structural position visited in both trees, exactly one change if the
// values there differ, nothing otherwise.
func Minimal(a, b *tree.Node, opts Options) []NodeChange {
	pc := cache.NewMap()
	changes := diffChanges(a, b, opts, pc)

	return toNodeChanges(changes, pc)
}

// Full reports Minimal's changes plus an Updated entry for every ancestor of
// a changed node and a same-kind entry for every descendant of a top-level
// Added/Removed subtree, so that (for example) every node on the path from
// the root to a changed leaf is individually identifiable as touched.
func Full(a, b *tree.Node, opts Options) []NodeChange {
	pc := cache.NewMap()
	changes := diffChanges(a, b, opts, pc)
	changes = expandFull(changes, b, pc)

	return toNodeChanges(changes, pc)
}
