package diff

import "github.com/kodegenix/kgtree/pkg/tree"

// nodeCount returns the number of nodes in the subtree rooted at n,
// including n itself.
func nodeCount(n *tree.Node) uint32 {
	v := n.Value()

	switch {
	case v.IsArray():
		c := uint32(1)
		for _, child := range v.Array() {
			c += nodeCount(child)
		}

		return c
	case v.IsObject():
		c := uint32(1)
		for _, k := range v.ObjectKeys() {
			child, _ := v.ObjectGet(k)
			c += nodeCount(child)
		}

		return c
	default:
		return 1
	}
}

// nodeDistance returns (mismatchCount, totalCount) for a and b: matching
// leaves contribute (0,1), mismatched leaves (1,1), and containers zip
// (arrays) or key-union (objects) their children, charging the full subtree
// size of any element present on only one side. Mismatched kinds where at
// least one side is a container charge 1 plus the node counts of both sides.
func nodeDistance(a, b *tree.Node) (uint32, uint32) {
	av, bv := a.Value(), b.Value()

	switch {
	case av.IsArray() && bv.IsArray():
		dist, count := uint32(0), uint32(1)
		aa, bb := av.Array(), bv.Array()

		n := len(aa)
		if len(bb) < n {
			n = len(bb)
		}

		for i := 0; i < n; i++ {
			d, c := nodeDistance(aa[i], bb[i])
			dist += d
			count += c
		}

		for _, extra := range aa[n:] {
			c := nodeCount(extra)
			dist += c
			count += c
		}

		for _, extra := range bb[n:] {
			c := nodeCount(extra)
			dist += c
			count += c
		}

		return dist, count

	case av.IsObject() && bv.IsObject():
		dist, count := uint32(0), uint32(1)
		seen := make(map[string]bool)

		for _, k := range append(av.ObjectKeys(), bv.ObjectKeys()...) {
			if seen[k.String()] {
				continue
			}

			seen[k.String()] = true

			an, aok := av.ObjectGet(k)
			bn, bok := bv.ObjectGet(k)

			switch {
			case aok && bok:
				d, c := nodeDistance(an, bn)
				dist += d
				count += c
			case aok:
				c := nodeCount(an)
				dist += c
				count += c
			case bok:
				c := nodeCount(bn)
				dist += c
				count += c
			}
		}

		return dist, count

	case av.IsContainer() || bv.IsContainer():
		c := 1 + nodeCount(a) + nodeCount(b)

		return c, c

	default:
		if av.Equal(bv) {
			return 0, 1
		}

		return 1, 1
	}
}

// Distance computes the normalized structural distance between a and b, in
// [0,1]: 0 for identical nodes (by pointer identity or by recursive
// equality), 1 for maximally different ones. minCount, if set, forces 1
// whenever the compared subtree's total node count is at or below the
// threshold.
func Distance(a, b *tree.Node, minCount *uint32) float64 {
	if a == b {
		return 0
	}

	d, c := nodeDistance(a, b)
	if minCount != nil && c <= *minCount {
		return 1
	}

	return float64(d) / float64(c)
}
