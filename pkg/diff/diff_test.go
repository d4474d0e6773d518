package diff

import (
	"testing"

	"github.com/kodegenix/kgtree/pkg/tree"
)

func buildTreeA() *tree.Node {
	return tree.NewObject(
		tree.ObjectEntry{Key: "pa", Value: tree.NewObject(
			tree.ObjectEntry{Key: "test1", Value: tree.NewInt(12)},
			tree.ObjectEntry{Key: "bb", Value: tree.NewString("aaaa")},
		)},
		tree.ObjectEntry{Key: "star", Value: tree.NewString("*")},
		tree.ObjectEntry{Key: "p1", Value: tree.NewObject(
			tree.ObjectEntry{Key: "aa", Value: tree.NewObject(
				tree.ObjectEntry{Key: "bb", Value: tree.NewString("aaaa")},
				tree.ObjectEntry{Key: "dd", Value: tree.NewArray(
					tree.NewInt(12), tree.NewInt(13), tree.NewInt(14), tree.NewInt(20), tree.NewInt(34),
				)},
				tree.ObjectEntry{Key: "cc", Value: tree.NewBool(false)},
			)},
		)},
	)
}

func buildTreeB() *tree.Node {
	return tree.NewObject(
		tree.ObjectEntry{Key: "star", Value: tree.NewString("**")},
		tree.ObjectEntry{Key: "pb", Value: tree.NewString("test2")},
		tree.ObjectEntry{Key: "p1", Value: tree.NewObject(
			tree.ObjectEntry{Key: "aa", Value: tree.NewObject(
				tree.ObjectEntry{Key: "bb", Value: tree.NewString("aaaa")},
				tree.ObjectEntry{Key: "dd", Value: tree.NewArray(
					tree.NewInt(13), tree.NewInt(12), tree.NewInt(14), tree.NewInt(20),
				)},
				tree.ObjectEntry{Key: "cc", Value: tree.NewObject(
					tree.ObjectEntry{Key: "prop", Value: tree.NewInt(12)},
				)},
			)},
		)},
	)
}

func path(s string) *string { return &s }

func TestMinimalDiff(t *testing.T) {
	t.Parallel()

	a, b := buildTreeA(), buildTreeB()

	changes := Minimal(a, b, Options{})

	if len(changes) != 8 {
		t.Fatalf("len(changes) = %d, want 8", len(changes))
	}

	want := []struct {
		path string
		kind ChangeKind
	}{
		{"$.pa", Removed},
		{"$.star", Updated},
		{"$.pb", Added},
		{"$.p1.aa.dd[0]", Updated},
		{"$.p1.aa.dd[1]", Updated},
		{"$.p1.aa.dd[4]", Removed},
		{"$.p1.aa.cc", Updated},
		{"$.p1.aa.cc.prop", Added},
	}

	for i, w := range want {
		if got := changes[i].Path(); got != w.path {
			t.Errorf("changes[%d].Path() = %q, want %q", i, got, w.path)
		}

		if changes[i].Kind != w.kind {
			t.Errorf("changes[%d].Kind = %v, want %v", i, changes[i].Kind, w.kind)
		}
	}
}

func TestFullDiff(t *testing.T) {
	t.Parallel()

	a, b := buildTreeA(), buildTreeB()

	changes := Full(a, b, Options{})

	if len(changes) != 14 {
		t.Fatalf("len(changes) = %d, want 14", len(changes))
	}
}

func TestDiffDetectsMove(t *testing.T) {
	t.Parallel()

	a := tree.NewObject(
		tree.ObjectEntry{Key: "star", Value: tree.NewString("*")},
		tree.ObjectEntry{Key: "pb", Value: tree.NewObject(
			tree.ObjectEntry{Key: "aa", Value: tree.NewString("test2")},
			tree.ObjectEntry{Key: "b", Value: tree.NewBool(false)},
		)},
	)
	b := tree.NewObject(
		tree.ObjectEntry{Key: "star", Value: tree.NewString("*")},
		tree.ObjectEntry{Key: "pc", Value: tree.NewObject(
			tree.ObjectEntry{Key: "aa", Value: tree.NewString("test2")},
			tree.ObjectEntry{Key: "b", Value: tree.NewBool(false)},
		)},
	)

	minCount := uint32(1)
	maxDistance := 0.1

	changes := Minimal(a, b, Options{DetectMove: true, MinCount: &minCount, MaxDistance: &maxDistance})

	if len(changes) != 1 {
		t.Fatalf("len(changes) = %d, want 1", len(changes))
	}

	if changes[0].Kind != Moved {
		t.Errorf("changes[0].Kind = %v, want Moved", changes[0].Kind)
	}

	if got, want := *changes[0].OldPath, "$.pb"; got != want {
		t.Errorf("OldPath = %q, want %q", got, want)
	}

	if got, want := *changes[0].NewPath, "$.pc"; got != want {
		t.Errorf("NewPath = %q, want %q", got, want)
	}
}

func TestDiffIdenticalTreesYieldNoChanges(t *testing.T) {
	t.Parallel()

	a := buildTreeA()
	b := buildTreeA()

	if changes := Minimal(a, b, Options{}); len(changes) != 0 {
		t.Errorf("len(changes) = %d, want 0", len(changes))
	}
}

func TestDiffRefEqualSubtreeShortCircuits(t *testing.T) {
	t.Parallel()

	shared := tree.NewObject(tree.ObjectEntry{Key: "x", Value: tree.NewInt(1)})
	a := tree.NewObject(tree.ObjectEntry{Key: "same", Value: shared})
	b := tree.NewObject(tree.ObjectEntry{Key: "same", Value: shared})

	if changes := Minimal(a, b, Options{}); len(changes) != 0 {
		t.Errorf("len(changes) = %d, want 0", len(changes))
	}
}

func TestChangeKindMaskParse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want ChangeKindMask
	}{
		{"+", ChangeKindMask(Added)},
		{"-", ChangeKindMask(Removed)},
		{"*", ChangeKindMask(Updated)},
		{"~", ChangeKindMask(Moved)},
		{"+++", ChangeKindMask(Added)},
		{"++--~~", ChangeKindMask(Added | Removed | Moved)},
		{"add", ChangeKindMask(Added)},
		{"add,removed,moved", ChangeKindMask(Added | Removed | Moved)},
		{"update,removed,move", ChangeKindMask(Updated | Removed | Moved)},
		{"all", AllKinds()},
	}

	for _, c := range cases {
		if got := ParseChangeKindMask(c.in); got != c.want {
			t.Errorf("ParseChangeKindMask(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestChangeKindMaskAllIncludesUpdated(t *testing.T) {
	t.Parallel()

	if !AllKinds().HasUpdated() {
		t.Errorf("AllKinds() does not include Updated")
	}

	if !AllKinds().HasAll() {
		t.Errorf("AllKinds().HasAll() = false")
	}
}

func TestNodeChangeEqualComparesOwnPaths(t *testing.T) {
	t.Parallel()

	c1 := NodeChange{Kind: Moved, OldPath: path("$.a"), NewPath: path("$.b")}
	c2 := NodeChange{Kind: Moved, OldPath: path("$.a"), NewPath: path("$.b")}
	c3 := NodeChange{Kind: Moved, OldPath: path("$.a"), NewPath: path("$.c")}

	if !c1.Equal(c2) {
		t.Errorf("expected c1 == c2")
	}

	if c1.Equal(c3) {
		t.Errorf("expected c1 != c3")
	}
}

func TestDistanceIdenticalIsZero(t *testing.T) {
	t.Parallel()

	n := tree.NewInt(5)
	if d := Distance(n, n, nil); d != 0 {
		t.Errorf("Distance(n, n, nil) = %v, want 0", d)
	}
}

func TestDistanceMinCountForcesMax(t *testing.T) {
	t.Parallel()

	a := tree.NewObject(tree.ObjectEntry{Key: "x", Value: tree.NewInt(1)})
	b := tree.NewObject(tree.ObjectEntry{Key: "x", Value: tree.NewInt(2)})

	minCount := uint32(10)
	if d := Distance(a, b, &minCount); d != 1 {
		t.Errorf("Distance with small subtree below minCount = %v, want 1", d)
	}
}

func TestDistanceSymmetricAndBounded(t *testing.T) {
	t.Parallel()

	a := buildTreeA()
	b := buildTreeB()

	dab := Distance(a, b, nil)
	dba := Distance(b, a, nil)

	if dab != dba {
		t.Errorf("Distance(a,b) = %v, Distance(b,a) = %v, want equal", dab, dba)
	}

	if dab < 0 || dab > 1 {
		t.Errorf("Distance(a,b) = %v, want within [0,1]", dab)
	}

	if d := Distance(buildTreeA(), buildTreeA(), nil); d != 0 {
		t.Errorf("Distance of equal trees = %v, want 0", d)
	}
}

func TestMoveDetectionMonotonicInMaxDistance(t *testing.T) {
	t.Parallel()

	a := tree.NewObject(
		tree.ObjectEntry{Key: "p1", Value: tree.NewObject(
			tree.ObjectEntry{Key: "x", Value: tree.NewInt(1)},
			tree.ObjectEntry{Key: "y", Value: tree.NewInt(2)},
		)},
	)
	b := tree.NewObject(
		tree.ObjectEntry{Key: "p2", Value: tree.NewObject(
			tree.ObjectEntry{Key: "x", Value: tree.NewInt(1)},
			tree.ObjectEntry{Key: "y", Value: tree.NewInt(3)},
		)},
	)

	countMoves := func(maxDistance float64) int {
		changes := Minimal(a, b, Options{DetectMove: true, MaxDistance: &maxDistance})

		moves := 0

		for _, c := range changes {
			if c.Kind == Moved {
				moves++
			}
		}

		return moves
	}

	prev := countMoves(0)

	for _, d := range []float64{0.1, 0.4, 1} {
		cur := countMoves(d)
		if cur < prev {
			t.Errorf("moves at maxDistance %v = %d, less than %d at a tighter bound", d, cur, prev)
		}

		prev = cur
	}
}
