package diff

import (
	"testing"

	"github.com/kodegenix/kgtree/pkg/opath/nodeset"
	"github.com/kodegenix/kgtree/pkg/opath/scope"
	"github.com/kodegenix/kgtree/pkg/symbol"
	"github.com/kodegenix/kgtree/pkg/tree"
)

func getKey(t *testing.T, n *tree.Node, key string) *tree.Node {
	t.Helper()

	c, ok := n.Value().ObjectGet(symbol.New(key))
	if !ok {
		t.Fatalf("key %q not found", key)
	}

	return c
}

func moveFixture() (*tree.Node, *tree.Node) {
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

	return a, b
}

func TestEnvFindNewFollowsMove(t *testing.T) {
	t.Parallel()

	a, b := moveFixture()

	minCount := uint32(1)
	env := NewEnv(a, b, Options{MinCount: &minCount})

	pb := getKey(t, a, "pb")
	pc := getKey(t, b, "pc")

	if got := env.FindNew(pb); got != pc {
		t.Errorf("FindNew(pb) did not map to pc")
	}

	if got := env.FindOld(pc); got != pb {
		t.Errorf("FindOld(pc) did not map to pb")
	}

	// Children inside a moved subtree map through the move.
	aa := getKey(t, pb, "aa")
	if got := env.FindNew(aa); got != getKey(t, pc, "aa") {
		t.Errorf("FindNew(pb.aa) did not map into pc")
	}
}

func TestEnvFindNewSamePosition(t *testing.T) {
	t.Parallel()

	a, b := moveFixture()

	env := NewEnv(a, b, Options{})

	starA := getKey(t, a, "star")
	starB := getKey(t, b, "star")

	if got := env.FindNew(starA); got != starB {
		t.Errorf("FindNew(star) did not map to the same position")
	}

	if env.FindNew(getKey(t, a, "pb")) == nil {
		// pb only exists in b through the move table; without move context
		// the position lookup comes back empty.
		t.Log("pb has no positional counterpart, as expected only via moves")
	}
}

func TestEnvRegisterExposesFindFunctions(t *testing.T) {
	t.Parallel()

	a, b := moveFixture()

	minCount := uint32(1)
	env := NewEnv(a, b, Options{MinCount: &minCount})

	s := scope.New()
	env.Register(s)

	findNew, ok := s.GetFunc("findNew")
	if !ok {
		t.Fatalf("findNew not registered")
	}

	r, err := findNew([]nodeset.NodeSet{nodeset.NewOne(getKey(t, a, "pb"))})
	if err != nil {
		t.Fatalf("findNew: %v", err)
	}

	n, ok := r.Single()
	if !ok || n != getKey(t, b, "pc") {
		t.Errorf("findNew(pb) did not yield pc")
	}

	if _, ok := s.GetFunc("findOld"); !ok {
		t.Errorf("findOld not registered")
	}
}
