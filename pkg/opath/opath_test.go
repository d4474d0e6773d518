package opath_test

import (
	"errors"
	"testing"

	"github.com/kodegenix/kgtree/pkg/opath"
	"github.com/kodegenix/kgtree/pkg/symbol"
	"github.com/kodegenix/kgtree/pkg/tree"
)

func symbolFor(s string) symbol.Symbol { return symbol.New(s) }

func fixture() *tree.Node {
	return tree.NewObject(
		tree.ObjectEntry{Key: "a", Value: tree.NewObject(
			tree.ObjectEntry{Key: "b", Value: tree.NewArray(
				tree.NewInt(1),
				tree.NewInt(2),
				tree.NewObject(tree.ObjectEntry{Key: "deep", Value: tree.NewString("x")}),
			)},
		)},
		tree.ObjectEntry{Key: "weird key", Value: tree.NewBool(true)},
	)
}

// Every node's canonical path applies back to that exact node.
func TestFromNodeRoundTrip(t *testing.T) {
	t.Parallel()

	root := fixture()

	root.VisitRecursive(func(_, _, n *tree.Node) bool {
		p := opath.FromNode(n)

		res, err := p.Apply(root, root)
		if err != nil {
			t.Fatalf("apply %s: %v", p, err)
		}

		got, ok := res.Single()
		if !ok {
			t.Fatalf("%s: expected a single result, got %d", p, res.Len())
		}

		if got != n {
			t.Errorf("%s resolved to a different node", p)
		}

		return true
	})
}

func TestFromNodeQuotesNonIdentKeys(t *testing.T) {
	t.Parallel()

	root := fixture()

	n, _ := root.Value().ObjectGet(symbolFor("weird key"))

	if got, want := opath.FromNode(n).String(), "$['weird key']"; got != want {
		t.Errorf("FromNode = %q, want %q", got, want)
	}
}

func TestBetween(t *testing.T) {
	t.Parallel()

	root := fixture()

	a, _ := root.Value().ObjectGet(symbolFor("a"))
	b, _ := a.Value().ObjectGet(symbolFor("b"))
	deepObj := b.Value().Array()[2]

	rel, ok := opath.Between(a, deepObj)
	if !ok {
		t.Fatalf("Between reported not-an-ancestor")
	}

	if got, want := rel.String(), ".b[2]"; got != want {
		t.Errorf("Between = %q, want %q", got, want)
	}

	res, err := rel.Apply(root, a)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	got, ok := res.Single()
	if !ok || got != deepObj {
		t.Errorf("relative path did not resolve to the descendant")
	}

	if _, ok := opath.Between(deepObj, a); ok {
		t.Errorf("Between accepted a non-descendant")
	}
}

func TestParentPath(t *testing.T) {
	t.Parallel()

	p := opath.MustParse("$.a.b[2]")

	parent, ok := p.ParentPath()
	if !ok {
		t.Fatalf("ParentPath reported undefined")
	}

	if got, want := parent.String(), "$.a.b"; got != want {
		t.Errorf("ParentPath = %q, want %q", got, want)
	}

	if _, ok := opath.MustParse("$.a.*").ParentPath(); ok {
		t.Errorf("ParentPath accepted a wildcard step")
	}

	if _, ok := opath.MustParse("$").ParentPath(); ok {
		t.Errorf("ParentPath accepted the bare root")
	}
}

func TestApplyOneRejectsMany(t *testing.T) {
	t.Parallel()

	root := fixture()

	_, err := opath.MustParse("$.a.b.*").ApplyOne(root, root)
	if !errors.Is(err, opath.ErrMultipleVarValues) {
		t.Fatalf("err = %v, want ErrMultipleVarValues", err)
	}

	n, err := opath.MustParse("$.missing").ApplyOne(root, root)
	if err != nil {
		t.Fatalf("ApplyOne on empty: %v", err)
	}

	if !n.Value().IsNull() {
		t.Errorf("empty result = %v, want null", n.Value())
	}
}

func TestNodeSetToJSONForms(t *testing.T) {
	t.Parallel()

	root := fixture()

	empty, _ := opath.MustParse("$.missing").Apply(root, root)

	data, err := opath.NodeSetToJSON(empty)
	if err != nil {
		t.Fatalf("NodeSetToJSON: %v", err)
	}

	if got, want := string(data), `{"type":"empty"}`; got != want {
		t.Errorf("empty = %s, want %s", got, want)
	}

	one, _ := opath.MustParse("$.a.b[0]").Apply(root, root)

	data, err = opath.NodeSetToJSON(one)
	if err != nil {
		t.Fatalf("NodeSetToJSON: %v", err)
	}

	if got, want := string(data), `{"type":"one","data":1}`; got != want {
		t.Errorf("one = %s, want %s", got, want)
	}

	many, _ := opath.MustParse("$.a.b[0:1]").Apply(root, root)

	data, err = opath.NodeSetToJSON(many)
	if err != nil {
		t.Fatalf("NodeSetToJSON: %v", err)
	}

	if got, want := string(data), `{"type":"many","data":[1,2]}`; got != want {
		t.Errorf("many = %s, want %s", got, want)
	}
}
