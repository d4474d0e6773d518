package resolver

import (
	"errors"
	"testing"

	"github.com/kodegenix/kgtree/pkg/symbol"
	"github.com/kodegenix/kgtree/pkg/tree"
)

func getString(t *testing.T, root *tree.Node, key string) string {
	t.Helper()

	n, ok := root.Value().ObjectGet(symbol.New(key))
	if !ok {
		t.Fatalf("key %q not found", key)
	}

	return n.Value().AsString()
}

func TestResolveTemplate(t *testing.T) {
	t.Parallel()

	root := tree.NewObject(
		tree.ObjectEntry{Key: "username", Value: tree.NewString("johnny")},
		tree.ObjectEntry{Key: "email", Value: tree.NewString("johnny@example.org")},
		tree.ObjectEntry{Key: "message", Value: tree.NewString(
			"username: <% username %>, email: <% email %> was logged in.",
		)},
	)

	if err := New().Resolve(root); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	want := "username: johnny, email: johnny@example.org was logged in."
	if got := getString(t, root, "message"); got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

func TestResolveNoTemplatesIsNoOp(t *testing.T) {
	t.Parallel()

	root := tree.NewObject(
		tree.ObjectEntry{Key: "a", Value: tree.NewString("plain")},
		tree.ObjectEntry{Key: "b", Value: tree.NewInt(5)},
	)

	before, _ := root.Value().ObjectGet(symbol.New("a"))

	if err := New().Resolve(root); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	after, _ := root.Value().ObjectGet(symbol.New("a"))
	if before != after {
		t.Errorf("plain string node was replaced")
	}
}

func TestResolveChainsToFixedPoint(t *testing.T) {
	t.Parallel()

	// c references b, which references a: two passes to settle.
	root := tree.NewObject(
		tree.ObjectEntry{Key: "a", Value: tree.NewString("base")},
		tree.ObjectEntry{Key: "b", Value: tree.NewString("<% a %>-mid")},
		tree.ObjectEntry{Key: "c", Value: tree.NewString("<% b %>-top")},
	)

	if err := New().Resolve(root); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if got, want := getString(t, root, "b"), "base-mid"; got != want {
		t.Errorf("b = %q, want %q", got, want)
	}

	if got, want := getString(t, root, "c"), "base-mid-top"; got != want {
		t.Errorf("c = %q, want %q", got, want)
	}
}

func TestResolveCyclicReportsDepthError(t *testing.T) {
	t.Parallel()

	root := tree.NewObject(
		tree.ObjectEntry{Key: "x", Value: tree.NewString("<% y %>")},
		tree.ObjectEntry{Key: "y", Value: tree.NewString("<% x %>")},
	)

	err := New().Resolve(root)
	if !errors.Is(err, ErrInterpolationDepthReached) {
		t.Fatalf("err = %v, want ErrInterpolationDepthReached", err)
	}
}

func TestResolveNonStringResult(t *testing.T) {
	t.Parallel()

	root := tree.NewObject(
		tree.ObjectEntry{Key: "count", Value: tree.NewInt(3)},
		tree.ObjectEntry{Key: "copy", Value: tree.NewString("<% count %>")},
	)

	if err := New().Resolve(root); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	n, _ := root.Value().ObjectGet(symbol.New("copy"))

	if !n.Value().IsInteger() {
		t.Fatalf("copy kind = %v, want integer", n.Kind())
	}

	v, _ := n.Value().AsInteger()
	if v != 3 {
		t.Errorf("copy = %d, want 3", v)
	}

	// The replacement is a copy, not a second handle on the source node.
	src, _ := root.Value().ObjectGet(symbol.New("count"))
	if src == n {
		t.Errorf("resolved node aliases the source node")
	}
}

func TestResolveRootedStrategy(t *testing.T) {
	t.Parallel()

	root := tree.NewObject(
		tree.ObjectEntry{Key: "name", Value: tree.NewString("top")},
		tree.ObjectEntry{Key: "nested", Value: tree.NewObject(
			tree.ObjectEntry{Key: "ref", Value: tree.NewString("<% $.name %>")},
		)},
	)

	if err := New().ResolveCustom(RootedResolveStrategy{}, root); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	nested, _ := root.Value().ObjectGet(symbol.New("nested"))

	ref, _ := nested.Value().ObjectGet(symbol.New("ref"))
	if got := ref.Value().AsString(); got != "top" {
		t.Errorf("ref = %q, want %q", got, "top")
	}
}

func TestResolveArrayElement(t *testing.T) {
	t.Parallel()

	root := tree.NewObject(
		tree.ObjectEntry{Key: "host", Value: tree.NewString("example.org")},
		tree.ObjectEntry{Key: "urls", Value: tree.NewArray(
			tree.NewString("https://<% $.host %>/a"),
			tree.NewString("https://<% $.host %>/b"),
		)},
	)

	if err := New().Resolve(root); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	urls, _ := root.Value().ObjectGet(symbol.New("urls"))
	arr := urls.Value().Array()

	if got, want := arr[0].Value().AsString(), "https://example.org/a"; got != want {
		t.Errorf("urls[0] = %q, want %q", got, want)
	}

	if got, want := arr[1].Value().AsString(), "https://example.org/b"; got != want {
		t.Errorf("urls[1] = %q, want %q", got, want)
	}

	if arr[1].Index() != 1 {
		t.Errorf("urls[1].Index() = %d, want 1", arr[1].Index())
	}
}
