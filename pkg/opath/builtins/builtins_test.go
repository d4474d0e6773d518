package builtins

import (
	"math"
	"testing"

	"github.com/kodegenix/kgtree/pkg/opath/nodeset"
	"github.com/kodegenix/kgtree/pkg/opath/scope"
	"github.com/kodegenix/kgtree/pkg/symbol"
	"github.com/kodegenix/kgtree/pkg/tree"
)

func TestFuncArray(t *testing.T) {
	t.Parallel()

	s := scope.New()
	Register(s)

	fn, ok := s.GetFunc("array")
	if !ok {
		t.Fatalf("array not registered")
	}

	r, err := fn([]nodeset.NodeSet{
		nodeset.NewOne(tree.NewInt(1)),
		nodeset.NewOne(tree.NewInt(2)),
	})
	if err != nil {
		t.Fatalf("array: %v", err)
	}

	n, ok := r.Single()
	if !ok || !n.Value().IsArray() {
		t.Fatalf("expected a single array node, got %v", r.All())
	}

	if got := len(n.Value().Array()); got != 2 {
		t.Errorf("array length = %d, want 2", got)
	}
}

func TestFuncParseIntAndFloat(t *testing.T) {
	t.Parallel()

	s := scope.New()
	Register(s)

	parseInt, _ := s.GetFunc("parseInt")

	r, err := parseInt([]nodeset.NodeSet{nodeset.NewOne(tree.NewString(" 42 "))})
	if err != nil {
		t.Fatalf("parseInt: %v", err)
	}

	n, _ := r.Single()

	v, ok := n.Value().AsInteger()
	if !ok || v != 42 {
		t.Errorf("parseInt(\" 42 \") = %v, want 42", n.Value())
	}

	parseFloat, _ := s.GetFunc("parseFloat")

	r, err = parseFloat([]nodeset.NodeSet{nodeset.NewOne(tree.NewString("not a number"))})
	if err != nil {
		t.Fatalf("parseFloat: %v", err)
	}

	n, _ = r.Single()
	if !n.Value().IsFloat() {
		t.Errorf("expected a float result for an unparsable string, got %v", n.Value())
	}
}

func TestMethodLength(t *testing.T) {
	t.Parallel()

	s := scope.New()
	Register(s)

	length, _ := s.GetMethod("length")

	r, err := length(nodeset.NewOne(tree.NewString("hello")), nil)
	if err != nil {
		t.Fatalf("length: %v", err)
	}

	n, _ := r.Single()

	v, ok := n.Value().AsInteger()
	if !ok || v != 5 {
		t.Errorf("length(\"hello\") = %v, want 5", n.Value())
	}
}

func TestMethodJoin(t *testing.T) {
	t.Parallel()

	s := scope.New()
	Register(s)

	arr := tree.NewArray(tree.NewString("a"), tree.NewString("b"), tree.NewString("c"))

	join, _ := s.GetMethod("join")

	r, err := join(nodeset.NewOne(arr), []nodeset.NodeSet{nodeset.NewOne(tree.NewString("-"))})
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	n, _ := r.Single()
	if got, want := n.Value().AsString(), "a-b-c"; got != want {
		t.Errorf("join = %q, want %q", got, want)
	}
}

func TestMethodPushAndPop(t *testing.T) {
	t.Parallel()

	s := scope.New()
	Register(s)

	arr := tree.NewArray(tree.NewInt(1), tree.NewInt(2))

	push, _ := s.GetMethod("push")

	r, err := push(nodeset.NewOne(arr), []nodeset.NodeSet{nodeset.NewOne(tree.NewInt(3))})
	if err != nil {
		t.Fatalf("push: %v", err)
	}

	n, _ := r.Single()

	count, _ := n.Value().AsInteger()
	if count != 3 {
		t.Errorf("push returned length %d, want 3", count)
	}

	if got := len(arr.Value().Array()); got != 3 {
		t.Fatalf("array has %d elements after push, want 3", got)
	}

	pop, _ := s.GetMethod("pop")

	r, err = pop(nodeset.NewOne(arr), nil)
	if err != nil {
		t.Fatalf("pop: %v", err)
	}

	popped, _ := r.Single()

	v, _ := popped.Value().AsInteger()
	if v != 3 {
		t.Errorf("pop() = %v, want 3", popped.Value())
	}

	if got := len(arr.Value().Array()); got != 2 {
		t.Errorf("array has %d elements after pop, want 2", got)
	}
}

func TestMethodSetAndDelete(t *testing.T) {
	t.Parallel()

	s := scope.New()
	Register(s)

	obj := tree.NewObject(tree.ObjectEntry{Key: "a", Value: tree.NewInt(1)})

	set, _ := s.GetMethod("set")

	_, err := set(nodeset.NewOne(obj), []nodeset.NodeSet{
		nodeset.NewOne(tree.NewString("b")),
		nodeset.NewOne(tree.NewInt(2)),
	})
	if err != nil {
		t.Fatalf("set: %v", err)
	}

	if _, ok := obj.Value().ObjectGet(symbol.New("b")); !ok {
		t.Fatalf("expected key 'b' to be set")
	}

	del, _ := s.GetMethod("delete")

	_, err = del(nodeset.NewOne(obj), []nodeset.NodeSet{nodeset.NewOne(tree.NewString("a"))})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, ok := obj.Value().ObjectGet(symbol.New("a")); ok {
		t.Errorf("expected key 'a' to be deleted")
	}
}

func TestMethodReplaceAndSplit(t *testing.T) {
	t.Parallel()

	s := scope.New()
	Register(s)

	replace, _ := s.GetMethod("replace")

	r, err := replace(nodeset.NewOne(tree.NewString("foo bar foo")), []nodeset.NodeSet{
		nodeset.NewOne(tree.NewString("foo")),
		nodeset.NewOne(tree.NewString("baz")),
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	n, _ := r.Single()
	if got, want := n.Value().AsString(), "baz bar baz"; got != want {
		t.Errorf("replace = %q, want %q", got, want)
	}

	split, _ := s.GetMethod("split")

	r, err = split(nodeset.NewOne(tree.NewString("a,b,c")), []nodeset.NodeSet{nodeset.NewOne(tree.NewString(","))})
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	parts := r.All()
	if len(parts) != 3 {
		t.Fatalf("split produced %d parts, want 3", len(parts))
	}
}

func TestFuncParseIntPrefixAndRadix(t *testing.T) {
	t.Parallel()

	s := scope.New()
	Register(s)

	parseInt, _ := s.GetFunc("parseInt")

	call := func(args ...*tree.Node) *tree.Node {
		t.Helper()

		sets := make([]nodeset.NodeSet, len(args))
		for i, a := range args {
			sets[i] = nodeset.NewOne(a)
		}

		r, err := parseInt(sets)
		if err != nil {
			t.Fatalf("parseInt: %v", err)
		}

		n, ok := r.Single()
		if !ok {
			t.Fatalf("parseInt yielded %d results, want 1", r.Len())
		}

		return n
	}

	// Radix 2.
	n := call(tree.NewString("10"), tree.NewInt(2))

	if v, _ := n.Value().AsInteger(); v != 2 {
		t.Errorf("parseInt('10', 2) = %v, want 2", n.Value())
	}

	// Leading minus.
	n = call(tree.NewString("-10"))

	if v, _ := n.Value().AsInteger(); v != -10 {
		t.Errorf("parseInt('-10') = %v, want -10", n.Value())
	}

	// No digits at all: NaN-encoded float.
	n = call(tree.NewString("blaa"))

	if !n.Value().IsFloat() || !math.IsNaN(n.Value().Float64()) {
		t.Errorf("parseInt('blaa') = %v, want NaN", n.Value())
	}

	// Parsing stops at the first non-digit.
	n = call(tree.NewString("10ab"))

	if v, _ := n.Value().AsInteger(); v != 10 {
		t.Errorf("parseInt('10ab') = %v, want 10", n.Value())
	}
}

func TestFuncSqrtAndIsNaN(t *testing.T) {
	t.Parallel()

	s := scope.New()
	Register(s)

	sqrt, _ := s.GetFunc("sqrt")

	r, err := sqrt([]nodeset.NodeSet{nodeset.NewOne(tree.NewInt(9))})
	if err != nil {
		t.Fatalf("sqrt: %v", err)
	}

	n, _ := r.Single()
	if n.Value().Float64() != 3 {
		t.Errorf("sqrt(9) = %v, want 3", n.Value())
	}

	isNaN, _ := s.GetFunc("isNaN")

	r, err = isNaN([]nodeset.NodeSet{nodeset.NewOne(tree.NewString("oops"))})
	if err != nil {
		t.Fatalf("isNaN: %v", err)
	}

	n, _ = r.Single()
	if !n.Value().AsBoolean() {
		t.Errorf("isNaN('oops') = %v, want true", n.Value())
	}
}

func TestMethodFind(t *testing.T) {
	t.Parallel()

	s := scope.New()
	Register(s)

	find, _ := s.GetMethod("find")

	root := tree.NewObject(
		tree.ObjectEntry{Key: "nested", Value: tree.NewObject(
			tree.ObjectEntry{Key: "two", Value: tree.NewInt(2)},
		)},
	)

	r, err := find(nodeset.NewOne(root), []nodeset.NodeSet{nodeset.NewOne(tree.NewString("$.nested.two"))})
	if err != nil {
		t.Fatalf("find: %v", err)
	}

	n, ok := r.Single()
	if !ok {
		t.Fatalf("expected a single result")
	}

	v, _ := n.Value().AsInteger()
	if v != 2 {
		t.Errorf("find('$.nested.two') = %v, want 2", n.Value())
	}
}
