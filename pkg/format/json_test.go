package format

import (
	"testing"

	"github.com/kodegenix/kgtree/pkg/symbol"
	"github.com/kodegenix/kgtree/pkg/tree"
)

func TestJSONParseScalars(t *testing.T) {
	t.Parallel()

	a := JSONAdapter{}

	n, err := a.Parse([]byte(`{"s":"x","i":3,"f":2.5,"b":true,"n":null}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	v := n.Value()

	s, _ := v.ObjectGet(symbol.New("s"))
	if !s.Value().IsString() || s.Value().String() != "x" {
		t.Errorf("s = %v", s.Value())
	}

	i, _ := v.ObjectGet(symbol.New("i"))
	if !i.Value().IsInteger() || i.Value().Integer() != 3 {
		t.Errorf("i = %v, want integer 3", i.Value())
	}

	f, _ := v.ObjectGet(symbol.New("f"))
	if !f.Value().IsFloat() || f.Value().Float64() != 2.5 {
		t.Errorf("f = %v, want float 2.5", f.Value())
	}

	b, _ := v.ObjectGet(symbol.New("b"))
	if !b.Value().IsBoolean() || !b.Value().Boolean() {
		t.Errorf("b = %v, want true", b.Value())
	}

	nn, _ := v.ObjectGet(symbol.New("n"))
	if !nn.Value().IsNull() {
		t.Errorf("n = %v, want null", nn.Value())
	}
}

func TestJSONKeyOrderSurvivesRoundTrip(t *testing.T) {
	t.Parallel()

	a := JSONAdapter{}

	src := `{"zebra":1,"apple":{"nested_z":true,"nested_a":false},"mango":[3,2,1]}`

	n, err := a.Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	out, err := a.Stringify(n, false)
	if err != nil {
		t.Fatalf("stringify: %v", err)
	}

	if string(out) != src {
		t.Errorf("round trip = %s, want %s", out, src)
	}
}

func TestJSONStringifyPretty(t *testing.T) {
	t.Parallel()

	a := JSONAdapter{}

	n := tree.NewObject(
		tree.ObjectEntry{Key: "a", Value: tree.NewInt(1)},
		tree.ObjectEntry{Key: "b", Value: tree.NewArray(tree.NewInt(2))},
	)

	out, err := a.Stringify(n, true)
	if err != nil {
		t.Fatalf("stringify: %v", err)
	}

	want := "{\n  \"a\": 1,\n  \"b\": [\n    2\n  ]\n}\n"
	if string(out) != want {
		t.Errorf("pretty = %q, want %q", out, want)
	}
}

func TestJSONParseRejectsTrailingContent(t *testing.T) {
	t.Parallel()

	a := JSONAdapter{}

	if _, err := a.Parse([]byte(`{"a":1} extra`)); err == nil {
		t.Fatalf("expected an error for trailing content")
	}
}

func TestRegistryUnsupportedFormat(t *testing.T) {
	t.Parallel()

	_, err := Default().Get(tree.FormatYAML)
	if err == nil {
		t.Fatalf("expected ErrUnsupportedFormat for yaml")
	}
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path string
		want tree.Format
	}{
		{"a/b.json", tree.FormatJSON},
		{"c.yaml", tree.FormatYAML},
		{"c.yml", tree.FormatYAML},
		{"d.toml", tree.FormatTOML},
		{"e.txt", tree.FormatUnknown},
	}

	for _, c := range cases {
		if got := DetectFormat(c.path); got != c.want {
			t.Errorf("DetectFormat(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}
