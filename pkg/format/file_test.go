package format

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kodegenix/kgtree/pkg/basepath"
	"github.com/kodegenix/kgtree/pkg/opath/nodeset"
	"github.com/kodegenix/kgtree/pkg/opath/scope"
	"github.com/kodegenix/kgtree/pkg/symbol"
	"github.com/kodegenix/kgtree/pkg/tree"
)

func writeJSON(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}

	return path
}

func TestParseFileAttachesProvenance(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeJSON(t, dir, "data.json", `{"a":1}`)

	n, err := ParseFile(context.Background(), Default(), path, tree.FormatUnknown)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	fi := n.File()
	if fi == nil {
		t.Fatalf("no file info on parsed root")
	}

	if fi.Format != tree.FormatJSON {
		t.Errorf("format = %v, want json", fi.Format)
	}

	// Children inherit the root's provenance.
	a, _ := n.Value().ObjectGet(symbol.New("a"))
	if a.File() != fi {
		t.Errorf("child does not inherit file info")
	}
}

func TestParseFileResolvesAgainstBasePath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeJSON(t, dir, "data.json", `{"a":1}`)

	ctx := basepath.Push(context.Background(), dir)

	n, err := ParseFile(ctx, Default(), "data.json", tree.FormatUnknown)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	if !n.Value().IsObject() {
		t.Fatalf("parsed kind = %v, want object", n.Kind())
	}
}

func TestReadFileBuiltin(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeJSON(t, dir, "data.json", `{"name":"zoe"}`)

	s := scope.New()
	RegisterBuiltins(basepath.Push(context.Background(), dir), s, Default())

	fn, ok := s.GetFunc("readFile")
	if !ok {
		t.Fatalf("readFile not registered")
	}

	res, err := fn([]nodeset.NodeSet{nodeset.NewOne(tree.NewString("data.json"))})
	if err != nil {
		t.Fatalf("readFile: %v", err)
	}

	n, ok := res.Single()
	if !ok {
		t.Fatalf("expected a single node")
	}

	name, _ := n.Value().ObjectGet(symbol.New("name"))
	if got := name.Value().AsString(); got != "zoe" {
		t.Errorf("name = %q, want %q", got, "zoe")
	}
}

func TestStringifyBuiltin(t *testing.T) {
	t.Parallel()

	s := scope.New()
	RegisterBuiltins(context.Background(), s, Default())

	fn, _ := s.GetFunc("stringify")

	n := tree.NewObject(tree.ObjectEntry{Key: "x", Value: tree.NewInt(1)})

	res, err := fn([]nodeset.NodeSet{nodeset.NewOne(n)})
	if err != nil {
		t.Fatalf("stringify: %v", err)
	}

	out, _ := res.Single()
	if got, want := out.Value().AsString(), `{"x":1}`; got != want {
		t.Errorf("stringify = %q, want %q", got, want)
	}
}

func TestParseBuiltinUnknownFormat(t *testing.T) {
	t.Parallel()

	s := scope.New()
	RegisterBuiltins(context.Background(), s, Default())

	fn, _ := s.GetFunc("parse")

	_, err := fn([]nodeset.NodeSet{
		nodeset.NewOne(tree.NewString("a = 1")),
		nodeset.NewOne(tree.NewString("toml")),
	})
	if err == nil {
		t.Fatalf("expected an error for the unregistered toml adapter")
	}
}
