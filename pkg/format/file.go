package format

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/kodegenix/kgtree/pkg/basepath"
	"github.com/kodegenix/kgtree/pkg/opath/nodeset"
	"github.com/kodegenix/kgtree/pkg/opath/scope"
	"github.com/kodegenix/kgtree/pkg/tree"
)

// ErrArgCount mirrors the built-in library's argument checking for the
// format-aware functions registered here.
var ErrArgCount = errors.New("wrong number of arguments")

// ParseFile reads and parses path with the adapter matching fmtHint (or the
// extension-detected format when fmtHint is FormatUnknown), attaching file
// provenance to the returned root. Relative paths resolve against the
// context's base path stack.
func ParseFile(ctx context.Context, reg *Registry, path string, fmtHint tree.Format) (*tree.Node, error) {
	abs := basepath.Resolve(ctx, path)

	f := fmtHint
	if f == tree.FormatUnknown {
		f = DetectFormat(abs)
	}

	a, err := reg.Get(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", abs, err)
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", abs, err)
	}

	n, err := a.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", abs, err)
	}

	n.SetFile(&tree.FileInfo{AbsolutePath: abs, FileType: tree.FileTypeRegular, Format: f})

	return n, nil
}

// RegisterBuiltins installs the format-aware functions into s: readFile,
// parse, parseBinary, and stringify. These live here rather than in the core built-in
// library because they cross the format/filesystem boundary the tree core
// deliberately stays independent of.
func RegisterBuiltins(ctx context.Context, s *scope.Scope, reg *Registry) {
	s.SetFunc("readFile", func(args []nodeset.NodeSet) (nodeset.NodeSet, error) {
		if len(args) < 1 || len(args) > 2 {
			return nodeset.NewEmpty(), fmt.Errorf("%w: readFile takes 1 or 2 arguments, got %d", ErrArgCount, len(args))
		}

		path, ok := firstString(args[0])
		if !ok {
			return nodeset.NewEmpty(), fmt.Errorf("%w: readFile requires a path argument", ErrArgCount)
		}

		fmtHint, err := optionalFormat(args, 1)
		if err != nil {
			return nodeset.NewEmpty(), err
		}

		n, err := ParseFile(ctx, reg, path, fmtHint)
		if err != nil {
			return nodeset.NewEmpty(), err
		}

		return nodeset.NewOne(n), nil
	})

	s.SetFunc("parse", func(args []nodeset.NodeSet) (nodeset.NodeSet, error) {
		if len(args) != 2 {
			return nodeset.NewEmpty(), fmt.Errorf("%w: parse takes 2 arguments, got %d", ErrArgCount, len(args))
		}

		content, ok := firstString(args[0])
		if !ok {
			return nodeset.NewEmpty(), fmt.Errorf("%w: parse requires a content argument", ErrArgCount)
		}

		f, err := requiredFormat(args[1])
		if err != nil {
			return nodeset.NewEmpty(), err
		}

		a, err := reg.Get(f)
		if err != nil {
			return nodeset.NewEmpty(), err
		}

		n, err := a.Parse([]byte(content))
		if err != nil {
			return nodeset.NewEmpty(), err
		}

		return nodeset.NewOne(n), nil
	})

	s.SetFunc("parseBinary", func(args []nodeset.NodeSet) (nodeset.NodeSet, error) {
		if len(args) != 2 {
			return nodeset.NewEmpty(), fmt.Errorf("%w: parseBinary takes 2 arguments, got %d", ErrArgCount, len(args))
		}

		bn, ok := args[0].First()
		if !ok || !bn.Value().IsBinary() {
			return nodeset.NewEmpty(), fmt.Errorf("%w: parseBinary requires a binary argument", ErrArgCount)
		}

		f, err := requiredFormat(args[1])
		if err != nil {
			return nodeset.NewEmpty(), err
		}

		a, err := reg.Get(f)
		if err != nil {
			return nodeset.NewEmpty(), err
		}

		n, err := a.Parse(bn.Value().Binary())
		if err != nil {
			return nodeset.NewEmpty(), err
		}

		return nodeset.NewOne(n), nil
	})

	s.SetFunc("stringify", func(args []nodeset.NodeSet) (nodeset.NodeSet, error) {
		if len(args) < 1 || len(args) > 3 {
			return nodeset.NewEmpty(), fmt.Errorf("%w: stringify takes 1 to 3 arguments, got %d", ErrArgCount, len(args))
		}

		n, ok := args[0].First()
		if !ok {
			return nodeset.NewEmpty(), fmt.Errorf("%w: stringify requires a node argument", ErrArgCount)
		}

		f := tree.FormatJSON

		if len(args) >= 2 {
			var err error

			f, err = requiredFormat(args[1])
			if err != nil {
				return nodeset.NewEmpty(), err
			}
		}

		pretty := false

		if len(args) == 3 {
			if p, ok := args[2].First(); ok {
				pretty = p.Value().AsBoolean()
			}
		}

		a, err := reg.Get(f)
		if err != nil {
			return nodeset.NewEmpty(), err
		}

		data, err := a.Stringify(n, pretty)
		if err != nil {
			return nodeset.NewEmpty(), err
		}

		return nodeset.NewOne(tree.NewString(string(data))), nil
	})
}

func firstString(s nodeset.NodeSet) (string, bool) {
	n, ok := s.First()
	if !ok {
		return "", false
	}

	return n.Value().AsString(), true
}

func optionalFormat(args []nodeset.NodeSet, idx int) (tree.Format, error) {
	if len(args) <= idx {
		return tree.FormatUnknown, nil
	}

	return requiredFormat(args[idx])
}

func requiredFormat(s nodeset.NodeSet) (tree.Format, error) {
	name, ok := firstString(s)
	if !ok {
		return tree.FormatUnknown, nil
	}

	return ParseFormatName(name)
}
