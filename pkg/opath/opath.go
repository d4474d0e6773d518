// Package opath is the public face of the path/expression engine: a
// compiled Opath expression with apply helpers, plus canonical-path
// constructors deriving an Opath from a concrete node's position in a tree.
// The lexer, parser, AST, evaluator, scope, and built-in library live in the
// subpackages; this package ties them together the way callers use them.
package opath

import (
	"errors"
	"fmt"

	"github.com/kodegenix/kgtree/pkg/opath/ast"
	"github.com/kodegenix/kgtree/pkg/opath/builtins"
	"github.com/kodegenix/kgtree/pkg/opath/eval"
	"github.com/kodegenix/kgtree/pkg/opath/nodeset"
	"github.com/kodegenix/kgtree/pkg/opath/parser"
	"github.com/kodegenix/kgtree/pkg/opath/scope"
	"github.com/kodegenix/kgtree/pkg/tree"
)

// ErrMultipleVarValues is returned by ApplyOne when an expression expected
// to select a single node produced several.
var ErrMultipleVarValues = errors.New("expression produced multiple values where one was expected")

// Opath is a parsed, reusable expression.
type Opath struct {
	expr ast.Node
}

// Parse compiles src into an Opath.
func Parse(src string) (*Opath, error) {
	n, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}

	return &Opath{expr: n}, nil
}

// MustParse is Parse for expressions known correct at compile time; it
// panics on a syntax error.
func MustParse(src string) *Opath {
	o, err := Parse(src)
	if err != nil {
		panic(fmt.Sprintf("opath: MustParse(%q): %v", src, err))
	}

	return o
}

// FromExpr wraps an already-built AST.
func FromExpr(n ast.Node) *Opath { return &Opath{expr: n} }

// Expr returns the underlying AST.
func (o *Opath) Expr() ast.Node { return o.expr }

// String renders the expression back to Opath syntax.
func (o *Opath) String() string { return o.expr.String() }

// NewScope returns a scope pre-loaded with the built-in function and method
// library, ready for Apply or for callers to extend with their own
// functions, methods, and variables.
func NewScope() *scope.Scope {
	s := scope.New()
	builtins.Register(s)

	return s
}

// Apply evaluates the expression against root/current with a fresh
// built-ins-only scope.
func (o *Opath) Apply(root, current *tree.Node) (nodeset.NodeSet, error) {
	return o.ApplyExt(root, current, NewScope())
}

// ApplyExt evaluates the expression against root/current with the caller's
// scope.
func (o *Opath) ApplyExt(root, current *tree.Node, s *scope.Scope) (nodeset.NodeSet, error) {
	return eval.Eval(o.expr, eval.Context{Root: root, Current: current, Scope: s})
}

// ApplyOne evaluates the expression and requires at most one result: an
// empty result becomes a Null node, several results are an error.
func (o *Opath) ApplyOne(root, current *tree.Node) (*tree.Node, error) {
	return o.ApplyOneExt(root, current, NewScope())
}

// ApplyOneExt is ApplyOne with the caller's scope.
func (o *Opath) ApplyOneExt(root, current *tree.Node, s *scope.Scope) (*tree.Node, error) {
	r, err := o.ApplyExt(root, current, s)
	if err != nil {
		return nil, err
	}

	switch r.Len() {
	case 0:
		return tree.NewNull(), nil
	case 1:
		n, _ := r.First()

		return n, nil
	default:
		return nil, fmt.Errorf("%w: %s (%d results)", ErrMultipleVarValues, o.String(), r.Len())
	}
}

// FromNode builds the canonical path expression addressing n from its root:
// a Sequence of `$`, `.key`, and `[index]` steps. Applying the result
// against n's root yields n itself.
func FromNode(n *tree.Node) *Opath {
	steps := []ast.Node{ast.Root{}}

	return &Opath{expr: sequenceOf(append(steps, stepsBetween(nil, n)...))}
}

// Between builds the relative path from an ancestor node down to a
// descendant, without the leading `$` step. The second return is false when
// `to` is not reachable from `from` by parent links.
func Between(from, to *tree.Node) (*Opath, bool) {
	ok := false

	for cur := to; cur != nil; cur = cur.Parent() {
		if cur == from {
			ok = true

			break
		}
	}

	if !ok {
		return nil, false
	}

	steps := stepsBetween(from, to)
	if len(steps) == 0 {
		steps = []ast.Node{ast.Current{}}
	}

	return &Opath{expr: sequenceOf(steps)}, true
}

// stepsBetween returns the Property/Index steps from (exclusive) stop down
// to n, in root-to-leaf order. stop == nil walks all the way to the root.
func stepsBetween(stop, n *tree.Node) []ast.Node {
	var rev []*tree.Node

	for cur := n; cur != nil && cur != stop && !cur.IsRoot(); cur = cur.Parent() {
		rev = append(rev, cur)
	}

	steps := make([]ast.Node, 0, len(rev))

	for i := len(rev) - 1; i >= 0; i-- {
		cur := rev[i]

		if cur.Parent().Value().IsArray() {
			steps = append(steps, ast.Index{Value: cur.Index()})
		} else {
			steps = append(steps, ast.Property{Name: cur.Key().String()})
		}
	}

	return steps
}

func sequenceOf(steps []ast.Node) ast.Node {
	if len(steps) == 1 {
		return steps[0]
	}

	return ast.Sequence{Steps: steps}
}

// ParentPath returns the path one navigation level up, and reports whether
// that is well-defined: every step must be a plain `$`, property, or
// integer index access (no wildcards, ranges, or computed steps), and there
// must be a step to drop.
func (o *Opath) ParentPath() (*Opath, bool) {
	seq, ok := o.expr.(ast.Sequence)
	if !ok {
		return nil, false
	}

	for i, s := range seq.Steps {
		switch s.(type) {
		case ast.Root:
			if i != 0 {
				return nil, false
			}
		case ast.Property, ast.Index:
		default:
			return nil, false
		}
	}

	if len(seq.Steps) < 2 {
		return nil, false
	}

	return &Opath{expr: sequenceOf(seq.Steps[:len(seq.Steps)-1])}, true
}
