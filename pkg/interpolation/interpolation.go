// Package interpolation parses template strings with embedded Opath
// expressions, `text <% expr %> more text` by default, into a resolvable
// form. A backslash before any delimiter character escapes it. The embedded
// expressions are parsed with the Opath parser in partial mode, so the
// expression grammar itself never needs to know about the closing delimiter.
package interpolation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kodegenix/kgtree/pkg/opath"
	"github.com/kodegenix/kgtree/pkg/opath/ast"
	"github.com/kodegenix/kgtree/pkg/opath/parser"
	"github.com/kodegenix/kgtree/pkg/opath/scope"
	"github.com/kodegenix/kgtree/pkg/tree"
)

// ErrUnclosedExpr is returned when an opening delimiter has no matching
// close before the end of the template.
var ErrUnclosedExpr = errors.New("unclosed interpolation expression")

// Kind discriminates the three parse outcomes.
type Kind int

const (
	// Empty: the input contained no expressions and no escapes; resolving
	// it is a no-op.
	Empty Kind = iota
	// Simple: the input contained escapes but no expressions; resolving
	// yields the unescaped literal.
	Simple
	// Expr: the input contained at least one embedded expression.
	Expr
)

// Interpolation is a parsed template.
type Interpolation struct {
	kind   Kind
	simple string
	expr   ast.Node
}

// Kind reports the parse outcome.
func (i Interpolation) Kind() Kind { return i.kind }

// IsEmpty reports whether resolving is a no-op.
func (i Interpolation) IsEmpty() bool { return i.kind == Empty }

// IsSimple reports whether the template is a plain literal after unescaping.
func (i Interpolation) IsSimple() bool { return i.kind == Simple }

// IsExpr reports whether the template embeds at least one expression.
func (i Interpolation) IsExpr() bool { return i.kind == Expr }

// Resolve evaluates the interpolation against root/current with a
// built-ins-only scope. The second return is false for Empty templates,
// which resolve to nothing.
func (i Interpolation) Resolve(root, current *tree.Node) (*tree.Node, bool, error) {
	return i.ResolveExt(root, current, opath.NewScope())
}

// ResolveExt is Resolve with the caller's scope.
func (i Interpolation) ResolveExt(root, current *tree.Node, s *scope.Scope) (*tree.Node, bool, error) {
	switch i.kind {
	case Empty:
		return nil, false, nil
	case Simple:
		return tree.NewString(i.simple), true, nil
	default:
		n, err := opath.FromExpr(i.expr).ApplyOneExt(root, current, s)
		if err != nil {
			return nil, false, err
		}

		return n, true, nil
	}
}

// Parser parses templates for one open/close delimiter pair.
type Parser struct {
	open   string
	close  string
	quotes map[byte]bool
}

// NewParser returns a Parser with the default `<%` / `%>` delimiters.
func NewParser() *Parser { return NewParserDelims("<%", "%>") }

// NewParserDelims returns a Parser with custom delimiters. Both must be
// non-empty and free of surrounding whitespace.
func NewParserDelims(open, close string) *Parser {
	quotes := make(map[byte]bool, len(open)+len(close))

	for i := 0; i < len(open); i++ {
		quotes[open[i]] = true
	}

	for i := 0; i < len(close); i++ {
		quotes[close[i]] = true
	}

	return &Parser{open: open, close: close, quotes: quotes}
}

// Parse parses a template string. Inputs with no expressions and no escapes
// come back Empty, so callers can cheaply detect strings that need no
// resolution.
func (p *Parser) Parse(input string) (Interpolation, error) {
	var (
		elems   []ast.Node
		buf     strings.Builder
		touched bool
	)

	pos := 0
	lit := 0 // start of the pending literal run

	for pos < len(input) {
		c := input[pos]

		if c == '\\' && pos+1 < len(input) && p.quotes[input[pos+1]] {
			buf.WriteString(input[lit:pos])
			touched = true

			pos++ // drop the backslash, keep the escaped char literal
			lit = pos
			pos++

			continue
		}

		if c == p.open[0] && strings.HasPrefix(input[pos:], p.open) {
			buf.WriteString(input[lit:pos])

			if buf.Len() > 0 {
				elems = append(elems, ast.StringLit{Value: buf.String()})
				buf.Reset()
			}

			touched = true
			pos += len(p.open)

			rest := input[pos:]

			pp := parser.New(rest).WithPartial(true)

			e, err := pp.Parse()
			if err != nil {
				return Interpolation{}, fmt.Errorf("parsing embedded expression at byte %d: %w", pos, err)
			}

			pos += pp.Consumed()

			for pos < len(input) && (input[pos] == ' ' || input[pos] == '\t') {
				pos++
			}

			if !strings.HasPrefix(input[pos:], p.close) {
				return Interpolation{}, fmt.Errorf("%w: expected %q at byte %d", ErrUnclosedExpr, p.close, pos)
			}

			elems = append(elems, e)
			pos += len(p.close)
			lit = pos

			continue
		}

		pos++
	}

	buf.WriteString(input[lit:])

	if !touched {
		return Interpolation{kind: Empty}, nil
	}

	if len(elems) == 0 {
		return Interpolation{kind: Simple, simple: buf.String()}, nil
	}

	if buf.Len() > 0 {
		elems = append(elems, ast.StringLit{Value: buf.String()})
	}

	if len(elems) == 1 {
		if s, ok := elems[0].(ast.StringLit); ok {
			return Interpolation{kind: Simple, simple: s.Value}, nil
		}

		return Interpolation{kind: Expr, expr: elems[0]}, nil
	}

	return Interpolation{kind: Expr, expr: ast.Concat{Elems: elems}}, nil
}

// ParseAlways is Parse that never fails: a template that does not parse is
// treated as an inert literal (Empty), which resolvers simply leave alone.
func (p *Parser) ParseAlways(input string) Interpolation {
	i, err := p.Parse(input)
	if err != nil {
		return Interpolation{kind: Empty}
	}

	return i
}

// Parse parses input with the default delimiters.
func Parse(input string) (Interpolation, error) {
	return NewParser().Parse(input)
}
