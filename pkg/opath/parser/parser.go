// Package parser turns Opath source text into an ast.Node tree, via a
// hand-written recursive-descent, precedence-climbing parser over
// pkg/opath/lexer tokens: a conventional expr/term/unary/postfix/primary
// ladder, precedence low-to-high or < and < comparisons < add/sub <
// mul/div < unary < postfix access.
package parser

import (
	"errors"
	"fmt"

	"github.com/kodegenix/kgtree/pkg/opath/ast"
	"github.com/kodegenix/kgtree/pkg/opath/lexer"
)

// ErrSyntax is wrapped by every parse error, so callers can test for "this
// failed to parse" generically with errors.Is.
var ErrSyntax = errors.New("opath syntax error")

// Parser parses one Opath expression from a token stream.
type Parser struct {
	lx      *lexer.Lexer
	partial bool
	tok     lexer.Token
}

// New creates a Parser over src.
func New(src string) *Parser {
	return &Parser{lx: lexer.New(src)}
}

// WithPartial enables partial mode: the underlying lexer degrades
// unrecognized trailing characters to end-of-input instead of erroring, and
// Parse does not require the whole input to be consumed. Used when parsing
// an expression embedded in an interpolation template.
func (p *Parser) WithPartial(partial bool) *Parser {
	p.partial = partial
	p.lx.WithPartial(partial)

	return p
}

// Consumed returns the byte offset up to which the source has been
// consumed, used by the interpolation layer to resume scanning template
// text right after an embedded expression.
func (p *Parser) Consumed() int {
	return p.tok.Start
}

// Parse parses a full expression. In non-partial mode, trailing
// unconsumed input (other than whitespace) is a syntax error.
func (p *Parser) Parse() (ast.Node, error) {
	p.advance()

	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if !p.partial && p.tok.Kind != lexer.TokenEnd {
		return nil, p.errorf("unexpected trailing input %q", p.tok.Text)
	}

	return n, nil
}

// Parse parses src as a full, non-partial Opath expression.
func Parse(src string) (ast.Node, error) {
	return New(src).Parse()
}

func (p *Parser) advance() {
	p.tok = p.lx.Next()
}

func (p *Parser) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)

	return fmt.Errorf("%w: %s (at byte %d)", ErrSyntax, msg, p.tok.Start)
}

func (p *Parser) isPunct(text string) bool {
	return p.tok.Kind == lexer.TokenPunct && p.tok.Text == text
}

func (p *Parser) expectPunct(text string) error {
	if !p.isPunct(text) {
		return p.errorf("expected %q, got %q", text, p.tok.Text)
	}

	p.advance()

	return nil
}

// parseExpr is the entry point for a full expression, lowest precedence
// (logical or) down through navigation sequences and primaries.
func (p *Parser) parseExpr() (ast.Node, error) {
	return p.parseOr()
}

func (p *Parser) isKeyword(word string) bool {
	return p.tok.Kind == lexer.TokenIdent && p.tok.Text == word
}

func (p *Parser) parseOr() (ast.Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.isPunct("||") || p.isKeyword("or") {
		p.advance()

		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}

		left = ast.BinaryOp{Op: "||", Left: left, Right: right}
	}

	return left, nil
}

func (p *Parser) parseAnd() (ast.Node, error) {
	left, err := p.parseCmp()
	if err != nil {
		return nil, err
	}

	for p.isPunct("&&") || p.isKeyword("and") {
		p.advance()

		right, err := p.parseCmp()
		if err != nil {
			return nil, err
		}

		left = ast.BinaryOp{Op: "&&", Left: left, Right: right}
	}

	return left, nil
}

var cmpOps = []string{"==", "!=", "<=", ">=", "<", ">", "^=", "$=", "*="}

func (p *Parser) parseCmp() (ast.Node, error) {
	left, err := p.parseRange()
	if err != nil {
		return nil, err
	}

	for {
		op := ""

		if p.tok.Kind == lexer.TokenPunct {
			for _, c := range cmpOps {
				if p.tok.Text == c {
					op = c

					break
				}
			}
		} else if p.isKeyword("has") {
			op = "has"
		}

		if op == "" {
			return left, nil
		}

		p.advance()

		right, err := p.parseRange()
		if err != nil {
			return nil, err
		}

		left = ast.BinaryOp{Op: op, Left: left, Right: right}
	}
}

// parseRange handles the expression-position `start..stop` form, which
// generates an inclusive numeric sequence (`1..10` is the integers 1 through
// 10). The colon forms only exist inside brackets, where parseBracketStep
// assembles them directly.
func (p *Parser) parseRange() (ast.Node, error) {
	if p.isPunct("..") {
		p.advance()

		stop, err := p.parseAddSub()
		if err != nil {
			return nil, err
		}

		return ast.NumberRange{Stop: stop}, nil
	}

	left, err := p.parseAddSub()
	if err != nil {
		return nil, err
	}

	if !p.isPunct("..") {
		return left, nil
	}

	p.advance()

	if endsRange(p.tok) {
		return ast.NumberRange{Start: left}, nil
	}

	stop, err := p.parseAddSub()
	if err != nil {
		return nil, err
	}

	return ast.NumberRange{Start: left, Stop: stop}, nil
}

// endsRange reports whether tok can follow an open-ended range, i.e. the
// range's stop bound was omitted.
func endsRange(tok lexer.Token) bool {
	if tok.Kind == lexer.TokenEnd {
		return true
	}

	if tok.Kind != lexer.TokenPunct {
		return false
	}

	switch tok.Text {
	case "]", ")", ",", "}":
		return true
	default:
		return false
	}
}

func (p *Parser) parseAddSub() (ast.Node, error) {
	left, err := p.parseMulDiv()
	if err != nil {
		return nil, err
	}

	for p.isPunct("+") || p.isPunct("-") {
		op := p.tok.Text
		p.advance()

		right, err := p.parseMulDiv()
		if err != nil {
			return nil, err
		}

		left = ast.BinaryOp{Op: op, Left: left, Right: right}
	}

	return left, nil
}

func (p *Parser) parseMulDiv() (ast.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.isPunct("*") || p.isPunct("/") || p.isPunct("%") {
		op := p.tok.Text
		p.advance()

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		left = ast.BinaryOp{Op: op, Left: left, Right: right}
	}

	return left, nil
}

func (p *Parser) parseUnary() (ast.Node, error) {
	if p.isPunct("-") {
		p.advance()

		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		switch v := e.(type) {
		case ast.IntLit:
			return ast.IntLit{Value: -v.Value}, nil
		case ast.FloatLit:
			return ast.FloatLit{Value: -v.Value}, nil
		default:
			return ast.UnaryOp{Op: "-", Expr: e}, nil
		}
	}

	if p.isPunct("!") || (p.tok.Kind == lexer.TokenIdent && p.tok.Text == "not") {
		p.advance()

		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return ast.UnaryOp{Op: "!", Expr: e}, nil
	}

	return p.parseSequence()
}

// parseSequence parses a chain of navigation steps: a leading primary
// (root, current, var, literal, property, parenthesized group) followed by
// zero or more `.prop`, `[index]`, `^` (parent), `**{range}` (descendants)
// steps.
func (p *Parser) parseSequence() (ast.Node, error) {
	first, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	steps := []ast.Node{first}

	for {
		switch {
		case p.isPunct("."):
			p.advance()

			if p.tok.Kind == lexer.TokenIdent {
				name := p.tok.Text
				p.advance()

				if p.isPunct("(") {
					call, err := p.parseCallTail(collapse(steps), name, true)
					if err != nil {
						return nil, err
					}

					steps = []ast.Node{call}

					continue
				}

				steps = append(steps, ast.Property{Name: name})

				continue
			}

			step, err := p.parseDotStepNonIdent()
			if err != nil {
				return nil, err
			}

			steps = append(steps, step)
		case p.isPunct("["):
			step, err := p.parseBracketStep()
			if err != nil {
				return nil, err
			}

			steps = append(steps, step)
		case p.isPunct("^"):
			p.advance()

			if p.isPunct("**") {
				p.advance()

				lr, err := p.parseLevelRange()
				if err != nil {
					return nil, err
				}

				steps = append(steps, ast.Ancestors{Range: lr})

				continue
			}

			levels := 1

			for p.isPunct("^") {
				p.advance()
				levels++
			}

			steps = append(steps, ast.ParentOf{Levels: levels})
		default:
			if len(steps) == 1 {
				return steps[0], nil
			}

			return ast.Sequence{Steps: steps}, nil
		}
	}
}

// collapse folds a navigation-step slice back into a single Node, the same
// rule Sequence construction uses: a lone step needs no wrapping.
func collapse(steps []ast.Node) ast.Node {
	if len(steps) == 1 {
		return steps[0]
	}

	cp := make([]ast.Node, len(steps))
	copy(cp, steps)

	return ast.Sequence{Steps: cp}
}

// parseDotStepNonIdent handles the `.` continuations that parseSequence
// does not special-case inline for method-call detection: `.*`, `.**`, a
// quoted property name, an integer property position, and the `.(a, b)`
// multi-selector group.
func (p *Parser) parseDotStepNonIdent() (ast.Node, error) {
	switch {
	case p.isPunct("*"):
		p.advance()

		return ast.All{}, nil
	case p.isPunct("**"):
		return p.parseDoubleStar()
	case p.isPunct("("):
		return p.parseGroupList(true)
	case p.tok.Kind == lexer.TokenString:
		name := p.tok.Text
		p.advance()

		return ast.Property{Name: name}, nil
	case p.tok.Kind == lexer.TokenInt:
		v := p.tok.Int
		p.advance()

		return ast.Index{Value: int(v)}, nil
	default:
		return nil, p.errorf("expected property name after '.', got %q", p.tok.Text)
	}
}

// parseGroupList parses a parenthesized comma list into a Group. In selector
// position (after '.') integer literal elements become positional Index
// selectors so that `.(0, 2)` picks children by position the same way `[0]`
// does; in expression position `(2)` stays the literal 2.
func (p *Parser) parseGroupList(selector bool) (ast.Node, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}

	var elems []ast.Node

	for !p.isPunct(")") {
		if len(elems) > 0 {
			if err := p.expectPunct(","); err != nil {
				return nil, err
			}
		}

		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if lit, ok := e.(ast.IntLit); ok && selector {
			e = ast.Index{Value: int(lit.Value)}
		}

		elems = append(elems, e)
	}

	p.advance() // consume ')'

	return ast.Group{Elems: elems}, nil
}

func (p *Parser) parseDoubleStar() (ast.Node, error) {
	p.advance()

	lr, err := p.parseLevelRange()
	if err != nil {
		return nil, err
	}

	return ast.Descendants{Range: lr}, nil
}

// parseBracketStep parses everything `[...]` can hold: `[*]`, a plain index
// or quoted property, an inclusive range in `start:stop`, `start:step:stop`
// or `start..stop` form (each endpoint optional), or a computed selector
// expression evaluated per child.
func (p *Parser) parseBracketStep() (ast.Node, error) {
	p.advance() // consume '['

	if p.isPunct("*") {
		p.advance()

		if err := p.expectPunct("]"); err != nil {
			return nil, err
		}

		return ast.All{}, nil
	}

	var first ast.Node

	if !p.isPunct(":") {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		first = e
	}

	if !p.isPunct(":") {
		if err := p.expectPunct("]"); err != nil {
			return nil, err
		}

		switch v := first.(type) {
		case nil:
			return nil, p.errorf("empty index")
		case ast.IntLit:
			return ast.Index{Value: int(v.Value)}, nil
		case ast.StringLit:
			return ast.Property{Name: v.Value}, nil
		case ast.NumberRange:
			// The `start..stop` form was already consumed by parseExpr.
			return v, nil
		default:
			return ast.IndexDyn{Expr: first}, nil
		}
	}

	p.advance() // consume ':'

	var second ast.Node

	if !p.isPunct(":") && !p.isPunct("]") {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		second = e
	}

	if p.isPunct(":") {
		p.advance()

		var stop ast.Node

		if !p.isPunct("]") {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}

			stop = e
		}

		if err := p.expectPunct("]"); err != nil {
			return nil, err
		}

		return ast.NumberRange{Start: first, Step: second, Stop: stop}, nil
	}

	if err := p.expectPunct("]"); err != nil {
		return nil, err
	}

	return ast.NumberRange{Start: first, Stop: second}, nil
}

// parseLevelRange parses the optional `{min,max}` bounds after `**` or
// `^**`. Omitted bounds default to {1, unbounded}; min 0 includes the node
// itself; an explicitly negative bound denotes an empty range, encoded as
// {1,0} which no level satisfies.
func (p *Parser) parseLevelRange() (ast.LevelRange, error) {
	if !p.isPunct("{") {
		return ast.LevelRange{From: 1, To: -1}, nil
	}

	p.advance()

	from := 1
	to := -1
	negative := false

	if !p.isPunct(",") && !p.isPunct("}") {
		n, err := p.expectInt()
		if err != nil {
			return ast.LevelRange{}, err
		}

		if n < 0 {
			negative = true
		}

		from = n
	}

	if p.isPunct(",") {
		p.advance()

		switch {
		case p.isPunct("*"):
			// `*` spells the unbounded max, as the printer renders it.
			p.advance()
		case !p.isPunct("}"):
			n, err := p.expectInt()
			if err != nil {
				return ast.LevelRange{}, err
			}

			if n < 0 {
				negative = true
			}

			to = n
		}
	} else {
		// `{n}` bounds both ends.
		to = from
	}

	if err := p.expectPunct("}"); err != nil {
		return ast.LevelRange{}, err
	}

	if negative {
		return ast.LevelRange{From: 1, To: 0}, nil
	}

	return ast.LevelRange{From: from, To: to}, nil
}

func (p *Parser) expectInt() (int, error) {
	neg := false

	if p.isPunct("-") {
		neg = true

		p.advance()
	}

	if p.tok.Kind != lexer.TokenInt {
		return 0, p.errorf("expected integer, got %q", p.tok.Text)
	}

	n := int(p.tok.Int)
	p.advance()

	if neg {
		n = -n
	}

	return n, nil
}

func (p *Parser) parsePrimary() (ast.Node, error) {
	t := p.tok

	switch {
	case t.Kind == lexer.TokenPunct && t.Text == "$":
		p.advance()

		return ast.Root{}, nil
	case t.Kind == lexer.TokenVar:
		name := t.Text
		p.advance()

		return ast.Var{Name: name}, nil
	case t.Kind == lexer.TokenPunct && t.Text == "${":
		p.advance()

		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if err := p.expectPunct("}"); err != nil {
			return nil, err
		}

		return ast.VarDyn{Expr: e}, nil
	case t.Kind == lexer.TokenEnvVar:
		name := t.Text
		p.advance()

		return ast.EnvVar{Name: name}, nil
	case t.Kind == lexer.TokenPunct && t.Text == "@":
		p.advance()

		return ast.Current{}, nil
	case t.Kind == lexer.TokenPunct && t.Text == "(":
		return p.parseGroupList(false)
	case t.Kind == lexer.TokenPunct && t.Text == "**":
		return p.parseDoubleStar()
	case t.Kind == lexer.TokenInt:
		p.advance()

		return ast.IntLit{Value: t.Int}, nil
	case t.Kind == lexer.TokenFloat:
		p.advance()

		return ast.FloatLit{Value: t.Float}, nil
	case t.Kind == lexer.TokenString:
		p.advance()

		return ast.StringLit{Value: t.Text}, nil
	case t.Kind == lexer.TokenIdent:
		return p.parseIdentPrimary(t)
	default:
		return nil, p.errorf("unexpected token %q", t.Text)
	}
}

func (p *Parser) parseIdentPrimary(t lexer.Token) (ast.Node, error) {
	switch t.Text {
	case "true":
		p.advance()

		return ast.BoolLit{Value: true}, nil
	case "false":
		p.advance()

		return ast.BoolLit{Value: false}, nil
	case "null":
		p.advance()

		return ast.NullLit{}, nil
	}

	name := t.Text
	p.advance()

	if p.isPunct("(") {
		return p.parseCallTail(nil, name, false)
	}

	return ast.Property{Name: name}, nil
}

// parseCallTail parses the `(args...)` of a function or method call.
// target == nil means a free function call (FuncCall); a non-nil target
// (the property expression already parsed as the call receiver) means a
// method call.
func (p *Parser) parseCallTail(target ast.Node, name string, isMethod bool) (ast.Node, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}

	var args []ast.Node

	for !p.isPunct(")") {
		if len(args) > 0 {
			if err := p.expectPunct(","); err != nil {
				return nil, err
			}
		}

		a, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		args = append(args, a)
	}

	p.advance() // consume ')'

	if isMethod {
		return ast.MethodCall{Target: target, Name: name, Args: args}, nil
	}

	return ast.FuncCall{Name: name, Args: args}, nil
}

