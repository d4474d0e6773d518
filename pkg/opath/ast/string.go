package ast

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

func (l IntLit) String() string   { return strconv.FormatInt(l.Value, 10) }
func (l FloatLit) String() string { return strconv.FormatFloat(l.Value, 'g', -1, 64) }

func (c Concat) String() string {
	parts := make([]string, len(c.Elems))
	for i, e := range c.Elems {
		parts[i] = e.String()
	}

	return strings.Join(parts, " + ")
}

func (p ParentOf) String() string { return strings.Repeat("^", p.Levels) }

func (r LevelRange) String() string {
	to := "*"
	if r.To >= 0 {
		to = strconv.Itoa(r.To)
	}

	return fmt.Sprintf("{%d,%s}", r.From, to)
}

func (a Ancestors) String() string { return "^**" + a.Range.String() }

func (d Descendants) String() string { return "**" + d.Range.String() }

// String quotes property names that are not plain identifiers, so rendered
// paths parse back through the Opath grammar unchanged.
func (p Property) String() string {
	if isIdentName(p.Name) {
		return "." + p.Name
	}

	return "['" + strings.ReplaceAll(p.Name, "'", "\\'") + "']"
}

func isIdentName(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i == 0 && r == '@':
			// Meta-property names keep their sigil.
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}

	return true
}

func (p PropertyDyn) String() string { return "[" + p.Expr.String() + "]" }

func (i Index) String() string { return fmt.Sprintf("[%d]", i.Value) }

func (i IndexDyn) String() string { return "[" + i.Expr.String() + "]" }

func (r NumberRange) String() string {
	start, stop := "", ""
	if r.Start != nil {
		start = r.Start.String()
	}

	if r.Stop != nil {
		stop = r.Stop.String()
	}

	if r.Step != nil {
		return "[" + start + ":" + r.Step.String() + ":" + stop + "]"
	}

	return "[" + start + ":" + stop + "]"
}

func (g Group) String() string {
	// A single-element group prints as its element: operators print their
	// own parentheses, so re-printing the group's would accrete a new layer
	// on every parse/print cycle.
	if len(g.Elems) == 1 {
		return g.Elems[0].String()
	}

	parts := make([]string, len(g.Elems))
	for i, e := range g.Elems {
		parts[i] = e.String()
	}

	return "(" + strings.Join(parts, ", ") + ")"
}

func (s Sequence) String() string {
	var b strings.Builder
	for i, step := range s.Steps {
		if i > 0 {
			switch step.(type) {
			case Property, Index, IndexDyn, PropertyDyn, NumberRange, ParentOf, Ancestors:
			default:
				b.WriteString(".")
			}
		}

		b.WriteString(step.String())
	}

	return b.String()
}

func (b BinaryOp) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left.String(), b.Op, b.Right.String())
}

func (u UnaryOp) String() string { return u.Op + u.Expr.String() }

func (f FuncCall) String() string {
	args := make([]string, len(f.Args))
	for i, a := range f.Args {
		args[i] = a.String()
	}

	return f.Name + "(" + strings.Join(args, ", ") + ")"
}

func (m MethodCall) String() string {
	args := make([]string, len(m.Args))
	for i, a := range m.Args {
		args[i] = a.String()
	}

	return m.Target.String() + "." + m.Name + "(" + strings.Join(args, ", ") + ")"
}

func (v Var) String() string { return "$" + v.Name }

func (v VarDyn) String() string { return "${" + v.Expr.String() + "}" }

func (e EnvVar) String() string { return "env:" + e.Name }
