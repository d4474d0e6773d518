// Package eval is the tree-walking Opath evaluator: it interprets an
// ast.Node against a concrete tree, producing a nodeset.NodeSet. One
// dispatch function switches over every AST form; operator semantics are
// total over all value-kind pairs, so an expression never fails on a type
// mismatch, only on unknown names and malformed calls.
package eval

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/kodegenix/kgtree/pkg/opath/ast"
	"github.com/kodegenix/kgtree/pkg/opath/nodeset"
	"github.com/kodegenix/kgtree/pkg/opath/scope"
	"github.com/kodegenix/kgtree/pkg/symbol"
	"github.com/kodegenix/kgtree/pkg/tree"
)

// Sentinel errors returned by evaluation failures.
var (
	ErrUnknownFunc       = errors.New("unknown function")
	ErrUnknownMethod     = errors.New("unknown method")
	ErrUnknownVar        = errors.New("unknown variable")
	ErrNotContainer      = errors.New("not a container")
	ErrExpectedSingle    = errors.New("expected a single node")
	ErrUnsupportedOp     = errors.New("unsupported operator for operand types")
	ErrUnsupportedASTNod = errors.New("unsupported ast node")
)

// Context carries the state an evaluation needs: the tree root, the
// current navigation point, and the active scope (functions/methods/vars).
type Context struct {
	Root    *tree.Node
	Current *tree.Node
	Scope   *scope.Scope
}

// WithCurrent returns a copy of ctx with Current replaced, used when
// descending into a navigation step.
func (c Context) WithCurrent(n *tree.Node) Context {
	c.Current = n

	return c
}

// WithScope returns a copy of ctx with Scope replaced, used when entering a
// function/method call's argument-evaluation scope.
func (c Context) WithScope(s *scope.Scope) Context {
	c.Scope = s

	return c
}

// Eval evaluates n against ctx, walking one navigation point or operator at
// a time.
func Eval(n ast.Node, ctx Context) (nodeset.NodeSet, error) {
	switch v := n.(type) {
	case ast.NullLit:
		return literal(tree.NewNull()), nil
	case ast.BoolLit:
		return literal(tree.NewBool(v.Value)), nil
	case ast.IntLit:
		return literal(tree.NewInt(v.Value)), nil
	case ast.FloatLit:
		return literal(tree.NewFloat(v.Value)), nil
	case ast.StringLit:
		return literal(tree.NewString(v.Value)), nil
	case ast.Concat:
		return evalConcat(v, ctx)
	case ast.Root:
		return nodeset.NewOne(ctx.Root), nil
	case ast.Current:
		return nodeset.NewOne(ctx.Current), nil
	case ast.ParentOf:
		return evalParentOf(v, ctx)
	case ast.All:
		return evalAll(ctx.Current), nil
	case ast.Ancestors:
		return evalAncestors(v, ctx), nil
	case ast.Descendants:
		return evalDescendants(v, ctx), nil
	case ast.Property:
		return evalProperty(v.Name, ctx)
	case ast.PropertyDyn:
		return evalPropertyDyn(v, ctx)
	case ast.Index:
		return evalIndex(v.Value, ctx)
	case ast.IndexDyn:
		return evalIndexDyn(v, ctx)
	case ast.NumberRange:
		// Outside bracket position a range generates its numeric sequence;
		// evalSequence intercepts the bracket case and slices instead.
		return evalNumberRangeSeq(v, ctx)
	case ast.Group:
		return evalGroup(v, ctx)
	case ast.Sequence:
		return evalSequence(v, ctx)
	case ast.BinaryOp:
		return evalBinaryOp(v, ctx)
	case ast.UnaryOp:
		return evalUnaryOp(v, ctx)
	case ast.FuncCall:
		return evalFuncCall(v, ctx)
	case ast.MethodCall:
		return evalMethodCall(v, ctx)
	case ast.Var:
		return evalVar(v, ctx)
	case ast.VarDyn:
		return evalVarDyn(v, ctx)
	case ast.EnvVar:
		return evalEnvVar(v), nil
	default:
		return nodeset.NewEmpty(), fmt.Errorf("%w: %T", ErrUnsupportedASTNod, n)
	}
}

func literal(n *tree.Node) nodeset.NodeSet { return nodeset.NewOne(n) }

func evalConcat(c ast.Concat, ctx Context) (nodeset.NodeSet, error) {
	var b strings.Builder

	for _, e := range c.Elems {
		r, err := Eval(e, ctx)
		if err != nil {
			return nodeset.NewEmpty(), err
		}

		n, ok := r.First()
		if !ok {
			continue
		}

		b.WriteString(n.Value().AsString())
	}

	return literal(tree.NewString(b.String())), nil
}

func evalParentOf(p ast.ParentOf, ctx Context) (nodeset.NodeSet, error) {
	n := ctx.Current

	for i := 0; i < p.Levels; i++ {
		if n == nil || n.IsRoot() {
			return nodeset.NewEmpty(), nil
		}

		n = n.Parent()
	}

	if n == nil {
		return nodeset.NewEmpty(), nil
	}

	return nodeset.NewOne(n), nil
}

func evalAll(cur *tree.Node) nodeset.NodeSet {
	if cur == nil || !cur.Value().IsContainer() {
		return nodeset.NewEmpty()
	}

	if cur.Value().IsArray() {
		return nodeset.FromSlice(cur.Value().Array())
	}

	keys := cur.Value().ObjectKeys()
	out := make([]*tree.Node, 0, len(keys))

	for _, k := range keys {
		v, _ := cur.Value().ObjectGet(k)
		out = append(out, v)
	}

	return nodeset.FromSlice(out)
}

func evalAncestors(a ast.Ancestors, ctx Context) nodeset.NodeSet {
	var out []*tree.Node

	if ctx.Current == nil {
		return nodeset.NewEmpty()
	}

	if a.Range.From <= 0 {
		out = append(out, ctx.Current)
	}

	level := 0

	for n := ctx.Current; n != nil && !n.IsRoot(); {
		n = n.Parent()
		level++

		if level < a.Range.From {
			continue
		}

		if a.Range.To >= 0 && level > a.Range.To {
			break
		}

		out = append(out, n)
	}

	return nodeset.FromSlice(out)
}

func evalDescendants(d ast.Descendants, ctx Context) nodeset.NodeSet {
	var out []*tree.Node

	if ctx.Current == nil {
		return nodeset.NewEmpty()
	}

	ctx.Current.VisitRecursive(func(root, parent, n *tree.Node) bool {
		level := n.Level() - ctx.Current.Level()

		if level >= d.Range.From && (d.Range.To < 0 || level <= d.Range.To) {
			out = append(out, n)
		}

		return d.Range.To < 0 || level < d.Range.To
	})

	return nodeset.FromSlice(out)
}

// evalProperty resolves one named step against the current node: meta
// properties (`@key`, `@path`, ...) first, then object key lookup, then a
// numeric fallback selecting a child by position (for both arrays and
// objects, matching key-as-index access on container kinds).
func evalProperty(name string, ctx Context) (nodeset.NodeSet, error) {
	if ctx.Current == nil {
		return nodeset.NewEmpty(), nil
	}

	if strings.HasPrefix(name, "@") {
		return evalMetaProperty(name, ctx.Current), nil
	}

	v := ctx.Current.Value()

	if v.IsObject() {
		if c, ok := v.ObjectGet(symbol.New(name)); ok {
			return nodeset.NewOne(c), nil
		}
	}

	if v.IsContainer() {
		if idx, err := strconv.ParseFloat(name, 64); err == nil {
			return evalIndex(int(idx), ctx)
		}
	}

	return nodeset.NewEmpty(), nil
}

// evalMetaProperty computes the `@`-prefixed per-node fields exposed by the
// path language: position metadata, kind names, file provenance, and the
// node's canonical path.
func evalMetaProperty(name string, n *tree.Node) nodeset.NodeSet {
	switch name {
	case "@key":
		return literal(tree.NewString(n.Key().String()))
	case "@index":
		return literal(tree.NewInt(int64(n.Index())))
	case "@level":
		return literal(tree.NewInt(int64(n.Level())))
	case "@type":
		return literal(tree.NewString(n.Kind().TypeString()))
	case "@kind":
		return literal(tree.NewString(n.Kind().String()))
	case "@path":
		return literal(tree.NewString(n.Path()))
	case "@file", "@file_path":
		return literal(tree.NewString(n.File().Path()))
	case "@file_abs", "@file_path_abs":
		return literal(tree.NewString(n.File().PathAbs()))
	case "@file_name":
		return literal(tree.NewString(n.File().Name()))
	case "@file_stem":
		return literal(tree.NewString(n.File().Stem()))
	case "@file_ext":
		return literal(tree.NewString(n.File().Ext()))
	case "@file_type":
		if fi := n.File(); fi != nil && fi.FileType == tree.FileTypeVirtual {
			return literal(tree.NewString("virtual"))
		}

		return literal(tree.NewString("regular"))
	case "@file_format":
		if fi := n.File(); fi != nil {
			return literal(tree.NewString(fi.Format.String()))
		}

		return literal(tree.NewString(tree.FormatUnknown.String()))
	case "@dir":
		return literal(tree.NewString(n.File().Dir()))
	case "@dir_abs":
		return literal(tree.NewString(n.File().DirAbs()))
	case "@file_path_components":
		parts := n.File().PathComponents()
		children := make([]*tree.Node, len(parts))

		for i, p := range parts {
			children[i] = tree.NewString(p)
		}

		return literal(tree.NewArray(children...))
	default:
		return nodeset.NewEmpty()
	}
}

func evalPropertyDyn(p ast.PropertyDyn, ctx Context) (nodeset.NodeSet, error) {
	r, err := Eval(p.Expr, ctx)
	if err != nil {
		return nodeset.NewEmpty(), err
	}

	n, ok := r.First()
	if !ok {
		return nodeset.NewEmpty(), nil
	}

	return evalProperty(n.Value().AsString(), ctx)
}

// childrenOf returns a container's children in order, nil for scalars.
func childrenOf(n *tree.Node) []*tree.Node {
	if n == nil {
		return nil
	}

	v := n.Value()

	switch {
	case v.IsArray():
		return v.Array()
	case v.IsObject():
		keys := v.ObjectKeys()
		out := make([]*tree.Node, 0, len(keys))

		for _, k := range keys {
			c, _ := v.ObjectGet(k)
			out = append(out, c)
		}

		return out
	default:
		return nil
	}
}

func evalIndex(i int, ctx Context) (nodeset.NodeSet, error) {
	children := childrenOf(ctx.Current)

	idx := i
	if idx < 0 {
		idx += len(children)
	}

	if idx < 0 || idx >= len(children) {
		return nodeset.NewEmpty(), nil
	}

	return nodeset.NewOne(children[idx]), nil
}

// evalIndexDyn applies a computed bracket selector: the expression is
// evaluated once per child with that child as the current node, and the
// result's kind decides the semantics -- a boolean keeps or drops the child
// (the filter idiom `$[@.active]`), a number keeps the child at that
// normalized position, a string keeps the child with that key.
func evalIndexDyn(i ast.IndexDyn, ctx Context) (nodeset.NodeSet, error) {
	children := childrenOf(ctx.Current)
	if len(children) == 0 {
		return nodeset.NewEmpty(), nil
	}

	var out []*tree.Node

	for ci, child := range children {
		r, err := Eval(i.Expr, ctx.WithCurrent(child))
		if err != nil {
			return nodeset.NewEmpty(), err
		}

		n, ok := r.First()
		if !ok {
			continue
		}

		v := n.Value()

		switch {
		case v.IsBoolean():
			if v.Boolean() {
				out = append(out, child)
			}
		case v.IsNumber():
			idx, ok := v.AsInteger()
			if !ok {
				continue
			}

			pos := int(idx)
			if pos < 0 {
				pos += len(children)
			}

			if pos == ci {
				out = append(out, child)
			}
		default:
			if child.Key().String() == v.AsString() {
				out = append(out, child)
			}
		}
	}

	return nodeset.FromSlice(out), nil
}

// evalNumberRangeIdx selects container children by an inclusive index range:
// negative endpoints count from the end, both endpoints clamp into
// [0, len-1], the step defaults to +1 or -1 matching the endpoint order, and
// a step whose sign contradicts the direction yields nothing.
func evalNumberRangeIdx(rng ast.NumberRange, ctx Context) (nodeset.NodeSet, error) {
	children := childrenOf(ctx.Current)
	if len(children) == 0 {
		return nodeset.NewEmpty(), nil
	}

	start, hasStart, err := evalRangeBound(rng.Start, ctx)
	if err != nil {
		return nodeset.NewEmpty(), err
	}

	stop, hasStop, err := evalRangeBound(rng.Stop, ctx)
	if err != nil {
		return nodeset.NewEmpty(), err
	}

	step, hasStep, err := evalRangeBound(rng.Step, ctx)
	if err != nil {
		return nodeset.NewEmpty(), err
	}

	if !hasStart {
		start = 0
	} else if start < 0 {
		start += len(children)
	}

	if !hasStop {
		stop = len(children) - 1
	} else if stop < 0 {
		stop += len(children)
	}

	start = clamp(start, 0, len(children)-1)
	stop = clamp(stop, 0, len(children)-1)

	if !hasStep {
		step = 1
		if start > stop {
			step = -1
		}
	}

	if step == 0 || (step > 0 && start > stop) || (step < 0 && start < stop) {
		return nodeset.NewEmpty(), nil
	}

	var out []*tree.Node

	if step > 0 {
		for i := start; i <= stop; i += step {
			out = append(out, children[i])
		}
	} else {
		for i := start; i >= stop; i += step {
			out = append(out, children[i])
		}
	}

	return nodeset.FromSlice(out), nil
}

// evalNumberRangeSeq generates the inclusive numeric sequence a range
// denotes in expression position: `1..4` is 1,2,3,4. A missing start
// defaults to 0 and a missing stop to the start; the step defaults to the
// sign of the direction.
func evalNumberRangeSeq(rng ast.NumberRange, ctx Context) (nodeset.NodeSet, error) {
	start, hasStart, err := evalRangeBound(rng.Start, ctx)
	if err != nil {
		return nodeset.NewEmpty(), err
	}

	stop, hasStop, err := evalRangeBound(rng.Stop, ctx)
	if err != nil {
		return nodeset.NewEmpty(), err
	}

	step, hasStep, err := evalRangeBound(rng.Step, ctx)
	if err != nil {
		return nodeset.NewEmpty(), err
	}

	if !hasStart {
		start = 0
	}

	if !hasStop {
		stop = start
	}

	if !hasStep {
		step = 1
		if start > stop {
			step = -1
		}
	}

	if step == 0 || (step > 0 && start > stop) || (step < 0 && start < stop) {
		return nodeset.NewEmpty(), nil
	}

	var out []*tree.Node

	if step > 0 {
		for i := start; i <= stop; i += step {
			out = append(out, tree.NewInt(int64(i)))
		}
	} else {
		for i := start; i >= stop; i += step {
			out = append(out, tree.NewInt(int64(i)))
		}
	}

	return nodeset.FromSlice(out), nil
}

func evalRangeBound(e ast.Node, ctx Context) (int, bool, error) {
	if e == nil {
		return 0, false, nil
	}

	r, err := Eval(e, ctx)
	if err != nil {
		return 0, false, err
	}

	n, ok := r.First()
	if !ok {
		return 0, false, nil
	}

	v, ok := n.Value().AsInteger()
	if !ok {
		return 0, false, nil
	}

	return int(v), true, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}

// evalGroup unions the results of each element in order; duplicates are
// kept, matching the "try each selector in turn" semantics of `.(a, b)`.
func evalGroup(g ast.Group, ctx Context) (nodeset.NodeSet, error) {
	if len(g.Elems) == 1 {
		return Eval(g.Elems[0], ctx)
	}

	var out []*tree.Node

	for _, e := range g.Elems {
		r, err := Eval(e, ctx)
		if err != nil {
			return nodeset.NewEmpty(), err
		}

		out = append(out, r.All()...)
	}

	return nodeset.FromSlice(out), nil
}

// evalSequence threads Current through each step: each step is evaluated
// once per node currently selected, and results are concatenated in order.
// Bracket ranges are dispatched to their index-selection form here, since a
// range that appears as a navigation step slices children rather than
// generating a numeric sequence.
func evalSequence(seq ast.Sequence, ctx Context) (nodeset.NodeSet, error) {
	cur := []*tree.Node{ctx.Current}

	for _, step := range seq.Steps {
		var next []*tree.Node

		for _, n := range cur {
			stepCtx := ctx.WithCurrent(n)

			var (
				r   nodeset.NodeSet
				err error
			)

			if rng, ok := step.(ast.NumberRange); ok {
				r, err = evalNumberRangeIdx(rng, stepCtx)
			} else {
				r, err = Eval(step, stepCtx)
			}

			if err != nil {
				return nodeset.NewEmpty(), err
			}

			next = append(next, r.All()...)
		}

		cur = next
	}

	return nodeset.FromSlice(cur), nil
}

func evalVar(v ast.Var, ctx Context) (nodeset.NodeSet, error) {
	return lookupVar(v.Name, ctx)
}

func evalVarDyn(v ast.VarDyn, ctx Context) (nodeset.NodeSet, error) {
	r, err := Eval(v.Expr, ctx)
	if err != nil {
		return nodeset.NewEmpty(), err
	}

	n, ok := r.First()
	if !ok {
		return nodeset.NewEmpty(), fmt.Errorf("%w: (empty name)", ErrUnknownVar)
	}

	return lookupVar(n.Value().AsString(), ctx)
}

func lookupVar(name string, ctx Context) (nodeset.NodeSet, error) {
	if ctx.Scope == nil {
		return nodeset.NewEmpty(), fmt.Errorf("%w: %s", ErrUnknownVar, name)
	}

	val, ok := ctx.Scope.GetVar(name)
	if !ok {
		return nodeset.NewEmpty(), fmt.Errorf("%w: %s", ErrUnknownVar, name)
	}

	return val, nil
}

func evalEnvVar(v ast.EnvVar) nodeset.NodeSet {
	val, ok := os.LookupEnv(v.Name)
	if !ok {
		return nodeset.NewEmpty()
	}

	return literal(tree.NewString(val))
}

func evalFuncCall(f ast.FuncCall, ctx Context) (nodeset.NodeSet, error) {
	if ctx.Scope == nil {
		return nodeset.NewEmpty(), fmt.Errorf("%w: %s", ErrUnknownFunc, f.Name)
	}

	fn, ok := ctx.Scope.GetFunc(f.Name)
	if !ok {
		return nodeset.NewEmpty(), fmt.Errorf("%w: %s", ErrUnknownFunc, f.Name)
	}

	args, err := evalArgs(f.Args, ctx)
	if err != nil {
		return nodeset.NewEmpty(), err
	}

	return fn(args)
}

func evalMethodCall(m ast.MethodCall, ctx Context) (nodeset.NodeSet, error) {
	if ctx.Scope == nil {
		return nodeset.NewEmpty(), fmt.Errorf("%w: %s", ErrUnknownMethod, m.Name)
	}

	fn, ok := ctx.Scope.GetMethod(m.Name)
	if !ok {
		return nodeset.NewEmpty(), fmt.Errorf("%w: %s", ErrUnknownMethod, m.Name)
	}

	target, err := Eval(m.Target, ctx)
	if err != nil {
		return nodeset.NewEmpty(), err
	}

	args, err := evalArgs(m.Args, ctx)
	if err != nil {
		return nodeset.NewEmpty(), err
	}

	return fn(target, args)
}

func evalArgs(exprs []ast.Node, ctx Context) ([]nodeset.NodeSet, error) {
	out := make([]nodeset.NodeSet, len(exprs))

	for i, e := range exprs {
		r, err := Eval(e, ctx)
		if err != nil {
			return nil, err
		}

		out[i] = r
	}

	return out, nil
}

// boolOf converts a single-node result to a boolean using Value.AsBoolean,
// the same truthiness rule the data model uses elsewhere.
func boolOf(s nodeset.NodeSet) bool {
	n, ok := s.First()
	if !ok {
		return false
	}

	return n.Value().AsBoolean()
}

func floatOf(s nodeset.NodeSet) (float64, bool) {
	n, ok := s.First()
	if !ok {
		return 0, false
	}

	f := n.Value().AsFloat()

	return f, !math.IsNaN(f)
}

func evalBinaryOp(b ast.BinaryOp, ctx Context) (nodeset.NodeSet, error) {
	switch b.Op {
	case "&&":
		l, err := Eval(b.Left, ctx)
		if err != nil {
			return nodeset.NewEmpty(), err
		}

		if !boolOf(l) {
			return literal(tree.NewBool(false)), nil
		}

		r, err := Eval(b.Right, ctx)
		if err != nil {
			return nodeset.NewEmpty(), err
		}

		return literal(tree.NewBool(boolOf(r))), nil
	case "||":
		// Value-preserving "else": a truthy left operand is returned as-is,
		// otherwise (falsy or empty) the right operand is.
		l, err := Eval(b.Left, ctx)
		if err != nil {
			return nodeset.NewEmpty(), err
		}

		if boolOf(l) {
			return l, nil
		}

		return Eval(b.Right, ctx)
	}

	l, err := Eval(b.Left, ctx)
	if err != nil {
		return nodeset.NewEmpty(), err
	}

	r, err := Eval(b.Right, ctx)
	if err != nil {
		return nodeset.NewEmpty(), err
	}

	switch b.Op {
	case "+", "-", "*", "/", "%":
		return evalArith(b.Op, l, r)
	case "==":
		return literal(tree.NewBool(equalNodeSets(l, r))), nil
	case "!=":
		return literal(tree.NewBool(!equalNodeSets(l, r))), nil
	case "<", "<=", ">", ">=":
		return evalCompare(b.Op, l, r)
	case "^=", "$=", "*=":
		return evalStringMatch(b.Op, l, r)
	case "has":
		return evalHas(l, r)
	default:
		return nodeset.NewEmpty(), fmt.Errorf("%w: %q", ErrUnsupportedOp, b.Op)
	}
}

// evalStringMatch implements the starts-with (^=), ends-with ($=) and
// contains (*=) operators over the operands' string forms.
func evalStringMatch(op string, l, r nodeset.NodeSet) (nodeset.NodeSet, error) {
	ln, lok := l.First()
	rn, rok := r.First()

	if !lok || !rok {
		return literal(tree.NewBool(false)), nil
	}

	a, b := ln.Value().AsString(), rn.Value().AsString()

	var res bool

	switch op {
	case "^=":
		res = strings.HasPrefix(a, b)
	case "$=":
		res = strings.HasSuffix(a, b)
	case "*=":
		res = strings.Contains(a, b)
	}

	return literal(tree.NewBool(res)), nil
}

// arithFloat coerces a value for arithmetic: an empty Array behaves as 0,
// everything else follows AsFloat (so a non-empty Array or an Object is
// NaN, which then propagates through the operation).
func arithFloat(v tree.Value) float64 {
	if v.IsArray() && len(v.Array()) == 0 {
		return 0
	}

	return v.AsFloat()
}

// addOverflows reports whether a+c wraps around int64.
func addOverflows(a, c int64) bool {
	s := a + c

	return (c > 0 && s < a) || (c < 0 && s > a)
}

// mulOverflows reports whether a*c wraps around int64.
func mulOverflows(a, c int64) bool {
	if a == 0 || c == 0 {
		return false
	}

	p := a * c

	return p/c != a
}

// evalArith implements the cross-type arithmetic matrix. Integer pairs use
// checked arithmetic, widening to Float when the exact result does not fit;
// string operands turn + into concatenation; anything non-numeric widens to
// Float (empty arrays as 0, other containers as NaN). Division by zero
// yields the IEEE infinity of the matching sign, never an error.
func evalArith(op string, l, r nodeset.NodeSet) (nodeset.NodeSet, error) {
	ln, lok := l.First()
	rn, rok := r.First()

	if !lok || !rok {
		return nodeset.NewEmpty(), nil
	}

	lv, rv := ln.Value(), rn.Value()

	if op == "+" {
		// Concatenate when either side is a string, or when a container is
		// involved (containers have no numeric sum, only a string form).
		nonEmptyArr := (lv.IsArray() && len(lv.Array()) > 0) || (rv.IsArray() && len(rv.Array()) > 0)
		if lv.IsString() || rv.IsString() || lv.IsObject() || rv.IsObject() || nonEmptyArr {
			return literal(tree.NewString(lv.AsString() + rv.AsString())), nil
		}
	}

	if lv.IsInteger() && rv.IsInteger() {
		a := lv.Integer()
		c := rv.Integer()

		switch op {
		case "+":
			if !addOverflows(a, c) {
				return literal(tree.NewInt(a + c)), nil
			}
		case "-":
			if c != math.MinInt64 && !addOverflows(a, -c) {
				return literal(tree.NewInt(a - c)), nil
			}
		case "*":
			if !mulOverflows(a, c) {
				return literal(tree.NewInt(a * c)), nil
			}
		case "/":
			if c != 0 && !(a == math.MinInt64 && c == -1) {
				return literal(tree.NewInt(a / c)), nil
			}
		case "%":
			if c != 0 {
				return literal(tree.NewInt(a % c)), nil
			}
		}
	}

	a := arithFloat(lv)
	c := arithFloat(rv)

	switch op {
	case "+":
		return literal(tree.NewFloat(a + c)), nil
	case "-":
		return literal(tree.NewFloat(a - c)), nil
	case "*":
		return literal(tree.NewFloat(a * c)), nil
	case "/":
		return literal(tree.NewFloat(a / c)), nil
	case "%":
		return literal(tree.NewFloat(math.Mod(a, c))), nil
	default:
		return nodeset.NewEmpty(), fmt.Errorf("%w: %q", ErrUnsupportedOp, op)
	}
}

func evalCompare(op string, l, r nodeset.NodeSet) (nodeset.NodeSet, error) {
	ln, lok := l.First()
	rn, rok := r.First()

	if !lok || !rok {
		return literal(tree.NewBool(false)), nil
	}

	var cmp int

	if ln.Value().IsString() && rn.Value().IsString() {
		cmp = strings.Compare(ln.Value().String(), rn.Value().String())
	} else {
		a, aok := floatOf(l)
		c, cok := floatOf(r)

		if !aok || !cok {
			return literal(tree.NewBool(false)), nil
		}

		switch {
		case a < c:
			cmp = -1
		case a > c:
			cmp = 1
		default:
			cmp = 0
		}
	}

	var res bool

	switch op {
	case "<":
		res = cmp < 0
	case "<=":
		res = cmp <= 0
	case ">":
		res = cmp > 0
	case ">=":
		res = cmp >= 0
	}

	return literal(tree.NewBool(res)), nil
}

// evalHas implements the `container has value` membership test: true if
// the left node set (expected to be a single Array or Object node)
// contains an element/value equal to the right operand.
func evalHas(l, r nodeset.NodeSet) (nodeset.NodeSet, error) {
	ln, ok := l.First()
	if !ok {
		return literal(tree.NewBool(false)), nil
	}

	rn, ok := r.First()
	if !ok {
		return literal(tree.NewBool(false)), nil
	}

	switch {
	case ln.Value().IsArray():
		for _, c := range ln.Value().Array() {
			if c.Value().Equal(rn.Value()) {
				return literal(tree.NewBool(true)), nil
			}
		}

		return literal(tree.NewBool(false)), nil
	case ln.Value().IsObject():
		_, found := ln.Value().ObjectGet(symbol.New(rn.Value().AsString()))

		return literal(tree.NewBool(found)), nil
	case ln.Value().IsString():
		return literal(tree.NewBool(strings.Contains(ln.Value().String(), rn.Value().AsString()))), nil
	default:
		return literal(tree.NewBool(false)), nil
	}
}

// equalNodeSets implements cross-type equality: Null equals only Null,
// booleans compare by value, two strings compare as strings, anything else
// compares by coerced Float when both sides have one, falling back to
// stringification.
func equalNodeSets(l, r nodeset.NodeSet) bool {
	ln, lok := l.First()
	rn, rok := r.First()

	if !lok || !rok {
		return lok == rok
	}

	lv, rv := ln.Value(), rn.Value()

	switch {
	case lv.IsNull() || rv.IsNull():
		return lv.IsNull() && rv.IsNull()
	case lv.IsBoolean() && rv.IsBoolean():
		return lv.Boolean() == rv.Boolean()
	case lv.IsString() && rv.IsString():
		return lv.String() == rv.String()
	}

	a, c := lv.AsFloat(), rv.AsFloat()
	if !math.IsNaN(a) && !math.IsNaN(c) {
		return a == c
	}

	return lv.AsString() == rv.AsString()
}

func evalUnaryOp(u ast.UnaryOp, ctx Context) (nodeset.NodeSet, error) {
	r, err := Eval(u.Expr, ctx)
	if err != nil {
		return nodeset.NewEmpty(), err
	}

	switch u.Op {
	case "!":
		return literal(tree.NewBool(!boolOf(r))), nil
	case "-":
		n, ok := r.First()
		if !ok {
			return nodeset.NewEmpty(), nil
		}

		if n.Value().IsInteger() {
			return literal(tree.NewInt(-n.Value().Integer())), nil
		}

		f, ok := floatOf(r)
		if !ok {
			return nodeset.NewEmpty(), fmt.Errorf("%w: unary '-' on non-numeric operand", ErrUnsupportedOp)
		}

		return literal(tree.NewFloat(-f)), nil
	default:
		return nodeset.NewEmpty(), fmt.Errorf("%w: %q", ErrUnsupportedOp, u.Op)
	}
}
