// Package builtins registers the free functions and methods every Opath
// scope starts with. Functions that cross the format/filesystem boundary
// (readFile, parse, parseBinary, stringify) are not registered here --
// pkg/format registers them against a concrete adapter registry.
// findNew/findOld are likewise diff-scoped and registered by a diff
// environment.
package builtins

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/kodegenix/kgtree/pkg/opath/eval"
	"github.com/kodegenix/kgtree/pkg/opath/nodeset"
	"github.com/kodegenix/kgtree/pkg/opath/parser"
	"github.com/kodegenix/kgtree/pkg/opath/scope"
	"github.com/kodegenix/kgtree/pkg/tree"
)

// Sentinel errors surfaced by the registered functions/methods.
var (
	ErrArgCount     = errors.New("wrong number of arguments")
	ErrWrongType    = errors.New("method not applicable to this value's type")
	ErrInvalidRegex = errors.New("invalid regular expression")
)

// Register installs every built-in function and method into s.
func Register(s *scope.Scope) {
	s.SetFunc("array", funcArray)
	s.SetFunc("map", funcMap)
	s.SetFunc("parseInt", funcParseInt)
	s.SetFunc("parseFloat", funcParseFloat)
	s.SetFunc("isNaN", funcIsNaN)
	s.SetFunc("sqrt", funcSqrt)

	s.SetMethod("length", methodLength)
	s.SetMethod("find", methodFind)
	s.SetMethod("toString", methodToString)
	s.SetMethod("join", methodJoin)
	s.SetMethod("push", methodPush)
	s.SetMethod("pop", methodPop)
	s.SetMethod("shift", methodShift)
	s.SetMethod("unshift", methodUnshift)
	s.SetMethod("set", methodSet)
	s.SetMethod("delete", methodDelete)
	s.SetMethod("extend", methodExtend)
	s.SetMethod("replace", methodReplace)
	s.SetMethod("split", methodSplit)
}

func funcArray(args []nodeset.NodeSet) (nodeset.NodeSet, error) {
	var children []*tree.Node
	for _, a := range args {
		children = append(children, a.All()...)
	}

	return nodeset.NewOne(tree.NewArray(children...)), nil
}

func funcMap(args []nodeset.NodeSet) (nodeset.NodeSet, error) {
	switch len(args) {
	case 0:
		return nodeset.NewOne(tree.NewObject()), nil
	case 1:
		var entries []tree.ObjectEntry

		for _, v := range args[0].All() {
			if !v.Value().IsObject() {
				continue
			}

			for _, k := range v.Value().ObjectKeys() {
				pv, _ := v.Value().ObjectGet(k)
				entries = append(entries, tree.ObjectEntry{Key: k.String(), Value: pv})
			}
		}

		return nodeset.NewOne(tree.NewObject(entries...)), nil
	case 2:
		keys := args[0].All()
		values := args[1].All()
		n := len(keys)

		if len(values) < n {
			n = len(values)
		}

		entries := make([]tree.ObjectEntry, 0, n)
		for i := 0; i < n; i++ {
			entries = append(entries, tree.ObjectEntry{Key: keys[i].Value().AsString(), Value: values[i]})
		}

		return nodeset.NewOne(tree.NewObject(entries...)), nil
	default:
		return nodeset.NewEmpty(), fmt.Errorf("%w: map takes 0, 1 or 2 arguments, got %d", ErrArgCount, len(args))
	}
}

func funcParseInt(args []nodeset.NodeSet) (nodeset.NodeSet, error) {
	if len(args) < 1 || len(args) > 2 {
		return nodeset.NewEmpty(), fmt.Errorf("%w: parseInt takes 1 or 2 arguments, got %d", ErrArgCount, len(args))
	}

	radix := 10

	if len(args) == 2 {
		if r, ok := args[1].First(); ok {
			if v, ok := r.Value().AsInteger(); ok {
				radix = int(v)
			}
		}
	}

	var out []*tree.Node

	for _, n := range args[0].All() {
		s := strings.TrimSpace(n.Value().AsString())

		// Parse the longest valid prefix: an optional '-' followed by
		// digits of the radix; anything after the prefix is ignored, and no
		// digits at all yields a NaN float.
		prefix := numericPrefix(s, radix)

		v, err := strconv.ParseInt(prefix, radix, 64)
		if err != nil {
			out = append(out, tree.NewFloat(math.NaN()))

			continue
		}

		out = append(out, tree.NewInt(v))
	}

	return nodeset.FromSlice(out), nil
}

// numericPrefix returns the leading run of s that forms an integer in the
// given radix: an optional '-' and then radix digits.
func numericPrefix(s string, radix int) string {
	end := 0

	if end < len(s) && s[end] == '-' {
		end++
	}

	for end < len(s) && digitValue(s[end]) >= 0 && digitValue(s[end]) < radix {
		end++
	}

	return s[:end]
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	default:
		return -1
	}
}

func funcParseFloat(args []nodeset.NodeSet) (nodeset.NodeSet, error) {
	if len(args) != 1 {
		return nodeset.NewEmpty(), fmt.Errorf("%w: parseFloat takes 1 argument, got %d", ErrArgCount, len(args))
	}

	var out []*tree.Node

	for _, n := range args[0].All() {
		s := strings.TrimSpace(n.Value().AsString())

		v, err := strconv.ParseFloat(floatPrefix(s), 64)
		if err != nil {
			out = append(out, tree.NewFloat(math.NaN()))

			continue
		}

		out = append(out, tree.NewFloat(v))
	}

	return nodeset.FromSlice(out), nil
}

// floatPrefix returns the leading run of s that forms a decimal float: an
// optional '-', digits, and at most one decimal point.
func floatPrefix(s string) string {
	end := 0
	dot := false

	if end < len(s) && s[end] == '-' {
		end++
	}

	for end < len(s) {
		c := s[end]

		if c == '.' && !dot {
			dot = true
			end++

			continue
		}

		if c < '0' || c > '9' {
			break
		}

		end++
	}

	return s[:end]
}

func funcIsNaN(args []nodeset.NodeSet) (nodeset.NodeSet, error) {
	if len(args) != 1 {
		return nodeset.NewEmpty(), fmt.Errorf("%w: isNaN takes 1 argument, got %d", ErrArgCount, len(args))
	}

	var out []*tree.Node

	for _, n := range args[0].All() {
		out = append(out, tree.NewBool(math.IsNaN(n.Value().AsFloat())))
	}

	return nodeset.FromSlice(out), nil
}

func funcSqrt(args []nodeset.NodeSet) (nodeset.NodeSet, error) {
	if len(args) != 1 {
		return nodeset.NewEmpty(), fmt.Errorf("%w: sqrt takes 1 argument, got %d", ErrArgCount, len(args))
	}

	var out []*tree.Node

	for _, n := range args[0].All() {
		out = append(out, tree.NewFloat(math.Sqrt(n.Value().AsFloat())))
	}

	return nodeset.FromSlice(out), nil
}

func methodLength(target nodeset.NodeSet, _ []nodeset.NodeSet) (nodeset.NodeSet, error) {
	n, ok := target.Single()
	if !ok {
		return nodeset.NewEmpty(), ErrWrongType
	}

	v := n.Value()

	switch {
	case v.IsString():
		return nodeset.NewOne(tree.NewInt(int64(len(v.String())))), nil
	case v.IsBinary():
		return nodeset.NewOne(tree.NewInt(int64(len(v.Binary())))), nil
	case v.IsArray():
		return nodeset.NewOne(tree.NewInt(int64(len(v.Array())))), nil
	case v.IsObject():
		return nodeset.NewOne(tree.NewInt(int64(len(v.ObjectKeys())))), nil
	default:
		return nodeset.NewEmpty(), fmt.Errorf("%w: length", ErrWrongType)
	}
}

// methodFind parses its argument as an Opath expression and applies it with
// the receiver as both root and current, so relative navigation inside the
// expression stays anchored at the receiver.
func methodFind(target nodeset.NodeSet, args []nodeset.NodeSet) (nodeset.NodeSet, error) {
	if len(args) != 1 {
		return nodeset.NewEmpty(), fmt.Errorf("%w: find takes 1 argument, got %d", ErrArgCount, len(args))
	}

	src, ok := args[0].First()
	if !ok {
		return nodeset.NewEmpty(), fmt.Errorf("%w: find requires an expression argument", ErrArgCount)
	}

	expr, err := parser.Parse(src.Value().AsString())
	if err != nil {
		return nodeset.NewEmpty(), err
	}

	sc := scope.New()
	Register(sc)

	var out []*tree.Node

	for _, n := range target.All() {
		r, err := eval.Eval(expr, eval.Context{Root: n, Current: n, Scope: sc})
		if err != nil {
			return nodeset.NewEmpty(), err
		}

		out = append(out, r.All()...)
	}

	return nodeset.FromSlice(out), nil
}

func methodToString(target nodeset.NodeSet, _ []nodeset.NodeSet) (nodeset.NodeSet, error) {
	n, ok := target.Single()
	if !ok {
		return nodeset.NewEmpty(), ErrWrongType
	}

	return nodeset.NewOne(tree.NewString(n.Value().AsString())), nil
}

func methodJoin(target nodeset.NodeSet, args []nodeset.NodeSet) (nodeset.NodeSet, error) {
	n, ok := target.Single()
	if !ok || !n.Value().IsArray() {
		return nodeset.NewEmpty(), fmt.Errorf("%w: join requires an array receiver", ErrWrongType)
	}

	if len(args) < 1 || len(args) > 2 {
		return nodeset.NewEmpty(), fmt.Errorf("%w: join takes 1 or 2 arguments, got %d", ErrArgCount, len(args))
	}

	sep := ""
	if s, ok := args[0].First(); ok {
		sep = s.Value().AsString()
	}

	wrap := ""
	if len(args) == 2 {
		if w, ok := args[1].First(); ok {
			wrap = w.Value().AsString()
		}
	}

	elems := n.Value().Array()
	parts := make([]string, len(elems))

	for i, e := range elems {
		parts[i] = wrap + e.Value().AsString() + wrap
	}

	return nodeset.NewOne(tree.NewString(strings.Join(parts, sep))), nil
}

func methodPush(target nodeset.NodeSet, args []nodeset.NodeSet) (nodeset.NodeSet, error) {
	n, ok := target.Single()
	if !ok || !n.Value().IsArray() {
		return nodeset.NewEmpty(), fmt.Errorf("%w: push requires an array receiver", ErrWrongType)
	}

	if len(args) != 1 {
		return nodeset.NewEmpty(), fmt.Errorf("%w: push takes 1 argument, got %d", ErrArgCount, len(args))
	}

	if err := n.Extend(args[0].All()); err != nil {
		return nodeset.NewEmpty(), err
	}

	return nodeset.NewOne(tree.NewInt(int64(len(n.Value().Array())))), nil
}

func methodUnshift(target nodeset.NodeSet, args []nodeset.NodeSet) (nodeset.NodeSet, error) {
	n, ok := target.Single()
	if !ok || !n.Value().IsArray() {
		return nodeset.NewEmpty(), fmt.Errorf("%w: unshift requires an array receiver", ErrWrongType)
	}

	if len(args) != 1 {
		return nodeset.NewEmpty(), fmt.Errorf("%w: unshift takes 1 argument, got %d", ErrArgCount, len(args))
	}

	elems := args[0].All()

	for i := len(elems) - 1; i >= 0; i-- {
		idx := 0
		if err := n.AddChild(&idx, nil, elems[i]); err != nil {
			return nodeset.NewEmpty(), err
		}
	}

	return nodeset.NewOne(tree.NewInt(int64(len(n.Value().Array())))), nil
}

func methodPop(target nodeset.NodeSet, args []nodeset.NodeSet) (nodeset.NodeSet, error) {
	n, ok := target.Single()
	if !ok || !n.Value().IsArray() {
		return nodeset.NewEmpty(), fmt.Errorf("%w: pop requires an array receiver", ErrWrongType)
	}

	return arrayRemove(target, args, "pop", len(n.Value().Array())-1)
}

func methodShift(target nodeset.NodeSet, args []nodeset.NodeSet) (nodeset.NodeSet, error) {
	return arrayRemove(target, args, "shift", 0)
}

func arrayRemove(target nodeset.NodeSet, args []nodeset.NodeSet, name string, index int) (nodeset.NodeSet, error) {
	n, ok := target.Single()
	if !ok || !n.Value().IsArray() {
		return nodeset.NewEmpty(), fmt.Errorf("%w: %s requires an array receiver", ErrWrongType, name)
	}

	if len(args) != 0 {
		return nodeset.NewEmpty(), fmt.Errorf("%w: %s takes no arguments, got %d", ErrArgCount, name, len(args))
	}

	if index < 0 || index >= len(n.Value().Array()) {
		return nodeset.NewOne(tree.NewNull()), nil
	}

	removed, err := n.RemoveChildAt(index)
	if err != nil {
		return nodeset.NewEmpty(), err
	}

	return nodeset.NewOne(removed), nil
}

func methodSet(target nodeset.NodeSet, args []nodeset.NodeSet) (nodeset.NodeSet, error) {
	n, ok := target.Single()
	if !ok || !n.Value().IsObject() {
		return nodeset.NewEmpty(), fmt.Errorf("%w: set requires an object receiver", ErrWrongType)
	}

	if len(args) != 2 {
		return nodeset.NewEmpty(), fmt.Errorf("%w: set takes 2 arguments, got %d", ErrArgCount, len(args))
	}

	keys := args[0].All()
	values := args[1].All()
	count := len(keys)

	if len(values) < count {
		count = len(values)
	}

	for i := 0; i < count; i++ {
		if err := n.ExtendObject([]tree.ObjectEntry{{Key: keys[i].Value().AsString(), Value: values[i]}}); err != nil {
			return nodeset.NewEmpty(), err
		}
	}

	return nodeset.NewOne(n), nil
}

func methodDelete(target nodeset.NodeSet, args []nodeset.NodeSet) (nodeset.NodeSet, error) {
	n, ok := target.Single()
	if !ok || !n.Value().IsObject() {
		return nodeset.NewEmpty(), fmt.Errorf("%w: delete requires an object receiver", ErrWrongType)
	}

	if len(args) != 1 {
		return nodeset.NewEmpty(), fmt.Errorf("%w: delete takes 1 argument, got %d", ErrArgCount, len(args))
	}

	for _, k := range args[0].All() {
		if _, err := n.RemoveChildKey(k.Value().AsString()); err != nil && !errors.Is(err, tree.ErrKeyNotFound) {
			return nodeset.NewEmpty(), err
		}
	}

	return nodeset.NewOne(n), nil
}

func methodExtend(target nodeset.NodeSet, args []nodeset.NodeSet) (nodeset.NodeSet, error) {
	n, ok := target.Single()
	if !ok || !n.Value().IsContainer() {
		return nodeset.NewEmpty(), fmt.Errorf("%w: extend requires a container receiver", ErrWrongType)
	}

	if len(args) < 1 || len(args) > 2 {
		return nodeset.NewEmpty(), fmt.Errorf("%w: extend takes 1 or 2 arguments, got %d", ErrArgCount, len(args))
	}

	if n.Value().IsArray() {
		if err := n.Extend(args[0].All()); err != nil {
			return nodeset.NewEmpty(), err
		}

		return nodeset.NewOne(n), nil
	}

	values := args[0].All()

	var keys []*tree.Node
	if len(args) == 2 {
		keys = args[1].All()
	}

	for i, v := range values {
		key := ""
		if i < len(keys) {
			key = keys[i].Value().AsString()
		}

		if err := n.ExtendObject([]tree.ObjectEntry{{Key: key, Value: v}}); err != nil {
			return nodeset.NewEmpty(), err
		}
	}

	return nodeset.NewOne(n), nil
}

func methodReplace(target nodeset.NodeSet, args []nodeset.NodeSet) (nodeset.NodeSet, error) {
	n, ok := target.Single()
	if !ok || !n.Value().IsString() {
		return nodeset.NewEmpty(), fmt.Errorf("%w: replace requires a string receiver", ErrWrongType)
	}

	if len(args) < 1 || len(args) > 2 {
		return nodeset.NewEmpty(), fmt.Errorf("%w: replace takes 1 or 2 arguments, got %d", ErrArgCount, len(args))
	}

	pat, ok := args[0].First()
	if !ok {
		return nodeset.NewEmpty(), fmt.Errorf("%w: replace requires a pattern argument", ErrArgCount)
	}

	re, err := regexp.Compile(pat.Value().AsString())
	if err != nil {
		return nodeset.NewEmpty(), fmt.Errorf("%w: %v", ErrInvalidRegex, err)
	}

	replacement := ""
	if len(args) == 2 {
		if r, ok := args[1].First(); ok {
			replacement = r.Value().AsString()
		}
	}

	return nodeset.NewOne(tree.NewString(re.ReplaceAllString(n.Value().String(), replacement))), nil
}

func methodSplit(target nodeset.NodeSet, args []nodeset.NodeSet) (nodeset.NodeSet, error) {
	n, ok := target.Single()
	if !ok || !n.Value().IsString() {
		return nodeset.NewEmpty(), fmt.Errorf("%w: split requires a string receiver", ErrWrongType)
	}

	if len(args) != 1 {
		return nodeset.NewEmpty(), fmt.Errorf("%w: split takes 1 argument, got %d", ErrArgCount, len(args))
	}

	pat, ok := args[0].First()
	if !ok {
		return nodeset.NewEmpty(), fmt.Errorf("%w: split requires a pattern argument", ErrArgCount)
	}

	re, err := regexp.Compile(pat.Value().AsString())
	if err != nil {
		return nodeset.NewEmpty(), fmt.Errorf("%w: %v", ErrInvalidRegex, err)
	}

	parts := re.Split(n.Value().String(), -1)
	out := make([]*tree.Node, len(parts))

	for i, p := range parts {
		out[i] = tree.NewString(p)
	}

	return nodeset.FromSlice(out), nil
}
