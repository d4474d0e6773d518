package tree

import (
	"math"
	"strconv"
	"strings"

	"github.com/kodegenix/kgtree/pkg/symbol"
)

// dblMin is the smallest positive normal float64, used by AsBoolean's Float
// case below.
const dblMin = 2.2250738585072014e-308

// Value is the tagged scalar/container payload carried by a Node. Array and
// Object values hold child Nodes directly, making the Node tree a single
// connected structure rather than a Value tree plus a separate Node tree.
type Value struct {
	kind    Kind
	boolean bool
	integer int64
	float64v float64
	str     string
	binary  []byte
	array   []*Node
	object  *orderedMap
}

// Null returns the Null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a Boolean value.
func Bool(b bool) Value { return Value{kind: KindBoolean, boolean: b} }

// Int returns an Integer value.
func Int(n int64) Value { return Value{kind: KindInteger, integer: n} }

// Float returns a Float value.
func Float(f float64) Value { return Value{kind: KindFloat, float64v: f} }

// Str returns a String value.
func Str(s string) Value { return Value{kind: KindString, str: s} }

// Bin returns a Binary value.
func Bin(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)

	return Value{kind: KindBinary, binary: cp}
}

// Arr returns an Array value wrapping the given children in order. The
// children's metadata (parent/index) is not touched here; callers normally
// construct arrays via Node constructors which fix up metadata.
func Arr(children []*Node) Value {
	cp := make([]*Node, len(children))
	copy(cp, children)

	return Value{kind: KindArray, array: cp}
}

// Obj returns an empty Object value; entries are added via Node helpers.
func Obj() Value { return Value{kind: KindObject, object: newOrderedMap()} }

// Kind returns the value's tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull, IsString, etc. are convenience kind predicates used pervasively by
// the resolver and evaluator.
func (v Value) IsNull() bool      { return v.kind == KindNull }
func (v Value) IsBoolean() bool   { return v.kind == KindBoolean }
func (v Value) IsInteger() bool   { return v.kind == KindInteger }
func (v Value) IsFloat() bool     { return v.kind == KindFloat }
func (v Value) IsNumber() bool    { return v.kind == KindInteger || v.kind == KindFloat }
func (v Value) IsString() bool    { return v.kind == KindString }
func (v Value) IsBinary() bool    { return v.kind == KindBinary }
func (v Value) IsArray() bool     { return v.kind == KindArray }
func (v Value) IsObject() bool    { return v.kind == KindObject }
func (v Value) IsContainer() bool { return v.kind == KindArray || v.kind == KindObject }

// Boolean returns the raw boolean payload (only meaningful when IsBoolean).
func (v Value) Boolean() bool { return v.boolean }

// Integer returns the raw integer payload (only meaningful when IsInteger).
func (v Value) Integer() int64 { return v.integer }

// Float64 returns the raw float payload (only meaningful when IsFloat).
func (v Value) Float64() float64 { return v.float64v }

// String returns the raw string payload (only meaningful when IsString).
func (v Value) String() string { return v.str }

// Binary returns the raw binary payload (only meaningful when IsBinary).
func (v Value) Binary() []byte { return v.binary }

// Array returns the child nodes (only meaningful when IsArray). The slice
// must not be mutated directly; use Node.AddChild/RemoveChild.
func (v Value) Array() []*Node { return v.array }

// ObjectKeys returns the object's keys in insertion order (only meaningful
// when IsObject).
func (v Value) ObjectKeys() []symbol.Symbol {
	if v.object == nil {
		return nil
	}

	return append([]symbol.Symbol(nil), v.object.keys...)
}

// ObjectGet looks up a property by key (only meaningful when IsObject).
func (v Value) ObjectGet(k symbol.Symbol) (*Node, bool) {
	if v.object == nil {
		return nil, false
	}

	return v.object.get(k)
}

// ChildrenCount returns the number of children for Array/Object values.
func (v Value) ChildrenCount() (int, bool) {
	switch v.kind {
	case KindArray:
		return len(v.array), true
	case KindObject:
		return v.object.len(), true
	default:
		return 0, false
	}
}

// isNormalFloat reports whether f is neither zero, subnormal, NaN, nor
// infinite. AsBoolean deliberately treats all four as falsy, so a
// subnormal float is falsy even though it compares nonzero.
func isNormalFloat(f float64) bool {
	if f == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}

	return math.Abs(f) >= dblMin
}

// AsBoolean coerces the value to bool per the cross-type coercion table:
// Null=false, Boolean=itself, Integer=nonzero, Float=isNormalFloat(f)
// (zero, subnormal, NaN and Infinity are all falsy),
// String/Binary=non-empty, Array/Object=true.
func (v Value) AsBoolean() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBoolean:
		return v.boolean
	case KindInteger:
		return v.integer != 0
	case KindFloat:
		return isNormalFloat(v.float64v)
	case KindString:
		return v.str != ""
	case KindBinary:
		return len(v.binary) > 0
	case KindArray, KindObject:
		return true
	default:
		return false
	}
}

// AsFloat coerces the value to float64. Null=0, Boolean=0/1, Integer widens,
// Float is identity, String is parsed (failure yields NaN), Binary/Array/
// Object yield NaN.
func (v Value) AsFloat() float64 {
	switch v.kind {
	case KindNull:
		return 0
	case KindBoolean:
		if v.boolean {
			return 1
		}

		return 0
	case KindInteger:
		return float64(v.integer)
	case KindFloat:
		return v.float64v
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return math.NaN()
		}

		return f
	default:
		return math.NaN()
	}
}

// AsInteger coerces the value to int64. The second return is false when no
// sensible integer exists (non-finite Float, unparsable String, Binary,
// Array, Object).
func (v Value) AsInteger() (int64, bool) {
	switch v.kind {
	case KindNull:
		return 0, true
	case KindBoolean:
		if v.boolean {
			return 1, true
		}

		return 0, true
	case KindInteger:
		return v.integer, true
	case KindFloat:
		if math.IsNaN(v.float64v) || math.IsInf(v.float64v, 0) {
			return 0, false
		}

		return int64(v.float64v), true
	case KindString:
		n, err := strconv.ParseInt(strings.TrimSpace(v.str), 10, 64)
		if err != nil {
			return 0, false
		}

		return n, true
	default:
		return 0, false
	}
}

// AsString renders the value as a human string. Array joins its children's
// AsString with ",", Object and Binary render as fixed placeholder tokens
// since neither has a sensible flat string form.
func (v Value) AsString() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBoolean:
		return strconv.FormatBool(v.boolean)
	case KindInteger:
		return strconv.FormatInt(v.integer, 10)
	case KindFloat:
		return strconv.FormatFloat(v.float64v, 'g', -1, 64)
	case KindString:
		return v.str
	case KindBinary:
		return "[binary]"
	case KindArray:
		parts := make([]string, len(v.array))
		for i, c := range v.array {
			parts[i] = c.Value().AsString()
		}

		return strings.Join(parts, ",")
	case KindObject:
		return "[object]"
	default:
		return ""
	}
}

// floatBits exposes a float's bit pattern for equality: NaN compares equal
// to itself and -0.0 is distinct from 0.0, which is what the diff engine
// wants -- a genuine bit-for-bit "did this change" comparison, not IEEE
// equality.
func floatBits(f float64) uint64 { return math.Float64bits(f) }

// Equal reports scalar equality using the same comparison the diff engine
// relies on (bitwise for floats, direct equality otherwise). It does not
// recurse into Array/Object; use the diff engine for structural comparison.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}

	switch v.kind {
	case KindNull:
		return true
	case KindBoolean:
		return v.boolean == o.boolean
	case KindInteger:
		return v.integer == o.integer
	case KindFloat:
		return floatBits(v.float64v) == floatBits(o.float64v)
	case KindString:
		return v.str == o.str
	case KindBinary:
		return string(v.binary) == string(o.binary)
	default:
		return false
	}
}
