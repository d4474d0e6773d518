package tree

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// ToGeneric converts a Node into a plain Go value built from
// nil|bool|int64|float64|string|[]byte|[]any|*OrderedAny, the minimal
// intermediate form a concrete format Adapter (pkg/format) or typed codec
// needs to round-trip a tree without depending on this package's internal
// representation. Binary is base64-encoded, matching the common JSON
// convention for byte data (encoding/json does the same for []byte).
func (n *Node) ToGeneric() any {
	switch n.value.kind {
	case KindNull:
		return nil
	case KindBoolean:
		return n.value.boolean
	case KindInteger:
		return n.value.integer
	case KindFloat:
		return n.value.float64v
	case KindString:
		return n.value.str
	case KindBinary:
		return base64.StdEncoding.EncodeToString(n.value.binary)
	case KindArray:
		out := make([]any, len(n.value.array))
		for i, c := range n.value.array {
			out[i] = c.ToGeneric()
		}

		return out
	case KindObject:
		oa := &OrderedAny{}
		for _, k := range n.value.object.keys {
			v, _ := n.value.object.get(k)
			oa.Set(k.String(), v.ToGeneric())
		}

		return oa
	default:
		return nil
	}
}

// OrderedAny is an insertion-order preserving string-keyed map of generic
// values, used by ToGeneric/FromGeneric so that object key order survives a
// round trip through a format adapter.
type OrderedAny struct {
	keys []string
	vals map[string]any
}

// Set appends or overwrites a key, preserving first-insertion order.
func (o *OrderedAny) Set(key string, val any) {
	if o.vals == nil {
		o.vals = make(map[string]any)
	}

	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}

	o.vals[key] = val
}

// Keys returns the keys in insertion order.
func (o *OrderedAny) Keys() []string { return o.keys }

// MarshalJSON writes the entries in insertion order, which encoding/json's
// map encoding would otherwise sort away.
func (o *OrderedAny) MarshalJSON() ([]byte, error) {
	var b []byte

	b = append(b, '{')

	for i, k := range o.keys {
		if i > 0 {
			b = append(b, ',')
		}

		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}

		b = append(b, kb...)
		b = append(b, ':')

		vb, err := json.Marshal(o.vals[k])
		if err != nil {
			return nil, err
		}

		b = append(b, vb...)
	}

	return append(b, '}'), nil
}

// Get returns the value for key.
func (o *OrderedAny) Get(key string) (any, bool) {
	v, ok := o.vals[key]

	return v, ok
}

// FromGeneric builds a Node from the same intermediate form ToGeneric
// produces, plus the ordinary Go types a hand-built fixture or a JSON
// decode into `any` would use (map[string]any for objects, json.Number or
// float64 for numbers).
func FromGeneric(v any) (*Node, error) {
	switch val := v.(type) {
	case nil:
		return NewNull(), nil
	case bool:
		return NewBool(val), nil
	case int:
		return NewInt(int64(val)), nil
	case int64:
		return NewInt(val), nil
	case float64:
		return NewFloat(val), nil
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return NewInt(n), nil
		}

		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("decoding json.Number %q: %w", val.String(), err)
		}

		return NewFloat(f), nil
	case string:
		return NewString(val), nil
	case []byte:
		return NewBinary(val), nil
	case []any:
		children := make([]*Node, len(val))

		for i, e := range val {
			c, err := FromGeneric(e)
			if err != nil {
				return nil, err
			}

			children[i] = c
		}

		return NewArray(children...), nil
	case *OrderedAny:
		entries := make([]ObjectEntry, 0, len(val.keys))

		for _, k := range val.keys {
			e, _ := val.Get(k)

			c, err := FromGeneric(e)
			if err != nil {
				return nil, err
			}

			entries = append(entries, ObjectEntry{Key: k, Value: c})
		}

		return NewObject(entries...), nil
	case map[string]any:
		entries := make([]ObjectEntry, 0, len(val))

		for k, e := range val {
			c, err := FromGeneric(e)
			if err != nil {
				return nil, err
			}

			entries = append(entries, ObjectEntry{Key: k, Value: c})
		}

		return NewObject(entries...), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedGenericType, v)
	}
}
