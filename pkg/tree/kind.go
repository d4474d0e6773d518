// Package tree implements the in-memory generic tree data model: scalar and
// container Values, Node metadata (parent/index/key/file provenance), and
// NodeRef handles used by the Opath engine and the structural diff engine.
//
// Value and Node live in one package because the two are defined in terms
// of each other: containers hold child nodes directly, so a tree is a
// single connected structure rather than a value tree plus a separate node
// tree.
package tree

import "strings"

// Kind identifies the variant of a Value. Values are explicit bit flags so
// that KindMask can represent arbitrary unions (e.g. "number" = Integer|Float).
type Kind uint8

const (
	KindNull Kind = 1 << iota
	KindBoolean
	KindInteger
	KindFloat
	KindString
	KindBinary
	KindArray
	KindObject
)

// String returns the short name of the kind, e.g. "integer".
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBinary:
		return "binary"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// TypeString returns the coarser JSON-like type name used by the `@type`
// Opath meta-property: Integer and Float both report as "number".
func (k Kind) TypeString() string {
	switch k {
	case KindInteger, KindFloat:
		return "number"
	default:
		return k.String()
	}
}

// IsContainer reports whether the kind is Array or Object.
func (k Kind) IsContainer() bool { return k == KindArray || k == KindObject }

// KindMask is a bitset of Kind values, representing a set of kinds (e.g.
// MaskNumber = Integer|Float).
type KindMask uint16

const (
	MaskNone    KindMask = 0
	MaskNull             = KindMask(KindNull)
	MaskBoolean          = KindMask(KindBoolean)
	MaskInteger          = KindMask(KindInteger)
	MaskFloat            = KindMask(KindFloat)
	MaskNumber           = MaskInteger | MaskFloat
	MaskString           = KindMask(KindString)
	MaskBinary           = KindMask(KindBinary)
	MaskArray            = KindMask(KindArray)
	MaskObject           = KindMask(KindObject)
	MaskContainer        = MaskArray | MaskObject
	MaskAll              = MaskNull | MaskBoolean | MaskNumber | MaskString | MaskBinary | MaskContainer
)

// With returns the mask with k added.
func (m KindMask) With(k Kind) KindMask { return m | KindMask(k) }

// Without returns the mask with k removed.
func (m KindMask) Without(k Kind) KindMask { return m &^ KindMask(k) }

// Has reports whether k is a member of the mask.
func (m KindMask) Has(k Kind) bool { return m&KindMask(k) != 0 }

// HasAny reports whether any kind in other is a member of the mask.
func (m KindMask) HasAny(other KindMask) bool { return m&other != 0 }

// String renders the mask as a comma separated list of kind names, "none"
// when empty, or "all" when every kind is set.
func (m KindMask) String() string {
	if m == MaskNone {
		return "none"
	}

	if m == MaskAll {
		return "all"
	}

	var parts []string

	for _, k := range []Kind{KindNull, KindBoolean, KindInteger, KindFloat, KindString, KindBinary, KindArray, KindObject} {
		if m.Has(k) {
			parts = append(parts, k.String())
		}
	}

	return strings.Join(parts, ",")
}
