// Package diff implements the structural diff engine: comparing two trees
// and reporting the logical changes between them as an ordered list of
// NodeChange values, with optional move detection.
//
// The node pointers collected while walking the two trees are carried
// through the whole computation, so move detection and full-diff expansion
// never resolve a path string back into a node. Canonical path strings are
// computed through a pkg/opath/cache path cache, which memoizes each node's
// path across the walk and the full-diff expansion.
package diff

import "unicode"

// ChangeKind identifies the category of a single logical change: a node
// present only in the new tree, present only in the old tree, present in
// both but with a different value, or moved to a different position.
type ChangeKind uint8

const (
	Added ChangeKind = 1 << iota
	Removed
	Updated
	Moved
)

// String renders the kind as its single-character mark.
func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "+"
	case Removed:
		return "-"
	case Updated:
		return "*"
	case Moved:
		return "~"
	default:
		return "?"
	}
}

func changeKindFromWord(w string) (ChangeKind, bool) {
	switch w {
	case "+", "add", "added":
		return Added, true
	case "-", "remove", "removed":
		return Removed, true
	case "*", "update", "updated":
		return Updated, true
	case "~", "move", "moved":
		return Moved, true
	default:
		return 0, false
	}
}

// ChangeKindMask is a bitset of ChangeKind values, used to restrict which
// change categories a caller wants reported (e.g. the CLI's --kinds flag).
type ChangeKindMask uint8

// AllKinds returns a mask containing every ChangeKind, Updated included.
func AllKinds() ChangeKindMask {
	return ChangeKindMask(Added | Removed | Updated | Moved)
}

// Has reports whether kind is a member of the mask.
func (m ChangeKindMask) Has(kind ChangeKind) bool { return ChangeKind(m)&kind == kind }

func (m ChangeKindMask) HasAdded() bool   { return m.Has(Added) }
func (m ChangeKindMask) HasRemoved() bool { return m.Has(Removed) }
func (m ChangeKindMask) HasUpdated() bool { return m.Has(Updated) }
func (m ChangeKindMask) HasMoved() bool   { return m.Has(Moved) }

// HasAll reports whether every kind in AllKinds() is set.
func (m ChangeKindMask) HasAll() bool {
	all := ChangeKindMask(AllKinds())

	return m&all == all
}

// ParseChangeKindMask parses a mask expressed as mark characters (+-*~),
// alphabetic words (add, removed, update, moved, ...) in any combination of
// separators, or the literal word "all". Characters and words that match
// nothing are ignored rather than rejected.
func ParseChangeKindMask(s string) ChangeKindMask {
	var m ChangeKind

	runes := []rune(s)
	for i := 0; i < len(runes); {
		c := runes[i]

		switch {
		case c == '+' || c == '-' || c == '*' || c == '~':
			k, _ := changeKindFromWord(string(c))
			m |= k
			i++
		case unicode.IsLetter(c):
			j := i
			for j < len(runes) && unicode.IsLetter(runes[j]) {
				j++
			}

			word := string(runes[i:j])
			if word == "all" {
				m = Added | Removed | Updated | Moved
			} else if k, ok := changeKindFromWord(word); ok {
				m |= k
			}

			i = j
		default:
			i++
		}
	}

	return ChangeKindMask(m)
}

func (m ChangeKindMask) String() string {
	var out []rune

	for _, k := range []ChangeKind{Added, Removed, Updated, Moved} {
		if m.Has(k) {
			out = append(out, []rune(k.String())...)
		}
	}

	return string(out)
}
