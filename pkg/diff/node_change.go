package diff

// NodeChange is a single logical change reported by the diff engine: a node
// added, removed, updated in place (old and new path equal), or moved (old
// and new path differ). Exactly one of OldPath/NewPath is nil for
// Added/Removed; both are set for Updated and Moved.
type NodeChange struct {
	Kind    ChangeKind
	OldPath *string
	NewPath *string
}

// Path returns whichever of OldPath/NewPath is set, preferring OldPath --
// the single position used to order changes and to render them when only
// one side applies.
func (c NodeChange) Path() string {
	if c.OldPath != nil {
		return *c.OldPath
	}

	if c.NewPath != nil {
		return *c.NewPath
	}

	return ""
}

// Equal compares changes componentwise: kind plus both paths, each field
// against its own counterpart.
func (c NodeChange) Equal(o NodeChange) bool {
	return c.Kind == o.Kind && strPtrEqual(c.OldPath, o.OldPath) && strPtrEqual(c.NewPath, o.NewPath)
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}

func (c NodeChange) String() string {
	switch c.Kind {
	case Moved:
		return *c.OldPath + " -> " + *c.NewPath + ": " + c.Kind.String()
	case Removed:
		return *c.OldPath + ": " + c.Kind.String()
	default:
		return *c.NewPath + ": " + c.Kind.String()
	}
}
