package diff

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON renders the kind as its single-character mark, the wire form
// the change list uses ("+", "-", "*", "~").
func (k ChangeKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON accepts a mark character or word form.
func (k *ChangeKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	kind, ok := changeKindFromWord(s)
	if !ok {
		return fmt.Errorf("unknown change kind %q", s)
	}

	*k = kind

	return nil
}

// nodeChangeJSON is NodeChange's wire shape: the kind mark plus optional
// canonical path strings.
type nodeChangeJSON struct {
	Kind    ChangeKind `json:"kind"`
	OldPath *string    `json:"old_path,omitempty"`
	NewPath *string    `json:"new_path,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (c NodeChange) MarshalJSON() ([]byte, error) {
	return json.Marshal(nodeChangeJSON(c))
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *NodeChange) UnmarshalJSON(data []byte) error {
	var w nodeChangeJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*c = NodeChange(w)

	return nil
}
