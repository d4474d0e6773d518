package opath

import (
	"encoding/json"

	"github.com/kodegenix/kgtree/pkg/opath/nodeset"
)

// NodeSetToJSON renders a NodeSet in its interop JSON form:
// {"type":"empty"}, {"type":"one","data":<value>}, or
// {"type":"many","data":[<value>,...]}. Object values serialize with their
// keys in insertion order.
func NodeSetToJSON(s nodeset.NodeSet) ([]byte, error) {
	type withData struct {
		Type string `json:"type"`
		Data any    `json:"data"`
	}

	switch s.Kind() {
	case nodeset.Empty:
		return json.Marshal(struct {
			Type string `json:"type"`
		}{Type: "empty"})
	case nodeset.One:
		n, _ := s.First()

		return json.Marshal(withData{Type: "one", Data: n.ToGeneric()})
	default:
		all := s.All()
		data := make([]any, len(all))

		for i, n := range all {
			data[i] = n.ToGeneric()
		}

		return json.Marshal(withData{Type: "many", Data: data})
	}
}
