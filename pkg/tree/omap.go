package tree

import "github.com/kodegenix/kgtree/pkg/symbol"

// orderedMap is an insertion-order preserving symbol-keyed map backing
// Object values. Insertion order matters for stringification, iteration
// (`@key`/`.*` navigation visits properties in declaration order) and for
// the diff engine's key-union walk, which reports object changes in the
// order keys appear across both sides.
type orderedMap struct {
	keys []symbol.Symbol
	idx  map[symbol.Symbol]int
	vals []*Node
}

func newOrderedMap() *orderedMap {
	return &orderedMap{idx: make(map[symbol.Symbol]int)}
}

func (m *orderedMap) len() int { return len(m.keys) }

func (m *orderedMap) get(k symbol.Symbol) (*Node, bool) {
	i, ok := m.idx[k]
	if !ok {
		return nil, false
	}

	return m.vals[i], true
}

// set inserts or overwrites k, preserving the original position on update.
func (m *orderedMap) set(k symbol.Symbol, v *Node) {
	if i, ok := m.idx[k]; ok {
		m.vals[i] = v

		return
	}

	m.idx[k] = len(m.keys)
	m.keys = append(m.keys, k)
	m.vals = append(m.vals, v)
}

func (m *orderedMap) delete(k symbol.Symbol) bool {
	i, ok := m.idx[k]
	if !ok {
		return false
	}

	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.vals = append(m.vals[:i], m.vals[i+1:]...)
	delete(m.idx, k)

	for j := i; j < len(m.keys); j++ {
		m.idx[m.keys[j]] = j
	}

	return true
}

