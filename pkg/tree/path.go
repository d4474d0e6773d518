package tree

import (
	"strconv"
	"strings"
	"unicode"
)

// Path renders the node's position as a canonical Opath string: "$" at the
// root, ".name" for an object property (quoted and bracketed when the key is
// not a plain identifier), "[N]" for an array element. The result parses
// back through the Opath parser and resolves to this node.
func (n *Node) Path() string {
	var rev []*Node

	for cur := n; cur != nil && !cur.IsRoot(); cur = cur.Parent() {
		rev = append(rev, cur)
	}

	var b strings.Builder

	b.WriteByte('$')

	for i := len(rev) - 1; i >= 0; i-- {
		cur := rev[i]

		if cur.Parent().Value().IsArray() {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(cur.Index()))
			b.WriteByte(']')

			continue
		}

		key := cur.Key().String()
		if isPlainIdent(key) {
			b.WriteByte('.')
			b.WriteString(key)
		} else {
			b.WriteString("['")
			b.WriteString(strings.ReplaceAll(key, "'", "\\'"))
			b.WriteString("']")
		}
	}

	return b.String()
}

func isPlainIdent(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}

			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}
