package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/kodegenix/kgtree/pkg/tree"
)

// JSONAdapter is the one always-available adapter. It decodes through the
// token stream rather than into map[string]any so that object key order
// survives the round trip -- insertion order is semantically significant for
// Object nodes (iteration, diffing, and serialization all observe it).
type JSONAdapter struct{}

// Format implements Adapter.
func (JSONAdapter) Format() tree.Format { return tree.FormatJSON }

// Parse implements Adapter.
func (JSONAdapter) Parse(content []byte) (*tree.Node, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	n, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}

	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("decoding json: trailing content after document")
	}

	return n, nil
}

func decodeValue(dec *json.Decoder) (*tree.Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("unexpected %q", v)
		}
	case nil:
		return tree.NewNull(), nil
	case bool:
		return tree.NewBool(v), nil
	case string:
		return tree.NewString(v), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return tree.NewInt(i), nil
		}

		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %q: %w", v.String(), err)
		}

		return tree.NewFloat(f), nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func decodeObject(dec *json.Decoder) (*tree.Node, error) {
	var entries []tree.ObjectEntry

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", keyTok)
		}

		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}

		entries = append(entries, tree.ObjectEntry{Key: key, Value: val})
	}

	if _, err := dec.Token(); err != nil { // consume '}'
		return nil, err
	}

	return tree.NewObject(entries...), nil
}

func decodeArray(dec *json.Decoder) (*tree.Node, error) {
	var children []*tree.Node

	for dec.More() {
		c, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}

		children = append(children, c)
	}

	if _, err := dec.Token(); err != nil { // consume ']'
		return nil, err
	}

	return tree.NewArray(children...), nil
}

// Stringify implements Adapter. Object keys are written in insertion order.
// Non-finite floats have no JSON spelling and are written as null.
func (JSONAdapter) Stringify(n *tree.Node, pretty bool) ([]byte, error) {
	var b bytes.Buffer

	if err := encodeValue(&b, n, pretty, 0); err != nil {
		return nil, err
	}

	if pretty {
		b.WriteByte('\n')
	}

	return b.Bytes(), nil
}

func encodeValue(b *bytes.Buffer, n *tree.Node, pretty bool, level int) error {
	v := n.Value()

	switch v.Kind() {
	case tree.KindNull:
		b.WriteString("null")
	case tree.KindBoolean:
		b.WriteString(strconv.FormatBool(v.Boolean()))
	case tree.KindInteger:
		b.WriteString(strconv.FormatInt(v.Integer(), 10))
	case tree.KindFloat:
		f := v.Float64()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			b.WriteString("null")

			break
		}

		b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	case tree.KindString:
		return writeJSONString(b, v.String())
	case tree.KindBinary:
		// Binary has no native JSON form; follow encoding/json's []byte
		// convention of a base64 string.
		data, err := json.Marshal(v.Binary())
		if err != nil {
			return err
		}

		b.Write(data)
	case tree.KindArray:
		return encodeArray(b, v.Array(), pretty, level)
	case tree.KindObject:
		return encodeObject(b, n, pretty, level)
	}

	return nil
}

func writeJSONString(b *bytes.Buffer, s string) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}

	b.Write(data)

	return nil
}

func writeIndent(b *bytes.Buffer, pretty bool, level int) {
	if !pretty {
		return
	}

	b.WriteByte('\n')

	for i := 0; i < level; i++ {
		b.WriteString("  ")
	}
}

func encodeArray(b *bytes.Buffer, children []*tree.Node, pretty bool, level int) error {
	if len(children) == 0 {
		b.WriteString("[]")

		return nil
	}

	b.WriteByte('[')

	for i, c := range children {
		if i > 0 {
			b.WriteByte(',')
		}

		writeIndent(b, pretty, level+1)

		if err := encodeValue(b, c, pretty, level+1); err != nil {
			return err
		}
	}

	writeIndent(b, pretty, level)
	b.WriteByte(']')

	return nil
}

func encodeObject(b *bytes.Buffer, n *tree.Node, pretty bool, level int) error {
	v := n.Value()

	keys := v.ObjectKeys()
	if len(keys) == 0 {
		b.WriteString("{}")

		return nil
	}

	b.WriteByte('{')

	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}

		writeIndent(b, pretty, level+1)

		if err := writeJSONString(b, k.String()); err != nil {
			return err
		}

		b.WriteByte(':')

		if pretty {
			b.WriteByte(' ')
		}

		c, _ := v.ObjectGet(k)

		if err := encodeValue(b, c, pretty, level+1); err != nil {
			return err
		}
	}

	writeIndent(b, pretty, level)
	b.WriteByte('}')

	return nil
}
