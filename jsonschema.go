package reqschema

import (
	js "github.com/reoring/reqschema/jsonschema"
)

// JSONSchema describes the compiled shape as a closed JSON Schema object.
// Nested objects carry minProperties 1 because an explicitly empty nested
// object is rejected; file leaves are rendered as binary strings.
func (v *Validator) JSONSchema() (*js.Schema, error) {
	if v == nil || v.root == nil {
		return nil, ErrNilValidator
	}
	return nodeSchema(v.root, true), nil
}

func nodeSchema(n *node, top bool) *js.Schema {
	switch n.kind {
	case nodeObject:
		props := make(map[string]*js.Schema, len(n.fields))
		for _, k := range n.keys {
			props[k] = nodeSchema(n.fields[k], false)
		}
		s := js.Object(props)
		if !top {
			s.MinProperties = js.Int(1)
		}
		return s
	case nodeArrayOfObject:
		return js.ArrayOf(nodeSchema(n.elem, false))
	}
	if n.leaf.IsArray() {
		return js.ArrayOf(leafSchema(n.leaf.Elem()))
	}
	return leafSchema(n.leaf)
}

func leafSchema(l Leaf) *js.Schema {
	switch l {
	case LeafNumber:
		return &js.Schema{Type: "number"}
	case LeafBoolean:
		return &js.Schema{Type: "boolean"}
	case LeafFile:
		return &js.Schema{Type: "string", Format: "binary"}
	}
	return &js.Schema{Type: "string"}
}
