package reqschema

import (
	"fmt"
)

type nodeKind uint8

const (
	nodeLeaf nodeKind = iota
	nodeObject
	nodeArrayOfObject
)

// node is the compiled form of one declared value: exactly one of a leaf tag,
// a nested object, or an array whose elements are that nested object.
type node struct {
	kind   nodeKind
	leaf   Leaf
	fields map[string]*node
	keys   []string // sorted field names, for deterministic issue order
	elem   *node    // object template of nodeArrayOfObject
}

// Validator is a compiled declared schema. It is immutable and safe for
// concurrent use.
type Validator struct {
	kind Kind
	decl map[string]any
	root *node
}

// Compile checks decl against the grammar for kind and builds a Validator.
// Grammar violations are returned as Issues (see CheckGrammar); any other
// error indicates an inconsistency between the grammar check and the compiler.
func Compile(decl map[string]any, kind Kind) (*Validator, error) {
	if iss := CheckGrammar(decl, kind); len(iss) > 0 {
		return nil, iss
	}
	root, err := compileObject(decl, kind)
	if err != nil {
		return nil, fmt.Errorf("reqschema: compile %s schema: %w", kind, err)
	}
	return &Validator{kind: kind, decl: decl, root: root}, nil
}

// MustCompile is like Compile but panics on error. Intended for schemas
// declared as package-level literals.
func MustCompile(decl map[string]any, kind Kind) *Validator {
	v, err := Compile(decl, kind)
	if err != nil {
		panic(fmt.Sprintf("reqschema.MustCompile: %v", err))
	}
	return v
}

// Kind returns the request part this validator applies to.
func (v *Validator) Kind() Kind { return v.kind }

// Declared returns the declaration the validator was compiled from.
func (v *Validator) Declared() map[string]any { return v.decl }

func compileObject(decl map[string]any, kind Kind) (*node, error) {
	n := &node{kind: nodeObject, fields: make(map[string]*node, len(decl)), keys: sortedKeys(decl)}
	for _, k := range n.keys {
		child, err := compileValue(decl[k], kind)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		n.fields[k] = child
	}
	return n, nil
}

func compileValue(v any, kind Kind) (*node, error) {
	if s, ok := leafString(v); ok {
		leaf, ok := ParseLeaf(kind, s)
		if !ok {
			return nil, fmt.Errorf("unknown %s leaf %q", kind, s)
		}
		return &node{kind: nodeLeaf, leaf: leaf}, nil
	}
	if kind == KindFiles {
		return nil, fmt.Errorf("files schemas only accept leaf tags, got %s", typeName(v))
	}
	if m, ok := asObject(v); ok {
		return compileObject(m, kind)
	}
	if arr, ok := asSlice(v); ok && len(arr) == 1 {
		m, ok := asObject(arr[0])
		if !ok {
			return nil, fmt.Errorf("array template must be an object, got %s", typeName(arr[0]))
		}
		elem, err := compileObject(m, kind)
		if err != nil {
			return nil, err
		}
		return &node{kind: nodeArrayOfObject, elem: elem}, nil
	}
	return nil, fmt.Errorf("unsupported declaration of type %s", typeName(v))
}
