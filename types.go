package reqschema

import "strings"

// Kind selects which part of a request a declared schema describes.
type Kind int

const (
	KindBody  Kind = iota // Parsed request body fields.
	KindFiles             // Uploaded files.
)

func (k Kind) String() string {
	switch k {
	case KindBody:
		return "body"
	case KindFiles:
		return "files"
	default:
		return "unknown"
	}
}

// Leaf is an atomic type tag of the declaration grammar.
type Leaf string

const (
	LeafString   Leaf = "string"
	LeafStrings  Leaf = "[string]"
	LeafNumber   Leaf = "number"
	LeafNumbers  Leaf = "[number]"
	LeafBoolean  Leaf = "boolean"
	LeafBooleans Leaf = "[boolean]"
	LeafFile     Leaf = "file"
	LeafFiles    Leaf = "[file]"
)

var (
	bodyLeaves  = []Leaf{LeafString, LeafStrings, LeafNumber, LeafNumbers, LeafBoolean, LeafBooleans}
	filesLeaves = []Leaf{LeafFile, LeafFiles}
)

// Leaves returns the leaf tags accepted for kind, in declaration order.
func Leaves(kind Kind) []Leaf {
	if kind == KindFiles {
		return append([]Leaf(nil), filesLeaves...)
	}
	return append([]Leaf(nil), bodyLeaves...)
}

// ParseLeaf resolves s to a leaf tag accepted for kind.
func ParseLeaf(kind Kind, s string) (Leaf, bool) {
	set := bodyLeaves
	if kind == KindFiles {
		set = filesLeaves
	}
	for _, l := range set {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}

// IsArray reports whether l is an array form such as "[string]".
func (l Leaf) IsArray() bool { return strings.HasPrefix(string(l), "[") && strings.HasSuffix(string(l), "]") }

// Elem returns the scalar tag of an array leaf (or l itself).
func (l Leaf) Elem() Leaf {
	if l.IsArray() {
		return Leaf(l[1 : len(l)-1])
	}
	return l
}

// Schema is the author-facing declaration of a body or files shape. Values
// are leaf tags (string or Leaf), nested Schema values, or a one-element
// slice holding a nested Schema (array of objects).
type Schema = map[string]any
