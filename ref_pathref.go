package reqschema

import (
	"strconv"
)

// PathRef builds field paths in a chain-safe way and creates Issues.
// The zero value is the root path.
type PathRef struct {
	parts []string
}

// Root returns the empty path.
func Root() PathRef { return PathRef{} }

// Field appends an object key.
func (p PathRef) Field(name string) PathRef {
	return PathRef{parts: append(append(make([]string, 0, len(p.parts)+1), p.parts...), name)}
}

// Index appends an array index.
func (p PathRef) Index(i int) PathRef { return p.Field(strconv.Itoa(i)) }

// Segments returns a copy of the path segments.
func (p PathRef) Segments() []string { return append([]string(nil), p.parts...) }

// Issue creates an Issue anchored at this path.
func (p PathRef) Issue(code, msg string) Issue {
	return Issue{Path: p.Segments(), Code: code, Message: msg}
}
