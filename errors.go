package reqschema

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType  = "invalid_type"
	CodeInvalidValue = "invalid_value"
	CodeInvalidUnion = "invalid_union"
	CodeUnknownKey   = "unknown_key"
	CodeEmptyObject  = "empty_object"
	CodeTooSmall     = "too_small"
	CodeTooBig       = "too_big"
	CodeParseError   = "parse_error"
)

// Issue represents a single validation entry. Issues form a tree: a union
// issue carries the failures of every branch it tried in Branches, and the
// paths of those nested issues are relative to the union's own Path.
type Issue struct {
	Path    []string // Path segments relative to the parent issue (or the root).
	Code    string   // One of the codes listed above.
	Message string
	// Expected and Received describe type mismatches ("string", "object", ...).
	Expected string
	Received string
	// Options lists the accepted literals for invalid_value issues.
	Options []string
	// Branches holds one Issues set per union alternative (invalid_union only).
	Branches []Issues
}

// Dotted renders the issue path joined by ".".
func (it Issue) Dotted() string { return strings.Join(it.Path, ".") }

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at address.street
		fmt.Fprintf(b, "%s at %s", it.Code, it.Dotted())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
