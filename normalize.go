package reqschema

import (
	"sort"
	"strings"
)

// Diagnostics maps a dotted field path ("address.street", "tags.0") to a
// single human-readable message.
type Diagnostics map[string]string

// Keys returns the diagnostic paths in sorted order.
func (d Diagnostics) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (d Diagnostics) add(path []string, msg string) {
	key := strings.Join(path, ".")
	if _, exists := d[key]; exists {
		return
	}
	d[key] = msg
}

// Normalize flattens an issue tree into Diagnostics.
//
// At a union issue exactly one branch is followed: the first branch holding
// an issue with a non-empty path (the nested-object alternative that failed
// deeper down), otherwise the first branch whose leading issue is a literal
// mismatch. invalid_value messages are rewritten for readability, size
// failures pass through unchanged, and any other leaf issue contributes its
// message as is. When two issues land on the same path the first one wins.
func Normalize(iss Issues) Diagnostics {
	d := Diagnostics{}
	for _, it := range iss {
		normalizeIssue(d, nil, it)
	}
	return d
}

func normalizeIssue(d Diagnostics, prefix []string, it Issue) {
	p := make([]string, 0, len(prefix)+len(it.Path))
	p = append(append(p, prefix...), it.Path...)

	switch it.Code {
	case CodeInvalidValue:
		d.add(p, readableOptions(it.Message))
	case CodeTooBig, CodeTooSmall:
		d.add(p, it.Message)
	case CodeInvalidUnion:
		next := pickBranch(it.Branches)
		if next == nil {
			d.add(p, it.Message)
			return
		}
		for _, inner := range next {
			normalizeIssue(d, p, inner)
		}
	default:
		d.add(p, it.Message)
	}
}

// pickBranch selects the union branch that explains the failure best.
func pickBranch(branches []Issues) Issues {
	for _, b := range branches {
		for _, it := range b {
			if len(it.Path) > 0 {
				return b
			}
		}
	}
	for _, b := range branches {
		if len(b) > 0 && b[0].Code == CodeInvalidValue {
			return b
		}
	}
	return nil
}

var optionsReplacer = strings.NewReplacer(`"`, `'`)

// readableOptions turns `expected one of "a"|"b"` into `expected one of 'a' | 'b'`.
func readableOptions(msg string) string {
	return strings.ReplaceAll(optionsReplacer.Replace(msg), "'|", "' | ")
}
