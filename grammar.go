package reqschema

import (
	"sort"
	"strconv"
	"strings"

	"github.com/reoring/reqschema/i18n"
)

// CheckGrammar reports every field of decl that does not resolve to a leaf
// tag accepted for kind. Body fields are checked against the union
// literal | object | [object]; a field failing all three yields one
// invalid_union issue holding each branch's failures. Files fields only
// accept the file literals and fail with a plain invalid_value issue.
//
// The returned tree is meant to be flattened with Normalize.
func CheckGrammar(decl map[string]any, kind Kind) Issues {
	return checkObject(decl, kind, Root())
}

func checkObject(decl map[string]any, kind Kind, at PathRef) Issues {
	var iss Issues
	for _, k := range sortedKeys(decl) {
		v := decl[k]
		if kind == KindFiles {
			if it, ok := checkLiteral(v, kind); !ok {
				it.Path = at.Field(k).Segments()
				iss = AppendIssues(iss, it)
			}
			continue
		}
		if it, ok := checkBodyField(v); !ok {
			it.Path = at.Field(k).Segments()
			iss = AppendIssues(iss, it)
		}
	}
	return iss
}

// checkBodyField checks one body value against the three grammar alternatives.
// Branch issue paths are relative to the field.
func checkBodyField(v any) (Issue, bool) {
	literal, ok := checkLiteral(v, KindBody)
	if ok {
		return Issue{}, true
	}
	object := checkNested(v)
	if len(object) == 0 {
		return Issue{}, true
	}
	array := checkArrayOfObject(v)
	if len(array) == 0 {
		return Issue{}, true
	}
	return Issue{
		Code:     CodeInvalidUnion,
		Message:  i18n.T(CodeInvalidUnion, nil),
		Branches: []Issues{{literal}, object, array},
	}, false
}

func checkLiteral(v any, kind Kind) (Issue, bool) {
	if s, ok := leafString(v); ok {
		if _, ok := ParseLeaf(kind, s); ok {
			return Issue{}, true
		}
	}
	leaves := Leaves(kind)
	opts := make([]string, len(leaves))
	quoted := make([]string, len(leaves))
	for i, l := range leaves {
		opts[i] = string(l)
		quoted[i] = strconv.Quote(string(l))
	}
	return Issue{
		Code:    CodeInvalidValue,
		Options: opts,
		Message: i18n.T(CodeInvalidValue, map[string]string{"options": strings.Join(quoted, "|")}),
	}, false
}

func checkNested(v any) Issues {
	m, ok := asObject(v)
	if !ok {
		return Issues{invalidType(Root(), "object", v)}
	}
	return checkObject(m, KindBody, Root())
}

func checkArrayOfObject(v any) Issues {
	if _, isObj := asObject(v); isObj {
		return Issues{invalidType(Root(), "array", v)}
	}
	arr, ok := asSlice(v)
	if !ok {
		return Issues{invalidType(Root(), "array", v)}
	}
	switch {
	case len(arr) < 1:
		return Issues{{
			Code:    CodeTooSmall,
			Message: i18n.T(CodeTooSmall, map[string]string{"origin": "array", "minimum": "1"}),
		}}
	case len(arr) > 1:
		return Issues{{
			Code:    CodeTooBig,
			Message: i18n.T(CodeTooBig, map[string]string{"origin": "array", "maximum": "1"}),
		}}
	}
	elem := Root().Index(0)
	m, ok := asObject(arr[0])
	if !ok {
		return Issues{invalidType(elem, "object", arr[0])}
	}
	return checkObject(m, KindBody, elem)
}

func invalidType(at PathRef, expected string, v any) Issue {
	received := typeName(v)
	return Issue{
		Path:     at.Segments(),
		Code:     CodeInvalidType,
		Expected: expected,
		Received: received,
		Message:  i18n.T(CodeInvalidType, map[string]string{"expected": expected, "received": received}),
	}
}

func leafString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case Leaf:
		return string(s), true
	}
	return "", false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
