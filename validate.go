package reqschema

import (
	"context"
	"errors"
	"sort"

	"github.com/reoring/reqschema/i18n"
)

// ErrNilValidator is returned when Validate is called on a nil Validator.
var ErrNilValidator = errors.New("reqschema: nil validator")

// Validate checks input against the compiled schema and returns a pruned copy
// containing only the declared keys that were present, with number and
// boolean leaves coerced. Every field is optional; undeclared keys, wrong
// shapes, failed coercions and explicitly empty nested objects are reported
// as Issues. A nil input is treated as an empty object.
//
// Validating the returned value again yields an equal value.
func (v *Validator) Validate(ctx context.Context, input map[string]any) (map[string]any, error) {
	if v == nil || v.root == nil {
		return nil, ErrNilValidator
	}
	if input == nil {
		input = map[string]any{}
	}
	out, iss := v.validateObject(ctx, v.root, input, Root())
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (v *Validator) validateObject(ctx context.Context, n *node, src map[string]any, at PathRef) (map[string]any, Issues) {
	out := make(map[string]any, len(src))
	var iss Issues
	for _, k := range n.keys {
		val, present := src[k]
		if !present {
			continue
		}
		parsed, i2 := v.validateField(ctx, n.fields[k], val, at.Field(k))
		if len(i2) > 0 {
			iss = AppendIssues(iss, i2...)
			continue
		}
		out[k] = parsed
	}
	// unknown keys in key-sorted order
	var unknown []string
	for k := range src {
		if _, known := n.fields[k]; !known {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		iss = AppendIssues(iss, at.Field(k).Issue(CodeUnknownKey, i18n.T(CodeUnknownKey, map[string]string{"key": k})))
	}
	return out, iss
}

func (v *Validator) validateField(ctx context.Context, n *node, val any, at PathRef) (any, Issues) {
	switch n.kind {
	case nodeObject:
		return v.validateNested(ctx, n, val, at)
	case nodeArrayOfObject:
		arr, ok := asSlice(val)
		if !ok {
			return nil, Issues{invalidType(at, "array", val)}
		}
		out := make([]any, 0, len(arr))
		var iss Issues
		for i, el := range arr {
			parsed, i2 := v.validateNested(ctx, n.elem, el, at.Index(i))
			if len(i2) > 0 {
				iss = AppendIssues(iss, i2...)
				continue
			}
			out = append(out, parsed)
		}
		if len(iss) > 0 {
			return nil, iss
		}
		return out, nil
	default:
		return v.validateLeaf(n.leaf, val, at)
	}
}

// validateNested validates a present nested object, which must not be empty.
func (v *Validator) validateNested(ctx context.Context, n *node, val any, at PathRef) (any, Issues) {
	m, ok := asObject(val)
	if !ok {
		return nil, Issues{invalidType(at, "object", val)}
	}
	out, iss := v.validateObject(ctx, n, m, at)
	if len(iss) > 0 {
		return nil, iss
	}
	if len(m) == 0 {
		return nil, Issues{at.Issue(CodeEmptyObject, i18n.T(CodeEmptyObject, nil))}
	}
	return out, nil
}

func (v *Validator) validateLeaf(leaf Leaf, val any, at PathRef) (any, Issues) {
	if !leaf.IsArray() {
		return v.validateScalar(leaf, val, at)
	}
	arr, ok := asSlice(val)
	if !ok {
		return nil, Issues{invalidType(at, "array", val)}
	}
	elem := leaf.Elem()
	out := make([]any, 0, len(arr))
	var iss Issues
	for i, el := range arr {
		parsed, i2 := v.validateScalar(elem, el, at.Index(i))
		if len(i2) > 0 {
			iss = AppendIssues(iss, i2...)
			continue
		}
		out = append(out, parsed)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (v *Validator) validateScalar(leaf Leaf, val any, at PathRef) (any, Issues) {
	switch leaf {
	case LeafString:
		if s, ok := val.(string); ok {
			return s, nil
		}
		return nil, Issues{invalidType(at, "string", val)}
	case LeafNumber:
		if f, ok := coerceNumber(val); ok {
			return f, nil
		}
		it := invalidType(at, "number", val)
		if _, isString := val.(string); isString {
			it.Received = "NaN"
			it.Message = i18n.T(CodeInvalidType, map[string]string{"expected": "number", "received": "NaN"})
		}
		return nil, Issues{it}
	case LeafBoolean:
		if b, ok := coerceBoolean(val); ok {
			return b, nil
		}
		return nil, Issues{invalidType(at, "boolean", val)}
	case LeafFile:
		// Absent-but-declared uploads may surface as nil entries.
		if val == nil || IsFile(val) {
			return val, nil
		}
		return nil, Issues{invalidType(at, "file", val)}
	}
	return nil, Issues{at.Issue(CodeInvalidValue, "unsupported leaf "+string(leaf))}
}
