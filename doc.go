// Package reqschema compiles declared request shapes into validators.
//
// A declaration maps field names to one of:
//
//   - a leaf tag: "string", "number", "boolean" and their array forms
//     "[string]", "[number]", "[boolean]" for bodies, "file" and "[file]"
//     for uploaded files
//   - a nested declaration (an object whose fields follow the same grammar)
//   - a one-element slice holding a nested declaration (an array of objects)
//
// Validation is closed and optional: undeclared keys are rejected, declared
// keys may be absent, and absent keys are never materialized in the output.
// Numbers and booleans are coerced from their string forms so that
// form-encoded requests validate like JSON ones.
//
// Failures are reported as Issues, a tree that Normalize flattens into a
// map from dotted field path to message.
//
// Typical usage:
//
//	v, err := reqschema.Compile(reqschema.Schema{
//		"title":   "string",
//		"address": reqschema.Schema{"street": "string", "zip": "number"},
//	}, reqschema.KindBody)
//	out, err := v.Validate(ctx, body)
//	if iss, ok := reqschema.AsIssues(err); ok {
//		diags := reqschema.Normalize(iss)
//		_ = diags["address.street"]
//	}
package reqschema
