package reqschema_test

import (
	"context"
	"reflect"
	"testing"

	reqschema "github.com/reoring/reqschema"
)

type testFile struct {
	name, path, mime string
	size             int64
}

func (f *testFile) Filename() string { return f.name }
func (f *testFile) Path() string     { return f.path }
func (f *testFile) Size() int64      { return f.size }
func (f *testFile) MimeType() string { return f.mime }

func articleSchema() reqschema.Schema {
	return reqschema.Schema{
		"title":  "string",
		"count":  "number",
		"draft":  "boolean",
		"tags":   "[string]",
		"scores": "[number]",
		"address": reqschema.Schema{
			"street": "string",
			"zip":    "number",
		},
		"items": []any{reqschema.Schema{"name": "string"}},
	}
}

func mustDiagnostics(t *testing.T, err error) reqschema.Diagnostics {
	t.Helper()
	iss, ok := reqschema.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %v", err)
	}
	return reqschema.Normalize(iss)
}

func TestValidate_ConformingInputRoundTrips(t *testing.T) {
	v := reqschema.MustCompile(articleSchema(), reqschema.KindBody)
	in := map[string]any{
		"title":   "hello",
		"count":   float64(3),
		"draft":   true,
		"tags":    []any{"a", "b"},
		"scores":  []any{1.5, float64(2)},
		"address": map[string]any{"street": "Main", "zip": float64(1000)},
		"items":   []any{map[string]any{"name": "x"}, map[string]any{"name": "y"}},
	}
	out, err := v.Validate(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(out, in) {
		t.Fatalf("round trip mismatch\n got=%#v\nwant=%#v", out, in)
	}
}

func TestValidate_AbsentKeysAreNotMaterialized(t *testing.T) {
	v := reqschema.MustCompile(articleSchema(), reqschema.KindBody)
	out, err := v.Validate(context.Background(), map[string]any{"title": "only"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out["title"] != "only" {
		t.Fatalf("expected only title, got %#v", out)
	}

	out, err = v.Validate(context.Background(), nil)
	if err != nil || len(out) != 0 {
		t.Fatalf("nil input: out=%#v err=%v", out, err)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	v := reqschema.MustCompile(articleSchema(), reqschema.KindBody)
	ctx := context.Background()
	first, err := v.Validate(ctx, map[string]any{
		"count":   "42",
		"draft":   "on",
		"scores":  []any{"1", "2.5"},
		"address": map[string]string{"street": "Main", "zip": "1000"},
	})
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	if first["count"] != 42.0 || first["draft"] != true {
		t.Fatalf("expected coerced values, got %#v", first)
	}
	second, err := v.Validate(ctx, first)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("not idempotent\n first=%#v\nsecond=%#v", first, second)
	}
}

func TestValidate_ClosedObjectRejectsExtraKeys(t *testing.T) {
	v := reqschema.MustCompile(articleSchema(), reqschema.KindBody)
	_, err := v.Validate(context.Background(), map[string]any{
		"title":   "x",
		"extra":   1,
		"address": map[string]any{"street": "Main", "floor": 2},
	})
	d := mustDiagnostics(t, err)
	if got := d["extra"]; got != `Unrecognized key: "extra"` {
		t.Fatalf("extra: got %q", got)
	}
	if _, ok := d["address.floor"]; !ok {
		t.Fatalf("expected nested unknown key, got %v", d)
	}
	if len(d) != 2 {
		t.Fatalf("expected 2 diagnostics, got %v", d)
	}
}

func TestValidate_ArrayOfObjects(t *testing.T) {
	v := reqschema.MustCompile(reqschema.Schema{
		"addr": []any{reqschema.Schema{"street": "string"}},
	}, reqschema.KindBody)
	ctx := context.Background()

	out, err := v.Validate(ctx, map[string]any{"addr": []any{}})
	if err != nil {
		t.Fatalf("empty array should be accepted: %v", err)
	}
	if got, ok := out["addr"].([]any); !ok || len(got) != 0 {
		t.Fatalf("expected empty array, got %#v", out["addr"])
	}

	_, err = v.Validate(ctx, map[string]any{"addr": []any{map[string]any{}}})
	d := mustDiagnostics(t, err)
	want := "Invalid input: expected populated object, received empty object"
	if d["addr.0"] != want {
		t.Fatalf("addr.0: got %q (all=%v)", d["addr.0"], d)
	}

	_, err = v.Validate(ctx, map[string]any{"addr": []any{
		map[string]any{"street": "ok"},
		map[string]any{"street": 7},
	}})
	d = mustDiagnostics(t, err)
	if d["addr.1.street"] != "Invalid input: expected string, received number" {
		t.Fatalf("addr.1.street: got %v", d)
	}

	_, err = v.Validate(ctx, map[string]any{"addr": "nope"})
	d = mustDiagnostics(t, err)
	if d["addr"] != "Invalid input: expected array, received string" {
		t.Fatalf("addr: got %v", d)
	}
}

func TestValidate_EmptyNestedObjectRejected(t *testing.T) {
	v := reqschema.MustCompile(articleSchema(), reqschema.KindBody)
	_, err := v.Validate(context.Background(), map[string]any{"address": map[string]any{}})
	d := mustDiagnostics(t, err)
	if d["address"] != "Invalid input: expected populated object, received empty object" {
		t.Fatalf("address: got %v", d)
	}
}

func TestValidate_Coercion(t *testing.T) {
	v := reqschema.MustCompile(reqschema.Schema{"count": "number", "flag": "boolean"}, reqschema.KindBody)
	ctx := context.Background()

	out, err := v.Validate(ctx, map[string]any{"count": " 42 ", "flag": "false"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["count"] != 42.0 || out["flag"] != false {
		t.Fatalf("unexpected output %#v", out)
	}

	tests := []struct {
		name  string
		input map[string]any
		key   string
		want  string
	}{
		{"non numeric string", map[string]any{"count": "abc"}, "count", "Invalid input: expected number, received NaN"},
		{"empty string", map[string]any{"count": ""}, "count", "Invalid input: expected number, received NaN"},
		{"bool for number", map[string]any{"count": true}, "count", "Invalid input: expected number, received boolean"},
		{"null for number", map[string]any{"count": nil}, "count", "Invalid input: expected number, received null"},
		{"unknown boolean word", map[string]any{"flag": "maybe"}, "flag", "Invalid input: expected boolean, received string"},
		{"two for boolean", map[string]any{"flag": 2}, "flag", "Invalid input: expected boolean, received number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(ctx, tt.input)
			d := mustDiagnostics(t, err)
			if d[tt.key] != tt.want {
				t.Fatalf("got %v, want %s=%q", d, tt.key, tt.want)
			}
		})
	}
}

func TestValidate_ArrayLeafReportsElementPath(t *testing.T) {
	v := reqschema.MustCompile(reqschema.Schema{"scores": "[number]"}, reqschema.KindBody)
	_, err := v.Validate(context.Background(), map[string]any{"scores": []any{1, "x", 3}})
	d := mustDiagnostics(t, err)
	if _, ok := d["scores.1"]; !ok || len(d) != 1 {
		t.Fatalf("expected a single scores.1 diagnostic, got %v", d)
	}
}

func TestValidate_Files(t *testing.T) {
	v := reqschema.MustCompile(reqschema.Schema{"avatar": "file", "docs": "[file]"}, reqschema.KindFiles)
	ctx := context.Background()
	avatar := &testFile{name: "a.png", path: "/tmp/a", mime: "image/png", size: 10}
	doc := &testFile{name: "d.pdf", path: "/tmp/d", mime: "application/pdf", size: 20}

	out, err := v.Validate(ctx, map[string]any{"avatar": avatar, "docs": []any{doc}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["avatar"] != avatar {
		t.Fatalf("file handle not preserved: %#v", out["avatar"])
	}

	_, err = v.Validate(ctx, map[string]any{"avatar": "not a file"})
	d := mustDiagnostics(t, err)
	if d["avatar"] != "Invalid input: expected file, received string" {
		t.Fatalf("avatar: got %v", d)
	}

	// a handle without a persisted path is not a usable upload
	_, err = v.Validate(ctx, map[string]any{"docs": []any{&testFile{name: "x", mime: "text/plain"}}})
	d = mustDiagnostics(t, err)
	if _, ok := d["docs.0"]; !ok {
		t.Fatalf("expected docs.0 diagnostic, got %v", d)
	}
}

func TestValidate_NilValidator(t *testing.T) {
	var v *reqschema.Validator
	if _, err := v.Validate(context.Background(), nil); err != reqschema.ErrNilValidator {
		t.Fatalf("expected ErrNilValidator, got %v", err)
	}
}
