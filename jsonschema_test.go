package reqschema_test

import (
	"testing"

	"github.com/goccy/go-json"

	reqschema "github.com/reoring/reqschema"
)

func TestValidator_JSONSchema(t *testing.T) {
	v := reqschema.MustCompile(reqschema.Schema{
		"title":   "string",
		"tags":    "[string]",
		"address": reqschema.Schema{"zip": "number"},
		"items":   []any{reqschema.Schema{"ok": "boolean"}},
	}, reqschema.KindBody)
	s, err := v.JSONSchema()
	if err != nil {
		t.Fatalf("JSONSchema: %v", err)
	}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["type"] != "object" || got["additionalProperties"] != false {
		t.Fatalf("root: %v", got)
	}
	props := got["properties"].(map[string]any)
	addr := props["address"].(map[string]any)
	if addr["minProperties"] != float64(1) {
		t.Fatalf("address: %v", addr)
	}
	items := props["items"].(map[string]any)
	if items["type"] != "array" {
		t.Fatalf("items: %v", items)
	}
	tags := props["tags"].(map[string]any)
	if tags["items"].(map[string]any)["type"] != "string" {
		t.Fatalf("tags: %v", tags)
	}
}

func TestValidator_JSONSchemaFiles(t *testing.T) {
	v := reqschema.MustCompile(reqschema.Schema{"avatar": "file"}, reqschema.KindFiles)
	s, err := v.JSONSchema()
	if err != nil {
		t.Fatalf("JSONSchema: %v", err)
	}
	if p := s.Properties["avatar"]; p == nil || p.Format != "binary" {
		t.Fatalf("avatar: %+v", p)
	}
}
