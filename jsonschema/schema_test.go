package jsonschema_test

import (
	"testing"

	"github.com/goccy/go-json"

	js "github.com/reoring/reqschema/jsonschema"
)

func TestObject_IsClosed(t *testing.T) {
	s := js.Object(map[string]*js.Schema{"name": {Type: "string"}})
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"type":"object","properties":{"name":{"type":"string"}},"additionalProperties":false}`
	if string(b) != want {
		t.Fatalf("got %s\nwant %s", b, want)
	}
}

func TestArrayOf(t *testing.T) {
	s := js.ArrayOf(&js.Schema{Type: "number"})
	if s.Type != "array" || s.Items == nil || s.Items.Type != "number" {
		t.Fatalf("unexpected schema: %+v", s)
	}
	if n := js.Int(1); *n != 1 {
		t.Fatalf("Int(1) = %d", *n)
	}
}
