package jsonschema

// Schema is a minimal JSON Schema representation used to describe declared
// request shapes. Only the keywords the request grammar can produce are
// modeled.
type Schema struct {
	// Core
	Type        string `json:"type,omitempty"`
	Format      string `json:"format,omitempty"`
	Description string `json:"description,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`
	MinProperties        *int               `json:"minProperties,omitempty"`

	// Array
	Items *Schema `json:"items,omitempty"`
}

// Object returns a closed object schema over props.
func Object(props map[string]*Schema) *Schema {
	return &Schema{Type: "object", Properties: props, AdditionalProperties: false}
}

// ArrayOf returns an array schema with the given item schema.
func ArrayOf(items *Schema) *Schema {
	return &Schema{Type: "array", Items: items}
}

// Int returns a pointer to n, for the optional numeric keywords.
func Int(n int) *int { return &n }
