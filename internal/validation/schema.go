package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrSchemaValidation = errors.New("schema validation failed")
)

// ValidationIssue is one failed keyword, located by JSON pointer.
type ValidationIssue struct {
	Location string
	Message  string
}

// PayloadValidationError lists every leaf failure reported by the schema.
type PayloadValidationError struct {
	Issues []ValidationIssue
	Cause  error
}

func (e *PayloadValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrSchemaValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := "#" + strings.TrimPrefix(strings.TrimSpace(issue.Location), "#")
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, location+": "+issue.Message)
	}
	return strings.Join(parts, "; ")
}

func (e *PayloadValidationError) Unwrap() error {
	return ErrSchemaValidation
}

// Issues extracts validation issues from err.
func Issues(err error) []ValidationIssue {
	if err == nil {
		return nil
	}
	var payloadErr *PayloadValidationError
	if errors.As(err, &payloadErr) {
		return payloadErr.Issues
	}
	var schemaErr *jsonschema.ValidationError
	if errors.As(err, &schemaErr) {
		return collectIssues(schemaErr)
	}
	return []ValidationIssue{{Message: err.Error()}}
}

// Validator is a compiled JSON schema. It is safe for concurrent use.
type Validator struct {
	source   map[string]any
	compiled *jsonschema.Schema
}

// Compile normalizes and compiles schema. Both full JSON schemas and the
// {"fields": [...]} shorthand are accepted.
func Compile(schema map[string]any) (*Validator, error) {
	normalized := NormalizeSchema(schema)
	if normalized == nil {
		normalized = map[string]any{"type": "object"}
	}
	encoded, err := json.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", bytes.NewReader(encoded)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return &Validator{source: normalized, compiled: compiled}, nil
}

// MustCompile is Compile for package level schemas.
func MustCompile(schema map[string]any) *Validator {
	v, err := Compile(schema)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks payload. Payload values must be JSON shaped (json.Number or
// float64, string, bool, nil, []any, map[string]any); see Normalize.
func (v *Validator) Validate(payload map[string]any) error {
	if payload == nil {
		payload = map[string]any{}
	}
	if err := v.compiled.Validate(payload); err != nil {
		return &PayloadValidationError{Issues: Issues(err), Cause: err}
	}
	return nil
}

// ApplyDefaults returns a copy of payload where every missing top level
// property that declares a "default" receives it.
func (v *Validator) ApplyDefaults(payload map[string]any) map[string]any {
	out := cloneMap(payload)
	if out == nil {
		out = map[string]any{}
	}
	properties, _ := v.source["properties"].(map[string]any)
	for name, raw := range properties {
		prop, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if _, present := out[name]; present {
			continue
		}
		if def, ok := prop["default"]; ok {
			out[name] = cloneValue(def)
		}
	}
	return out
}

// Property describes a top level schema property.
type Property struct {
	Name     string
	Type     string
	Required bool
}

// Properties lists top level properties sorted by name. Type is the first
// declared JSON type, empty when the property is untyped.
func (v *Validator) Properties() []Property {
	properties, _ := v.source["properties"].(map[string]any)
	required := map[string]bool{}
	for _, name := range stringList(v.source["required"]) {
		required[name] = true
	}

	out := make([]Property, 0, len(properties))
	for name, raw := range properties {
		prop, _ := raw.(map[string]any)
		out = append(out, Property{Name: name, Type: firstType(prop["type"]), Required: required[name]})
	}
	slices.SortFunc(out, func(a, b Property) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Normalize converts an arbitrary Go value into the JSON data model the
// validator expects, by a JSON round trip. Numbers come back as json.Number
// so integers beyond 2^53 keep their exact value.
func Normalize(value map[string]any) (map[string]any, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := DecodeJSON(encoded, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeJSON unmarshals a single JSON document into v, keeping numbers as
// json.Number. Trailing data after the document is an error.
func DecodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected data after JSON document")
	}
	return nil
}

// NormalizeSchema turns schema into a JSON schema. Inputs that already look
// like JSON schemas are cloned; {"fields": [...]} definitions are expanded.
func NormalizeSchema(schema map[string]any) map[string]any {
	if len(schema) == 0 {
		return nil
	}
	if isJSONSchema(schema) {
		return cloneMap(schema)
	}
	properties, required := normalizeFields(schema["fields"])
	if len(properties) == 0 {
		return nil
	}
	normalized := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if allowed, ok := schema["additionalProperties"].(bool); ok {
		normalized["additionalProperties"] = allowed
	}
	if len(required) > 0 {
		normalized["required"] = required
	}
	return normalized
}

func isJSONSchema(schema map[string]any) bool {
	for _, key := range []string{"$schema", "type", "properties", "oneOf", "anyOf", "allOf"} {
		if _, ok := schema[key]; ok {
			return true
		}
	}
	return false
}

func normalizeFields(fields any) (map[string]any, []any) {
	properties := map[string]any{}
	var required []any

	add := func(field map[string]any) {
		name, _ := field["name"].(string)
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		switch {
		case field["schema"] != nil:
			sub, _ := field["schema"].(map[string]any)
			properties[name] = cloneMap(sub)
		case jsonType(field["type"]) != "":
			prop := map[string]any{"type": jsonType(field["type"])}
			if def, ok := field["default"]; ok {
				prop["default"] = def
			}
			properties[name] = prop
		default:
			properties[name] = map[string]any{}
		}
		if flag, _ := field["required"].(bool); flag {
			required = append(required, name)
		}
	}

	switch typed := fields.(type) {
	case []any:
		for _, entry := range typed {
			switch e := entry.(type) {
			case map[string]any:
				add(e)
			case string:
				add(map[string]any{"name": e})
			}
		}
	case []map[string]any:
		for _, entry := range typed {
			add(entry)
		}
	}
	return properties, required
}

func jsonType(value any) string {
	s, _ := value.(string)
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case "string", "number", "integer", "boolean", "object", "array", "null":
		return s
	}
	return ""
}

func firstType(value any) string {
	switch typed := value.(type) {
	case string:
		return jsonType(typed)
	case []any:
		for _, entry := range typed {
			if t := jsonType(entry); t != "" && t != "null" {
				return t
			}
		}
	case []string:
		for _, entry := range typed {
			if t := jsonType(entry); t != "" && t != "null" {
				return t
			}
		}
	}
	return ""
}

func stringList(value any) []string {
	switch typed := value.(type) {
	case []string:
		return typed
	case []any:
		out := make([]string, 0, len(typed))
		for _, entry := range typed {
			if s, ok := entry.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func collectIssues(root *jsonschema.ValidationError) []ValidationIssue {
	var issues []ValidationIssue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ValidationIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(root)
	return issues
}

func cloneMap(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, entry := range typed {
			out[i] = cloneValue(entry)
		}
		return out
	default:
		return value
	}
}
