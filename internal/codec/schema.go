package codec

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	zvalidation "github.com/zenao/go-zenao/internal/validation"
)

// Schema validates and coerces the combined {body field, header...} object.
type Schema[T any] interface {
	Validate(input map[string]any) (T, error)
}

// SchemaFunc adapts a function to Schema.
type SchemaFunc[T any] func(input map[string]any) (T, error)

func (f SchemaFunc[T]) Validate(input map[string]any) (T, error) {
	return f(input)
}

// BodyFielder is implemented by schemas that name their body field.
type BodyFielder interface {
	BodyField() string
}

// Fallbacker is implemented by schemas that build their own empty value.
type Fallbacker[T any] interface {
	Fallback(body, bodyField string) T
}

// StructValidator decodes the input into T through encoding/json and then
// runs ozzo-validation when T implements validation.Validatable.
//
// Exported fields whose json tag has no omitempty are required: the key must
// be present in the input, as a zero value may still be meaningful (an empty
// short bio) while a missing key means the content predates the field.
type StructValidator[T any] struct {
	bodyField string
}

// StructSchema returns a StructValidator for T.
func StructSchema[T any]() *StructValidator[T] {
	return &StructValidator[T]{}
}

// WithBody returns a copy of the validator using name as body field.
func (s *StructValidator[T]) WithBody(name string) *StructValidator[T] {
	out := *s
	out.bodyField = strings.TrimSpace(name)
	return &out
}

// BodyField implements BodyFielder.
func (s *StructValidator[T]) BodyField() string {
	return s.bodyField
}

func (s *StructValidator[T]) Validate(input map[string]any) (T, error) {
	var out T
	if err := requirePresent(reflect.TypeOf(out), input); err != nil {
		return out, err
	}
	if err := decodeInto(input, &out); err != nil {
		return out, err
	}
	fillCollections(reflect.ValueOf(&out).Elem())
	if err := validateValue(&out); err != nil {
		return out, err
	}
	return out, nil
}

// JSONSchemaValidator validates against a compiled JSON schema and returns
// the input, with schema defaults applied, as a map.
type JSONSchemaValidator struct {
	validator *zvalidation.Validator
	bodyField string
}

// JSONSchema compiles schema. Both full JSON schemas and the
// {"fields": [...]} shorthand are accepted.
func JSONSchema(schema map[string]any) (*JSONSchemaValidator, error) {
	v, err := zvalidation.Compile(schema)
	if err != nil {
		return nil, err
	}
	return &JSONSchemaValidator{validator: v}, nil
}

// MustJSONSchema is JSONSchema for package level schemas.
func MustJSONSchema(schema map[string]any) *JSONSchemaValidator {
	s, err := JSONSchema(schema)
	if err != nil {
		panic(err)
	}
	return s
}

// WithBody returns a copy of the validator using name as body field.
func (s *JSONSchemaValidator) WithBody(name string) *JSONSchemaValidator {
	out := *s
	out.bodyField = strings.TrimSpace(name)
	return &out
}

// BodyField implements BodyFielder.
func (s *JSONSchemaValidator) BodyField() string {
	return s.bodyField
}

func (s *JSONSchemaValidator) Validate(input map[string]any) (map[string]any, error) {
	payload := s.validator.ApplyDefaults(input)
	if err := s.validator.Validate(payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Fallback sets every declared property to the empty value of its type and
// the body field to body.
func (s *JSONSchemaValidator) Fallback(body, bodyField string) map[string]any {
	out := map[string]any{}
	for _, prop := range s.validator.Properties() {
		out[prop.Name] = emptyJSONValue(prop.Type)
	}
	out[bodyField] = body
	return out
}

// TypedJSONSchema validates with a JSON schema and then decodes the
// validated map into T.
func TypedJSONSchema[T any](schema *JSONSchemaValidator) Schema[T] {
	return typedJSONSchema[T]{schema: schema}
}

type typedJSONSchema[T any] struct {
	schema *JSONSchemaValidator
}

func (s typedJSONSchema[T]) BodyField() string { return s.schema.BodyField() }

func (s typedJSONSchema[T]) Validate(input map[string]any) (T, error) {
	var out T
	payload, err := s.schema.Validate(input)
	if err != nil {
		return out, err
	}
	if err := decodeInto(payload, &out); err != nil {
		return out, err
	}
	fillCollections(reflect.ValueOf(&out).Elem())
	if err := validateValue(&out); err != nil {
		return out, err
	}
	return out, nil
}

func emptyJSONValue(jsonType string) any {
	switch jsonType {
	case "string":
		return ""
	case "array":
		return []any{}
	case "object":
		return map[string]any{}
	case "number", "integer":
		return json.Number("0")
	case "boolean":
		return false
	}
	return nil
}

func decodeInto(input map[string]any, out any) error {
	encoded, err := json.Marshal(input)
	if err != nil {
		return err
	}
	if err := zvalidation.DecodeJSON(encoded, out); err != nil {
		return fmt.Errorf("codec: decode into %T: %w", out, err)
	}
	return nil
}

func validateValue(ptr any) error {
	if v, ok := ptr.(validation.Validatable); ok {
		return v.Validate()
	}
	return nil
}

// requirePresent checks that every required field of a struct type has a
// key in input.
func requirePresent(t reflect.Type, input map[string]any) error {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	missing := validation.Errors{}
	for _, field := range requiredFields(t) {
		if _, ok := input[field]; !ok {
			missing[field] = validation.ErrRequired
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return missing
}

func requiredFields(t reflect.Type) []string {
	var out []string
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() && !embeddedStruct(sf) {
			continue
		}
		name, opts, skip := jsonField(sf)
		if skip {
			continue
		}
		if sf.Anonymous && name == "" && sf.Type.Kind() == reflect.Struct {
			out = append(out, requiredFields(sf.Type)...)
			continue
		}
		if name == "" {
			name = sf.Name
		}
		if strings.Contains(opts, "omitempty") || strings.Contains(opts, "omitzero") {
			continue
		}
		out = append(out, name)
	}
	return out
}

// jsonField splits a json struct tag into name and options.
func jsonField(sf reflect.StructField) (name, opts string, skip bool) {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return "", "", true
	}
	name, opts, _ = strings.Cut(tag, ",")
	return name, opts, false
}
