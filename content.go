package zenao

import (
	"github.com/zenao/go-zenao/internal/codec"
)

// Codec encodes and decodes structured content strings.
type Codec = codec.Codec

type (
	CodecOption  = codec.Option
	DecodeOption = codec.DecodeOption
	Header       = codec.Header
	Report       = codec.Report
	Notation     = codec.Notation
	HeaderParser = codec.HeaderParser

	SerializationError  = codec.SerializationError
	HeaderError         = codec.HeaderError
	JSONSchemaValidator = codec.JSONSchemaValidator
)

// Schema validates a decoded header and produces T.
type Schema[T any] = codec.Schema[T]

const (
	DefaultBodyField = codec.DefaultBodyField
	NotationJSON     = codec.NotationJSON
	NotationYAML     = codec.NotationYAML
)

var (
	NewCodec                     = codec.New
	WithNotation                 = codec.WithNotation
	WithParsers                  = codec.WithParsers
	WithLegacyFormats            = codec.WithLegacyFormats
	WithDefaultBodyField         = codec.WithDefaultBodyField
	WithRawBodyOnMalformedHeader = codec.WithRawBodyOnMalformedHeader
	WithBodyField                = codec.WithBodyField
	WithRawBodyFallback          = codec.WithRawBodyFallback
	JSONNotation                 = codec.JSON
	YAMLNotation                 = codec.YAML
	NotationByName               = codec.NotationByName
	JSONSchema                   = codec.JSONSchema
	MustJSONSchema               = codec.MustJSONSchema
)

// Decode splits serialized, validates the header against schema and returns
// the typed value or a fallback. It never fails.
func Decode[T any](c *Codec, serialized string, schema Schema[T], opts ...DecodeOption) T {
	return codec.Decode(c, serialized, schema, opts...)
}

// DecodeWithReport is Decode plus a description of how the input was read.
func DecodeWithReport[T any](c *Codec, serialized string, schema Schema[T], opts ...DecodeOption) (T, Report) {
	return codec.DecodeWithReport(c, serialized, schema, opts...)
}

// WithDefault supplies the value returned when validation fails.
func WithDefault[T any](value T) DecodeOption {
	return codec.WithDefault(value)
}

// StructSchema validates headers by decoding them into T.
func StructSchema[T any]() *codec.StructValidator[T] {
	return codec.StructSchema[T]()
}

// TypedJSONSchema validates with schema and decodes the result into T.
func TypedJSONSchema[T any](schema *JSONSchemaValidator) Schema[T] {
	return codec.TypedJSONSchema[T](schema)
}

// Empty builds the fallback value for schema.
func Empty[T any](schema Schema[T], body, bodyField string) T {
	return codec.Empty(schema, body, bodyField)
}
