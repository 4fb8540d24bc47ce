package codec

import (
	"fmt"
	"maps"
	"strings"
)

// DecodeOption tunes a single Decode call.
type DecodeOption func(*decodeConfig)

type decodeConfig struct {
	def       any
	hasDef    bool
	bodyField string
	rawBody   *bool
}

// WithDefault returns value instead of the empty fallback when validation
// fails. value must have the type Decode is instantiated with; values of any
// other type are ignored.
func WithDefault[T any](value T) DecodeOption {
	return func(cfg *decodeConfig) {
		cfg.def = value
		cfg.hasDef = true
	}
}

// WithBodyField names the body field for this call, overriding the schema
// and the codec default.
func WithBodyField(name string) DecodeOption {
	return func(cfg *decodeConfig) {
		if name = strings.TrimSpace(name); name != "" {
			cfg.bodyField = name
		}
	}
}

// WithRawBodyFallback overrides WithRawBodyOnMalformedHeader for this call.
func WithRawBodyFallback(enabled bool) DecodeOption {
	return func(cfg *decodeConfig) {
		cfg.rawBody = &enabled
	}
}

// Decode splits serialized, merges the body into the header under the body
// field and validates the result with schema. It always returns a usable
// value: when validation fails it returns the WithDefault value or Empty.
func Decode[T any](c *Codec, serialized string, schema Schema[T], opts ...DecodeOption) T {
	value, _ := DecodeWithReport(c, serialized, schema, opts...)
	return value
}

// DecodeWithReport is Decode plus a Report of how the input was resolved.
func DecodeWithReport[T any](c *Codec, serialized string, schema Schema[T], opts ...DecodeOption) (T, Report) {
	if c == nil {
		c = New()
	}
	cfg := decodeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	bodyField := resolveBodyField(c, schema, cfg.bodyField)

	header, body, report := c.Split(serialized)
	if report.Malformed && cfg.rawBody != nil {
		body = ""
		if *cfg.rawBody {
			body = serialized
		}
	}

	input := make(map[string]any, len(header)+1)
	maps.Copy(input, header)
	input[bodyField] = body

	value, err := validate(schema, input)
	if err == nil {
		return value, report
	}

	report.Fallback = true
	report.Err = err
	c.logger.Debug("codec.decode.fallback", "body_field", bodyField, "error", err, "default", cfg.hasDef)

	if cfg.hasDef {
		if def, ok := cfg.def.(T); ok {
			return def, report
		}
		c.logger.Warn("codec.decode.default_type_mismatch", "default_type", fmt.Sprintf("%T", cfg.def))
	}
	return Empty(schema, body, bodyField), report
}

func resolveBodyField[T any](c *Codec, schema Schema[T], override string) string {
	if override != "" {
		return override
	}
	if named, ok := schema.(BodyFielder); ok {
		if name := strings.TrimSpace(named.BodyField()); name != "" {
			return name
		}
	}
	return c.bodyField
}

// validate runs schema, turning a panicking schema into an error so Decode
// stays total.
func validate[T any](schema Schema[T], input map[string]any) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			value = zero
			err = fmt.Errorf("codec: schema panicked: %v", r)
		}
	}()
	if schema == nil {
		return value, fmt.Errorf("codec: nil schema")
	}
	return schema.Validate(input)
}
