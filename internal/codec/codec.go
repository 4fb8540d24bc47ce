package codec

import (
	"errors"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/zenao/go-zenao/internal/logging"
	"github.com/zenao/go-zenao/pkg/interfaces"
)

// DefaultBodyField names the body in decoded values unless the call site or
// the schema picks another name.
const DefaultBodyField = "content"

// Codec holds the writer notation and the parser chain. A Codec is immutable
// after New and safe for concurrent use.
type Codec struct {
	writer          Notation
	parsers         []HeaderParser
	bodyField       string
	rawBodyFallback bool
	logger          interfaces.Logger
}

// Option configures a Codec.
type Option func(*Codec)

// WithNotation selects the notation Encode writes. The parser chain is not
// changed: JSON and YAML headers are both read by the default chain.
func WithNotation(n Notation) Option {
	return func(c *Codec) {
		if n != nil {
			c.writer = n
		}
	}
}

// WithParsers replaces the parser chain. Parsers are tried in order and the
// first one that reads a header wins.
func WithParsers(parsers ...HeaderParser) Option {
	return func(c *Codec) {
		if len(parsers) > 0 {
			c.parsers = append([]HeaderParser(nil), parsers...)
		}
	}
}

// WithLegacyFormats appends an adrg/frontmatter parser for formats to the
// end of the chain.
func WithLegacyFormats(formats ...*frontmatter.Format) Option {
	return func(c *Codec) {
		if len(formats) > 0 {
			c.parsers = append(c.parsers, LegacyParser(formats...))
		}
	}
}

// WithDefaultBodyField changes the codec wide body field name.
func WithDefaultBodyField(name string) Option {
	return func(c *Codec) {
		if name = strings.TrimSpace(name); name != "" {
			c.bodyField = name
		}
	}
}

// WithRawBodyOnMalformedHeader keeps the raw input as body when no parser can
// read the header, instead of discarding it.
func WithRawBodyOnMalformedHeader(enabled bool) Option {
	return func(c *Codec) {
		c.rawBodyFallback = enabled
	}
}

// WithLogger sets the logger used to report decode fallbacks.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Codec) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// DefaultParsers is the chain used by New: strict JSON, then YAML, then the
// default legacy formats.
func DefaultParsers() []HeaderParser {
	return []HeaderParser{
		DelimitedParser(JSON()),
		DelimitedParser(YAML()),
		LegacyParser(),
	}
}

// New builds a codec writing JSON headers and reading with DefaultParsers.
func New(opts ...Option) *Codec {
	c := &Codec{
		writer:    JSON(),
		parsers:   DefaultParsers(),
		bodyField: DefaultBodyField,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Notation returns the notation Encode writes.
func (c *Codec) Notation() Notation {
	return c.writer
}

// BodyField returns the codec wide body field name.
func (c *Codec) BodyField() string {
	return c.bodyField
}

// Report describes how a Split or Decode call resolved its input.
type Report struct {
	// Parser names the chain entry that read the header. Empty when the input
	// had no header or the header was unreadable.
	Parser string
	// Malformed is set when a header block was present but no parser could
	// read it.
	Malformed bool
	// Fallback is set when Decode returned a default or empty fallback value.
	Fallback bool
	// Err holds the last parse or validation error, for diagnostics only.
	Err error
}

// Split separates serialized into header and body. It never fails: input
// without a header yields an empty header and the whole input as body, and an
// unreadable header yields an empty header and an empty body (or the raw
// input with WithRawBodyOnMalformedHeader).
func (c *Codec) Split(serialized string) (Header, string, Report) {
	var report Report
	for _, parser := range c.parsers {
		header, body, err := parser.Parse(serialized)
		if err == nil {
			report.Parser = parser.Name()
			report.Malformed = false
			report.Err = nil
			return header, body, report
		}
		if errors.Is(err, ErrNoHeader) {
			continue
		}
		report.Malformed = true
		report.Err = &HeaderError{Parser: parser.Name(), Err: err}
	}

	if !report.Malformed {
		return Header{}, serialized, report
	}
	c.logger.Warn("codec.header.malformed", "error", report.Err, "raw_body", c.rawBodyFallback)
	if c.rawBodyFallback {
		return Header{}, serialized, report
	}
	return Header{}, "", report
}
