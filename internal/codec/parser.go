package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/frontmatter"

	"github.com/zenao/go-zenao/internal/validation"
)

// Delimiter opens and closes the header block written by Encode.
const Delimiter = "---"

// Header is the decoded metadata block, in the JSON data model.
type Header map[string]any

// HeaderParser is one attempt in the decode chain. Parse returns
// ErrNoHeader when source does not start with a block it recognises; any
// other error means the block was recognised but could not be read.
type HeaderParser interface {
	Name() string
	Parse(source string) (Header, string, error)
}

// DelimitedParser reads "---" blocks whose content is in notation.
func DelimitedParser(notation Notation) HeaderParser {
	return delimitedParser{delimiter: Delimiter, notation: notation}
}

type delimitedParser struct {
	delimiter string
	notation  Notation
}

func (p delimitedParser) Name() string { return p.notation.Name() }

func (p delimitedParser) Parse(source string) (Header, string, error) {
	text, body, err := splitBlock(source, p.delimiter)
	if err != nil {
		return nil, "", err
	}
	if strings.TrimSpace(text) == "" {
		return Header{}, body, nil
	}
	raw, err := p.notation.Unmarshal([]byte(text))
	if err != nil {
		return nil, "", err
	}
	header, err := normalizeHeader(raw)
	if err != nil {
		return nil, "", err
	}
	return header, body, nil
}

// splitBlock cuts source into the text between the first two delimiter lines
// and everything after the closing line. The body is returned verbatim.
func splitBlock(source, delimiter string) (string, string, error) {
	source = strings.TrimPrefix(source, "\ufeff")

	first, rest, found := strings.Cut(source, "\n")
	if !isDelimiterLine(first, delimiter) {
		return "", "", ErrNoHeader
	}
	if !found {
		return "", "", ErrUnterminatedHeader
	}

	offset := 0
	for offset <= len(rest) {
		line, _, more := strings.Cut(rest[offset:], "\n")
		if isDelimiterLine(line, delimiter) {
			text := rest[:offset]
			bodyStart := offset + len(line)
			if more {
				bodyStart++
			}
			return strings.TrimSuffix(text, "\n"), rest[bodyStart:], nil
		}
		if !more {
			break
		}
		offset += len(line) + 1
	}
	return "", "", ErrUnterminatedHeader
}

func isDelimiterLine(line, delimiter string) bool {
	return strings.TrimRight(line, " \t\r") == delimiter
}

// hasDelimiterLine reports whether text contains a line that would close a
// header block early.
func hasDelimiterLine(text []byte, delimiter string) bool {
	for _, line := range bytes.Split(text, []byte("\n")) {
		if isDelimiterLine(string(line), delimiter) {
			return true
		}
	}
	return false
}

// LegacyParser reads blocks in any of the given adrg/frontmatter formats.
// Without formats it accepts TOML between "+++" lines and JSON between
// ";;;" lines.
func LegacyParser(formats ...*frontmatter.Format) HeaderParser {
	if len(formats) == 0 {
		formats = DefaultLegacyFormats()
	}
	return legacyParser{formats: formats}
}

// DefaultLegacyFormats lists the formats read by LegacyParser by default.
func DefaultLegacyFormats() []*frontmatter.Format {
	return []*frontmatter.Format{
		frontmatter.NewFormat("+++", "+++", toml.Unmarshal),
		frontmatter.NewFormat(";;;", ";;;", json.Unmarshal),
	}
}

type legacyParser struct {
	formats []*frontmatter.Format
}

func (legacyParser) Name() string { return "legacy" }

func (p legacyParser) Parse(source string) (Header, string, error) {
	var raw map[string]any
	body, err := frontmatter.MustParse(strings.NewReader(source), &raw, p.formats...)
	if errors.Is(err, frontmatter.ErrNotFound) {
		return nil, "", ErrNoHeader
	}
	if err != nil {
		return nil, "", err
	}
	if raw == nil {
		raw = map[string]any{}
	}
	header, err := normalizeHeader(raw)
	if err != nil {
		return nil, "", err
	}
	return header, string(body), nil
}

// normalizeHeader converts decoder specific values (int, time.Time,
// map[string]interface{} from yaml or toml) into the JSON data model so
// schemas see the same shapes whichever parser produced the header.
func normalizeHeader(raw map[string]any) (Header, error) {
	normalized, err := validation.Normalize(raw)
	if err != nil {
		return nil, err
	}
	if normalized == nil {
		normalized = map[string]any{}
	}
	return Header(normalized), nil
}
