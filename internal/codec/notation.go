package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	zvalidation "github.com/zenao/go-zenao/internal/validation"
)

// Notation is the structured syntax used inside the header block.
type Notation interface {
	Name() string
	// Marshal renders metadata as header text without delimiters.
	Marshal(metadata any) ([]byte, error)
	// Unmarshal decodes header text into a mapping.
	Unmarshal(data []byte) (map[string]any, error)
}

const (
	NotationJSON = "json"
	NotationYAML = "yaml"
)

// JSON is the strict notation, indented by two spaces. It rejects values
// encoding/json cannot represent: functions, channels, complex numbers,
// NaN and infinities, cycles.
func JSON() Notation { return jsonNotation{} }

// YAML is the permissive notation. Metadata is first rendered through
// encoding/json so struct json tags decide key names, then re-emitted as
// block YAML in the same key order.
func YAML() Notation { return yamlNotation{} }

// NotationByName resolves "json" or "yaml".
func NotationByName(name string) (Notation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NotationJSON:
		return JSON(), nil
	case NotationYAML, "yml":
		return YAML(), nil
	}
	return nil, fmt.Errorf("codec: unknown notation %q", name)
}

type jsonNotation struct{}

func (jsonNotation) Name() string { return NotationJSON }

func (jsonNotation) Marshal(metadata any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(metadata); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (jsonNotation) Unmarshal(data []byte) (map[string]any, error) {
	var out map[string]any
	if err := zvalidation.DecodeJSON(data, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, ErrNotMapping
	}
	return out, nil
}

type yamlNotation struct{}

func (yamlNotation) Name() string { return NotationYAML }

func (yamlNotation) Marshal(metadata any) ([]byte, error) {
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return nil, err
	}
	// JSON is valid YAML: parsing it into a node keeps key order.
	var doc yaml.Node
	if err := yaml.Unmarshal(encoded, &doc); err != nil {
		return nil, err
	}
	blockStyle(&doc)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (yamlNotation) Unmarshal(data []byte) (map[string]any, error) {
	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	if out == nil {
		// yaml decodes an empty or comment-only document to nil; only a
		// literal "{}" style header is a mapping.
		if strings.TrimSpace(stripComments(string(data))) == "" {
			return map[string]any{}, nil
		}
		return nil, ErrNotMapping
	}
	return out, nil
}

// blockStyle clears the flow and quoting styles inherited from JSON so the
// encoder picks plain block YAML, quoting only where a scalar would change
// type.
func blockStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		blockStyle(child)
	}
}

func stripComments(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); strings.HasPrefix(trimmed, "#") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
