package codec

import (
	"fmt"
	"strings"
)

// Encode writes metadata as a header block in the codec notation followed by
// body verbatim. metadata must encode to a mapping; nil writes an empty one.
// Failures are *SerializationError.
func (c *Codec) Encode(body string, metadata any) (string, error) {
	header, err := c.encodeHeader(metadata)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(header) + len(body) + 2*len(Delimiter) + 3)
	b.WriteString(Delimiter)
	b.WriteByte('\n')
	b.Write(header)
	b.WriteByte('\n')
	b.WriteString(Delimiter)
	b.WriteByte('\n')
	b.WriteString(body)
	return b.String(), nil
}

func (c *Codec) encodeHeader(metadata any) (header []byte, err error) {
	name := c.writer.Name()
	defer func() {
		if r := recover(); r != nil {
			header = nil
			err = newSerializationError(name, "encoder panicked", fmt.Errorf("%v", r))
		}
	}()

	if metadata == nil {
		metadata = map[string]any{}
	}

	header, err = c.writer.Marshal(metadata)
	if err != nil {
		return nil, newSerializationError(name, "unsupported value", err)
	}
	if _, err := c.writer.Unmarshal(header); err != nil {
		return nil, newSerializationError(name, "header does not parse back as a mapping", err)
	}
	if hasDelimiterLine(header, Delimiter) {
		return nil, newSerializationError(name, "header contains a delimiter line", nil)
	}
	return header, nil
}
