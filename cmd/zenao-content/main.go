package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/zenao/go-zenao"
)

var moduleBuilder = buildModule

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Fatalf("zenao-content: %v", err)
	}
}

const usage = `usage: zenao-content <encode|decode|render> [flags]

  encode  wrap a markdown body and JSON metadata into a structured string
  decode  split a structured string and print header and body as JSON
  render  render the body of a structured string to HTML`

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	switch args[0] {
	case "encode":
		return runEncode(args[1:], stdin, stdout)
	case "decode":
		return runDecode(args[1:], stdin, stdout)
	case "render":
		return runRender(args[1:], stdin, stdout)
	case "-h", "--help", "help":
		fmt.Fprintln(stdout, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func buildModule(configPath string) (*zenao.Module, error) {
	cfg, err := zenao.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return zenao.New(cfg)
}

func runEncode(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a YAML, JSON or TOML config file")
	input := fs.String("in", "-", "Markdown body file, - for stdin")
	meta := fs.String("meta", "{}", "Metadata as a JSON object")
	metaFile := fs.String("meta-file", "", "File holding the metadata JSON object (overrides -meta)")
	notation := fs.String("notation", "", "Header notation: json or yaml (defaults to config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(*configPath)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	body, err := readInput(*input, stdin)
	if err != nil {
		return err
	}

	rawMeta := []byte(*meta)
	if *metaFile != "" {
		if rawMeta, err = os.ReadFile(*metaFile); err != nil {
			return fmt.Errorf("read metadata: %w", err)
		}
	}
	metadata, err := parseMetadata(rawMeta)
	if err != nil {
		return err
	}

	c := module.Codec()
	if strings.TrimSpace(*notation) != "" {
		n, err := zenao.NotationByName(*notation)
		if err != nil {
			return err
		}
		c = zenao.NewCodec(zenao.WithNotation(n), zenao.WithDefaultBodyField(c.BodyField()))
	}

	encoded, err := c.Encode(body, metadata)
	if err != nil {
		return err
	}
	_, err = io.WriteString(stdout, encoded)
	return err
}

type decodeOutput struct {
	Parser    string         `json:"parser,omitempty"`
	Malformed bool           `json:"malformed,omitempty"`
	Fallback  bool           `json:"fallback,omitempty"`
	Error     string         `json:"error,omitempty"`
	Header    map[string]any `json:"header"`
	Body      string         `json:"body"`
}

func runDecode(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a YAML, JSON or TOML config file")
	input := fs.String("in", "-", "Structured content file, - for stdin")
	schemaFile := fs.String("schema", "", "JSON schema file used to validate the header")
	bodyField := fs.String("body-field", "", "Body field name when -schema is set (defaults to config)")
	rawBody := fs.Bool("raw-body", false, "Keep the raw input as body when the header is unreadable")
	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(*configPath)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	serialized, err := readInput(*input, stdin)
	if err != nil {
		return err
	}
	c := module.Codec()

	out := decodeOutput{}
	if *schemaFile == "" {
		header, body, report := c.Split(serialized)
		if report.Malformed && *rawBody {
			body = serialized
		}
		out.Header, out.Body = header, body
		fillReport(&out, report)
	} else {
		schema, err := loadSchema(*schemaFile)
		if err != nil {
			return err
		}
		field := *bodyField
		if field == "" {
			field = c.BodyField()
		}
		value, report := zenao.DecodeWithReport[map[string]any](c, serialized, schema,
			zenao.WithBodyField(field),
			zenao.WithRawBodyFallback(*rawBody),
		)
		body, _ := value[field].(string)
		delete(value, field)
		out.Header, out.Body = value, body
		fillReport(&out, report)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

func runRender(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a YAML, JSON or TOML config file")
	input := fs.String("in", "-", "Structured content file, - for stdin")
	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(*configPath)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	serialized, err := readInput(*input, stdin)
	if err != nil {
		return err
	}
	_, body, _ := module.Codec().Split(serialized)
	html, err := module.Markdown().Render([]byte(body))
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = stdout.Write(html)
	return err
}

func fillReport(out *decodeOutput, report zenao.Report) {
	out.Parser = report.Parser
	out.Malformed = report.Malformed
	out.Fallback = report.Fallback
	if report.Err != nil {
		out.Error = report.Err.Error()
	}
	if out.Header == nil {
		out.Header = map[string]any{}
	}
}

func readInput(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

func parseMetadata(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var metadata map[string]any
	if err := dec.Decode(&metadata); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	return metadata, nil
}

func loadSchema(path string) (*zenao.JSONSchemaValidator, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return zenao.JSONSchema(doc)
}
