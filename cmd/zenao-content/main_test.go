package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zenao/go-zenao"
)

func useDefaultModule(t *testing.T) {
	t.Helper()
	original := moduleBuilder
	moduleBuilder = func(string) (*zenao.Module, error) {
		return zenao.New(zenao.DefaultConfig())
	}
	t.Cleanup(func() { moduleBuilder = original })
}

func TestRunEncodeFromStdin(t *testing.T) {
	useDefaultModule(t)

	var out bytes.Buffer
	err := run([]string{"encode", "-meta", `{"shortBio":"dev"}`}, strings.NewReader("Hello"), &out)
	if err != nil {
		t.Fatalf("run encode: %v", err)
	}
	want := "---\n{\n  \"shortBio\": \"dev\"\n}\n---\nHello"
	if out.String() != want {
		t.Fatalf("unexpected output\nwant: %q\ngot:  %q", want, out.String())
	}
}

func TestRunEncodeYAMLNotation(t *testing.T) {
	useDefaultModule(t)

	var out bytes.Buffer
	err := run([]string{"encode", "-notation", "yaml", "-meta", `{"title":"t"}`}, strings.NewReader("body"), &out)
	if err != nil {
		t.Fatalf("run encode: %v", err)
	}
	if out.String() != "---\ntitle: t\n---\nbody" {
		t.Fatalf("unexpected yaml output %q", out.String())
	}
}

func TestRunEncodeRejectsBadMetadata(t *testing.T) {
	useDefaultModule(t)

	var out bytes.Buffer
	if err := run([]string{"encode", "-meta", `[1,2]`}, strings.NewReader("x"), &out); err == nil {
		t.Fatal("expected error for non-object metadata")
	}
}

func TestRunDecodePrintsHeaderAndBody(t *testing.T) {
	useDefaultModule(t)

	var out bytes.Buffer
	input := "---\n{\"title\": \"Hi\"}\n---\n# Body"
	if err := run([]string{"decode"}, strings.NewReader(input), &out); err != nil {
		t.Fatalf("run decode: %v", err)
	}

	var got decodeOutput
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}
	if got.Parser != zenao.NotationJSON || got.Header["title"] != "Hi" || got.Body != "# Body" {
		t.Fatalf("unexpected decode output %+v", got)
	}
}

func TestRunDecodeWithSchemaFallsBack(t *testing.T) {
	useDefaultModule(t)

	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.json")
	schema := `{"type":"object","properties":{"title":{"type":"string"},"content":{"type":"string"}},"required":["title"]}`
	if err := os.WriteFile(schemaPath, []byte(schema), 0o600); err != nil {
		t.Fatalf("write schema: %v", err)
	}

	var out bytes.Buffer
	input := "---\n{\"title\": 42}\n---\nbody text"
	if err := run([]string{"decode", "-schema", schemaPath}, strings.NewReader(input), &out); err != nil {
		t.Fatalf("run decode: %v", err)
	}

	var got decodeOutput
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if !got.Fallback {
		t.Fatalf("expected fallback, got %+v", got)
	}
	if got.Body != "body text" {
		t.Fatalf("expected body preserved in fallback, got %q", got.Body)
	}
	if got.Header["title"] != "" {
		t.Fatalf("expected empty title in fallback, got %v", got.Header["title"])
	}
}

func TestRunRenderOutputsHTML(t *testing.T) {
	useDefaultModule(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(path, []byte("---\n{}\n---\n**bold**"), 0o600); err != nil {
		t.Fatalf("write input: %v", err)
	}

	var out bytes.Buffer
	if err := run([]string{"render", "-in", path}, strings.NewReader(""), &out); err != nil {
		t.Fatalf("run render: %v", err)
	}
	if !strings.Contains(out.String(), "<strong>bold</strong>") {
		t.Fatalf("expected rendered html, got %q", out.String())
	}
}

func TestRunUnknownCommand(t *testing.T) {
	if err := run([]string{"publish"}, strings.NewReader(""), &bytes.Buffer{}); err == nil {
		t.Fatal("expected unknown command error")
	}
	if err := run(nil, strings.NewReader(""), &bytes.Buffer{}); err == nil {
		t.Fatal("expected usage error")
	}
}
