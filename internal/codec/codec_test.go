package codec_test

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/go-cmp/cmp"

	"github.com/zenao/go-zenao/internal/codec"
)

type link struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

type profileMeta struct {
	ShortBio         string `json:"shortBio"`
	SocialMediaLinks []link `json:"socialMediaLinks"`
}

type profile struct {
	Bio              string `json:"bio"`
	ShortBio         string `json:"shortBio"`
	SocialMediaLinks []link `json:"socialMediaLinks"`
}

func (p profile) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ShortBio, validation.Length(0, 140)),
	)
}

type note struct {
	Content string   `json:"content"`
	Title   string   `json:"title"`
	Tags    []string `json:"tags,omitempty"`
}

var profileSchema = codec.StructSchema[profile]().WithBody("bio")

func TestEncodeDecodeProfile(t *testing.T) {
	c := codec.New()

	serialized, err := c.Encode("Hello world", profileMeta{ShortBio: "dev", SocialMediaLinks: []link{}})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, report := codec.DecodeWithReport(c, serialized, profileSchema)
	want := profile{Bio: "Hello world", ShortBio: "dev", SocialMediaLinks: []link{}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decoded profile mismatch (-want +got):\n%s", diff)
	}
	if report.Parser != codec.NotationJSON || report.Fallback || report.Malformed {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestEncodeWritesDelimitedJSONHeader(t *testing.T) {
	c := codec.New()

	got, err := c.Encode("# Title\n", profileMeta{ShortBio: "a <b>", SocialMediaLinks: []link{}})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := "---\n{\n  \"shortBio\": \"a <b>\",\n  \"socialMediaLinks\": []\n}\n---\n# Title\n"
	if got != want {
		t.Fatalf("unexpected output\nwant: %q\ngot:  %q", want, got)
	}
}

func TestEncodeNilMetadataWritesEmptyHeader(t *testing.T) {
	got, err := codec.New().Encode("body", nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if got != "---\n{}\n---\nbody" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestDecodeWithoutHeaderReturnsDefault(t *testing.T) {
	def := profile{Bio: "default", ShortBio: "none", SocialMediaLinks: []link{}}

	got, report := codec.DecodeWithReport(codec.New(), "not a valid header\n---\nBody text", profileSchema, codec.WithDefault(def))

	if diff := cmp.Diff(def, got); diff != "" {
		t.Fatalf("expected default (-want +got):\n%s", diff)
	}
	if !report.Fallback || report.Malformed {
		t.Fatalf("expected validation fallback without malformed header, got %+v", report)
	}
}

func TestDecodeEmptyStringReturnsEmptyFallback(t *testing.T) {
	got := codec.Decode(codec.New(), "", profileSchema)

	want := profile{Bio: "", ShortBio: "", SocialMediaLinks: []link{}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fallback mismatch (-want +got):\n%s", diff)
	}
	if got.SocialMediaLinks == nil {
		t.Fatal("expected non-nil empty links")
	}
}

func TestEncodeRejectsUnrepresentableMetadata(t *testing.T) {
	cyclic := map[string]any{}
	cyclic["self"] = cyclic

	cases := map[string]any{
		"function":   map[string]any{"onClick": func() {}},
		"channel":    map[string]any{"ch": make(chan int)},
		"nan":        map[string]any{"score": math.NaN()},
		"infinity":   map[string]any{"score": math.Inf(1)},
		"cycle":      cyclic,
		"list":       []string{"not", "a", "mapping"},
		"scalar":     "just text",
		"nil struct": (*profileMeta)(nil),
	}

	for name, metadata := range cases {
		for _, notation := range []codec.Notation{codec.JSON(), codec.YAML()} {
			c := codec.New(codec.WithNotation(notation))
			_, err := c.Encode("body", metadata)

			var serr *codec.SerializationError
			if !errors.As(err, &serr) {
				t.Fatalf("%s/%s: expected SerializationError, got %v", name, notation.Name(), err)
			}
			if serr.Notation != notation.Name() {
				t.Fatalf("%s: expected notation %q, got %q", name, notation.Name(), serr.Notation)
			}
			if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
				t.Fatalf("%s/%s: expected validation category, got %v", name, notation.Name(), err)
			}
		}
	}
}

func TestDecodeYAMLHeader(t *testing.T) {
	serialized := "---\nshortBio: dev\nsocialMediaLinks:\n  - platform: github\n    url: https://github.com/zenao\n---\nBody"

	got, report := codec.DecodeWithReport(codec.New(), serialized, profileSchema)

	want := profile{
		Bio:              "Body",
		ShortBio:         "dev",
		SocialMediaLinks: []link{{Platform: "github", URL: "https://github.com/zenao"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("yaml header mismatch (-want +got):\n%s", diff)
	}
	if report.Parser != codec.NotationYAML {
		t.Fatalf("expected yaml parser, got %q", report.Parser)
	}
}

func TestDecodeLegacyTOMLHeader(t *testing.T) {
	serialized := "+++\nshortBio = \"dev\"\nsocialMediaLinks = []\n+++\nLegacy body\n"

	got, report := codec.DecodeWithReport(codec.New(), serialized, profileSchema)

	if report.Parser != "legacy" {
		t.Fatalf("expected legacy parser, got %+v", report)
	}
	if got.ShortBio != "dev" {
		t.Fatalf("expected shortBio from toml header, got %q", got.ShortBio)
	}
	if strings.TrimSpace(got.Bio) != "Legacy body" {
		t.Fatalf("unexpected body %q", got.Bio)
	}
	if strings.Contains(got.Bio, "+++") {
		t.Fatalf("body kept delimiter: %q", got.Bio)
	}
}

func TestDecodeLegacySemicolonJSONHeader(t *testing.T) {
	serialized := ";;;\n{\"title\": \"Old\"}\n;;;\nText"

	got := codec.Decode(codec.New(), serialized, codec.StructSchema[note]())

	if got.Title != "Old" || strings.TrimSpace(got.Content) != "Text" {
		t.Fatalf("unexpected legacy json decode %+v", got)
	}
}

func TestDecodeMalformedHeader(t *testing.T) {
	inputs := []string{
		"---\nshortBio: [oops\n---\nBody",
		"---\n{\"shortBio\": \"dev\"",
		"---",
		"---\n- just\n- a list\n---\nBody",
		"+++\nshortBio = \n+++\nBody",
	}
	for _, input := range inputs {
		got, report := codec.DecodeWithReport(codec.New(), input, profileSchema)
		if !report.Malformed {
			t.Fatalf("%q: expected malformed report, got %+v", input, report)
		}
		want := profile{SocialMediaLinks: []link{}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%q: fallback mismatch (-want +got):\n%s", input, diff)
		}
	}
}

func TestDecodeMalformedHeaderKeepsRawBodyWhenAsked(t *testing.T) {
	input := "---\nshortBio: [oops\n---\nBody"

	perCall := codec.Decode(codec.New(), input, profileSchema, codec.WithRawBodyFallback(true))
	if perCall.Bio != input {
		t.Fatalf("expected raw input as body, got %q", perCall.Bio)
	}

	c := codec.New(codec.WithRawBodyOnMalformedHeader(true))
	if got := codec.Decode(c, input, profileSchema); got.Bio != input {
		t.Fatalf("expected codec option to keep raw body, got %q", got.Bio)
	}
	if got := codec.Decode(c, input, profileSchema, codec.WithRawBodyFallback(false)); got.Bio != "" {
		t.Fatalf("expected per call override to discard body, got %q", got.Bio)
	}
}

func TestDecodeBodyFieldRename(t *testing.T) {
	c := codec.New()
	serialized, err := c.Encode("Same text", map[string]any{"title": "T"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	asNote := codec.Decode(c, serialized, codec.StructSchema[note]())
	type bioNote struct {
		Bio   string `json:"bio"`
		Title string `json:"title"`
	}
	asBio := codec.Decode(c, serialized, codec.StructSchema[bioNote](), codec.WithBodyField("bio"))

	if asNote.Content != "Same text" || asBio.Bio != "Same text" {
		t.Fatalf("body mismatch: content=%q bio=%q", asNote.Content, asBio.Bio)
	}
	if asNote.Title != asBio.Title {
		t.Fatalf("title mismatch: %q vs %q", asNote.Title, asBio.Title)
	}
}

func TestDecodeBodyWinsOverHeaderKey(t *testing.T) {
	serialized := "---\n{\"content\": \"from header\", \"title\": \"T\"}\n---\nfrom body"

	got := codec.Decode(codec.New(), serialized, codec.StructSchema[note]())
	if got.Content != "from body" {
		t.Fatalf("expected body to win, got %q", got.Content)
	}
}

func TestRoundTripLaw(t *testing.T) {
	bodies := []string{
		"",
		"plain",
		"# Heading\n\n- item\n- item\n",
		"\nleading newline",
		"windows\r\nline endings\r\n",
		"emoji 🎉 and accents éàü, 日本語",
		"---\nlooks like a header\n---\n",
		"trailing spaces   ",
	}
	metas := []profileMeta{
		{ShortBio: "", SocialMediaLinks: []link{}},
		{ShortBio: "dev: \"quoted\" & <tags>", SocialMediaLinks: []link{{Platform: "x", URL: "https://x.com/z"}}},
		{ShortBio: "multi\nline\n---\nbio", SocialMediaLinks: []link{}},
	}

	for _, notation := range []codec.Notation{codec.JSON(), codec.YAML()} {
		c := codec.New(codec.WithNotation(notation))
		for _, body := range bodies {
			for _, meta := range metas {
				serialized, err := c.Encode(body, meta)
				if err != nil {
					t.Fatalf("%s: Encode(%q): %v", notation.Name(), body, err)
				}
				got, report := codec.DecodeWithReport(c, serialized, profileSchema)
				want := profile{Bio: body, ShortBio: meta.ShortBio, SocialMediaLinks: meta.SocialMediaLinks}
				if diff := cmp.Diff(want, got); diff != "" {
					t.Fatalf("%s: round trip mismatch for %q (-want +got):\n%s", notation.Name(), serialized, diff)
				}
				if report.Parser != notation.Name() {
					t.Fatalf("%s: header read by %q", notation.Name(), report.Parser)
				}
			}
		}
	}
}

func TestRoundTripKeepsLargeIntegers(t *testing.T) {
	type counter struct {
		Content string `json:"content"`
		Count   int64  `json:"count"`
		Ceiling uint64 `json:"ceiling"`
	}
	meta := map[string]any{"count": int64(9007199254740993), "ceiling": uint64(math.MaxUint64)}

	for _, notation := range []codec.Notation{codec.JSON(), codec.YAML()} {
		c := codec.New(codec.WithNotation(notation))
		serialized, err := c.Encode("body", meta)
		if err != nil {
			t.Fatalf("%s: Encode: %v", notation.Name(), err)
		}
		got, report := codec.DecodeWithReport(c, serialized, codec.StructSchema[counter]())
		if report.Fallback {
			t.Fatalf("%s: unexpected fallback: %v", notation.Name(), report.Err)
		}
		want := counter{Content: "body", Count: 9007199254740993, Ceiling: math.MaxUint64}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%s: large integer mismatch (-want +got):\n%s", notation.Name(), diff)
		}
	}
}

func TestDecodeFallbackIsIdempotent(t *testing.T) {
	c := codec.New()
	fallback := codec.Decode(c, "---\nbroken: [\n---\n", profileSchema)

	serialized, err := c.Encode(fallback.Bio, profileMeta{
		ShortBio:         fallback.ShortBio,
		SocialMediaLinks: fallback.SocialMediaLinks,
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	again := codec.Decode(c, serialized, profileSchema)
	if diff := cmp.Diff(fallback, again); diff != "" {
		t.Fatalf("fallback not stable (-first +second):\n%s", diff)
	}
}

func TestDecodeIsTotal(t *testing.T) {
	inputs := []string{
		"",
		"---\n",
		"---\n---\n",
		"---\n{}\n---",
		"\ufeff---\n{\"shortBio\": \"bom\", \"socialMediaLinks\": []}\n---\nx",
		"+++",
		";;;\n{",
		"{\"shortBio\": \"no delimiters\"}",
		"---\nnull\n---\n",
		"---\n{\"socialMediaLinks\": \"not a list\", \"shortBio\": 3}\n---\n",
		strings.Repeat("-", 10000),
	}
	schemas := []codec.Schema[profile]{
		profileSchema,
		codec.SchemaFunc[profile](func(map[string]any) (profile, error) { panic("boom") }),
		nil,
	}
	for _, input := range inputs {
		for _, schema := range schemas {
			got := codec.Decode(codec.New(), input, schema)
			if got.SocialMediaLinks == nil {
				t.Fatalf("%q: expected non-nil links in %+v", input, got)
			}
		}
	}
}

func TestDecodeBOMPrefixedContent(t *testing.T) {
	got := codec.Decode(codec.New(), "\ufeff---\n{\"shortBio\": \"bom\", \"socialMediaLinks\": []}\n---\nx", profileSchema)
	if got.ShortBio != "bom" || got.Bio != "x" {
		t.Fatalf("unexpected decode %+v", got)
	}
}

func TestDecodeSchemaValidationFailureFallsBack(t *testing.T) {
	serialized := "---\n{\"shortBio\": \"" + strings.Repeat("a", 141) + "\", \"socialMediaLinks\": []}\n---\nbody"

	got, report := codec.DecodeWithReport(codec.New(), serialized, profileSchema)

	if !report.Fallback {
		t.Fatalf("expected fallback, got %+v", report)
	}
	want := profile{Bio: "body", SocialMediaLinks: []link{}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fallback mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeIgnoresDefaultOfOtherType(t *testing.T) {
	got := codec.Decode(codec.New(), "", profileSchema, codec.WithDefault("wrong type"))
	if got.SocialMediaLinks == nil || got.Bio != "" {
		t.Fatalf("expected empty fallback, got %+v", got)
	}
}

func TestJSONSchemaDecodeAndFallback(t *testing.T) {
	schema := codec.MustJSONSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": map[string]any{"type": "string"},
			"summary":     map[string]any{"type": "string"},
			"tags":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "default": []any{}},
			"capacity":    map[string]any{"type": "integer"},
		},
		"required": []any{"description", "summary"},
	}).WithBody("description")

	c := codec.New()
	serialized, err := c.Encode("Meetup", map[string]any{"summary": "monthly", "capacity": 40})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got := codec.Decode(c, serialized, codec.Schema[map[string]any](schema))
	want := map[string]any{"description": "Meetup", "summary": "monthly", "capacity": json.Number("40"), "tags": []any{}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("json schema decode mismatch (-want +got):\n%s", diff)
	}

	fallback := codec.Decode(c, "no header", codec.Schema[map[string]any](schema))
	wantFallback := map[string]any{"description": "no header", "summary": "", "capacity": json.Number("0"), "tags": []any{}}
	if diff := cmp.Diff(wantFallback, fallback); diff != "" {
		t.Fatalf("json schema fallback mismatch (-want +got):\n%s", diff)
	}
}

func TestTypedJSONSchema(t *testing.T) {
	type event struct {
		Description string   `json:"description"`
		Summary     string   `json:"summary"`
		Tags        []string `json:"tags"`
	}
	schema := codec.TypedJSONSchema[event](codec.MustJSONSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{"type": "string", "maxLength": 10},
		},
	}).WithBody("description"))

	c := codec.New()
	ok := codec.Decode(c, "---\n{\"summary\": \"short\"}\n---\nBody", schema)
	if ok.Description != "Body" || ok.Summary != "short" || ok.Tags == nil {
		t.Fatalf("unexpected decode %+v", ok)
	}

	rejected, report := codec.DecodeWithReport(c, "---\n{\"summary\": \"far too long\"}\n---\nBody", schema)
	if !report.Fallback || rejected.Summary != "" || rejected.Description != "Body" {
		t.Fatalf("expected fallback, got %+v (%+v)", rejected, report)
	}
}

func TestCustomParserChain(t *testing.T) {
	c := codec.New(codec.WithParsers(codec.DelimitedParser(codec.JSON())))

	_, report := codec.DecodeWithReport(c, "---\ntitle: yaml only\n---\nx", codec.StructSchema[note]())
	if !report.Malformed {
		t.Fatalf("expected yaml header to be malformed for json-only chain, got %+v", report)
	}
}

func TestSplit(t *testing.T) {
	header, body, report := codec.New().Split("---\n{\"a\": [1, {\"b\": true}]}\n---\nrest\n---\nmore")

	if report.Parser != codec.NotationJSON {
		t.Fatalf("unexpected parser %q", report.Parser)
	}
	want := codec.Header{"a": []any{1.0, map[string]any{"b": true}}}
	if diff := cmp.Diff(want, header); diff != "" {
		t.Fatalf("header mismatch (-want +got):\n%s", diff)
	}
	if body != "rest\n---\nmore" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestDecodeConcurrentUse(t *testing.T) {
	c := codec.New()
	serialized, err := c.Encode("shared", profileMeta{ShortBio: "dev", SocialMediaLinks: []link{}})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := codec.Decode(c, serialized, profileSchema); got.Bio != "shared" {
				errs <- got.Bio
			}
		}()
	}
	wg.Wait()
	close(errs)
	for bad := range errs {
		t.Fatalf("concurrent decode returned %q", bad)
	}
}

func TestNotationByName(t *testing.T) {
	for name, want := range map[string]string{"": "json", "JSON": "json", "yml": "yaml", "yaml": "yaml"} {
		n, err := codec.NotationByName(name)
		if err != nil || n.Name() != want {
			t.Fatalf("NotationByName(%q) = %v, %v", name, n, err)
		}
	}
	if _, err := codec.NotationByName("toml"); err == nil {
		t.Fatal("expected unknown notation error")
	}
}

func TestNilCodecDecodes(t *testing.T) {
	got := codec.Decode(nil, "---\n{\"title\": \"x\"}\n---\nbody", codec.StructSchema[note]())
	if got.Title != "x" || got.Content != "body" {
		t.Fatalf("unexpected decode %+v", got)
	}
}
