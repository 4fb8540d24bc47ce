package markdown

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/zenao/go-zenao/pkg/interfaces"
)

// GoldmarkRenderer implements interfaces.MarkdownRenderer. Engines are built
// once per distinct option set and reused; goldmark engines are safe for
// concurrent Convert calls.
type GoldmarkRenderer struct {
	defaults interfaces.ParseOptions
	engines  sync.Map // optionsKey -> goldmark.Markdown
}

// NewGoldmarkRenderer constructs a renderer. User descriptions are untrusted,
// so callers usually keep SafeMode on in defaults.
func NewGoldmarkRenderer(defaults interfaces.ParseOptions) *GoldmarkRenderer {
	return &GoldmarkRenderer{defaults: defaults}
}

// DefaultOptions is GFM with linkify and task lists, raw HTML suppressed.
func DefaultOptions() interfaces.ParseOptions {
	return interfaces.ParseOptions{SafeMode: true}
}

// Render renders markdown with the renderer defaults.
func (r *GoldmarkRenderer) Render(markdown []byte) ([]byte, error) {
	return r.RenderWithOptions(markdown, r.defaults)
}

// RenderWithOptions renders markdown with opts instead of the defaults.
func (r *GoldmarkRenderer) RenderWithOptions(markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	engine := r.engine(opts)
	var buf bytes.Buffer
	if err := engine.Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *GoldmarkRenderer) engine(opts interfaces.ParseOptions) goldmark.Markdown {
	key := optionsKey(opts)
	if cached, ok := r.engines.Load(key); ok {
		return cached.(goldmark.Markdown)
	}
	engine, _ := r.engines.LoadOrStore(key, newGoldmarkEngine(opts))
	return engine.(goldmark.Markdown)
}

func optionsKey(opts interfaces.ParseOptions) string {
	names := extensionNames(opts.Extensions)
	return fmt.Sprintf("%s|%t|%t", strings.Join(names, ","), opts.HardWraps, opts.SafeMode || opts.Sanitize)
}

// newGoldmarkEngine maps options onto goldmark. Unknown extension names are
// ignored.
func newGoldmarkEngine(opts interfaces.ParseOptions) goldmark.Markdown {
	parserOptions := []parser.Option{
		parser.WithAutoHeadingID(),
	}

	rendererOptions := []renderer.Option{}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	// goldmark drops raw HTML unless WithUnsafe is set.
	if !opts.SafeMode && !opts.Sanitize {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parserOptions...),
	}
	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}
	if exts := collectExtensions(opts.Extensions); len(exts) > 0 {
		engineOptions = append(engineOptions, goldmark.WithExtensions(exts...))
	}
	return goldmark.New(engineOptions...)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

var defaultExtensions = []string{"gfm", "linkify", "tasklist"}

// extensionNames returns the known, deduplicated extension names in
// request order, or the default set when names is empty.
func extensionNames(names []string) []string {
	if len(names) == 0 {
		return defaultExtensions
	}
	var out []string
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := extensionRegistry[key]; !ok || slices.Contains(out, key) {
			continue
		}
		out = append(out, key)
	}
	return out
}

func collectExtensions(names []string) []goldmark.Extender {
	var extenders []goldmark.Extender
	for _, name := range extensionNames(names) {
		extenders = append(extenders, extensionRegistry[name])
	}
	return extenders
}

// KnownExtension reports whether name is a supported extension name.
func KnownExtension(name string) bool {
	_, ok := extensionRegistry[strings.ToLower(strings.TrimSpace(name))]
	return ok
}
