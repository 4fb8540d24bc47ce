package interfaces

// MarkdownRenderer converts the markdown body of a structured content string
// into HTML. Implementations receive the body only, never the header.
type MarkdownRenderer interface {
	Render(markdown []byte) ([]byte, error)
	RenderWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions tunes markdown rendering. Option names stay readable so they
// can be bound from configuration files and CLI flags.
type ParseOptions struct {
	// Extensions lists goldmark extensions by name (gfm, table, linkify, ...).
	// An empty list selects the default set.
	Extensions []string
	Sanitize   bool
	HardWraps  bool
	SafeMode   bool
}
