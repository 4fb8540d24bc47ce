// Package markdown renders the markdown body of structured content to HTML
// with goldmark.
package markdown
