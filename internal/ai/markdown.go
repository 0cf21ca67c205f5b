package ai

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
)

// RenderMarkdown converts generated text, which models return as
// Markdown, to HTML. Raw HTML in the input is not passed through.
func RenderMarkdown(text string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
