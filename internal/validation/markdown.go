package validation

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdownInstance goldmark.Markdown
	markdownOnce     sync.Once
)

func markdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownInstance = goldmark.New(
			goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
		)
	})

	return markdownInstance
}

// MarkdownToHTML renders markdown source to HTML. Raw HTML embedded in the
// source is omitted by the renderer.
func MarkdownToHTML(source string) (string, error) {
	if source == "" {
		return "", nil
	}

	var buf bytes.Buffer

	err := markdown().Convert([]byte(source), &buf)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}

	return buf.String(), nil
}
