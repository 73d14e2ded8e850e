package render

import "strings"

// Markdown renders markdown content for terminal display.
// Uses a pooled renderer since glamour renderers are not safe for concurrent use.
func Markdown(content string, opts Options) (string, error) {
	renderer, err := globalPool.get(opts)
	if err != nil {
		return "", err
	}
	defer globalPool.put(opts, renderer)

	return renderer.Render(content)
}

// MarkdownOrPlain renders markdown and falls back to the raw content on error.
// Trailing newlines added by glamour are trimmed.
func MarkdownOrPlain(content string, opts Options) string {
	rendered, err := Markdown(content, opts)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}
