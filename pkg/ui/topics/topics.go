// Package topics holds the long-form help topics shown by the topics command.
package topics

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
)

//go:embed *.md
var content embed.FS

// List returns the available topic names
func List() []string {
	entries, err := fs.ReadDir(content, ".")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if path.Ext(e.Name()) == ".md" {
			names = append(names, strings.TrimSuffix(e.Name(), ".md"))
		}
	}
	sort.Strings(names)
	return names
}

// Get returns the markdown source of a topic
func Get(name string) (string, bool) {
	data, err := content.ReadFile(name + ".md")
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Render renders markdown for a terminal of the given width. Zero width
// keeps glamour's default wrapping. On failure the source is returned.
func Render(markdown string, width int) string {
	options := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		options = append(options, glamour.WithWordWrap(width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return markdown
	}
	rendered, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return rendered
}
