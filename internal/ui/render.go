package ui

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

// Paragraphs splits message content for display. While an answer is still
// streaming each line stands alone so partial output shows up immediately and
// blank lines are dropped; once settled the content splits on blank lines
// like ordinary prose. Reloading a conversation therefore renders the same
// answer differently than it looked mid-stream, which is intentional.
func Paragraphs(content string, streaming bool) []string {
	if streaming {
		var out []string
		for _, line := range strings.Split(content, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			out = append(out, line)
		}
		return out
	}
	return strings.Split(content, "\n\n")
}

// Wrap reflows a paragraph to the given width.
func Wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wordwrap.String(s, width)
}
