package chat

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// TranscriptMarkdown renders a transcript as a markdown document.
func TranscriptMarkdown(messages []Message) string {
	var b strings.Builder
	b.WriteString("# Conversation\n\n")
	fmt.Fprintf(&b, "_Exported %s_\n\n", time.Now().Format("2006-01-02 15:04"))

	for _, m := range messages {
		if m.Role == RoleUser {
			b.WriteString("## You\n\n")
		} else {
			b.WriteString("## Assistant\n\n")
		}
		b.WriteString(m.Content)
		b.WriteString("\n\n")

		if len(m.Attachments) > 0 {
			names := make([]string, len(m.Attachments))
			for i, f := range m.Attachments {
				names[i] = f.Name
			}
			fmt.Fprintf(&b, "_Attached: %s_\n\n", strings.Join(names, ", "))
		}
		if len(m.Sources) > 0 {
			b.WriteString("Sources:\n\n")
			for _, s := range m.Sources {
				fmt.Fprintf(&b, "- %s (%.0f%%)\n", s.Source, s.RelevanceScore*100)
			}
			b.WriteString("\n")
		}
		if m.Metrics != nil {
			fmt.Fprintf(&b, "_ttft %.2fs · %.0f tokens · %.1f tok/s · %.2fs total_\n\n",
				m.Metrics.TTFT, m.Metrics.OutputTokens, m.Metrics.Throughput, m.Metrics.E2ELatency)
		}
	}
	return b.String()
}

// ExportMarkdown writes the transcript as markdown.
func ExportMarkdown(w io.Writer, messages []Message) error {
	_, err := io.WriteString(w, TranscriptMarkdown(messages))
	return err
}

// ExportHTML writes the transcript converted to HTML.
func ExportHTML(w io.Writer, messages []Message) error {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	return md.Convert([]byte(TranscriptMarkdown(messages)), w)
}
