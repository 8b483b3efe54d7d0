package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	core "github.com/railtel/railgpt/internal/chat"
	"github.com/railtel/railgpt/internal/session"
	"github.com/railtel/railgpt/internal/ui"
)

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "loading..."
	}

	if m.dialog.IsOpen() {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.dialog.View())
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if len(m.files) > 0 {
		b.WriteString(m.attachmentsView())
		b.WriteString("\n")
	}
	if m.banner != "" {
		b.WriteString(m.styles.Banner.Render(m.banner))
		b.WriteString("\n")
	}

	b.WriteString(m.textarea.View())
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("enter send · ctrl+j newline · ctrl+p commands · ctrl+c quit"))
	return b.String()
}

func (m *Model) headerView() string {
	title := m.styles.Title.Render("Rail GPT")
	badge := ""
	if m.sess.Role() == session.RoleAdmin {
		badge = m.styles.Chip.Render("admin")
	}

	parts := []string{title}
	if badge != "" {
		parts = append(parts, badge)
	}
	if dept := m.sess.Department(); dept != "" {
		parts = append(parts, m.styles.Subtitle.Render(dept))
	}
	if m.sess.User() != "" {
		parts = append(parts, m.styles.Subtitle.Render(m.sess.User()))
	}
	if m.conversationID != "" {
		parts = append(parts, m.styles.Muted.Render(ui.Truncate(m.conversationID, 12)))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) attachmentsView() string {
	chips := make([]string, len(m.files))
	for i, f := range m.files {
		chips[i] = m.styles.Chip.Render(fmt.Sprintf("%s %s", f.Name, ui.FormatFileSize(f.Size)))
	}
	return m.styles.Muted.Render("attached: ") + strings.Join(chips, " ")
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

func (m *Model) renderMessages() string {
	if len(m.messages) == 0 {
		return m.styles.Muted.Render("No messages yet. Ask away.")
	}

	width := m.viewport.Width - 2
	var b strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.renderMessage(msg, width))
	}
	return b.String()
}

func (m *Model) renderMessage(msg core.Message, width int) string {
	var b strings.Builder

	if msg.Role == core.RoleUser {
		b.WriteString(m.styles.UserLabel.Render("You"))
	} else {
		b.WriteString(m.styles.AssistantLabel.Render("Rail GPT"))
	}
	b.WriteString("\n")

	if msg.IsThinking {
		b.WriteString(m.spinner.View())
		b.WriteString(m.styles.Thinking.Render("Thinking..."))
		return b.String()
	}

	paragraphs := ui.Paragraphs(msg.Content, msg.IsStreaming)
	for i, p := range paragraphs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if msg.Role == core.RoleAssistant && !msg.IsStreaming {
			p = ui.HighlightCodeBlocks(p)
		}
		if msg.IsPending {
			p = m.styles.Muted.Render(p)
		}
		b.WriteString(ui.Wrap(p, width))
	}

	if len(msg.Attachments) > 0 {
		names := make([]string, len(msg.Attachments))
		for i, f := range msg.Attachments {
			names[i] = f.Name
		}
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render("📎 " + strings.Join(names, ", ")))
	}
	if len(msg.Sources) > 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("%d sources · /sources to view", len(msg.Sources))))
	}
	if msg.Metrics != nil {
		b.WriteString("\n")
		b.WriteString(m.styles.MetricsLine.Render(fmt.Sprintf(
			"ttft %.2fs · %.0f tokens · %.1f tok/s · %.2fs total",
			msg.Metrics.TTFT, msg.Metrics.OutputTokens, msg.Metrics.Throughput, msg.Metrics.E2ELatency)))
	}
	return b.String()
}
