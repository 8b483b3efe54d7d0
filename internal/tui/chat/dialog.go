package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/railtel/railgpt/internal/api"
	"github.com/railtel/railgpt/internal/ui"
)

// DialogType represents the type of dialog
type DialogType int

const (
	DialogNone DialogType = iota
	DialogCommandPalette
	DialogSources
)

// DialogModel handles modal dialogs
type DialogModel struct {
	dialogType DialogType
	items      []DialogItem
	filtered   []DialogItem
	cursor     int
	query      string
	title      string
	width      int
	height     int
	styles     *ui.Styles
}

// DialogItem represents an item in a dialog list
type DialogItem struct {
	ID          string
	Label       string
	Description string
}

// NewDialogModel creates a new dialog model
func NewDialogModel(styles *ui.Styles) *DialogModel {
	return &DialogModel{
		dialogType: DialogNone,
		styles:     styles,
	}
}

// SetSize updates the dimensions
func (d *DialogModel) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// IsOpen returns whether a dialog is open
func (d *DialogModel) IsOpen() bool {
	return d.dialogType != DialogNone
}

// Type returns the current dialog type
func (d *DialogModel) Type() DialogType {
	return d.dialogType
}

// Close closes the dialog
func (d *DialogModel) Close() {
	d.dialogType = DialogNone
	d.items = nil
	d.filtered = nil
	d.cursor = 0
	d.query = ""
}

// ShowCommandPalette opens the fuzzy-filtered command list
func (d *DialogModel) ShowCommandPalette(query string) {
	d.dialogType = DialogCommandPalette
	d.title = "Commands"
	d.cursor = 0
	d.SetQuery(query)
}

// ShowSources opens the source list for an answer
func (d *DialogModel) ShowSources(sources []api.Source) {
	d.dialogType = DialogSources
	d.title = "Sources"
	d.cursor = 0
	d.items = nil

	for _, s := range sources {
		excerpt := strings.TrimSpace(s.Content)
		if len(excerpt) > 120 {
			excerpt = excerpt[:120] + "..."
		}
		d.items = append(d.items, DialogItem{
			ID:          s.Source,
			Label:       fmt.Sprintf("%s (%s)", s.Source, ui.FormatScore(s.RelevanceScore)),
			Description: excerpt,
		})
	}
	d.filtered = d.items
}

// Selected returns the currently highlighted item
func (d *DialogModel) Selected() *DialogItem {
	if len(d.filtered) == 0 {
		return nil
	}
	if d.cursor >= len(d.filtered) {
		d.cursor = len(d.filtered) - 1
	}
	return &d.filtered[d.cursor]
}

// SetQuery updates the filter query for the command palette
func (d *DialogModel) SetQuery(query string) {
	d.query = query
	if d.dialogType != DialogCommandPalette {
		return
	}
	d.items = nil
	for _, cmd := range FilterCommands(query) {
		d.items = append(d.items, DialogItem{
			ID:          cmd.Name,
			Label:       cmd.Usage,
			Description: cmd.Description,
		})
	}
	d.filtered = d.items
	if d.cursor >= len(d.filtered) {
		d.cursor = max(0, len(d.filtered)-1)
	}
}

// Query returns the current filter query
func (d *DialogModel) Query() string {
	return d.query
}

// Update handles messages
func (d *DialogModel) Update(msg tea.Msg) (*DialogModel, tea.Cmd) {
	if d.dialogType == DialogNone {
		return d, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
			if d.cursor > 0 {
				d.cursor--
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
			if d.cursor < len(d.filtered)-1 {
				d.cursor++
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("esc", "q"))):
			d.Close()
		}
	}

	return d, nil
}

// View renders the dialog
func (d *DialogModel) View() string {
	if d.dialogType == DialogNone {
		return ""
	}

	theme := d.styles.Theme()

	dialogWidth := 60
	if dialogWidth > d.width-4 {
		dialogWidth = d.width - 4
	}

	maxItems := 12
	items := d.filtered
	startIdx := 0
	if len(items) > maxItems {
		if d.cursor >= maxItems {
			startIdx = d.cursor - maxItems + 1
		}
		items = items[startIdx:]
		if len(items) > maxItems {
			items = items[:maxItems]
		}
	}

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(1, 2).
		Width(dialogWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.Primary).
		MarginBottom(1)

	selectedStyle := lipgloss.NewStyle().
		Background(theme.Primary).
		Foreground(lipgloss.Color("0"))

	mutedStyle := lipgloss.NewStyle().
		Foreground(theme.Muted)

	var b strings.Builder
	b.WriteString(titleStyle.Render(d.title))
	b.WriteString("\n")

	if len(items) == 0 {
		b.WriteString(mutedStyle.Render("nothing to show"))
	}

	for i, item := range items {
		actualIdx := startIdx + i
		prefix := "  "
		if actualIdx == d.cursor {
			prefix = "❯ "
			b.WriteString(selectedStyle.Render(prefix + item.Label))
		} else {
			b.WriteString(prefix + item.Label)
		}
		if item.Description != "" {
			b.WriteString("\n")
			b.WriteString(mutedStyle.Render("    " + item.Description))
		}
		if i < len(items)-1 {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("j/k navigate · enter select · esc cancel"))

	return borderStyle.Render(b.String())
}
