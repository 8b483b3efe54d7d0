// Package documents is the admin-only manager for the indexed document set:
// a table of files with department tags, uploads through the same relay the
// chat view uses, and guarded deletes.
package documents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/railtel/railgpt/internal/api"
	"github.com/railtel/railgpt/internal/session"
	"github.com/railtel/railgpt/internal/ui"
)

// Document is one indexed file with its department tags.
type Document struct {
	ID          string
	Name        string
	Size        int64
	UploadDate  time.Time
	Departments []string
}

type mode int

const (
	modeList mode = iota
	modeConfirmDelete
	modeUpload
)

// Model is the document manager view.
type Model struct {
	styles *ui.Styles
	client *api.Client

	docs  []Document
	table table.Model
	input textinput.Model

	mode     mode
	deleteID string
	status   string
	width    int
	height   int
	quitting bool
}

type uploadedMsg struct {
	doc Document
	err error
}

// New creates the manager. It refuses non-admin sessions; the caller is
// expected to have gated on role already.
func New(sess *session.Session, client *api.Client, styles *ui.Styles) (*Model, error) {
	if !sess.IsAdmin() {
		return nil, fmt.Errorf("document manager requires the admin role")
	}

	input := textinput.New()
	input.Placeholder = "path/to/file.pdf HR,Finance"

	m := &Model{
		styles: styles,
		client: client,
		docs:   seedDocuments(),
		input:  input,
	}
	m.rebuildTable()
	return m, nil
}

// seedDocuments is the demo inventory shown before any upload; the service
// has no listing endpoint yet.
// TODO: replace with a real listing once the server grows GET /api/documents.
func seedDocuments() []Document {
	return []Document{
		{
			ID:          uuid.NewString(),
			Name:        "Employee_Handbook.pdf",
			Size:        2_400_000,
			UploadDate:  time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
			Departments: []string{"HR"},
		},
		{
			ID:          uuid.NewString(),
			Name:        "Q3_Financial_Report.xlsx",
			Size:        1_100_000,
			UploadDate:  time.Date(2024, 2, 2, 9, 30, 0, 0, time.UTC),
			Departments: []string{"Finance"},
		},
		{
			ID:          uuid.NewString(),
			Name:        "Network_Operations_Manual.docx",
			Size:        3_800_000,
			UploadDate:  time.Date(2024, 2, 20, 14, 45, 0, 0, time.UTC),
			Departments: []string{"Operations"},
		},
		{
			ID:          uuid.NewString(),
			Name:        "Leave_Policy_2024.pdf",
			Size:        640_000,
			UploadDate:  time.Date(2024, 3, 5, 11, 15, 0, 0, time.UTC),
			Departments: []string{"HR", "Operations"},
		},
	}
}

func (m *Model) rebuildTable() {
	sort.Slice(m.docs, func(i, j int) bool {
		return m.docs[i].UploadDate.After(m.docs[j].UploadDate)
	})

	columns := []table.Column{
		{Title: "Name", Width: 36},
		{Title: "Size", Width: 10},
		{Title: "Uploaded", Width: 12},
		{Title: "Departments", Width: 24},
	}
	rows := make([]table.Row, len(m.docs))
	for i, d := range m.docs {
		rows[i] = table.Row{
			d.Name,
			ui.FormatFileSize(d.Size),
			d.UploadDate.Format("2006-01-02"),
			strings.Join(d.Departments, ", "),
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = m.styles.TableHeader
	s.Cell = m.styles.TableCell
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("0")).
		Background(m.styles.Theme().Primary)
	t.SetStyles(s)
	m.table = t
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 10
		return m, nil

	case uploadedMsg:
		if msg.err != nil {
			m.status = m.styles.FormatResult(false, msg.err.Error())
			return m, nil
		}
		m.docs = append(m.docs, msg.doc)
		m.rebuildTable()
		m.status = m.styles.FormatResult(true, fmt.Sprintf("Uploaded %s", msg.doc.Name))
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeConfirmDelete:
			return m.handleConfirmKey(msg)
		case modeUpload:
			return m.handleUploadKey(msg)
		}
		return m.handleListKey(msg)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "u":
		m.mode = modeUpload
		m.input.SetValue("")
		m.input.Focus()
		m.status = ""
		return m, textinput.Blink
	case "d", "delete":
		if doc := m.selectedDoc(); doc != nil {
			m.mode = modeConfirmDelete
			m.deleteID = doc.ID
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.deleteDoc(m.deleteID)
		m.mode = modeList
		m.deleteID = ""
		return m, nil
	case "n", "N", "esc":
		m.mode = modeList
		m.deleteID = ""
		return m, nil
	}
	return m, nil
}

func (m *Model) handleUploadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.input.Blur()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		m.mode = modeList
		m.input.Blur()
		if value == "" {
			return m, nil
		}
		path, depts := parseUploadInput(value)
		return m, m.uploadCmd(path, depts)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// parseUploadInput splits "path HR,Finance" into its parts. Departments
// default to all three when omitted.
func parseUploadInput(value string) (string, []string) {
	fields := strings.Fields(value)
	if len(fields) == 1 {
		return fields[0], session.Departments()
	}
	path := strings.Join(fields[:len(fields)-1], " ")
	var depts []string
	for _, d := range strings.Split(fields[len(fields)-1], ",") {
		d = strings.TrimSpace(d)
		for _, known := range session.Departments() {
			if strings.EqualFold(d, known) {
				depts = append(depts, known)
			}
		}
	}
	if len(depts) == 0 {
		// Last field was part of the path, not a department list
		return value, session.Departments()
	}
	return path, depts
}

func (m *Model) uploadCmd(path string, depts []string) tea.Cmd {
	return func() tea.Msg {
		info, err := os.Stat(path)
		if err != nil {
			return uploadedMsg{err: fmt.Errorf("failed to read %s: %w", path, err)}
		}
		f, err := os.Open(path)
		if err != nil {
			return uploadedMsg{err: fmt.Errorf("failed to open %s: %w", path, err)}
		}
		defer f.Close()

		name := filepath.Base(path)
		if _, err := m.client.Upload(context.Background(), name, f); err != nil {
			return uploadedMsg{err: err}
		}
		return uploadedMsg{doc: Document{
			ID:          uuid.NewString(),
			Name:        name,
			Size:        info.Size(),
			UploadDate:  time.Now().UTC(),
			Departments: depts,
		}}
	}
}

func (m *Model) selectedDoc() *Document {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.docs) {
		return nil
	}
	return &m.docs[idx]
}

func (m *Model) deleteDoc(id string) {
	for i, d := range m.docs {
		if d.ID == id {
			m.status = m.styles.FormatResult(true, fmt.Sprintf("Deleted %s", d.Name))
			m.docs = append(m.docs[:i], m.docs[i+1:]...)
			m.rebuildTable()
			return
		}
	}
}

// Documents exposes the inventory for tests.
func (m *Model) Documents() []Document {
	return m.docs
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Document Manager"))
	b.WriteString("  ")
	b.WriteString(m.styles.Chip.Render("admin"))
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")

	switch m.mode {
	case modeConfirmDelete:
		name := ""
		for _, d := range m.docs {
			if d.ID == m.deleteID {
				name = d.Name
			}
		}
		b.WriteString(m.styles.Banner.Render(fmt.Sprintf("Delete %s? (y/n)", name)))
	case modeUpload:
		b.WriteString(m.styles.Subtitle.Render("Upload: "))
		b.WriteString(m.input.View())
	default:
		if m.status != "" {
			b.WriteString(m.status)
			b.WriteString("\n")
		}
		b.WriteString(m.styles.Muted.Render("u upload · d delete · q quit"))
	}
	b.WriteString("\n")
	b.WriteString(m.departmentLegend())
	return b.String()
}

func (m *Model) departmentLegend() string {
	chips := make([]string, 0, 3)
	for _, dept := range session.Departments() {
		style := lipgloss.NewStyle().Foreground(ui.DepartmentColor(dept))
		chips = append(chips, style.Render("● "+dept))
	}
	return strings.Join(chips, "  ")
}
