package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/railtel/railgpt/internal/api"
	core "github.com/railtel/railgpt/internal/chat"
	"github.com/railtel/railgpt/internal/config"
	"github.com/railtel/railgpt/internal/session"
	"github.com/railtel/railgpt/internal/ui"
)

// Model is the chat view. Admin and regular users run the same model; the
// session decides the palette and the header badge, nothing else.
type Model struct {
	cfg        *config.Config
	sess       *session.Session
	styles     *ui.Styles
	client     *api.Client
	controller *core.Controller

	messages       []core.Message
	conversationID string
	files          []core.StagedFile

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	dialog   *DialogModel

	turn     *core.Turn
	streamID string

	banner   string
	width    int
	height   int
	ready    bool
	quitting bool
}

type historyMsg struct {
	messages []core.Message
	err      error
}

type turnEventMsg struct {
	ev core.Event
	ok bool
}

// New creates the chat view. A non-empty conversationID resumes an existing
// conversation; its history loads on Init.
func New(cfg *config.Config, sess *session.Session, client *api.Client, styles *ui.Styles, conversationID string) *Model {
	ta := textarea.New()
	ta.Placeholder = "Ask a question... (/help for commands)"
	ta.Prompt = "> "
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Thinking

	return &Model{
		cfg:            cfg,
		sess:           sess,
		styles:         styles,
		client:         client,
		controller:     core.NewController(client),
		conversationID: conversationID,
		textarea:       ta,
		spinner:        sp,
		dialog:         NewDialogModel(styles),
	}
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.spinner.Tick}
	if m.conversationID != "" {
		cmds = append(cmds, m.loadHistoryCmd(m.conversationID))
	}
	return tea.Batch(cmds...)
}

func (m *Model) loadHistoryCmd(id string) tea.Cmd {
	return func() tea.Msg {
		messages, err := core.LoadConversation(context.Background(), m.client, id)
		return historyMsg{messages: messages, err: err}
	}
}

func (m *Model) waitForTurn(t *core.Turn) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-t.Events
		return turnEventMsg{ev: ev, ok: ok}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textarea.SetWidth(msg.Width - 2)
		viewportHeight := msg.Height - m.textarea.Height() - 5
		if viewportHeight < 1 {
			viewportHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, viewportHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = viewportHeight
		}
		m.dialog.SetSize(msg.Width, msg.Height)
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		if m.streaming() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			m.refreshViewport()
			return m, cmd
		}
		return m, nil

	case historyMsg:
		if msg.err != nil {
			m.banner = "Failed to load conversation: " + msg.err.Error()
			return m, nil
		}
		m.messages = msg.messages
		m.banner = ""
		m.refreshViewport()
		return m, nil

	case turnEventMsg:
		return m.handleTurnEvent(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m *Model) handleTurnEvent(msg turnEventMsg) (tea.Model, tea.Cmd) {
	if !msg.ok {
		m.turn = nil
		return m, nil
	}

	ev := msg.ev
	switch ev.Type {
	case core.EventConversation:
		m.conversationID = ev.ConversationID
		m.markDelivered()

	case core.EventStreamStart:
		m.markDelivered()
		placeholder := core.NewStreamingMessage()
		m.streamID = placeholder.ID
		m.messages = append(m.messages, placeholder)

	case core.EventDelta:
		m.updateMessage(m.streamID, func(msg *core.Message) {
			msg.Content = ev.Content
			msg.IsThinking = ev.Thinking
			msg.Metrics = ev.Metrics
		})

	case core.EventSettled:
		m.conversationID = ev.ConversationID
		m.updateMessage(m.streamID, func(msg *core.Message) {
			msg.Content = ev.Content
			msg.Metrics = ev.Metrics
			msg.IsStreaming = false
			msg.IsThinking = false
		})
		m.files = nil

	case core.EventSources:
		m.updateMessage(m.streamID, func(msg *core.Message) {
			msg.Sources = ev.Sources
		})

	case core.EventFailed:
		m.markDelivered()
		switch ev.Stage {
		case core.StageCreate:
			m.banner = "Could not start a conversation: " + ev.Err.Error()
		case core.StageUpload:
			// Staged files stay put so the turn can be retried as-is
			m.banner = "Upload failed: " + ev.Err.Error()
		default:
			m.banner = "Answer interrupted: " + ev.Err.Error()
			m.updateMessage(m.streamID, func(msg *core.Message) {
				if ev.Content != "" {
					msg.Content = ev.Content
				}
				msg.IsStreaming = false
				msg.IsThinking = false
			})
		}
	}

	m.refreshViewport()
	if m.turn != nil {
		return m, m.waitForTurn(m.turn)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.dialog.IsOpen() {
		return m.handleDialogKey(msg)
	}

	switch msg.String() {
	case "ctrl+c":
		if m.turn != nil {
			m.turn.Cancel()
		}
		m.quitting = true
		return m, tea.Quit

	case "esc":
		m.banner = ""
		return m, nil

	case "ctrl+n":
		return m.cmdNew()

	case "ctrl+p":
		m.dialog.ShowCommandPalette("")
		return m, nil

	case "ctrl+j":
		m.textarea.InsertString("\n")
		return m, nil

	case "enter":
		return m.submit()
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m *Model) handleDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.dialog.Type() == DialogCommandPalette {
			if item := m.dialog.Selected(); item != nil {
				m.dialog.Close()
				m.textarea.SetValue("/" + item.ID + " ")
				m.textarea.CursorEnd()
			}
			return m, nil
		}
		m.dialog.Close()
		return m, nil
	}
	m.dialog, _ = m.dialog.Update(msg)
	return m, nil
}

// submit runs the submission gate and starts a turn. Slash commands never
// reach the controller.
func (m *Model) submit() (tea.Model, tea.Cmd) {
	value := m.textarea.Value()
	if strings.HasPrefix(strings.TrimSpace(value), "/") {
		return m.ExecuteCommand(value)
	}

	turn, err := m.controller.Begin(context.Background(), m.conversationID, value, m.files)
	if err != nil {
		// Blank input and an in-flight turn are both silent no-ops
		if errors.Is(err, core.ErrNothingToSend) || errors.Is(err, core.ErrTurnInFlight) {
			return m, nil
		}
		m.banner = err.Error()
		return m, nil
	}

	m.turn = turn
	m.messages = append(m.messages, core.NewUserMessage(turn.Question, m.files))
	m.textarea.Reset()
	m.banner = ""
	m.refreshViewport()
	return m, tea.Batch(m.waitForTurn(turn), m.spinner.Tick)
}

// markDelivered clears the pending flag once the turn is past the point of
// failure that would orphan the optimistic message.
func (m *Model) markDelivered() {
	for i := range m.messages {
		m.messages[i].IsPending = false
	}
}

func (m *Model) updateMessage(id string, fn func(*core.Message)) {
	if id == "" {
		return
	}
	for i := range m.messages {
		if m.messages[i].ID == id {
			fn(&m.messages[i])
			return
		}
	}
}

func (m *Model) streaming() bool {
	for i := range m.messages {
		if m.messages[i].IsStreaming {
			return true
		}
	}
	return false
}

// Messages exposes the transcript for commands and tests.
func (m *Model) Messages() []core.Message {
	return m.messages
}

// ConversationID returns the active conversation id, empty before the first
// question of a fresh session.
func (m *Model) ConversationID() string {
	return m.conversationID
}
