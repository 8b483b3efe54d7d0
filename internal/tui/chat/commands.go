package chat

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	core "github.com/railtel/railgpt/internal/chat"
	"github.com/railtel/railgpt/internal/ui"
)

// Command represents a slash command
type Command struct {
	Name        string
	Aliases     []string
	Description string
	Usage       string
}

// AllCommands returns all available slash commands
func AllCommands() []Command {
	return []Command{
		{
			Name:        "help",
			Aliases:     []string{"h", "?"},
			Description: "Show help and available commands",
			Usage:       "/help",
		},
		{
			Name:        "new",
			Aliases:     []string{"n"},
			Description: "Start a new conversation",
			Usage:       "/new",
		},
		{
			Name:        "open",
			Aliases:     []string{"o"},
			Description: "Open an existing conversation by id",
			Usage:       "/open <id>",
		},
		{
			Name:        "clear",
			Aliases:     []string{"c"},
			Description: "Clear the visible transcript (server history is untouched)",
			Usage:       "/clear",
		},
		{
			Name:        "file",
			Aliases:     []string{"f"},
			Description: "Attach file(s) to the next question",
			Usage:       "/file <path>",
		},
		{
			Name:        "sources",
			Aliases:     []string{"src"},
			Description: "Show sources for the latest answer",
			Usage:       "/sources",
		},
		{
			Name:        "export",
			Description: "Export the transcript as markdown or html",
			Usage:       "/export [path]",
		},
		{
			Name:        "quit",
			Aliases:     []string{"q", "exit"},
			Description: "Exit chat",
			Usage:       "/quit",
		},
	}
}

// CommandSource implements fuzzy.Source for command searching
type CommandSource []Command

func (c CommandSource) String(i int) string {
	return c[i].Name
}

func (c CommandSource) Len() int {
	return len(c)
}

// FilterCommands returns commands matching the query using fuzzy search
func FilterCommands(query string) []Command {
	commands := AllCommands()
	if query == "" {
		return commands
	}

	query = strings.TrimPrefix(query, "/")

	// First check for exact alias matches
	queryLower := strings.ToLower(query)
	for _, cmd := range commands {
		if cmd.Name == queryLower {
			return []Command{cmd}
		}
		for _, alias := range cmd.Aliases {
			if alias == queryLower {
				return []Command{cmd}
			}
		}
	}

	// Fuzzy search on command names
	source := CommandSource(commands)
	matches := fuzzy.FindFrom(query, source)

	var result []Command
	for _, match := range matches {
		result = append(result, commands[match.Index])
	}

	// If no fuzzy matches, also check if query is prefix of any command
	if len(result) == 0 {
		for _, cmd := range commands {
			if strings.HasPrefix(cmd.Name, queryLower) {
				result = append(result, cmd)
			}
		}
	}

	return result
}

// ExecuteCommand handles slash command execution
func (m *Model) ExecuteCommand(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	cmdName := strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	args := parts[1:]

	var cmd *Command
	for _, c := range AllCommands() {
		if c.Name == cmdName {
			cmd = &c
			break
		}
		for _, alias := range c.Aliases {
			if alias == cmdName {
				cmd = &c
				break
			}
		}
		if cmd != nil {
			break
		}
	}

	// If no exact match, try prefix matching
	if cmd == nil {
		var prefixMatches []Command
		for _, c := range AllCommands() {
			if strings.HasPrefix(c.Name, cmdName) {
				prefixMatches = append(prefixMatches, c)
			}
		}

		switch len(prefixMatches) {
		case 0:
			return m.showNotice(fmt.Sprintf("Unknown command: /%s. Type /help for available commands.", cmdName))
		case 1:
			cmd = &prefixMatches[0]
		default:
			var names []string
			for _, c := range prefixMatches {
				names = append(names, "/"+c.Name)
			}
			return m.showNotice(fmt.Sprintf("Ambiguous command: /%s. Did you mean: %s?", cmdName, strings.Join(names, ", ")))
		}
	}

	switch cmd.Name {
	case "help":
		return m.cmdHelp()
	case "new":
		return m.cmdNew()
	case "open":
		return m.cmdOpen(args)
	case "clear":
		return m.cmdClear()
	case "file":
		return m.cmdFile(args)
	case "sources":
		return m.cmdSources()
	case "export":
		return m.cmdExport(args)
	case "quit":
		return m.cmdQuit()
	default:
		return m.showNotice(fmt.Sprintf("Command /%s is not yet implemented.", cmd.Name))
	}
}

// Command implementations

func (m *Model) showNotice(content string) (tea.Model, tea.Cmd) {
	m.textarea.SetValue("")
	return m, tea.Println(content + "\n")
}

func (m *Model) cmdHelp() (tea.Model, tea.Cmd) {
	var b strings.Builder
	b.WriteString("Available commands:\n\n")
	for _, cmd := range AllCommands() {
		b.WriteString(fmt.Sprintf("  %-18s %s", cmd.Usage, cmd.Description))
		if len(cmd.Aliases) > 0 {
			b.WriteString(fmt.Sprintf(" (aliases: %s)", strings.Join(cmd.Aliases, ", ")))
		}
		b.WriteString("\n")
	}
	b.WriteString("\nKeys: enter send · ctrl+j newline · ctrl+n new conversation · ctrl+p palette · ctrl+c quit")
	return m.showNotice(b.String())
}

func (m *Model) cmdNew() (tea.Model, tea.Cmd) {
	// Switching conversations mid-turn would leave the live stream's events
	// pointed at the wrong transcript.
	if m.turn != nil {
		return m.showNotice("An answer is still streaming; wait for it to finish.")
	}
	// The server allocates the id lazily, on the first question
	m.conversationID = ""
	m.messages = nil
	m.streamID = ""
	m.banner = ""
	m.textarea.SetValue("")
	m.refreshViewport()
	return m, nil
}

func (m *Model) cmdOpen(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m.showNotice("Usage: /open <conversation-id>")
	}
	if m.turn != nil {
		return m.showNotice("An answer is still streaming; wait for it to finish.")
	}
	id := args[0]
	m.conversationID = id
	m.messages = nil
	m.streamID = ""
	m.textarea.SetValue("")
	m.refreshViewport()
	return m, m.loadHistoryCmd(id)
}

func (m *Model) cmdClear() (tea.Model, tea.Cmd) {
	m.messages = nil
	m.streamID = ""
	m.textarea.SetValue("")
	m.refreshViewport()
	return m, nil
}

func (m *Model) cmdFile(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		if len(m.files) == 0 {
			return m.showNotice("No files attached. Usage: /file <path> or /file clear")
		}
		var b strings.Builder
		b.WriteString("Attached files:\n")
		var totalSize int64
		for _, f := range m.files {
			b.WriteString(fmt.Sprintf("  %s (%s)\n", f.Name, ui.FormatFileSize(f.Size)))
			totalSize += f.Size
		}
		b.WriteString(fmt.Sprintf("Total: %d file(s), %s", len(m.files), ui.FormatFileSize(totalSize)))
		return m.showNotice(b.String())
	}

	if args[0] == "clear" {
		count := len(m.files)
		m.files = nil
		m.textarea.SetValue("")
		return m.showNotice(fmt.Sprintf("Cleared %d attached file(s).", count))
	}

	// Join all args in case path has spaces
	path := strings.Join(args, " ")
	if strings.ContainsAny(path, "*?[") {
		return m.attachFiles(path)
	}
	return m.attachFile(path)
}

func (m *Model) cmdSources() (tea.Model, tea.Cmd) {
	for i := len(m.messages) - 1; i >= 0; i-- {
		if len(m.messages[i].Sources) > 0 {
			m.dialog.ShowSources(m.messages[i].Sources)
			m.textarea.SetValue("")
			return m, nil
		}
	}
	return m.showNotice("No sources available yet.")
}

func (m *Model) cmdExport(args []string) (tea.Model, tea.Cmd) {
	if len(m.messages) == 0 {
		return m.showNotice("No messages to export.")
	}

	var outputPath string
	if len(args) > 0 {
		outputPath = strings.Join(args, " ")
	} else {
		outputPath = fmt.Sprintf("chat-export-%s.md", time.Now().Format("2006-01-02_15-04-05"))
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return m.showNotice(fmt.Sprintf("Failed to export: %v", err))
	}
	defer f.Close()

	if strings.HasSuffix(outputPath, ".html") {
		err = core.ExportHTML(f, m.messages)
	} else {
		err = core.ExportMarkdown(f, m.messages)
	}
	if err != nil {
		return m.showNotice(fmt.Sprintf("Failed to export: %v", err))
	}

	m.textarea.SetValue("")
	return m.showNotice(fmt.Sprintf("Exported %d messages to %s", len(m.messages), outputPath))
}

func (m *Model) cmdQuit() (tea.Model, tea.Cmd) {
	if m.turn != nil {
		m.turn.Cancel()
	}
	m.quitting = true
	return m, tea.Quit
}
