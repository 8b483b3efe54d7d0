package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/railtel/railgpt/internal/api"
	"github.com/railtel/railgpt/internal/tui/chat"
	"github.com/railtel/railgpt/internal/ui"
)

var chatConversation string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive TUI chat session with the assistant.

Examples:
  railgpt chat
  railgpt chat --conversation 42f1c0   # resume a conversation

Keyboard shortcuts:
  Enter        - Send question
  Ctrl+J       - Insert newline
  Ctrl+N       - New conversation
  Ctrl+P       - Command palette
  Ctrl+C       - Quit

Slash commands:
  /help        - Show help
  /open <id>   - Open a conversation
  /file <path> - Attach a file
  /sources     - Show sources for the latest answer
  /export      - Export the transcript
  /quit        - Exit chat`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatConversation, "conversation", "", "Resume an existing conversation by id")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sess, err := login(cfg)
	if err != nil {
		return err
	}

	styles := ui.NewStyles(os.Stderr, ui.ThemeForRole(sess.Role()))
	client := api.NewClient(cfg.ServerURL, cfg.DBName)
	model := chat.New(cfg, sess, client, styles, chatConversation)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run chat: %w", err)
	}
	return nil
}
