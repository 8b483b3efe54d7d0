package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/railtel/railgpt/internal/api"
	"github.com/railtel/railgpt/internal/tui/documents"
	"github.com/railtel/railgpt/internal/ui"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Manage indexed documents (admin only)",
	Long: `Open the document manager: list indexed documents with their
department tags, upload new ones, and delete stale ones.

Requires logging in with an admin account.`,
	RunE: runDocuments,
}

func init() {
	rootCmd.AddCommand(documentsCmd)
}

func runDocuments(cmd *cobra.Command, args []string) error {
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

	model, err := documents.New(sess, client, styles)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run document manager: %w", err)
	}
	return nil
}
