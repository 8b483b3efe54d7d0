package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/railtel/railgpt/internal/api"
	"github.com/railtel/railgpt/internal/chat"
	"github.com/railtel/railgpt/internal/session"
	"github.com/railtel/railgpt/internal/ui"
)

var conversationsCmd = &cobra.Command{
	Use:   "conversations",
	Short: "Inspect server-side conversations",
}

var conversationsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a conversation transcript",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationsShow,
}

var conversationsExportCmd = &cobra.Command{
	Use:   "export <id> <path>",
	Short: "Export a conversation to markdown or html",
	Args:  cobra.ExactArgs(2),
	RunE:  runConversationsExport,
}

func init() {
	conversationsCmd.AddCommand(conversationsShowCmd)
	conversationsCmd.AddCommand(conversationsExportCmd)
	rootCmd.AddCommand(conversationsCmd)
}

func runConversationsShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := api.NewClient(cfg.ServerURL, cfg.DBName)
	messages, err := chat.LoadConversation(context.Background(), client, args[0])
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		fmt.Println("No messages in this conversation.")
		return nil
	}

	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
		width = w
	}
	styles := ui.NewStyles(os.Stdout, ui.ThemeForRole(session.RoleUser))

	for _, msg := range messages {
		if msg.Role == chat.RoleUser {
			fmt.Println(styles.UserLabel.Render("You"))
		} else {
			fmt.Println(styles.AssistantLabel.Render("Rail GPT"))
		}
		for _, p := range ui.Paragraphs(msg.Content, false) {
			fmt.Println(ui.Wrap(ui.HighlightCodeBlocks(p), width))
			fmt.Println()
		}
		if len(msg.Sources) > 0 {
			for _, s := range msg.Sources {
				fmt.Println(styles.Muted.Render(fmt.Sprintf("  %s (%s)", s.Source, ui.FormatScore(s.RelevanceScore))))
			}
			fmt.Println()
		}
		if msg.Metrics != nil {
			fmt.Println(styles.MetricsLine.Render(fmt.Sprintf(
				"  ttft %.2fs · %.0f tokens · %.1f tok/s · %.2fs total",
				msg.Metrics.TTFT, msg.Metrics.OutputTokens, msg.Metrics.Throughput, msg.Metrics.E2ELatency)))
			fmt.Println()
		}
	}
	return nil
}

func runConversationsExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := api.NewClient(cfg.ServerURL, cfg.DBName)
	messages, err := chat.LoadConversation(context.Background(), client, args[0])
	if err != nil {
		return err
	}

	path := args[1]
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if strings.HasSuffix(path, ".html") {
		err = chat.ExportHTML(f, messages)
	} else {
		err = chat.ExportMarkdown(f, messages)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Exported %d messages to %s\n", len(messages), path)
	return nil
}
