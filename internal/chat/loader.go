package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/railtel/railgpt/internal/api"
)

// LoadConversation fetches a conversation and flattens it into display
// messages. History order is preserved: each turn contributes its user
// message and then its assistant message.
func LoadConversation(ctx context.Context, client *api.Client, id string) ([]Message, error) {
	turns, err := client.Conversation(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromHistory(turns), nil
}

// FromHistory converts server-side turns into transcript messages. Turns
// missing a question or answer contribute only the half they have.
func FromHistory(turns []api.Turn) []Message {
	var messages []Message
	for idx, turn := range turns {
		if turn.Question.Present() {
			ts := firstTimestamp(turn.Question.Timestamp, turn.Timestamp)
			messages = append(messages, Message{
				ID:        fmt.Sprintf("%s-user-%d", ts, idx),
				Role:      RoleUser,
				Content:   turn.Question.Content,
				Timestamp: ts,
			})
		}
		if turn.Answer.Present() {
			ts := firstTimestamp(turn.Answer.Timestamp, turn.Timestamp)
			messages = append(messages, Message{
				ID:        fmt.Sprintf("%s-assistant-%d", ts, idx),
				Role:      RoleAssistant,
				Content:   turn.Answer.Content,
				Timestamp: ts,
				Sources:   turn.SourceList(),
				Metrics:   turn.Metrics,
			})
		}
	}
	return messages
}

func firstTimestamp(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}
