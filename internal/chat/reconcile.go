package chat

import (
	"context"

	"github.com/railtel/railgpt/internal/api"
)

// Reconcile re-fetches a conversation after an answer settles and returns
// the sources the server recorded for it. Source attribution only exists
// server-side, so the stream never carries it; this round trip backfills it.
// When the same question was asked more than once the most recent turn wins.
func Reconcile(ctx context.Context, client *api.Client, conversationID, question string) ([]api.Source, error) {
	turns, err := client.Conversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	var match *api.Turn
	for idx := range turns {
		if turns[idx].Question.Content == question {
			match = &turns[idx]
		}
	}
	if match == nil {
		return nil, nil
	}
	return match.SourceList(), nil
}
