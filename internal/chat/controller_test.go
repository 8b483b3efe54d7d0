package chat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/railtel/railgpt/internal/api"
	"github.com/railtel/railgpt/internal/testutil"
)

func collectEvents(t *testing.T, turn *Turn) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-turn.Events:
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatalf("timed out waiting for turn events, got %d so far", len(events))
		}
	}
}

func stageTemp(t *testing.T, name, content string) StagedFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	staged, err := StageFile(path)
	if err != nil {
		t.Fatalf("failed to stage file: %v", err)
	}
	return staged
}

func TestControllerFullTurn(t *testing.T) {
	server := testutil.NewRAGServer(t)
	server.ScriptStream("Hello ", "__METRICS__"+metricsJSON+"__METRICS__", "world")
	server.SetHistory("conv-1", `[{
		"question": "What is the policy?",
		"answer": "Hello world",
		"sources": [{"source": "policy.pdf", "relevance_score": 0.9, "content": "..."}]
	}]`)

	client := api.NewClient(server.URL, "rag_db")
	ctrl := NewController(client)

	turn, err := ctrl.Begin(context.Background(), "", "What is the policy?", nil)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	events := collectEvents(t, turn)

	if events[0].Type != EventConversation || events[0].ConversationID != "conv-1" {
		t.Fatalf("expected conversation event first, got %+v", events[0])
	}
	if events[1].Type != EventStreamStart {
		t.Fatalf("expected stream start second, got %+v", events[1])
	}

	var settled *Event
	var sources *Event
	for i := range events {
		switch events[i].Type {
		case EventSettled:
			settled = &events[i]
		case EventSources:
			sources = &events[i]
		case EventFailed:
			t.Fatalf("unexpected failure event: %+v", events[i])
		}
	}
	if settled == nil {
		t.Fatal("expected a settled event")
	}
	if settled.Content != "Hello world" {
		t.Fatalf("expected settled content %q, got %q", "Hello world", settled.Content)
	}
	if settled.Metrics == nil || settled.Metrics.Throughput != 20 {
		t.Fatalf("expected metrics on settle, got %+v", settled.Metrics)
	}
	if sources == nil || len(sources.Sources) != 1 || sources.Sources[0].Source != "policy.pdf" {
		t.Fatalf("expected reconciled sources, got %+v", sources)
	}

	questions := server.Questions()
	if len(questions) != 1 {
		t.Fatalf("expected 1 question request, got %d", len(questions))
	}
	q := questions[0]
	if q.Question != "What is the policy?" || !q.Stream || q.DBName != "rag_db" {
		t.Fatalf("unexpected question request: %+v", q)
	}
	if ctrl.Active() {
		t.Fatal("slot should be free after settlement")
	}
}

func TestControllerRejectsBlankSubmission(t *testing.T) {
	ctrl := NewController(api.NewClient("http://unused", "rag_db"))
	if _, err := ctrl.Begin(context.Background(), "", "   \n ", nil); !errors.Is(err, ErrNothingToSend) {
		t.Fatalf("expected ErrNothingToSend, got %v", err)
	}
}

func TestControllerSingleSlot(t *testing.T) {
	server := testutil.NewRAGServer(t)
	// More chunks than the event buffer holds, so the turn stays in flight
	// until drained.
	chunks := make([]string, 32)
	for i := range chunks {
		chunks[i] = "x"
	}
	server.ScriptStream(chunks...)

	ctrl := NewController(api.NewClient(server.URL, "rag_db"))
	turn, err := ctrl.Begin(context.Background(), "conv-9", "first", nil)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	if _, err := ctrl.Begin(context.Background(), "conv-9", "second", nil); !errors.Is(err, ErrTurnInFlight) {
		t.Fatalf("expected ErrTurnInFlight, got %v", err)
	}

	collectEvents(t, turn)
	if _, err := ctrl.Begin(context.Background(), "conv-9", "third", nil); err != nil {
		t.Fatalf("expected slot to re-arm after settle, got %v", err)
	}
}

func TestControllerUploadFailureAbortsTurn(t *testing.T) {
	server := testutil.NewRAGServer(t)
	server.FailUpload("b.txt")

	files := []StagedFile{
		stageTemp(t, "a.txt", "alpha"),
		stageTemp(t, "b.txt", "beta"),
	}

	ctrl := NewController(api.NewClient(server.URL, "rag_db"))
	turn, err := ctrl.Begin(context.Background(), "conv-5", "with files", files)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	events := collectEvents(t, turn)

	last := events[len(events)-1]
	if last.Type != EventFailed || last.Stage != StageUpload {
		t.Fatalf("expected an upload-stage failure, got %+v", last)
	}
	if got := server.Questions(); len(got) != 0 {
		t.Fatalf("question must not be sent after an upload failure, got %d", len(got))
	}
	if ctrl.Active() {
		t.Fatal("slot should be free after failure")
	}
}

func TestControllerCreateFailure(t *testing.T) {
	server := testutil.NewRAGServer(t)
	server.FailCreate()

	ctrl := NewController(api.NewClient(server.URL, "rag_db"))
	turn, err := ctrl.Begin(context.Background(), "", "hello", nil)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	events := collectEvents(t, turn)

	if len(events) != 1 || events[0].Type != EventFailed || events[0].Stage != StageCreate {
		t.Fatalf("expected only a create-stage failure, got %+v", events)
	}
	if got := server.Questions(); len(got) != 0 {
		t.Fatalf("expected no question requests, got %d", len(got))
	}
}

func TestControllerStreamBreakKeepsPartialContent(t *testing.T) {
	server := testutil.NewRAGServer(t)
	server.ScriptStream("partial ", "answer", "never sent")
	server.BreakStreamAfter(2)

	ctrl := NewController(api.NewClient(server.URL, "rag_db"))
	turn, err := ctrl.Begin(context.Background(), "conv-7", "interrupted", nil)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	events := collectEvents(t, turn)

	for _, ev := range events {
		if ev.Type == EventSettled {
			t.Fatalf("a broken stream must not settle: %+v", ev)
		}
	}
	last := events[len(events)-1]
	if last.Type != EventFailed || last.Stage != StageStream {
		t.Fatalf("expected a stream-stage failure, got %+v", last)
	}
	if !strings.HasPrefix(last.Content, "partial ") {
		t.Fatalf("expected the partial content to survive the break, got %q", last.Content)
	}
	if ctrl.Active() {
		t.Fatal("slot should be free after a stream failure")
	}
}

func TestControllerCancelStopsStream(t *testing.T) {
	server := testutil.NewRAGServer(t)
	server.ScriptStream("partial ")
	server.StallStream()

	ctrl := NewController(api.NewClient(server.URL, "rag_db"))
	turn, err := ctrl.Begin(context.Background(), "conv-8", "halted", nil)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	timeout := time.After(5 * time.Second)
	var last Event
	canceled := false
drain:
	for {
		select {
		case ev, ok := <-turn.Events:
			if !ok {
				break drain
			}
			last = ev
			if !canceled && ev.Type == EventDelta && ev.Content != "" {
				turn.Cancel()
				canceled = true
			}
		case <-timeout:
			t.Fatal("turn kept streaming after cancel")
		}
	}

	if !canceled {
		t.Fatal("never saw streamed content before the channel closed")
	}
	if last.Type != EventFailed || last.Stage != StageStream {
		t.Fatalf("expected a stream-stage failure after cancel, got %+v", last)
	}
	if ctrl.Active() {
		t.Fatal("slot should be free after cancel")
	}
}

func TestUploadAllSendsEveryFile(t *testing.T) {
	server := testutil.NewRAGServer(t)
	client := api.NewClient(server.URL, "rag_db")

	files := []StagedFile{
		stageTemp(t, "one.txt", "1"),
		stageTemp(t, "two.txt", "2"),
	}

	refs, err := UploadAll(context.Background(), client, files)
	if err != nil {
		t.Fatalf("UploadAll failed: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %d", len(refs))
	}
	if refs[0] != "/uploads/one.txt" || refs[1] != "/uploads/two.txt" {
		t.Fatalf("refs out of order: %v", refs)
	}
}

func TestUploadAllNoFiles(t *testing.T) {
	refs, err := UploadAll(context.Background(), api.NewClient("http://unused", "db"), nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if refs != nil {
		t.Fatalf("expected nil refs, got %v", refs)
	}
}
