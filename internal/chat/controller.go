package chat

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/railtel/railgpt/internal/api"
	"github.com/railtel/railgpt/internal/debuglog"
)

var (
	// ErrNothingToSend means the question was blank and nothing was staged.
	ErrNothingToSend = errors.New("nothing to send")
	// ErrTurnInFlight means a previous turn has not settled or failed yet.
	ErrTurnInFlight = errors.New("a turn is already in flight")
)

// Stage identifies which step of the turn pipeline an event refers to.
type Stage int

const (
	StageCreate Stage = iota
	StageUpload
	StageStream
)

func (s Stage) String() string {
	switch s {
	case StageCreate:
		return "create"
	case StageUpload:
		return "upload"
	default:
		return "stream"
	}
}

// EventType discriminates turn events.
type EventType int

const (
	// EventConversation reports the id of a freshly created conversation.
	EventConversation EventType = iota
	// EventStreamStart means uploads finished and the answer stream is about
	// to open; the view inserts its streaming placeholder now.
	EventStreamStart
	// EventDelta carries the full normalized content after a chunk.
	EventDelta
	// EventSettled is the successful end of the stream.
	EventSettled
	// EventSources delivers reconciled source attribution after settlement.
	EventSources
	// EventFailed is terminal; Stage says which step broke.
	EventFailed
)

// Event is one step of a turn's lifecycle as observed by the view.
type Event struct {
	Type           EventType
	ConversationID string
	Content        string
	Thinking       bool
	Metrics        *api.Metrics
	Sources        []api.Source
	Stage          Stage
	Err            error
}

// Turn is the handle for one in-flight question. The view drains Events
// until the channel closes; Cancel tears the turn down on view exit.
type Turn struct {
	ConversationID string
	Question       string
	Events         <-chan Event
	cancel         context.CancelFunc
}

func (t *Turn) Cancel() {
	t.cancel()
}

// Controller runs the per-question pipeline: conversation creation, the
// upload relay, the answer stream and the source reconciliation pass. It
// holds a single turn slot; while the slot is occupied new submissions are
// rejected. The slot is cleared on settlement and on every failure path.
type Controller struct {
	client *api.Client

	mu   sync.Mutex
	turn *Turn
}

func NewController(client *api.Client) *Controller {
	return &Controller{client: client}
}

// Active reports whether a turn currently occupies the slot.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.turn != nil
}

// Begin validates and starts a turn. It returns ErrNothingToSend for a blank
// submission, ErrTurnInFlight when the slot is occupied, and otherwise kicks
// off the pipeline in the background and returns its handle immediately.
func (c *Controller) Begin(ctx context.Context, conversationID, question string, files []StagedFile) (*Turn, error) {
	question = strings.TrimSpace(question)
	if question == "" && len(files) == 0 {
		return nil, ErrNothingToSend
	}

	c.mu.Lock()
	if c.turn != nil {
		c.mu.Unlock()
		return nil, ErrTurnInFlight
	}

	ctx, cancel := context.WithCancel(ctx)
	events := make(chan Event, 16)
	turn := &Turn{
		ConversationID: conversationID,
		Question:       question,
		Events:         events,
		cancel:         cancel,
	}
	c.turn = turn
	c.mu.Unlock()

	go c.run(ctx, events, conversationID, question, files)
	return turn, nil
}

func (c *Controller) run(ctx context.Context, events chan<- Event, conversationID, question string, files []StagedFile) {
	defer close(events)
	defer c.release()

	if conversationID == "" {
		id, err := c.client.NewConversation(ctx)
		if err != nil {
			events <- Event{Type: EventFailed, Stage: StageCreate, Err: err}
			return
		}
		conversationID = id
		events <- Event{Type: EventConversation, ConversationID: conversationID}
	}

	refs, err := UploadAll(ctx, c.client, files)
	if err != nil {
		events <- Event{Type: EventFailed, Stage: StageUpload, Err: err}
		return
	}

	events <- Event{Type: EventStreamStart, ConversationID: conversationID}

	body, err := c.client.Ask(ctx, conversationID, api.QuestionRequest{
		Question:    question,
		Attachments: refs,
		Files:       FileInfos(files),
	})
	if err != nil {
		events <- Event{Type: EventFailed, Stage: StageStream, Err: err}
		return
	}
	defer body.Close()

	ing := NewIngestor()
	buf := make([]byte, 4096)
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			ing.Feed(buf[:n])
			events <- Event{
				Type:     EventDelta,
				Content:  ing.Content(),
				Thinking: ing.Thinking(),
				Metrics:  ing.Metrics(),
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			// Whatever streamed before the break stays on screen.
			events <- Event{
				Type:    EventFailed,
				Stage:   StageStream,
				Err:     readErr,
				Content: ing.Content(),
			}
			return
		}
	}
	ing.Finish()

	// Release before reconciling so the composer re-arms the moment the
	// answer settles; attribution catches up on its own.
	c.release()
	events <- Event{
		Type:           EventSettled,
		ConversationID: conversationID,
		Content:        ing.Content(),
		Metrics:        ing.Metrics(),
	}

	sources, err := Reconcile(ctx, c.client, conversationID, question)
	if err != nil {
		debuglog.Logf("reconcile failed for %s: %v", conversationID, err)
		return
	}
	if len(sources) > 0 {
		events <- Event{Type: EventSources, Sources: sources}
	}
}

func (c *Controller) release() {
	c.mu.Lock()
	c.turn = nil
	c.mu.Unlock()
}
