package api

import (
	"bytes"
	"encoding/json"
)

// Metrics holds server-side generation statistics. During streaming they
// arrive embedded in the response text between __METRICS__ markers; on
// history reloads they come back as a regular JSON field.
type Metrics struct {
	TTFT         float64 `json:"ttft"`
	OutputTokens float64 `json:"output_tokens"`
	Throughput   float64 `json:"throughput"`
	E2ELatency   float64 `json:"e2e_latency"`
}

// Source is one retrieved document chunk that grounded an answer.
type Source struct {
	Source         string  `json:"source"`
	RelevanceScore float64 `json:"relevance_score"`
	Content        string  `json:"content"`
}

// TurnText is a question or answer field. Older server versions send a bare
// JSON string, newer ones an object carrying content and timestamp. The shape
// is resolved once here at decode time; callers only ever see Content.
type TurnText struct {
	Content   string
	Timestamp string
	present   bool
}

// Present reports whether the field carried a value at all.
func (t TurnText) Present() bool {
	return t.present
}

func (t *TurnText) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Content = s
		t.present = true
		return nil
	}
	var obj struct {
		Content   string `json:"content"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	t.Content = obj.Content
	t.Timestamp = obj.Timestamp
	t.present = true
	return nil
}

// Turn is one question/answer exchange as stored server-side.
type Turn struct {
	Question  TurnText `json:"question"`
	Answer    TurnText `json:"answer"`
	Sources   []Source `json:"sources"`
	Context   []Source `json:"context"`
	Metrics   *Metrics `json:"metrics"`
	Timestamp string   `json:"timestamp"`
}

// SourceList returns the turn's sources, falling back to the legacy
// "context" key some server versions use instead.
func (t Turn) SourceList() []Source {
	if len(t.Sources) > 0 {
		return t.Sources
	}
	return t.Context
}

// QuestionRequest is the body of a streaming question POST.
type QuestionRequest struct {
	Question    string     `json:"question"`
	DBName      string     `json:"db_name"`
	Stream      bool       `json:"stream"`
	Attachments []string   `json:"attachments,omitempty"`
	Files       []FileInfo `json:"files,omitempty"`
}

// FileInfo describes an uploaded attachment alongside its server reference.
type FileInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

type newConversationResponse struct {
	ConversationID string `json:"conversation_id"`
}

type uploadResponse struct {
	FilePath string `json:"file_path"`
	URL      string `json:"url"`
}

// conversationPayload keeps history raw so a missing or malformed field can
// degrade to an empty conversation instead of a load error.
type conversationPayload struct {
	History json.RawMessage `json:"history"`
}
