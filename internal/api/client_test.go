package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientConversation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/conversations/abc" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("db_name"); got != "rail_docs" {
			t.Errorf("expected db_name rail_docs, got %q", got)
		}
		fmt.Fprint(w, `{"history": [{"question": "q", "answer": "a"}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "rail_docs")
	turns, err := client.Conversation(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Conversation failed: %v", err)
	}
	if len(turns) != 1 || turns[0].Question.Content != "q" {
		t.Fatalf("unexpected turns: %+v", turns)
	}
}

func TestClientConversationDegradedHistory(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"absent history", `{}`},
		{"history not a list", `{"history": {"oops": true}}`},
		{"history is a string", `{"history": "nope"}`},
		{"empty list", `{"history": []}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tc.body)
			}))
			defer server.Close()

			turns, err := NewClient(server.URL, "db").Conversation(context.Background(), "x")
			if err != nil {
				t.Fatalf("expected degraded history to be tolerated, got %v", err)
			}
			if len(turns) != 0 {
				t.Fatalf("expected no turns, got %+v", turns)
			}
		})
	}
}

func TestClientConversationTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	if _, err := NewClient(server.URL, "db").Conversation(context.Background(), "x"); err == nil {
		t.Fatal("expected an error for a 500 response")
	}
}

func TestClientNewConversation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/conversations/new" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		fmt.Fprint(w, `{"conversation_id": "fresh-1"}`)
	}))
	defer server.Close()

	id, err := NewClient(server.URL, "db").NewConversation(context.Background())
	if err != nil {
		t.Fatalf("NewConversation failed: %v", err)
	}
	if id != "fresh-1" {
		t.Fatalf("expected fresh-1, got %q", id)
	}
}

func TestClientNewConversationEmptyID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	if _, err := NewClient(server.URL, "db").NewConversation(context.Background()); err == nil {
		t.Fatal("expected an error for an empty conversation id")
	}
}

func TestClientUpload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("expected a file field: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		if header.Filename != "notes.txt" {
			t.Errorf("expected filename notes.txt, got %q", header.Filename)
		}
		content, _ := io.ReadAll(file)
		if string(content) != "hello" {
			t.Errorf("expected file content hello, got %q", content)
		}
		fmt.Fprint(w, `{"file_path": "/files/notes.txt"}`)
	}))
	defer server.Close()

	ref, err := NewClient(server.URL, "db").Upload(context.Background(), "notes.txt", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if ref != "/files/notes.txt" {
		t.Fatalf("expected /files/notes.txt, got %q", ref)
	}
}

func TestClientUploadReferenceFallback(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"file_path wins", `{"file_path": "/p", "url": "/u"}`, "/p"},
		{"url fallback", `{"url": "/u"}`, "/u"},
		{"name fallback", `{}`, "report.pdf"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tc.body)
			}))
			defer server.Close()

			ref, err := NewClient(server.URL, "db").Upload(context.Background(), "report.pdf", strings.NewReader("x"))
			if err != nil {
				t.Fatalf("Upload failed: %v", err)
			}
			if ref != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, ref)
			}
		})
	}
}

func TestClientAsk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req QuestionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode question: %v", err)
		}
		if req.Question != "why?" || !req.Stream || req.DBName != "db" {
			t.Errorf("unexpected question request: %+v", req)
		}
		fmt.Fprint(w, "streamed answer")
	}))
	defer server.Close()

	body, err := NewClient(server.URL, "db").Ask(context.Background(), "c1", QuestionRequest{Question: "why?"})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	defer body.Close()

	content, _ := io.ReadAll(body)
	if string(content) != "streamed answer" {
		t.Fatalf("expected streamed answer, got %q", content)
	}
}

func TestClientAskNonOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model offline", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	if _, err := NewClient(server.URL, "db").Ask(context.Background(), "c1", QuestionRequest{Question: "q"}); err == nil {
		t.Fatal("expected an error for a non-OK response")
	}
}
