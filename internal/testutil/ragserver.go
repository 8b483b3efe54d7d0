// Package testutil provides a scripted stand-in for the RAG assistant
// service. It speaks the same four endpoints and records what the client
// sent, so tests can assert on wire behavior without a real backend.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Question is one recorded question POST.
type Question struct {
	ConversationID string
	Question       string   `json:"question"`
	DBName         string   `json:"db_name"`
	Stream         bool     `json:"stream"`
	Attachments    []string `json:"attachments"`
}

// RAGServer is an httptest server scripted per test.
type RAGServer struct {
	*httptest.Server

	mu          sync.Mutex
	history     map[string]string
	chunks      []string
	nextID      int
	failCreate  bool
	failUpload  map[string]bool
	breakAfter  int
	stallStream bool
	uploads     []string
	questions   []Question
}

func NewRAGServer(t *testing.T) *RAGServer {
	t.Helper()
	s := &RAGServer{
		history:    make(map[string]string),
		failUpload: make(map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/conversations/new", s.handleCreate)
	mux.HandleFunc("POST /api/upload", s.handleUpload)
	mux.HandleFunc("GET /api/conversations/{id}", s.handleHistory)
	mux.HandleFunc("POST /api/conversations/{id}", s.handleQuestion)

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// SetHistory scripts the raw JSON value of the history field for a
// conversation.
func (s *RAGServer) SetHistory(id, historyJSON string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[id] = historyJSON
}

// ScriptStream sets the chunks written (and flushed one by one) in response
// to the next question.
func (s *RAGServer) ScriptStream(chunks ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = chunks
}

// FailCreate makes conversation creation return a server error.
func (s *RAGServer) FailCreate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCreate = true
}

// FailUpload makes uploads of the named file return a server error.
func (s *RAGServer) FailUpload(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failUpload[name] = true
}

// BreakStreamAfter drops the connection after n chunks have been flushed, so
// the client sees a transport error mid-answer.
func (s *RAGServer) BreakStreamAfter(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.breakAfter = n
}

// StallStream makes the question handler hold the stream open after the
// scripted chunks until the client gives up.
func (s *RAGServer) StallStream() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stallStream = true
}

// Uploads returns the names of files successfully uploaded, in arrival order.
func (s *RAGServer) Uploads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.uploads...)
}

// Questions returns every recorded question POST.
func (s *RAGServer) Questions() []Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Question(nil), s.questions...)
}

func (s *RAGServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	fail := s.failCreate
	s.nextID++
	id := fmt.Sprintf("conv-%d", s.nextID)
	s.mu.Unlock()

	if fail {
		http.Error(w, "creation unavailable", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"conversation_id": id})
}

func (s *RAGServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()
	io.Copy(io.Discard, file)

	s.mu.Lock()
	fail := s.failUpload[header.Filename]
	if !fail {
		s.uploads = append(s.uploads, header.Filename)
	}
	s.mu.Unlock()

	if fail {
		http.Error(w, "upload rejected", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"file_path": "/uploads/" + header.Filename})
}

func (s *RAGServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	history, ok := s.history[r.PathValue("id")]
	s.mu.Unlock()

	if !ok {
		history = "[]"
	}
	fmt.Fprintf(w, `{"history": %s}`, history)
}

func (s *RAGServer) handleQuestion(w http.ResponseWriter, r *http.Request) {
	var q Question
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	q.ConversationID = r.PathValue("id")

	s.mu.Lock()
	s.questions = append(s.questions, q)
	chunks := s.chunks
	breakAfter := s.breakAfter
	stall := s.stallStream
	s.mu.Unlock()

	flusher, _ := w.(http.Flusher)
	for i, chunk := range chunks {
		io.WriteString(w, chunk)
		if flusher != nil {
			flusher.Flush()
		}
		if breakAfter > 0 && i+1 == breakAfter {
			if hj, ok := w.(http.Hijacker); ok {
				if conn, _, err := hj.Hijack(); err == nil {
					conn.Close()
				}
			}
			return
		}
	}
	if stall {
		<-r.Context().Done()
	}
}
