package chat

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/railtel/railgpt/internal/api"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in the transcript. At most one message has
// IsStreaming set at a time, and IsThinking is only ever true while that
// message is still streaming with a blank buffer. Content is frozen once
// streaming ends; only sources and metrics may be backfilled afterwards.
type Message struct {
	ID          string
	Role        Role
	Content     string
	Timestamp   string
	Sources     []api.Source
	Metrics     *api.Metrics
	IsStreaming bool
	IsThinking  bool
	IsPending   bool
	Attachments []StagedFile
}

// NewUserMessage builds the optimistic user-side message appended the moment
// a question is accepted, before any network round trip.
func NewUserMessage(content string, files []StagedFile) Message {
	return Message{
		ID:          uuid.NewString(),
		Role:        RoleUser,
		Content:     content,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		IsPending:   true,
		Attachments: files,
	}
}

// NewStreamingMessage builds the assistant placeholder that the answer
// stream fills in.
func NewStreamingMessage() Message {
	return Message{
		ID:          uuid.NewString(),
		Role:        RoleAssistant,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		IsStreaming: true,
		IsThinking:  true,
	}
}

// StagedFile is a locally selected attachment waiting to be uploaded. It
// holds a path rather than file contents; the bytes are read at upload time.
type StagedFile struct {
	ID       string
	Name     string
	Size     int64
	MimeType string
	Path     string
}

// StageFile records a local file for upload with the next question.
func StageFile(path string) (StagedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return StagedFile{}, fmt.Errorf("failed to stage %s: %w", path, err)
	}
	if info.IsDir() {
		return StagedFile{}, fmt.Errorf("cannot attach directory %s", path)
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return StagedFile{
		ID:       uuid.NewString(),
		Name:     filepath.Base(path),
		Size:     info.Size(),
		MimeType: mimeType,
		Path:     path,
	}, nil
}

// FileInfos converts staged files to the wire shape sent with a question.
func FileInfos(files []StagedFile) []api.FileInfo {
	if len(files) == 0 {
		return nil
	}
	infos := make([]api.FileInfo, len(files))
	for i, f := range files {
		infos[i] = api.FileInfo{Name: f.Name, Type: f.MimeType, Size: f.Size}
	}
	return infos
}
