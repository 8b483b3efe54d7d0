package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// Client talks to the RAG assistant service. All conversation state lives
// server-side; the client holds only the base URL and the knowledge base
// name sent with every conversation request.
type Client struct {
	baseURL    string
	dbName     string
	httpClient *http.Client
}

// NewClient creates a client for the service at baseURL. The http.Client has
// no timeout on purpose: answer streams stay open for as long as generation
// takes, and callers cancel via context instead.
func NewClient(baseURL, dbName string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		dbName:     dbName,
		httpClient: &http.Client{},
	}
}

// DBName returns the knowledge base name the client was configured with.
func (c *Client) DBName() string {
	return c.dbName
}

// Conversation fetches the full history of a conversation. An absent, empty
// or non-list history field yields an empty slice, not an error.
func (c *Client) Conversation(ctx context.Context, id string) ([]Turn, error) {
	endpoint := fmt.Sprintf("%s/api/conversations/%s?db_name=%s",
		c.baseURL, url.PathEscape(id), url.QueryEscape(c.dbName))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch conversation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("conversation fetch failed (status %d): %s", resp.StatusCode, body)
	}

	var payload conversationPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode conversation: %w", err)
	}

	var turns []Turn
	if len(payload.History) == 0 || json.Unmarshal(payload.History, &turns) != nil {
		return nil, nil
	}
	return turns, nil
}

// NewConversation asks the server to allocate a fresh conversation and
// returns its id.
func (c *Client) NewConversation(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{"db_name": c.dbName})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/conversations/new", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to create conversation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("conversation create failed (status %d): %s", resp.StatusCode, respBody)
	}

	var created newConversationResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("failed to decode conversation id: %w", err)
	}
	if created.ConversationID == "" {
		return "", fmt.Errorf("server returned empty conversation id")
	}
	return created.ConversationID, nil
}

// Upload sends one file as multipart form data under the "file" field and
// returns the server-side reference for it. When the server returns neither
// a path nor a URL the original filename stands in as the reference.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload of %s failed (status %d): %s", name, resp.StatusCode, respBody)
	}

	var uploaded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	switch {
	case uploaded.FilePath != "":
		return uploaded.FilePath, nil
	case uploaded.URL != "":
		return uploaded.URL, nil
	default:
		return name, nil
	}
}

// Ask posts a question to a conversation and returns the raw streaming
// response body. The caller owns the body and must close it.
func (c *Client) Ask(ctx context.Context, conversationID string, q QuestionRequest) (io.ReadCloser, error) {
	q.DBName = c.dbName
	q.Stream = true

	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal question: %w", err)
	}

	endpoint := c.baseURL + "/api/conversations/" + url.PathEscape(conversationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send question: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("question failed (status %d): %s", resp.StatusCode, respBody)
	}
	return resp.Body, nil
}
