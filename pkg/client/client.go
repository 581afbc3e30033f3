// Package client talks to the Cons.AI backend: lexical and semantical
// search, LLM queries, the random pensata, file export and conversation
// reset. Every call takes a context; callers run them under a flight
// ticket so supersession and the request timeout propagate into the
// transport.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/consai/consai/pkg/core"
	"github.com/consai/consai/pkg/log"
)

// maxErrorBody bounds how much of an error response is kept for the
// message.
const maxErrorBody = 2048

// HTTPError is a non-2xx backend answer. The body is kept (truncated)
// because the backend writes useful diagnostics in plain text.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Client is the backend API client. Zero-value is not usable; construct
// with New.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

// New creates a client for the given base URL. Timeouts are enforced by
// the per-request contexts, not the transport, so a zero http.Client
// timeout is intentional.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  log.ForComponent("client"),
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// post sends a JSON payload and returns the raw response body.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debugf("POST %s %s", path, body)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warnf("closing response body: %v", err)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: truncate(data)}
	}
	return data, nil
}

func truncate(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody]
	}
	return s
}

// SearchParams are the inputs of a lexical or semantical search.
type SearchParams struct {
	Term    string   `json:"term"`
	Sources []string `json:"source,omitempty"`
	Model   string   `json:"model,omitempty"`
}

// LexicalSearch runs an exact-match search over the given collections
// and returns the normalized envelope.
func (c *Client) LexicalSearch(ctx context.Context, params SearchParams) (*core.Envelope, error) {
	raw, err := c.post(ctx, "/lexical_search", params)
	if err != nil {
		return nil, err
	}
	return core.NormalizeLexical(raw, params.Term)
}

// SemanticalSearch runs a similarity search and returns the normalized
// envelope with collection aliases folded.
func (c *Client) SemanticalSearch(ctx context.Context, params SearchParams) (*core.Envelope, error) {
	raw, err := c.post(ctx, "/semantical_search", params)
	if err != nil {
		return nil, err
	}
	return core.NormalizeSemantical(raw, params.Term)
}

// LLMParams are the inputs of an LLM query. VectorStoreNames and
// VectorStoreID address the same store; which key the backend expects
// depends on the caller (ragbot and mancia send names, the verbetopedia
// definition step sends the id).
type LLMParams struct {
	Query            string  `json:"query"`
	Model            string  `json:"model,omitempty"`
	Temperature      float64 `json:"temperature,omitempty"`
	VectorStoreNames string  `json:"vector_store_names,omitempty"`
	VectorStoreID    string  `json:"vector_store_id,omitempty"`
	Instructions     string  `json:"instructions,omitempty"`
	UseSession       bool    `json:"use_session"`
	ChatID           string  `json:"chat_id,omitempty"`
}

// LLMQuery sends one LLM exchange and returns the normalized answer
// with its citations regrouped.
func (c *Client) LLMQuery(ctx context.Context, params LLMParams) (*core.ChatAnswer, error) {
	raw, err := c.post(ctx, "/llm_query", params)
	if err != nil {
		return nil, err
	}
	return core.NormalizeChat(raw)
}

// RandomPensata fetches one random pensata from the given book. An
// empty book defaults to the Léxico de Ortopensatas.
func (c *Client) RandomPensata(ctx context.Context, book string) (*core.Pensata, error) {
	if book == "" {
		book = "LO"
	}
	raw, err := c.post(ctx, "/random_pensata", map[string]string{
		"term": "none",
		"book": book,
	})
	if err != nil {
		return nil, err
	}
	var p core.Pensata
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decoding pensata response: %w", err)
	}
	return &p, nil
}

// DownloadRequest is the export payload: the results being exported
// plus the term and search type they came from.
type DownloadRequest struct {
	Format  string        `json:"format"`
	Results []core.Result `json:"results"`
	Term    string        `json:"term"`
	Type    string        `json:"type"`
}

// DownloadResult is an exported document.
type DownloadResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Download asks the backend to render the results into a document. The
// filename comes from the Content-Disposition header when present.
func (c *Client) Download(ctx context.Context, req DownloadRequest) (*DownloadResult, error) {
	if req.Type == "" {
		req.Type = "none"
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding download request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/download", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/octet-stream")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warnf("closing response body: %v", err)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading download response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: truncate(data)}
	}

	return &DownloadResult{
		Filename:    filenameFromHeader(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func filenameFromHeader(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}

// ResetConversation tells the backend to drop the session behind the
// given chat id. The endpoint is optional on some deployments, so a
// failure is logged and swallowed; the caller rotates its local id
// either way.
func (c *Client) ResetConversation(ctx context.Context, chatID string) {
	body, err := json.Marshal(map[string]string{"chat_id": chatID})
	if err != nil {
		return
	}
	req, err := http.NewRequestWithContext(ctx, "DELETE", c.baseURL+"/ragbot_reset", bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debugf("conversation reset failed (ignored): %v", err)
		return
	}
	if err := resp.Body.Close(); err != nil {
		c.logger.Warnf("closing response body: %v", err)
	}
}

// Health pings the backend. Used at startup to wake free-tier
// deployments that idle out; the caller decides whether a failure
// matters.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warnf("closing response body: %v", err)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return &HTTPError{StatusCode: resp.StatusCode}
	}
	return nil
}

// WarmUp fires a best-effort health ping with its own short deadline,
// detached from any flight ticket.
func (c *Client) WarmUp(timeout time.Duration) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := c.Health(ctx); err != nil {
			c.logger.Debugf("warm-up ping failed (ignored): %v", err)
		}
	}()
}
