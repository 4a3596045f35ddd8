// Package mailbox wraps the mailbox provider's REST API: thread reads and
// outbound replies on existing threads.
package mailbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/outreachlabs/dealpilot/internal/config"
	"github.com/outreachlabs/dealpilot/internal/pkg/httpretry"
)

// Client is an authenticated mailbox API client.
type Client struct {
	baseURL    string
	apiKey     string
	inboxID    string
	httpClient httpretry.HTTPDoer
}

// NewClient creates a mailbox client from config.
func NewClient(cfg config.MailboxConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		inboxID: cfg.InboxID,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 3),
	}
}

// doRequest makes a JSON request to the mailbox API.
func (c *Client) doRequest(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("mailbox API error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// SendReply posts text to an existing thread.
func (c *Client) SendReply(ctx context.Context, threadID, text string) error {
	path := fmt.Sprintf("/inboxes/%s/threads/%s/messages", c.inboxID, threadID)
	_, err := c.doRequest(ctx, http.MethodPost, path, map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("send reply to thread %s: %w", threadID, err)
	}
	return nil
}

// GetThread fetches a thread with its messages.
func (c *Client) GetThread(ctx context.Context, threadID string) (*Thread, error) {
	path := fmt.Sprintf("/inboxes/%s/threads/%s", c.inboxID, threadID)
	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("get thread %s: %w", threadID, err)
	}
	var thread Thread
	if err := json.Unmarshal(body, &thread); err != nil {
		return nil, fmt.Errorf("decode thread %s: %w", threadID, err)
	}
	return &thread, nil
}
