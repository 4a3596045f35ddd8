package mailbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outreachlabs/dealpilot/internal/config"
)

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(config.MailboxConfig{
		BaseURL:        srv.URL,
		APIKey:         "mb_test_key",
		InboxID:        "inbox_1",
		TimeoutSeconds: 5,
	})
}

func TestSendReply(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	err := newTestClient(srv).SendReply(context.Background(), "thr_1", "hello Jordan")
	require.NoError(t, err)
	assert.Equal(t, "/inboxes/inbox_1/threads/thr_1/messages", gotPath)
	assert.Equal(t, "Bearer mb_test_key", gotAuth)
	assert.Equal(t, "hello Jordan", gotBody["text"])
}

func TestSendReply_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"thread locked"}`, http.StatusConflict)
	}))
	defer srv.Close()

	err := newTestClient(srv).SendReply(context.Background(), "thr_1", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 409")
}

func TestGetThread(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Thread{
			ID:      "thr_1",
			InboxID: "inbox_1",
			Subject: "Re: collab",
			Messages: []Message{{
				ID: "msg_1", From: "creator@example.com", Text: "hi",
				Direction: "inbound", ReceivedAt: time.Now().UTC(),
			}},
		})
	}))
	defer srv.Close()

	thread, err := newTestClient(srv).GetThread(context.Background(), "thr_1")
	require.NoError(t, err)
	assert.Equal(t, "thr_1", thread.ID)
	require.Len(t, thread.Messages, 1)
	assert.Equal(t, "inbound", thread.Messages[0].Direction)
}
