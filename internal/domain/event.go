package domain

import "time"

// EventKind enumerates the webhook event types the mailbox provider emits.
type EventKind string

const (
	EventMessageReceived EventKind = "message.received"
	EventMessageSent     EventKind = "message.sent"
	EventMessageBounced  EventKind = "message.bounced"
	EventThreadUpdated   EventKind = "thread.updated"
)

// InboundEvent is one webhook notification from the mailbox provider.
// EventID is provider-assigned, globally unique, and stable across provider
// retries — it is the dedupe key. Events are never mutated after receipt.
type InboundEvent struct {
	EventID   string         `json:"event_id"`
	EventType EventKind      `json:"event_type"`
	Message   InboundMessage `json:"message"`
}

// InboundMessage is the message payload carried by an InboundEvent.
type InboundMessage struct {
	ID         string    `json:"id"`
	InboxID    string    `json:"inbox_id"`
	ThreadID   string    `json:"thread_id"`
	From       string    `json:"from"`
	To         []string  `json:"to"`
	Subject    string    `json:"subject,omitempty"`
	Text       string    `json:"text,omitempty"`
	Preview    string    `json:"preview,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// Body returns the best available text for the message: the full body when
// present, otherwise the provider's preview snippet.
func (m InboundMessage) Body() string {
	if m.Text != "" {
		return m.Text
	}
	return m.Preview
}
