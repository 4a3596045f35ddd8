package mailbox

import "time"

// Thread is a mailbox conversation.
type Thread struct {
	ID       string    `json:"id"`
	InboxID  string    `json:"inbox_id"`
	Subject  string    `json:"subject"`
	Messages []Message `json:"messages"`
}

// Message is one message inside a thread.
type Message struct {
	ID         string    `json:"id"`
	From       string    `json:"from"`
	To         []string  `json:"to"`
	Text       string    `json:"text"`
	Direction  string    `json:"direction"` // "inbound" or "outbound"
	ReceivedAt time.Time `json:"received_at"`
}
