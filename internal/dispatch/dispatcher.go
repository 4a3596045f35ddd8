// Package dispatch hands negotiation decisions to the outbound channel.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/outreachlabs/dealpilot/internal/domain"
	"github.com/outreachlabs/dealpilot/internal/pkg/logger"
)

// ThreadSender sends text on an existing mailbox thread. *mailbox.Client
// satisfies it.
type ThreadSender interface {
	SendReply(ctx context.Context, threadID, text string) error
}

// ErrNoThread means the lead has no channel to reply on; the draft cannot be
// delivered until a thread exists.
var ErrNoThread = errors.New("no thread to dispatch on")

// Disabled drops every draft and logs it. Used when outbound dispatch is
// switched off in config; decisions and state transitions still happen.
type Disabled struct{}

func (Disabled) Dispatch(ctx context.Context, lead *domain.Lead, decision domain.NegotiationDecision, threadID string) error {
	logger.Info("dispatch disabled, draft dropped", "lead", lead.ID, "action", string(decision.Action))
	return nil
}

// MailboxDispatcher sends drafts on the lead's existing mailbox thread.
type MailboxDispatcher struct {
	sender ThreadSender
}

// NewMailboxDispatcher creates a dispatcher over the given sender.
func NewMailboxDispatcher(sender ThreadSender) *MailboxDispatcher {
	return &MailboxDispatcher{sender: sender}
}

// Dispatch sends the decision's draft. It refuses drafts the decision marks
// as not-for-auto-send; that guard belongs here as well as in the gateway,
// since escalate/pass text must never reach a creator by accident.
func (d *MailboxDispatcher) Dispatch(ctx context.Context, lead *domain.Lead, decision domain.NegotiationDecision, threadID string) error {
	if !decision.AutoSend() {
		return fmt.Errorf("decision %s is not auto-sendable", decision.Action)
	}
	if threadID == "" {
		return ErrNoThread
	}
	if err := d.sender.SendReply(ctx, threadID, decision.Draft); err != nil {
		return fmt.Errorf("dispatch %s reply: %w", decision.Action, err)
	}
	logger.Info("reply dispatched",
		"lead", lead.ID, "thread", threadID, "action", string(decision.Action))
	return nil
}
