// Package gateway orchestrates one inbound webhook event end to end:
// verify → dedupe → parse → decide → persist → dispatch.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/outreachlabs/dealpilot/internal/dedupe"
	"github.com/outreachlabs/dealpilot/internal/domain"
	"github.com/outreachlabs/dealpilot/internal/negotiation"
	"github.com/outreachlabs/dealpilot/internal/parser"
	"github.com/outreachlabs/dealpilot/internal/pkg/logger"
	"github.com/outreachlabs/dealpilot/internal/webhook"
)

// LeadStore is the slice of the lead repository the gateway needs.
type LeadStore interface {
	GetByThread(ctx context.Context, threadID string) (*domain.Lead, error)
	GetByAddress(ctx context.Context, address string) (*domain.Lead, error)
	Update(ctx context.Context, l *domain.Lead) error
}

// CampaignStore loads the guardrails for a lead's campaign.
type CampaignStore interface {
	Get(ctx context.Context, id string) (*domain.Campaign, error)
}

// Dispatcher hands a decision's draft to the outbound channel.
type Dispatcher interface {
	Dispatch(ctx context.Context, lead *domain.Lead, decision domain.NegotiationDecision, threadID string) error
}

// ErrDedupeUnavailable is returned only when dedupe.required is set and the
// store is unreachable; the handler maps it to 500 so the provider retries.
var ErrDedupeUnavailable = errors.New("dedupe store unavailable")

// Outcome summarizes what one event processing run did.
type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored" // event kind other than message.received
	OutcomeNoLead    Outcome = "no_lead" // parsed, surfaced for manual correlation
)

// Result is what the webhook handler gets back for a non-error run.
type Result struct {
	Outcome     Outcome
	Event       *domain.InboundEvent
	Reply       *domain.ParsedReply
	Lead        *domain.Lead
	Decision    *domain.NegotiationDecision
	DispatchErr error // set when the decision stood but the send failed
}

// Config carries the gateway's operational knobs.
type Config struct {
	// DedupeRequired degrades closed on dedupe-store outage: the event is
	// rejected retryably instead of processed at duplicate risk.
	DedupeRequired bool
	// DispatchTimeout bounds the outbound send. <= 0 uses 15s.
	DispatchTimeout time.Duration
}

// Gateway wires the verification, dedupe, parsing, decision, and persistence
// steps together. One instance serves all handler goroutines; the only shared
// mutable state is the counter set and the dedupe store, both safe.
type Gateway struct {
	verifier   *webhook.Verifier
	dedupe     dedupe.Store
	engine     *negotiation.Engine
	leads      LeadStore
	campaigns  CampaignStore
	dispatcher Dispatcher
	cfg        Config
	counters   *Counters
}

// New assembles a Gateway.
func New(v *webhook.Verifier, d dedupe.Store, e *negotiation.Engine,
	leads LeadStore, campaigns CampaignStore, dispatcher Dispatcher, cfg Config) *Gateway {
	if cfg.DispatchTimeout <= 0 {
		cfg.DispatchTimeout = 15 * time.Second
	}
	return &Gateway{
		verifier:   v,
		dedupe:     d,
		engine:     e,
		leads:      leads,
		campaigns:  campaigns,
		dispatcher: dispatcher,
		cfg:        cfg,
		counters:   &Counters{},
	}
}

// Counters returns the gateway's event counters for the stats endpoint.
func (g *Gateway) Counters() *Counters { return g.counters }

// Handle processes one webhook delivery. The error return is reserved for
// conditions the provider should act on: webhook.ErrMalformedRequest (400),
// webhook.ErrInvalidSignature (401), ErrDedupeUnavailable and persistence
// failures (500, provider retries). Everything else — duplicates, irrelevant
// event kinds, unknown leads, dispatch failures — is a Result, not an error.
func (g *Gateway) Handle(ctx context.Context, headers http.Header, body []byte) (*Result, error) {
	g.counters.received.Add(1)

	// Verification runs on the raw bytes, before anything else touches the
	// event. Never dedupe-mark unverified input: an attacker could poison
	// the window and suppress the real delivery.
	event, err := g.verifier.Verify(headers, body)
	if err != nil {
		g.counters.rejected.Add(1)
		return nil, err
	}
	g.counters.verified.Add(1)

	seen, err := g.dedupe.MarkSeen(ctx, event.EventID)
	if err != nil {
		if g.cfg.DedupeRequired {
			g.counters.rejected.Add(1)
			return nil, fmt.Errorf("%w: %v", ErrDedupeUnavailable, err)
		}
		// Degrade open: duplicate processing beats a retry storm against
		// the provider's webhook queue.
		g.counters.dedupeDegraded.Add(1)
		logger.Warn("dedupe store unreachable, processing without dedupe",
			"event_id", event.EventID, "error", err.Error())
	} else if seen {
		g.counters.deduplicated.Add(1)
		logger.Debug("duplicate event suppressed", "event_id", event.EventID)
		return &Result{Outcome: OutcomeDuplicate, Event: event}, nil
	}

	if event.EventType != domain.EventMessageReceived {
		logger.Debug("event kind ignored", "event_id", event.EventID, "event_type", string(event.EventType))
		return &Result{Outcome: OutcomeIgnored, Event: event}, nil
	}

	reply := parser.Parse(event.Message.Body())

	lead, err := g.lookupLead(ctx, event)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Not an error: surface the parsed reply for manual correlation
			// and skip the state transition.
			g.counters.unknownLead.Add(1)
			logger.Warn("no lead for inbound event",
				"event_id", event.EventID, "thread", event.Message.ThreadID, "from", event.Message.From)
			return &Result{Outcome: OutcomeNoLead, Event: event, Reply: &reply}, nil
		}
		return nil, fmt.Errorf("lookup lead: %w", err)
	}

	campaign, err := g.campaigns.Get(ctx, lead.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("load campaign %s: %w", lead.CampaignID, err)
	}

	decision := g.engine.Decide(reply, *campaign, lead)

	g.applyDecision(lead, decision, event)
	if err := g.leads.Update(ctx, lead); err != nil {
		return nil, fmt.Errorf("persist lead %s: %w", lead.ID, err)
	}
	g.counters.processed.Add(1)

	logger.Info("event processed",
		"event_id", event.EventID, "lead", lead.ID,
		"action", string(decision.Action), "status", string(lead.Status),
		"rationale", decision.Rationale[0])

	result := &Result{
		Outcome:  OutcomeProcessed,
		Event:    event,
		Reply:    &reply,
		Lead:     lead,
		Decision: &decision,
	}

	if decision.AutoSend() {
		result.DispatchErr = g.dispatch(ctx, lead, decision, event.Message.ThreadID)
	}
	return result, nil
}

// lookupLead correlates the event to a lead: thread id first, sender address
// as the fallback for first replies on threads we have not recorded yet.
func (g *Gateway) lookupLead(ctx context.Context, event *domain.InboundEvent) (*domain.Lead, error) {
	if event.Message.ThreadID != "" {
		lead, err := g.leads.GetByThread(ctx, event.Message.ThreadID)
		if err == nil {
			return lead, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	if event.Message.From == "" {
		return nil, domain.ErrNotFound
	}
	return g.leads.GetByAddress(ctx, event.Message.From)
}

// applyDecision mutates the transient lead copy: contact metadata plus the
// lifecycle transition the decision maps to. Everything lands in the same
// repository write.
func (g *Gateway) applyDecision(lead *domain.Lead, decision domain.NegotiationDecision, event *domain.InboundEvent) {
	receivedAt := event.Message.ReceivedAt
	if !receivedAt.IsZero() {
		lead.LastContactAt = &receivedAt
	}
	if lead.ThreadID == "" && event.Message.ThreadID != "" {
		lead.ThreadID = event.Message.ThreadID
	}

	// An inbound reply moves pre-reply leads to replied before the decision
	// transition applies.
	if domain.CanTransition(lead.Status, domain.LeadReplied) {
		lead.Status = domain.LeadReplied
	}

	target, ok := decision.Action.LeadStatus()
	if !ok {
		return
	}
	if err := lead.TransitionTo(target); err != nil {
		// Terminal leads stay put; the decision is still auditable.
		logger.Warn("decision transition not applied",
			"lead", lead.ID, "current", string(lead.Status), "target", string(target))
	}
}

// dispatch hands the draft to the outbound channel under a bounded timeout.
// A failed or timed-out send is a retryable delivery problem, never a
// decision failure: the lead transition above stands either way.
func (g *Gateway) dispatch(ctx context.Context, lead *domain.Lead, decision domain.NegotiationDecision, threadID string) error {
	dctx, cancel := context.WithTimeout(ctx, g.cfg.DispatchTimeout)
	defer cancel()

	if threadID == "" {
		threadID = lead.ThreadID
	}
	if err := g.dispatcher.Dispatch(dctx, lead, decision, threadID); err != nil {
		g.counters.dispatchFailed.Add(1)
		logger.Error("dispatch failed", "lead", lead.ID, "thread", threadID, "error", err.Error())
		return err
	}
	g.counters.dispatched.Add(1)

	lead.OutboundCount++
	now := time.Now()
	lead.LastContactAt = &now
	if err := g.leads.Update(ctx, lead); err != nil {
		// Bookkeeping only; the reply is already out.
		logger.Warn("outbound bookkeeping write failed", "lead", lead.ID, "error", err.Error())
	}
	return nil
}
