package domain

// DecisionAction is what the negotiation engine decided to do with a reply.
type DecisionAction string

const (
	ActionAccept   DecisionAction = "accept"
	ActionCounter  DecisionAction = "counter"
	ActionClarify  DecisionAction = "clarify"
	ActionPass     DecisionAction = "pass"
	ActionEscalate DecisionAction = "escalate"
)

// LeadStatus maps the action to the lifecycle state it drives the lead into.
func (a DecisionAction) LeadStatus() (LeadStatus, bool) {
	switch a {
	case ActionAccept:
		return LeadWon, true
	case ActionPass:
		return LeadLost, true
	case ActionEscalate:
		return LeadEscalated, true
	case ActionCounter, ActionClarify:
		return LeadNegotiating, true
	}
	return "", false
}

// CounterOffer is the offer a counter decision puts back on the table.
type CounterOffer struct {
	Key        string  `json:"key"`
	RateUSD    float64 `json:"rate_usd"`
	UsageTerms string  `json:"usage_terms,omitempty"`
}

// NegotiationDecision is the engine's output for one reply. Rationale is the
// audit trail: non-empty, ordered with the firing rule first, and quoting the
// numeric values compared so an auditor can verify the rule without
// re-running the engine. Draft is set only for accept/counter/clarify;
// pass/escalate never auto-send.
type NegotiationDecision struct {
	Action    DecisionAction `json:"action"`
	Counter   *CounterOffer  `json:"counter,omitempty"`
	Rationale []string       `json:"rationale"`
	Draft     string         `json:"draft,omitempty"`
}

// AutoSend reports whether the decision carries a draft meant for automatic
// dispatch on the lead's thread.
func (d NegotiationDecision) AutoSend() bool {
	switch d.Action {
	case ActionAccept, ActionCounter, ActionClarify:
		return d.Draft != ""
	}
	return false
}
