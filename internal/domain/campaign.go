package domain

import "time"

// Offer is one entry in a campaign's ordered offer menu.
type Offer struct {
	Key        string  `json:"key"`
	RateUSD    float64 `json:"rate_usd"`
	UsageTerms string  `json:"usage_terms,omitempty"`
}

// Guardrails bound what the negotiation engine may decide on its own.
// Anything outside these limits is escalated to an operator.
type Guardrails struct {
	MaxUSDPerDeal          float64 `json:"max_usd_per_deal" db:"max_usd_per_deal"`
	EscalateOverPct        float64 `json:"escalate_over_pct" db:"escalate_over_pct"`
	EscalateOnExclusivity  bool    `json:"escalate_on_exclusivity" db:"escalate_on_exclusivity"`
	EscalateOnWhitelisting bool    `json:"escalate_on_whitelisting" db:"escalate_on_whitelisting"`
	EscalateOnUnclearUsage bool    `json:"escalate_on_unclear_usage" db:"escalate_on_unclear_usage"`
}

// EscalationThreshold is the rate above which a proposal escalates even when
// it clears the hard ceiling check. base is the ceiling the percentage is
// computed against; under the default configuration this equals MaxUSDPerDeal.
func (g Guardrails) EscalationThreshold(base float64) float64 {
	return base * (1 + g.EscalateOverPct/100)
}

// Campaign owns the guardrails and offer menu for a negotiation. It is
// immutable for the duration of a negotiation and read-only to the gateway.
type Campaign struct {
	ID         string     `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	Brand      string     `json:"brand" db:"brand"`
	Guardrails Guardrails `json:"guardrails"`
	Offers     []Offer    `json:"offers"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// HighestOffer returns the offer with the largest baseline rate, or nil when
// the menu is empty. Ties keep the earlier menu entry.
func (c Campaign) HighestOffer() *Offer {
	var best *Offer
	for i := range c.Offers {
		if best == nil || c.Offers[i].RateUSD > best.RateUSD {
			best = &c.Offers[i]
		}
	}
	return best
}

// HasUsageTerms reports whether any offer in the menu defines usage terms.
func (c Campaign) HasUsageTerms() bool {
	for _, o := range c.Offers {
		if o.UsageTerms != "" {
			return true
		}
	}
	return false
}
