// Package negotiation turns a parsed reply into a decision: accept, counter,
// clarify, pass, or escalate.
package negotiation

import (
	"fmt"

	"github.com/outreachlabs/dealpilot/internal/domain"
)

// Engine evaluates the decision ladder and renders outbound drafts. The
// ladder itself is pure: for a fixed (reply, campaign, lead) the decision is
// always identical. The engine holds only parsed templates, which are
// immutable after New, so it is safe for concurrent use.
type Engine struct {
	drafts *drafter
}

// New creates an Engine with the built-in draft templates. It fails only on
// a template syntax error, which is a programming bug, not a runtime state.
func New() (*Engine, error) {
	d, err := newDrafter()
	if err != nil {
		return nil, fmt.Errorf("negotiation templates: %w", err)
	}
	return &Engine{drafts: d}, nil
}

// Decide runs the ladder top-down; the first matching rule wins and
// evaluation stops. The rule order is behavior, not style — several rules
// can match the same reply (a message can carry both "not interested" and a
// rate), and reordering would change the outcome. lead may be nil when the
// reply could not be correlated; drafts then address a generic recipient.
//
// The two escalation threshold rules are intentionally separate. Under the
// default configuration the percentage threshold is never lower than the
// hard ceiling, so the second check only fires in configurations where the
// escalation base differs from MaxUSDPerDeal. Do not collapse them.
func (e *Engine) Decide(reply domain.ParsedReply, campaign domain.Campaign, lead *domain.Lead) domain.NegotiationDecision {
	g := campaign.Guardrails
	rate := reply.Rate()

	// 1. Hard no wins over everything, including any rate in the message.
	if reply.Intent == domain.IntentNotInterested {
		return domain.NegotiationDecision{
			Action:    domain.ActionPass,
			Rationale: []string{"creator declined (intent not-interested); passing without reply"},
		}
	}

	// 2. Rate above the hard per-deal ceiling (strict >; the ceiling itself
	// is negotiable).
	if reply.HasRate() && rate > g.MaxUSDPerDeal {
		return domain.NegotiationDecision{
			Action: domain.ActionEscalate,
			Rationale: []string{fmt.Sprintf(
				"proposed rate $%.2f exceeds max $%.2f per deal; routing to operator", rate, g.MaxUSDPerDeal)},
		}
	}

	// 3. Rate above the percentage escalation threshold.
	if threshold := g.EscalationThreshold(g.MaxUSDPerDeal); reply.HasRate() && rate > threshold {
		return domain.NegotiationDecision{
			Action: domain.ActionEscalate,
			Rationale: []string{fmt.Sprintf(
				"proposed rate $%.2f exceeds escalation threshold $%.2f (ceiling $%.2f +%.0f%%); routing to operator",
				rate, threshold, g.MaxUSDPerDeal, g.EscalateOverPct)},
		}
	}

	// 4. Exclusivity ask.
	if reply.AsksExclusivity && g.EscalateOnExclusivity {
		return domain.NegotiationDecision{
			Action:    domain.ActionEscalate,
			Rationale: []string{"creator requested exclusivity and campaign escalates on exclusivity"},
		}
	}

	// 5. Whitelisting / paid-usage ask.
	if reply.AsksWhitelisting && g.EscalateOnWhitelisting {
		return domain.NegotiationDecision{
			Action:    domain.ActionEscalate,
			Rationale: []string{"creator requested whitelisting/paid usage and campaign escalates on whitelisting"},
		}
	}

	// 6. Creator sent a rate but the campaign's offer menu carries no usage
	// terms to quote back; ask instead of guessing.
	if !campaign.HasUsageTerms() && g.EscalateOnUnclearUsage && reply.Intent == domain.IntentSendsRate {
		return domain.NegotiationDecision{
			Action:    domain.ActionClarify,
			Rationale: []string{"usage terms unset on the offer menu; asking creator to clarify usage before quoting"},
			Draft:     e.drafts.render(tmplClarifyUsage, lead.Name(), bindings{"timeline": reply.Timeline}),
		}
	}

	// 7. Rate at or under some offer baseline — take it.
	if reply.HasRate() {
		for _, offer := range campaign.Offers {
			if rate <= offer.RateUSD {
				return domain.NegotiationDecision{
					Action: domain.ActionAccept,
					Rationale: []string{fmt.Sprintf(
						"proposed rate $%.2f is within offer %q baseline $%.2f; accepting", rate, offer.Key, offer.RateUSD)},
					Draft: e.drafts.render(tmplAccept, lead.Name(), bindings{
						"rate":  dollars(rate),
						"terms": offer.UsageTerms,
					}),
				}
			}
		}
	}

	// 8. Rate under the ceiling but above every baseline — counter with the
	// strongest offer on the menu.
	if reply.HasRate() && rate <= g.MaxUSDPerDeal {
		if offer := campaign.HighestOffer(); offer != nil {
			return domain.NegotiationDecision{
				Action: domain.ActionCounter,
				Counter: &domain.CounterOffer{
					Key:        offer.Key,
					RateUSD:    offer.RateUSD,
					UsageTerms: offer.UsageTerms,
				},
				Rationale: []string{fmt.Sprintf(
					"proposed rate $%.2f is under max $%.2f but above every baseline; countering with offer %q at $%.2f",
					rate, g.MaxUSDPerDeal, offer.Key, offer.RateUSD)},
				Draft: e.drafts.render(tmplCounter, lead.Name(), bindings{
					"rate":  dollars(offer.RateUSD),
					"asked": dollars(rate),
					"terms": offer.UsageTerms,
				}),
			}
		}
	}

	// 9. Straight question — answer with campaign details.
	if reply.Intent == domain.IntentNeedsInfo {
		return domain.NegotiationDecision{
			Action:    domain.ActionClarify,
			Rationale: []string{"creator asked for more information; sending campaign details"},
			Draft: e.drafts.render(tmplClarifyDetails, lead.Name(), bindings{
				"campaign": campaign.Name,
				"brand":    campaign.Brand,
			}),
		}
	}

	// 10. Interest with no rate yet — ask for one.
	if reply.Intent == domain.IntentInterested {
		return domain.NegotiationDecision{
			Action:    domain.ActionClarify,
			Rationale: []string{"creator is interested but sent no rate; requesting a rate"},
			Draft:     e.drafts.render(tmplClarifyRate, lead.Name(), nil),
		}
	}

	// 11. Catch-all: keep the thread alive.
	return domain.NegotiationDecision{
		Action:    domain.ActionClarify,
		Rationale: []string{fmt.Sprintf("no rule matched (intent %s); sending generic follow-up", reply.Intent)},
		Draft:     e.drafts.render(tmplClarifyGeneric, lead.Name(), nil),
	}
}

func dollars(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("$%.0f", v)
	}
	return fmt.Sprintf("$%.2f", v)
}
