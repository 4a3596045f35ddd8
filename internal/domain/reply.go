package domain

// ReplyIntent classifies what a creator's reply is asking for.
type ReplyIntent string

const (
	IntentInterested    ReplyIntent = "interested"
	IntentNotInterested ReplyIntent = "not_interested"
	IntentNeedsInfo     ReplyIntent = "needs_info"
	IntentSendsRate     ReplyIntent = "sends_rate"
	IntentAccepts       ReplyIntent = "accepts"
	IntentCounterOffer  ReplyIntent = "counter_offer"
	IntentOther         ReplyIntent = "other"
)

// ParsedReply is the structured view of a free-text reply. It is derived,
// ephemeral, and never persisted on its own. Intent is always populated
// (IntentOther when nothing matched); RateUSD, when set, is a positive
// amount extracted from the raw text.
type ParsedReply struct {
	Intent           ReplyIntent `json:"intent"`
	RateUSD          *float64    `json:"rate_usd,omitempty"`
	AsksExclusivity  bool        `json:"asks_exclusivity,omitempty"`
	AsksWhitelisting bool        `json:"asks_whitelisting,omitempty"`
	Timeline         string      `json:"timeline,omitempty"`
	RawText          string      `json:"raw_text"`
}

// HasRate reports whether a usable rate was extracted.
func (r ParsedReply) HasRate() bool {
	return r.RateUSD != nil && *r.RateUSD > 0
}

// Rate returns the extracted rate, or 0 when absent.
func (r ParsedReply) Rate() float64 {
	if r.RateUSD == nil {
		return 0
	}
	return *r.RateUSD
}
