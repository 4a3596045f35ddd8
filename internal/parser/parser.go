// Package parser extracts structured negotiation signals from free-text
// replies. Parse is total: it never fails, it just leaves absent signals
// unset. It is a deterministic keyword heuristic, deliberately not a model.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/outreachlabs/dealpilot/internal/domain"
)

// Intent keyword sets, checked in a fixed priority order. Multiple sets can
// co-occur in one message ("thanks but not interested, my rate is $5000"),
// so the order is a deliberate tie-break: the first matching set wins.
var (
	negativePhrases = []string{"not interested", "no thanks", "no thank you", "not looking"}

	interestPhrases = []string{"interested", "sounds great", "sounds good", "love to work",
		"would love", "keen to", "open to this", "open to collab"}

	ratePhrases = []string{"$", "usd", "dollars", "per post", "my rate", "rate is"}

	infoPhrases = []string{"more info", "more information", "more details", "tell me more",
		"what's the campaign", "what is the campaign", "can you share", "which product"}

	acceptPhrases = []string{"i accept", "let's do it", "lets do it", "deal!", "works for me",
		"i'm in", "im in", "agreed", "sign me up"}

	counterPhrases = []string{"how about", "counter", "can you do", "could you do",
		"meet me at", "i could do", "best i can do"}
)

var (
	// "pass" alone would match inside words like "passion", so it gets a
	// word-boundary check instead of a substring check.
	passWord = regexp.MustCompile(`(^|\W)pass(\W|$)`)

	// Currency-symbol rate: $1,250 or $99.50. Commas and an optional
	// two-decimal fraction allowed.
	symbolRate = regexp.MustCompile(`[$]\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)

	// Fallback: "500 usd", "1,200 dollars", "300 bucks".
	wordRate = regexp.MustCompile(`([0-9][0-9,]*(?:\.[0-9]{1,2})?)\s*(?:usd|dollars|bucks)\b`)

	timelineSpan = regexp.MustCompile(`(?:within|by|deadline|due)\s+(?:the\s+)?([0-9]+)\s*(days?|weeks?|months?)`)
)

// Parse extracts intent, rate, flags, and timeline from raw reply text.
// RawText is kept verbatim on the result for audit.
func Parse(raw string) domain.ParsedReply {
	text := strings.ToLower(raw)

	reply := domain.ParsedReply{
		Intent:  detectIntent(text),
		RawText: raw,
	}

	if rate, ok := extractRate(text); ok {
		reply.RateUSD = &rate
	}

	// Flags are independent substring checks; they stack with each other
	// and with any intent.
	reply.AsksExclusivity = strings.Contains(text, "exclusiv")
	reply.AsksWhitelisting = strings.Contains(text, "whitelist") ||
		strings.Contains(text, "paid usage") ||
		strings.Contains(text, "usage rights")

	if span := timelineSpan.FindString(text); span != "" {
		reply.Timeline = span
	}

	return reply
}

// detectIntent walks the keyword sets in priority order; the first match
// wins and later sets are never consulted.
func detectIntent(text string) domain.ReplyIntent {
	if containsAny(text, negativePhrases) || passWord.MatchString(text) {
		return domain.IntentNotInterested
	}
	if containsAny(text, interestPhrases) {
		return domain.IntentInterested
	}
	if containsAny(text, ratePhrases) {
		return domain.IntentSendsRate
	}
	if containsAny(text, infoPhrases) {
		return domain.IntentNeedsInfo
	}
	if containsAny(text, acceptPhrases) {
		return domain.IntentAccepts
	}
	if containsAny(text, counterPhrases) {
		return domain.IntentCounterOffer
	}
	return domain.IntentOther
}

// extractRate pulls the first currency-symbol amount, falling back to the
// first "<number> usd/dollars/bucks" form. Only the first match is used.
func extractRate(text string) (float64, bool) {
	m := symbolRate.FindStringSubmatch(text)
	if m == nil {
		m = wordRate.FindStringSubmatch(text)
	}
	if m == nil {
		return 0, false
	}
	rate, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || rate <= 0 {
		return 0, false
	}
	return rate, true
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
