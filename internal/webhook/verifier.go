// Package webhook verifies inbound mailbox-provider webhook requests.
//
// The provider signs each delivery with HMAC-SHA256 over
// "messageID.timestamp.body" using a pre-shared secret. Verification runs on
// the exact byte sequence received; re-serializing the body before verifying
// would invalidate the signature.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/outreachlabs/dealpilot/internal/domain"
)

// Transport headers the provider sets on every delivery.
const (
	HeaderMessageID = "X-Mailbox-Message-Id"
	HeaderTimestamp = "X-Mailbox-Timestamp"
	HeaderSignature = "X-Mailbox-Signature"
)

var (
	// ErrMalformedRequest means the transport envelope is unusable: a
	// required header is missing, the body is empty, or the signed body is
	// not a valid event. Cheap rejection, no crypto involved.
	ErrMalformedRequest = errors.New("malformed webhook request")

	// ErrInvalidSignature means the signature did not verify, or the
	// timestamp fell outside the replay tolerance window.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// Verifier validates webhook deliveries. Stateless and safe for concurrent
// use from any number of handler goroutines.
type Verifier struct {
	secret    []byte
	tolerance time.Duration

	// now is swappable in tests.
	now func() time.Time
}

// NewVerifier creates a Verifier for the given shared secret. tolerance
// bounds how stale a delivery's timestamp may be; <= 0 uses 5 minutes.
func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	if tolerance <= 0 {
		tolerance = 5 * time.Minute
	}
	return &Verifier{
		secret:    []byte(secret),
		tolerance: tolerance,
		now:       time.Now,
	}
}

// Sign computes the hex signature for a delivery. Exported so clients and
// tests can produce valid deliveries.
func Sign(secret []byte, messageID, timestamp string, body []byte) string {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(messageID))
	h.Write([]byte("."))
	h.Write([]byte(timestamp))
	h.Write([]byte("."))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// Verify checks the delivery headers against the raw body and, on success,
// parses the body into an InboundEvent. Missing headers or an empty body
// reject with ErrMalformedRequest before any crypto runs. The signature
// header may carry several comma-separated candidates (the provider signs
// with every active secret during rotation); verification succeeds when any
// candidate matches. Comparison is constant-time.
func (v *Verifier) Verify(headers http.Header, body []byte) (*domain.InboundEvent, error) {
	messageID := headers.Get(HeaderMessageID)
	timestamp := headers.Get(HeaderTimestamp)
	signatures := headers.Get(HeaderSignature)

	if messageID == "" || timestamp == "" || signatures == "" {
		return nil, fmt.Errorf("%w: missing signature headers", ErrMalformedRequest)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedRequest)
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: unparseable timestamp %q", ErrMalformedRequest, timestamp)
	}
	age := v.now().Sub(time.Unix(ts, 0))
	if age > v.tolerance || age < -v.tolerance {
		return nil, fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
	}

	expected := Sign(v.secret, messageID, timestamp, body)
	if !matchAny(expected, signatures) {
		return nil, ErrInvalidSignature
	}

	var event domain.InboundEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("%w: invalid event body: %v", ErrMalformedRequest, err)
	}
	if event.EventID == "" {
		return nil, fmt.Errorf("%w: event_id missing", ErrMalformedRequest)
	}
	return &event, nil
}

// matchAny compares expected against each comma-separated candidate using a
// constant-time comparison. A "v1=" style scheme prefix on a candidate is
// tolerated and stripped.
func matchAny(expected, signatures string) bool {
	for _, candidate := range strings.Split(signatures, ",") {
		candidate = strings.TrimSpace(candidate)
		if i := strings.IndexByte(candidate, '='); i >= 0 && i < 4 {
			candidate = candidate[i+1:]
		}
		if hmac.Equal([]byte(expected), []byte(candidate)) {
			return true
		}
	}
	return false
}
