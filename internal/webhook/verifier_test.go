package webhook

import (
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test_0123456789"

func signedHeaders(t *testing.T, secret, messageID string, ts time.Time, body []byte) http.Header {
	t.Helper()
	timestamp := strconv.FormatInt(ts.Unix(), 10)
	h := http.Header{}
	h.Set(HeaderMessageID, messageID)
	h.Set(HeaderTimestamp, timestamp)
	h.Set(HeaderSignature, Sign([]byte(secret), messageID, timestamp, body))
	return h
}

func testBody(eventID string) []byte {
	return []byte(fmt.Sprintf(`{
		"event_id": %q,
		"event_type": "message.received",
		"message": {
			"id": "msg_1",
			"inbox_id": "inbox_1",
			"thread_id": "thr_1",
			"from": "creator@example.com",
			"to": ["outreach@brand.com"],
			"subject": "Re: collab",
			"text": "sounds interesting, my rate is $500",
			"received_at": "2026-08-01T12:00:00Z"
		}
	}`, eventID))
}

func TestVerify_Valid(t *testing.T) {
	v := NewVerifier(testSecret, time.Minute)
	now := time.Now()
	v.now = func() time.Time { return now }

	body := testBody("evt_123")
	ev, err := v.Verify(signedHeaders(t, testSecret, "wh_1", now, body), body)
	require.NoError(t, err)
	assert.Equal(t, "evt_123", ev.EventID)
	assert.Equal(t, "thr_1", ev.Message.ThreadID)
	assert.Equal(t, "creator@example.com", ev.Message.From)
}

func TestVerify_SingleByteMutationFails(t *testing.T) {
	v := NewVerifier(testSecret, time.Minute)
	now := time.Now()
	v.now = func() time.Time { return now }

	body := testBody("evt_123")
	headers := signedHeaders(t, testSecret, "wh_1", now, body)

	for _, i := range []int{0, len(body) / 2, len(body) - 1} {
		mutated := append([]byte(nil), body...)
		mutated[i] ^= 0x01
		_, err := v.Verify(headers, mutated)
		assert.ErrorIs(t, err, ErrInvalidSignature, "mutated byte %d", i)
	}
}

func TestVerify_MissingHeaders(t *testing.T) {
	v := NewVerifier(testSecret, time.Minute)
	body := testBody("evt_123")

	for _, drop := range []string{HeaderMessageID, HeaderTimestamp, HeaderSignature} {
		headers := signedHeaders(t, testSecret, "wh_1", time.Now(), body)
		headers.Del(drop)
		_, err := v.Verify(headers, body)
		assert.ErrorIs(t, err, ErrMalformedRequest, "missing %s", drop)
	}
}

func TestVerify_EmptyBody(t *testing.T) {
	v := NewVerifier(testSecret, time.Minute)
	headers := signedHeaders(t, testSecret, "wh_1", time.Now(), nil)
	_, err := v.Verify(headers, nil)
	assert.ErrorIs(t, err, ErrMalformedRequest)
}

func TestVerify_WrongSecret(t *testing.T) {
	v := NewVerifier(testSecret, time.Minute)
	now := time.Now()
	v.now = func() time.Time { return now }

	body := testBody("evt_123")
	_, err := v.Verify(signedHeaders(t, "whsec_other", "wh_1", now, body), body)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_MultipleCandidates(t *testing.T) {
	v := NewVerifier(testSecret, time.Minute)
	now := time.Now()
	v.now = func() time.Time { return now }

	body := testBody("evt_123")
	timestamp := strconv.FormatInt(now.Unix(), 10)
	good := Sign([]byte(testSecret), "wh_1", timestamp, body)
	stale := Sign([]byte("whsec_retired"), "wh_1", timestamp, body)

	headers := http.Header{}
	headers.Set(HeaderMessageID, "wh_1")
	headers.Set(HeaderTimestamp, timestamp)
	headers.Set(HeaderSignature, stale+", v1="+good)

	ev, err := v.Verify(headers, body)
	require.NoError(t, err)
	assert.Equal(t, "evt_123", ev.EventID)
}

func TestVerify_StaleTimestamp(t *testing.T) {
	v := NewVerifier(testSecret, time.Minute)
	now := time.Now()
	v.now = func() time.Time { return now }

	body := testBody("evt_123")
	headers := signedHeaders(t, testSecret, "wh_1", now.Add(-10*time.Minute), body)
	_, err := v.Verify(headers, body)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_UnparseableEventBody(t *testing.T) {
	v := NewVerifier(testSecret, time.Minute)
	now := time.Now()
	v.now = func() time.Time { return now }

	body := []byte("not json at all")
	headers := signedHeaders(t, testSecret, "wh_1", now, body)
	_, err := v.Verify(headers, body)
	assert.ErrorIs(t, err, ErrMalformedRequest)
}
