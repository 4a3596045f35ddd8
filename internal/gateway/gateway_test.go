package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outreachlabs/dealpilot/internal/dedupe"
	"github.com/outreachlabs/dealpilot/internal/domain"
	"github.com/outreachlabs/dealpilot/internal/negotiation"
	"github.com/outreachlabs/dealpilot/internal/webhook"
)

const testSecret = "whsec_gateway_test"

// fakeLeadStore keeps one lead in memory and records writes.
type fakeLeadStore struct {
	lead    *domain.Lead
	updates []domain.Lead
	failGet error
}

func (f *fakeLeadStore) GetByThread(ctx context.Context, threadID string) (*domain.Lead, error) {
	if f.failGet != nil {
		return nil, f.failGet
	}
	if f.lead == nil || f.lead.ThreadID != threadID {
		return nil, domain.ErrNotFound
	}
	copy := *f.lead
	return &copy, nil
}

func (f *fakeLeadStore) GetByAddress(ctx context.Context, address string) (*domain.Lead, error) {
	if f.failGet != nil {
		return nil, f.failGet
	}
	if f.lead == nil || f.lead.Email != address {
		return nil, domain.ErrNotFound
	}
	copy := *f.lead
	return &copy, nil
}

func (f *fakeLeadStore) Update(ctx context.Context, l *domain.Lead) error {
	f.updates = append(f.updates, *l)
	copy := *l
	f.lead = &copy
	return nil
}

type fakeCampaignStore struct{ campaign domain.Campaign }

func (f *fakeCampaignStore) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	if id != f.campaign.ID {
		return nil, domain.ErrNotFound
	}
	c := f.campaign
	return &c, nil
}

type fakeDispatcher struct {
	calls int
	err   error
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, lead *domain.Lead, d domain.NegotiationDecision, threadID string) error {
	f.calls++
	return f.err
}

type fixture struct {
	gw         *Gateway
	leads      *fakeLeadStore
	dispatcher *fakeDispatcher
	mr         *miniredis.Miniredis
}

func setup(t *testing.T, cfg Config) *fixture {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	engine, err := negotiation.New()
	require.NoError(t, err)

	leads := &fakeLeadStore{lead: &domain.Lead{
		ID: "lead_1", CampaignID: "cmp_1", Handle: "@jordan", Email: "jordan@example.com",
		DisplayName: "Jordan", Status: domain.LeadEmailSent, ThreadID: "thr_1",
	}}
	campaigns := &fakeCampaignStore{campaign: domain.Campaign{
		ID: "cmp_1", Name: "Summer Launch", Brand: "Acme",
		Guardrails: domain.Guardrails{
			MaxUSDPerDeal:          5000,
			EscalateOverPct:        20,
			EscalateOnExclusivity:  true,
			EscalateOnWhitelisting: true,
		},
		Offers: []domain.Offer{
			{Key: "post_story", RateUSD: 500, UsageTerms: "organic only"},
		},
	}}
	dispatcher := &fakeDispatcher{}

	gw := New(
		webhook.NewVerifier(testSecret, time.Minute),
		dedupe.NewRedisStore(client, time.Hour),
		engine, leads, campaigns, dispatcher, cfg,
	)
	return &fixture{gw: gw, leads: leads, dispatcher: dispatcher, mr: mr}
}

func signedRequest(t *testing.T, eventID, eventType, text string) (http.Header, []byte) {
	t.Helper()
	body := []byte(fmt.Sprintf(`{
		"event_id": %q,
		"event_type": %q,
		"message": {
			"id": "msg_1", "inbox_id": "inbox_1", "thread_id": "thr_1",
			"from": "jordan@example.com", "to": ["outreach@acme.com"],
			"text": %q, "received_at": "2026-08-01T12:00:00Z"
		}
	}`, eventID, eventType, text))

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	h := http.Header{}
	h.Set(webhook.HeaderMessageID, "wh_1")
	h.Set(webhook.HeaderTimestamp, timestamp)
	h.Set(webhook.HeaderSignature, webhook.Sign([]byte(testSecret), "wh_1", timestamp, body))
	return h, body
}

func TestHandle_FullRun(t *testing.T) {
	f := setup(t, Config{})
	headers, body := signedRequest(t, "evt_1", "message.received", "I'm in, my rate is $450 per post")

	res, err := f.gw.Handle(context.Background(), headers, body)
	require.NoError(t, err)
	assert.Equal(t, OutcomeProcessed, res.Outcome)
	require.NotNil(t, res.Decision)
	assert.Equal(t, domain.ActionAccept, res.Decision.Action)
	assert.Equal(t, domain.LeadWon, f.leads.lead.Status)
	assert.Equal(t, 1, f.dispatcher.calls)
	assert.NotNil(t, f.leads.lead.LastContactAt)
}

func TestHandle_IdempotentUnderRetries(t *testing.T) {
	f := setup(t, Config{})
	headers, body := signedRequest(t, "evt_1", "message.received", "sounds great, 450 usd works")

	res, err := f.gw.Handle(context.Background(), headers, body)
	require.NoError(t, err)
	assert.Equal(t, OutcomeProcessed, res.Outcome)
	transitions := len(f.leads.updates)

	for i := 0; i < 5; i++ {
		res, err = f.gw.Handle(context.Background(), headers, body)
		require.NoError(t, err)
		assert.Equal(t, OutcomeDuplicate, res.Outcome)
	}
	assert.Equal(t, transitions, len(f.leads.updates), "replays must not re-transition")
	assert.Equal(t, 1, f.dispatcher.calls, "at most one dispatch attempt")
	assert.EqualValues(t, 5, f.gw.Counters().Snapshot()["events_deduped"])
}

func TestHandle_InvalidSignature(t *testing.T) {
	f := setup(t, Config{})
	headers, body := signedRequest(t, "evt_1", "message.received", "hello")
	headers.Set(webhook.HeaderSignature, "deadbeef")

	_, err := f.gw.Handle(context.Background(), headers, body)
	assert.ErrorIs(t, err, webhook.ErrInvalidSignature)

	// Rejected events must not poison the dedupe window.
	headers, body = signedRequest(t, "evt_1", "message.received", "hello")
	res, err := f.gw.Handle(context.Background(), headers, body)
	require.NoError(t, err)
	assert.Equal(t, OutcomeProcessed, res.Outcome)
}

func TestHandle_MalformedRequest(t *testing.T) {
	f := setup(t, Config{})
	_, body := signedRequest(t, "evt_1", "message.received", "hello")

	_, err := f.gw.Handle(context.Background(), http.Header{}, body)
	assert.ErrorIs(t, err, webhook.ErrMalformedRequest)
}

func TestHandle_IrrelevantEventKind(t *testing.T) {
	f := setup(t, Config{})
	headers, body := signedRequest(t, "evt_2", "message.sent", "n/a")

	res, err := f.gw.Handle(context.Background(), headers, body)
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, res.Outcome)
	assert.Empty(t, f.leads.updates)
	assert.Equal(t, 0, f.dispatcher.calls)
}

func TestHandle_UnknownLead(t *testing.T) {
	f := setup(t, Config{})
	f.leads.lead = nil
	headers, body := signedRequest(t, "evt_3", "message.received", "my rate is $700")

	res, err := f.gw.Handle(context.Background(), headers, body)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoLead, res.Outcome)
	require.NotNil(t, res.Reply, "parsed reply surfaced for manual correlation")
	assert.Equal(t, 700.0, res.Reply.Rate())
	assert.Nil(t, res.Decision)
	assert.Equal(t, 0, f.dispatcher.calls)
}

func TestHandle_DedupeOutageDegradesOpen(t *testing.T) {
	f := setup(t, Config{})
	f.mr.Close() // redis gone

	headers, body := signedRequest(t, "evt_4", "message.received", "interested!")
	res, err := f.gw.Handle(context.Background(), headers, body)
	require.NoError(t, err, "default policy processes without dedupe")
	assert.Equal(t, OutcomeProcessed, res.Outcome)
	assert.EqualValues(t, 1, f.gw.Counters().Snapshot()["dedupe_degraded"])
}

func TestHandle_DedupeOutageRequiredFailsClosed(t *testing.T) {
	f := setup(t, Config{DedupeRequired: true})
	f.mr.Close()

	headers, body := signedRequest(t, "evt_5", "message.received", "interested!")
	_, err := f.gw.Handle(context.Background(), headers, body)
	assert.ErrorIs(t, err, ErrDedupeUnavailable)
	assert.Empty(t, f.leads.updates)
}

func TestHandle_DispatchFailureKeepsDecision(t *testing.T) {
	f := setup(t, Config{})
	f.dispatcher.err = errors.New("mailbox 503")

	headers, body := signedRequest(t, "evt_6", "message.received", "rate is $450")
	res, err := f.gw.Handle(context.Background(), headers, body)
	require.NoError(t, err)
	assert.Equal(t, OutcomeProcessed, res.Outcome)
	assert.Error(t, res.DispatchErr)
	assert.Equal(t, domain.LeadWon, f.leads.lead.Status, "transition stands despite failed send")
	assert.EqualValues(t, 1, f.gw.Counters().Snapshot()["dispatch_failure"])
}

func TestHandle_PassDoesNotDispatch(t *testing.T) {
	f := setup(t, Config{})
	headers, body := signedRequest(t, "evt_7", "message.received", "not interested, sorry")

	res, err := f.gw.Handle(context.Background(), headers, body)
	require.NoError(t, err)
	require.NotNil(t, res.Decision)
	assert.Equal(t, domain.ActionPass, res.Decision.Action)
	assert.Equal(t, domain.LeadLost, f.leads.lead.Status)
	assert.Equal(t, 0, f.dispatcher.calls)
}
