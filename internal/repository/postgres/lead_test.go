package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outreachlabs/dealpilot/internal/domain"
)

func leadRows(t *testing.T, l domain.Lead) *sqlmock.Rows {
	t.Helper()
	return sqlmock.NewRows([]string{
		"id", "campaign_id", "handle", "email", "display_name",
		"platform", "status", "thread_id", "outbound_count",
		"last_contact_at", "created_at", "updated_at",
	}).AddRow(
		l.ID, l.CampaignID, l.Handle, l.Email, l.DisplayName,
		l.Platform, l.Status, l.ThreadID, l.OutboundCount,
		l.LastContactAt, l.CreatedAt, l.UpdatedAt,
	)
}

func testLead() domain.Lead {
	now := time.Now()
	return domain.Lead{
		ID: "lead_1", CampaignID: "cmp_1", Handle: "@jordan", Email: "jordan@example.com",
		DisplayName: "Jordan", Platform: "instagram", Status: domain.LeadReplied,
		ThreadID: "thr_1", OutboundCount: 2, CreatedAt: now, UpdatedAt: now,
	}
}

func TestLeadRepo_GetByThread(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	want := testLead()
	mock.ExpectQuery("SELECT .+ FROM leads WHERE thread_id").
		WithArgs("thr_1").
		WillReturnRows(leadRows(t, want))

	got, err := NewLeadRepo(db).GetByThread(context.Background(), "thr_1")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, domain.LeadReplied, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepo_GetByAddress_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT .+ FROM leads WHERE LOWER\\(email\\)").
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = NewLeadRepo(db).GetByAddress(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepo_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	l := testLead()
	l.Status = domain.LeadNegotiating
	mock.ExpectExec("UPDATE leads").
		WithArgs(l.ID, string(l.Status), l.ThreadID, l.OutboundCount, l.LastContactAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewLeadRepo(db).Update(context.Background(), &l))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepo_Update_MissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	l := testLead()
	mock.ExpectExec("UPDATE leads").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, NewLeadRepo(db).Update(context.Background(), &l), domain.ErrNotFound)
}

func TestCampaignRepo_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	offers, err := json.Marshal([]domain.Offer{
		{Key: "post_story", RateUSD: 500, UsageTerms: "organic only"},
		{Key: "post_story_boost", RateUSD: 800},
	})
	require.NoError(t, err)

	now := time.Now()
	mock.ExpectQuery("SELECT .+ FROM campaigns").
		WithArgs("cmp_1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "brand",
			"max_usd_per_deal", "escalate_over_pct",
			"escalate_on_exclusivity", "escalate_on_whitelisting", "escalate_on_unclear_usage",
			"offers", "created_at", "updated_at",
		}).AddRow("cmp_1", "Summer Launch", "Acme", 5000.0, 20.0, true, true, false, offers, now, now))

	c, err := NewCampaignRepo(db).Get(context.Background(), "cmp_1")
	require.NoError(t, err)
	assert.Equal(t, 5000.0, c.Guardrails.MaxUSDPerDeal)
	require.Len(t, c.Offers, 2)
	assert.Equal(t, "post_story", c.Offers[0].Key)
	assert.Equal(t, 800.0, c.HighestOffer().RateUSD)
}
