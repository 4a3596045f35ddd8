package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/outreachlabs/dealpilot/internal/domain"
)

// LeadRepo implements the gateway's lead store against PostgreSQL.
type LeadRepo struct{ db *sql.DB }

// NewLeadRepo creates a Postgres-backed lead repository.
func NewLeadRepo(db *sql.DB) *LeadRepo { return &LeadRepo{db: db} }

const leadColumns = `id, campaign_id, handle, COALESCE(email,''), COALESCE(display_name,''),
	platform, status, COALESCE(thread_id,''), outbound_count, last_contact_at, created_at, updated_at`

func scanLead(row interface{ Scan(...interface{}) error }) (*domain.Lead, error) {
	l := &domain.Lead{}
	err := row.Scan(
		&l.ID, &l.CampaignID, &l.Handle, &l.Email, &l.DisplayName,
		&l.Platform, &l.Status, &l.ThreadID, &l.OutboundCount,
		&l.LastContactAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan lead: %w", err)
	}
	return l, nil
}

// Get fetches a lead by id.
func (r *LeadRepo) Get(ctx context.Context, id string) (*domain.Lead, error) {
	return scanLead(r.db.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = $1`, id))
}

// GetByThread fetches the lead bound to a mailbox thread.
func (r *LeadRepo) GetByThread(ctx context.Context, threadID string) (*domain.Lead, error) {
	return scanLead(r.db.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE thread_id = $1`, threadID))
}

// GetByAddress fetches a lead by contact email, case-insensitively.
func (r *LeadRepo) GetByAddress(ctx context.Context, address string) (*domain.Lead, error) {
	return scanLead(r.db.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE LOWER(email) = LOWER($1)`, address))
}

// Update writes back status and contact metadata in one statement. This is
// the per-cycle atomic write; note that two concurrent cycles on the same
// lead are not serialized — the later write wins.
func (r *LeadRepo) Update(ctx context.Context, l *domain.Lead) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE leads
		SET status = $2, thread_id = NULLIF($3,''), outbound_count = $4,
		    last_contact_at = $5, updated_at = NOW()
		WHERE id = $1
	`, l.ID, l.Status, l.ThreadID, l.OutboundCount, l.LastContactAt)
	if err != nil {
		return fmt.Errorf("update lead %s: %w", l.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Insert creates a new lead row. Used by discovery, never by the gateway.
func (r *LeadRepo) Insert(ctx context.Context, l *domain.Lead) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO leads (id, campaign_id, handle, email, display_name, platform,
		                   status, thread_id, outbound_count, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4,''), NULLIF($5,''), $6, $7, NULLIF($8,''), $9, NOW(), NOW())
	`, l.ID, l.CampaignID, l.Handle, l.Email, l.DisplayName, l.Platform,
		l.Status, l.ThreadID, l.OutboundCount)
	if err != nil {
		return fmt.Errorf("insert lead %s: %w", l.Handle, err)
	}
	return nil
}

// CountCreatedSince returns how many leads a campaign gained since the given
// time. Discovery uses it to enforce its daily queueing budget.
func (r *LeadRepo) CountCreatedSince(ctx context.Context, campaignID string, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM leads WHERE campaign_id = $1 AND created_at >= $2`,
		campaignID, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count leads since: %w", err)
	}
	return n, nil
}

// ListFilter narrows List results.
type ListFilter struct {
	Status string
	Limit  int
	Offset int
}

// List returns a page of leads plus the unpaged total.
func (r *LeadRepo) List(ctx context.Context, f ListFilter) ([]domain.Lead, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	countQ := `SELECT COUNT(*) FROM leads`
	var countArgs []interface{}
	if f.Status != "" {
		countQ += ` WHERE status = $1`
		countArgs = append(countArgs, f.Status)
	}
	var total int
	if err := r.db.QueryRowContext(ctx, countQ, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	q := `SELECT ` + leadColumns + ` FROM leads`
	var args []interface{}
	idx := 1
	if f.Status != "" {
		q += fmt.Sprintf(" WHERE status = $%d", idx)
		args = append(args, f.Status)
		idx++
	}
	q += fmt.Sprintf(" ORDER BY updated_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var leads []domain.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, *l)
	}
	return leads, total, rows.Err()
}
