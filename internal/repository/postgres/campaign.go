package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/outreachlabs/dealpilot/internal/domain"
)

// CampaignRepo reads campaign guardrails and offer menus. The negotiation
// core never writes campaigns; they belong to the campaign operator.
type CampaignRepo struct{ db *sql.DB }

// NewCampaignRepo creates a Postgres-backed campaign repository.
func NewCampaignRepo(db *sql.DB) *CampaignRepo { return &CampaignRepo{db: db} }

// Get fetches a campaign with its guardrails and ordered offer menu. Offers
// are stored as a JSONB array so the menu order survives round trips.
func (r *CampaignRepo) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	c := &domain.Campaign{}
	var offersJSON []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(brand,''),
		       max_usd_per_deal, escalate_over_pct,
		       escalate_on_exclusivity, escalate_on_whitelisting, escalate_on_unclear_usage,
		       offers, created_at, updated_at
		FROM campaigns
		WHERE id = $1
	`, id).Scan(
		&c.ID, &c.Name, &c.Brand,
		&c.Guardrails.MaxUSDPerDeal, &c.Guardrails.EscalateOverPct,
		&c.Guardrails.EscalateOnExclusivity, &c.Guardrails.EscalateOnWhitelisting,
		&c.Guardrails.EscalateOnUnclearUsage,
		&offersJSON, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign %s: %w", id, err)
	}
	if len(offersJSON) > 0 {
		if err := json.Unmarshal(offersJSON, &c.Offers); err != nil {
			return nil, fmt.Errorf("decode offers for campaign %s: %w", id, err)
		}
	}
	return c, nil
}
