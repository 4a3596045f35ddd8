package discovery

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/outreachlabs/dealpilot/internal/domain"
	"github.com/outreachlabs/dealpilot/internal/pkg/logger"
)

// Searcher is the slice of SearchClient the discoverer needs.
type Searcher interface {
	SearchCreators(ctx context.Context, query string, limit int) ([]Prospect, error)
}

// LeadInserter seeds the lead store. *postgres.LeadRepo satisfies it.
type LeadInserter interface {
	Insert(ctx context.Context, l *domain.Lead) error
}

// Limits is the injected daily budget; it replaces any notion of ambient
// process-global counters. The caller owns reading the day's spent count
// from wherever it persists it.
type Limits struct {
	DailyMax int
	Spent    int
}

// Remaining returns how many new leads may still be queued today.
func (l Limits) Remaining() int {
	if l.DailyMax <= 0 {
		return 0
	}
	if n := l.DailyMax - l.Spent; n > 0 {
		return n
	}
	return 0
}

// Discoverer runs one search-score-seed pass per campaign.
type Discoverer struct {
	search   Searcher
	leads    LeadInserter
	minScore int
}

// NewDiscoverer creates a Discoverer. minScore <= 0 uses 50.
func NewDiscoverer(search Searcher, leads LeadInserter, minScore int) *Discoverer {
	if minScore <= 0 {
		minScore = 50
	}
	return &Discoverer{search: search, leads: leads, minScore: minScore}
}

// Run searches for prospects, scores them, and inserts qualifying ones as
// queued leads, stopping at the remaining daily budget. Returns how many
// leads were queued.
func (d *Discoverer) Run(ctx context.Context, campaignID, query string, limits Limits) (int, error) {
	budget := limits.Remaining()
	if budget == 0 {
		logger.Info("discovery skipped, daily budget exhausted", "campaign", campaignID)
		return 0, nil
	}

	prospects, err := d.search.SearchCreators(ctx, query, budget*3)
	if err != nil {
		return 0, fmt.Errorf("search creators: %w", err)
	}

	queued := 0
	for _, p := range prospects {
		if queued >= budget {
			break
		}
		score := Score(p)
		if score < d.minScore {
			continue
		}
		lead := &domain.Lead{
			ID:          uuid.New().String(),
			CampaignID:  campaignID,
			Handle:      p.Handle,
			Email:       p.Email,
			DisplayName: p.DisplayName,
			Platform:    p.Platform,
			Status:      domain.LeadQueued,
		}
		if err := d.leads.Insert(ctx, lead); err != nil {
			// Usually a uniqueness conflict with an already-known prospect.
			logger.Debug("skip prospect insert", "handle", p.Handle, "error", err.Error())
			continue
		}
		logger.Info("lead queued", "handle", p.Handle, "campaign", campaignID, "score", score)
		queued++
	}
	return queued, nil
}
