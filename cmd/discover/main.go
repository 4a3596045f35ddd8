// Command discover runs one prospect discovery pass for a campaign: search
// the creator provider, score the results, and queue qualifying leads. Meant
// to run from cron; the daily budget is tracked by counting today's inserts.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	"github.com/outreachlabs/dealpilot/internal/config"
	"github.com/outreachlabs/dealpilot/internal/discovery"
	"github.com/outreachlabs/dealpilot/internal/pkg/logger"
	"github.com/outreachlabs/dealpilot/internal/repository/postgres"

	_ "github.com/lib/pq" // PostgreSQL driver
)

func main() {
	var (
		campaignID = flag.String("campaign", "", "campaign to queue leads for (required)")
		query      = flag.String("query", "", "creator search query (required)")
		configPath = flag.String("config", "config/config.yaml", "path to config file")
	)
	flag.Parse()

	if *campaignID == "" || *query == "" {
		flag.Usage()
		log.Fatal("both -campaign and -query are required")
	}

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(cfg.Logging.RedactPII)

	if !cfg.Discovery.Enabled {
		log.Fatal("discovery is disabled in config")
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	leadRepo := postgres.NewLeadRepo(db)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	spent, err := leadRepo.CountCreatedSince(ctx, *campaignID, startOfToday())
	if err != nil {
		log.Fatalf("Failed to count today's leads: %v", err)
	}

	d := discovery.NewDiscoverer(
		discovery.NewSearchClient(cfg.Discovery),
		leadRepo,
		cfg.Discovery.MinScore,
	)
	queued, err := d.Run(ctx, *campaignID, *query, discovery.Limits{
		DailyMax: cfg.Discovery.DailyMax,
		Spent:    spent,
	})
	if err != nil {
		log.Fatalf("Discovery run failed: %v", err)
	}
	logger.Info("discovery run complete", "campaign", *campaignID, "queued", queued)
}

func startOfToday() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
