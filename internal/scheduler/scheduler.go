// Package scheduler wires up the cron job that periodically re-runs recently
// analyzed searches so the persisted vacancy table stays warm.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"hhpulse/analyzer-service/internal/analyzer"
	"hhpulse/analyzer-service/internal/model"
	"hhpulse/analyzer-service/internal/store"
)

// History supplies the query tuples to refresh.
type History interface {
	RecentSearches(ctx context.Context, limit int) ([]model.SearchParams, error)
}

const refreshSearchLimit = 20

// Scheduler wraps robfig/cron and manages the refresh loop.
type Scheduler struct {
	cron     *cron.Cron
	analyzer *analyzer.Analyzer
	history  History
	spec     string // cron spec, e.g. "@every 6h"
}

// New creates a Scheduler that fires every intervalHours hours.
func New(a *analyzer.Analyzer, history *store.Store, intervalHours int) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLogger(cron.DefaultLogger)),
		analyzer: a,
		history:  history,
		spec:     fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one refresh
// immediately so the vacancy table is warm without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runRefresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	// Run immediately on startup (non-blocking)
	go s.runRefresh(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

// runRefresh loads the recent distinct query tuples and re-analyzes each one.
// Expired cache entries re-fetch and re-persist; fresh ones are a no-op.
func (s *Scheduler) runRefresh(ctx context.Context) {
	log.Println("[scheduler] Refresh cycle started")

	searches, err := s.history.RecentSearches(ctx, refreshSearchLimit)
	if err != nil {
		log.Printf("[scheduler] RecentSearches error: %v", err)
		return
	}

	if len(searches) == 0 {
		log.Println("[scheduler] No search history — nothing to refresh")
		return
	}

	log.Printf("[scheduler] Refreshing %d search(es)", len(searches))
	for _, params := range searches {
		if _, err := s.analyzer.Analyze(ctx, params); err != nil {
			log.Printf("[scheduler] Refresh error for %q: %v — continuing", params.Text, err)
		}
	}

	log.Println("[scheduler] Refresh cycle complete")
}
