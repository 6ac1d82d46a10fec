// Package scheduler drives the periodic freshness decay of listings.
package scheduler

import (
	"context"
	"time"

	"github.com/emreutkan/FreshDealBackendfork-sub000/internal/inventory"
	"github.com/emreutkan/FreshDealBackendfork-sub000/internal/logger"
	"github.com/emreutkan/FreshDealBackendfork-sub000/internal/repository"
)

const DefaultInterval = 2 * time.Hour

// Scheduler sweeps all non-expired listings on a fixed interval, applying
// one decay step to each. A failure on one listing is logged and skipped;
// the sweep commits as a single batch at the end.
type Scheduler struct {
	store    repository.TxStore
	lg       *logger.Logger
	interval time.Duration
	now      func() time.Time
}

func New(store repository.TxStore, lg *logger.Logger, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{store: store, lg: lg, interval: interval, now: time.Now}
}

// SweepStats summarizes one decay sweep.
type SweepStats struct {
	Updated int
	Deleted int
	Skipped int
	Errors  int
}

// Run sweeps immediately, then on every tick until the context is done.
func (s *Scheduler) Run(ctx context.Context) error {
	s.lg.Info("decay_scheduler_started", map[string]any{"interval": s.interval.String()})
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweepAndLog(ctx)
	for {
		select {
		case <-ctx.Done():
			s.lg.Info("decay_scheduler_stopped", nil)
			return nil
		case <-ticker.C:
			s.sweepAndLog(ctx)
		}
	}
}

func (s *Scheduler) sweepAndLog(ctx context.Context) {
	stats, err := s.Sweep(ctx)
	if err != nil {
		// The whole batch rolled back; the next cycle retries from
		// current state.
		s.lg.Error("decay_sweep_failed", err, nil)
		return
	}
	s.lg.Info("decay_sweep_done", map[string]any{
		"updated": stats.Updated,
		"deleted": stats.Deleted,
		"skipped": stats.Skipped,
		"errors":  stats.Errors,
	})
}

// Sweep applies one decay step to every non-expired listing inside a
// single transaction. Expired listings are deleted and their live orders
// rejected, with no stock restoration. Each listing's writes run in a
// nested transaction (a savepoint on Postgres): a statement failure rolls
// back that listing alone, leaving the outer transaction usable for the
// rest of the batch.
func (s *Scheduler) Sweep(ctx context.Context) (SweepStats, error) {
	var stats SweepStats
	now := s.now()
	err := s.store.ExecTx(ctx, func(st repository.TxStore) error {
		listings, err := st.ListActiveListings(ctx, now)
		if err != nil {
			return err
		}
		for i := range listings {
			l := &listings[i]
			switch inventory.Decay(l, now) {
			case inventory.DecayExpired:
				var rejected int
				err := st.ExecTx(ctx, func(ls repository.TxStore) error {
					n, err := ls.RejectLiveOrders(ctx, l.ID)
					if err != nil {
						return err
					}
					rejected = n
					return ls.DeleteListing(ctx, l.ID)
				})
				if err != nil {
					s.listingFailed(l.ID.String(), err, &stats)
					continue
				}
				stats.Deleted++
				s.lg.Info("listing_expired", map[string]any{
					"listing_id":      l.ID.String(),
					"orders_rejected": rejected,
				})
			case inventory.DecayUpdated:
				err := st.ExecTx(ctx, func(ls repository.TxStore) error {
					return ls.SaveListingDecay(ctx, l)
				})
				if err != nil {
					s.listingFailed(l.ID.String(), err, &stats)
					continue
				}
				stats.Updated++
			default:
				stats.Skipped++
			}
		}
		return nil
	})
	return stats, err
}

func (s *Scheduler) listingFailed(id string, err error, stats *SweepStats) {
	stats.Errors++
	s.lg.Error("listing_decay_failed", err, map[string]any{"listing_id": id})
}
