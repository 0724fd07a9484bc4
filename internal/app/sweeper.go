package app

import (
	"context"
	"log"
	"time"

	"github.com/encorehq/stagehold/internal/clock"
	"github.com/encorehq/stagehold/internal/domain"
)

// HoldReleaser is the slice of HoldService the sweeper drives.
type HoldReleaser interface {
	Release(ctx context.Context, holdID string, reason domain.ReleaseReason) (ReleaseResult, error)
}

// ExpiredHoldLister lists ids of active holds whose deadline has passed.
type ExpiredHoldLister interface {
	ListExpiredHoldIDs(ctx context.Context, now time.Time) ([]string, error)
}

// ExpirySweeper periodically releases active holds past their deadline. It
// keeps no state between ticks; overlapping sweeps coordinate purely through
// the persisted hold status, which release handles idempotently.
type ExpirySweeper struct {
	holds    ExpiredHoldLister
	releaser HoldReleaser
	interval time.Duration
	clock    clock.Clock
	logger   *log.Logger
}

func NewExpirySweeper(holds ExpiredHoldLister, releaser HoldReleaser, interval time.Duration, clk clock.Clock, logger *log.Logger) *ExpirySweeper {
	if logger == nil {
		logger = log.Default()
	}
	return &ExpirySweeper{
		holds:    holds,
		releaser: releaser,
		interval: interval,
		clock:    clk,
		logger:   logger,
	}
}

// Start launches the sweep loop in a goroutine. It stops when ctx is
// cancelled.
func (s *ExpirySweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Sweep(ctx); err != nil {
					s.logger.Printf("sweep: list expired holds: %v", err)
				}
			}
		}
	}()
}

// Sweep releases every expired hold once, logging and continuing past
// per-hold failures so one bad row never blocks the rest. It returns the
// number of holds released.
func (s *ExpirySweeper) Sweep(ctx context.Context) (int, error) {
	ids, err := s.holds.ListExpiredHoldIDs(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}

	released := 0
	for _, id := range ids {
		res, err := s.releaser.Release(ctx, id, domain.ReleaseExpired)
		if err != nil {
			s.logger.Printf("sweep: release hold %s: %v", id, err)
			continue
		}
		if res.Released {
			released++
			s.logger.Printf("sweep: expired hold %s, reopened %d bids", id, len(res.ReopenedBidIDs))
		}
	}
	return released, nil
}
