package services

import (
	"context"
	"log"
	"sync"
	"time"

	"rent-backend/internal/cache"
	"rent-backend/internal/metrics"
	"rent-backend/internal/storage"
	"rent-backend/internal/timeutil"
)

// OverdueSweeper advances unpaid rents past their due date into OVERDUE.
// Sweep is idempotent: re-running with no newly eligible rows updates zero
// rows, so a failed run needs no recovery beyond the next scheduled tick.
type OverdueSweeper struct {
	Store storage.RentStore

	stopOnce sync.Once
	stop     chan struct{}
}

func NewOverdueSweeper(store storage.RentStore) *OverdueSweeper {
	return &OverdueSweeper{Store: store, stop: make(chan struct{})}
}

// Sweep runs one pass using today's midnight as the cutoff and returns the
// number of rents moved to OVERDUE.
func (s *OverdueSweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := timeutil.StartOfDay(time.Now())
	count, err := s.Store.SweepOverdue(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	metrics.SweepRunsTotal.Inc()
	if count > 0 {
		metrics.RentsSweptTotal.Add(float64(count))
		cache.InvalidateRentCaches(ctx)
	}
	return count, nil
}

// Start launches the daily scheduler in the background. The first run fires
// at the next local midnight, then every 24 hours. An external cron hitting
// the sweep endpoint coexists safely with this loop.
func (s *OverdueSweeper) Start() {
	go func() {
		for {
			wait := time.Until(timeutil.NextMidnight(time.Now()))
			select {
			case <-time.After(wait):
			case <-s.stop:
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			count, err := s.Sweep(ctx)
			cancel()
			if err != nil {
				log.Printf("[Sweeper] Sweep failed: %v (will retry next tick)", err)
				continue
			}
			log.Printf("[Sweeper] Marked %d rent(s) as overdue", count)
		}
	}()
	log.Println("[Sweeper] Daily overdue sweep scheduled for midnight")
}

// Stop terminates the scheduler.
func (s *OverdueSweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}
