package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"PriceCast/internal/domain/models"
	domsvc "PriceCast/internal/domain/service"
	"PriceCast/pkg/cache"
	applogger "PriceCast/pkg/logger"

	"github.com/robfig/cron/v3"
)

const warmLockKey = "lock:history-warm"

// Warmer refreshes a watchlist of history queries on a cron schedule.
// With a shared cache only one instance refreshes per tick.
type Warmer struct {
	cron      *cron.Cron
	history   domsvc.HistoryService
	lock      cache.Service
	watchlist []models.HistoryQuery
	lockTTL   time.Duration
	l         *applogger.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewWarmer registers the refresh job on schedule, a six-field cron spec.
func NewWarmer(history domsvc.HistoryService, lock cache.Service, schedule string, watchlist []models.HistoryQuery, l *applogger.Logger) (*Warmer, error) {
	if l == nil {
		l = applogger.Nop()
	}
	w := &Warmer{
		cron:      cron.New(cron.WithSeconds()),
		history:   history,
		lock:      lock,
		watchlist: watchlist,
		lockTTL:   time.Minute,
		l:         l,
	}
	w.ctx, w.cancel = context.WithCancel(context.Background())
	if _, err := w.cron.AddFunc(schedule, func() { w.RunOnce(w.ctx) }); err != nil {
		return nil, fmt.Errorf("register warm schedule %q: %w", schedule, err)
	}
	return w, nil
}

// Start starts the scheduler.
func (w *Warmer) Start() {
	w.cron.Start()
	w.l.Info("history warmer started", applogger.Int("watchlist", len(w.watchlist)))
}

// Stop cancels a running refresh and waits for it to return.
func (w *Warmer) Stop() {
	w.cancel()
	<-w.cron.Stop().Done()
	w.l.Info("history warmer stopped")
}

// RunOnce refreshes every watchlist entry and returns how many succeeded.
// Zero is returned without work when another instance holds the lock.
func (w *Warmer) RunOnce(ctx context.Context) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	ok, err := w.lock.TryLock(ctx, warmLockKey, w.lockTTL)
	if err != nil {
		w.l.Warn("history warm lock failed", applogger.Error(err))
		return 0
	}
	if !ok {
		w.l.Debug("history warm skipped, lock held elsewhere")
		return 0
	}
	defer func() { _ = w.lock.Unlock(context.Background(), warmLockKey) }()

	start := time.Now()
	refreshed := 0
	for _, q := range w.watchlist {
		if ctx.Err() != nil {
			break
		}
		if _, err := w.history.Refresh(ctx, q); err != nil {
			w.l.Warn("history warm failed",
				applogger.String("symbol", q.Symbol),
				applogger.String("period", q.Period),
				applogger.String("interval", q.Interval),
				applogger.Error(err),
			)
			continue
		}
		refreshed++
	}
	w.l.Info("history warm done",
		applogger.Int("refreshed", refreshed),
		applogger.Int("watchlist", len(w.watchlist)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return refreshed
}
