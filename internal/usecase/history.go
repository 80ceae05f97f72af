package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"PriceCast/internal/domain/models"
	domrepo "PriceCast/internal/domain/repository"
	domsvc "PriceCast/internal/domain/service"
	"PriceCast/pkg/cache"
	applogger "PriceCast/pkg/logger"

	"golang.org/x/sync/singleflight"
)

// HistoryUseCase serves upstream history through a read-through cache.
// Concurrent misses for the same query share one upstream call.
type HistoryUseCase struct {
	provider domrepo.HistoryProvider
	cache    cache.Service
	ttl      time.Duration
	metrics  domrepo.Metrics
	l        *applogger.Logger
	group    singleflight.Group
	// sharedTimeout bounds a fetch shared by several callers. The fetch
	// outlives any single caller's cancellation.
	sharedTimeout time.Duration
}

const defaultSharedFetchTimeout = 30 * time.Second

var _ domsvc.HistoryService = (*HistoryUseCase)(nil)

func NewHistoryUseCase(provider domrepo.HistoryProvider, c cache.Service, ttl time.Duration, metrics domrepo.Metrics, l *applogger.Logger) *HistoryUseCase {
	if l == nil {
		l = applogger.Nop()
	}
	return &HistoryUseCase{
		provider:      provider,
		cache:         c,
		ttl:           ttl,
		metrics:       metrics,
		l:             l,
		sharedTimeout: defaultSharedFetchTimeout,
	}
}

func normalize(q models.HistoryQuery) models.HistoryQuery {
	q.Symbol = strings.ToUpper(strings.TrimSpace(q.Symbol))
	q.Period = strings.TrimSpace(q.Period)
	q.Interval = strings.TrimSpace(q.Interval)
	return q
}

func historyKey(q models.HistoryQuery) string {
	return cache.Key("history", q.Symbol, q.Period, q.Interval)
}

// History returns the cached series for q or fetches it.
func (uc *HistoryUseCase) History(ctx context.Context, q models.HistoryQuery) (*models.History, error) {
	q = normalize(q)
	key := historyKey(q)

	var h models.History
	err := uc.cache.Get(ctx, key, &h)
	switch {
	case err == nil:
		uc.metrics.RecordCache("hit")
		return &h, nil
	case errors.Is(err, cache.ErrCacheMiss):
		uc.metrics.RecordCache("miss")
	default:
		uc.metrics.RecordCache("error")
		uc.l.Warn("history cache read failed", applogger.String("key", key), applogger.Error(err))
	}

	ch := uc.group.DoChan(key, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.sharedTimeout)
		defer cancel()
		return uc.fetch(fctx, q, key)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.History), nil
	}
}

// Refresh fetches q upstream and overwrites the cache entry.
func (uc *HistoryUseCase) Refresh(ctx context.Context, q models.HistoryQuery) (*models.History, error) {
	q = normalize(q)
	return uc.fetch(ctx, q, historyKey(q))
}

func (uc *HistoryUseCase) fetch(ctx context.Context, q models.HistoryQuery, key string) (*models.History, error) {
	start := time.Now()
	h, err := uc.provider.History(ctx, q)
	uc.metrics.RecordLatency("history_fetch", time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	if len(h.Bars) == 0 {
		return nil, domrepo.ErrNoData
	}

	if err := uc.cache.Set(ctx, key, h, uc.ttl); err != nil {
		uc.metrics.RecordCache("error")
		uc.l.Warn("history cache write failed", applogger.String("key", key), applogger.Error(err))
	}
	return h, nil
}
