package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"PriceCast/internal/domain/models"
	domrepo "PriceCast/internal/domain/repository"
	"PriceCast/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBars() []models.Bar {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	return []models.Bar{
		{Time: day, Open: 1, High: 2, Low: 0.5, Close: 1.5},
		{Time: day.AddDate(0, 0, 1), Open: 1.5, High: 2.5, Low: 1, Close: 2},
	}
}

func newHistoryUC(t *testing.T, p *fakeProvider) (*HistoryUseCase, *fakeMetrics) {
	t.Helper()
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	m := &fakeMetrics{}
	return NewHistoryUseCase(p, mc, time.Minute, m, nil), m
}

func TestHistoryUseCase_CachesUpstream(t *testing.T) {
	p := &fakeProvider{bars: sampleBars()}
	uc, m := newHistoryUC(t, p)
	ctx := context.Background()

	h, err := uc.History(ctx, models.HistoryQuery{Symbol: "aapl ", Period: "1mo", Interval: "1d"})
	require.NoError(t, err)
	assert.Equal(t, "AAPL", h.Symbol)
	assert.Len(t, h.Bars, 2)

	h, err = uc.History(ctx, models.HistoryQuery{Symbol: "AAPL", Period: "1mo", Interval: "1d"})
	require.NoError(t, err)
	assert.Equal(t, 2.0, h.Bars[1].Close)
	assert.True(t, h.Bars[0].Time.Equal(sampleBars()[0].Time))

	assert.Equal(t, 1, p.Calls())
	assert.Equal(t, []string{"miss", "hit"}, m.cache)
}

func TestHistoryUseCase_NoDataIsNotCached(t *testing.T) {
	p := &fakeProvider{err: domrepo.ErrNoData}
	uc, _ := newHistoryUC(t, p)
	q := models.HistoryQuery{Symbol: "NOPE", Period: "1y", Interval: "1d"}

	for i := 0; i < 2; i++ {
		_, err := uc.History(context.Background(), q)
		assert.ErrorIs(t, err, domrepo.ErrNoData)
	}
	assert.Equal(t, 2, p.Calls())
}

func TestHistoryUseCase_EmptyBarsIsNoData(t *testing.T) {
	uc, _ := newHistoryUC(t, &fakeProvider{})
	_, err := uc.History(context.Background(), models.HistoryQuery{Symbol: "X", Period: "1d", Interval: "1m"})
	assert.ErrorIs(t, err, domrepo.ErrNoData)
}

func TestHistoryUseCase_RefreshBypassesCache(t *testing.T) {
	p := &fakeProvider{bars: sampleBars()}
	uc, _ := newHistoryUC(t, p)
	ctx := context.Background()
	q := models.HistoryQuery{Symbol: "MSFT", Period: "5d", Interval: "1d"}

	_, err := uc.History(ctx, q)
	require.NoError(t, err)
	_, err = uc.Refresh(ctx, q)
	require.NoError(t, err)
	_, err = uc.History(ctx, q)
	require.NoError(t, err)

	assert.Equal(t, 2, p.Calls())
}

func TestHistoryUseCase_ConcurrentCallsSucceed(t *testing.T) {
	p := &fakeProvider{bars: sampleBars()}
	uc, _ := newHistoryUC(t, p)
	q := models.HistoryQuery{Symbol: "NVDA", Period: "1mo", Interval: "1d"}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := uc.History(context.Background(), q)
			assert.NoError(t, err)
			assert.Len(t, h.Bars, 2)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, p.Calls(), 16)
	assert.GreaterOrEqual(t, p.Calls(), 1)
}

func TestHistoryUseCase_SharedFetchSurvivesCallerCancel(t *testing.T) {
	p := newBlockingProvider()
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	uc := NewHistoryUseCase(p, mc, time.Minute, &fakeMetrics{}, nil)
	q := models.HistoryQuery{Symbol: "TSLA", Period: "1mo", Interval: "1d"}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := uc.History(ctx, q)
		done <- err
	}()

	<-p.entered
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(p.release)
	require.Eventually(t, func() bool {
		var h models.History
		return mc.Get(context.Background(), historyKey(q), &h) == nil
	}, 2*time.Second, 10*time.Millisecond)

	h, err := uc.History(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, h.Bars, 2)

	p.mu.Lock()
	defer p.mu.Unlock()
	assert.NoError(t, p.ctxErr)
	assert.Equal(t, 1, p.calls)
}
