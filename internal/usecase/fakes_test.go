package usecase

import (
	"context"
	"sync"

	"PriceCast/internal/domain/models"
)

type fakeMetrics struct {
	mu        sync.Mutex
	forecasts []string
	clamped   []string
	cache     []string
	errs      []string
}

func (m *fakeMetrics) RecordForecast(model, result string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forecasts = append(m.forecasts, model+"/"+result)
}

func (m *fakeMetrics) RecordClamped(model string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clamped = append(m.clamped, model)
}

func (m *fakeMetrics) RecordCache(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = append(m.cache, result)
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, kind)
}

func (m *fakeMetrics) RecordUpstream(string, float64) {}
func (m *fakeMetrics) RecordLatency(string, float64)  {}

type fakeSink struct {
	mu      sync.Mutex
	records []*models.ForecastRecord
	err     error
	closed  bool
}

func (s *fakeSink) Publish(_ context.Context, r *models.ForecastRecord) error {
	return s.Store(context.Background(), r)
}

func (s *fakeSink) Store(_ context.Context, r *models.ForecastRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, r)
	return nil
}

func (s *fakeSink) Recent(_ context.Context, model string, limit int) ([]*models.ForecastRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.ForecastRecord
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		if model == "" || s.records[i].Model == model {
			out = append(out, s.records[i])
		}
	}
	return out, nil
}

func (s *fakeSink) Health(context.Context) error { return nil }

func (s *fakeSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type fakeProvider struct {
	mu    sync.Mutex
	calls int
	bars  []models.Bar
	err   error
}

func (p *fakeProvider) History(_ context.Context, q models.HistoryQuery) (*models.History, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &models.History{Symbol: q.Symbol, Period: q.Period, Interval: q.Interval, Bars: p.bars}, nil
}

func (p *fakeProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// blockingProvider holds every call until release is closed and records
// whether the context it saw was already done.
type blockingProvider struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	mu      sync.Mutex
	calls   int
	ctxErr  error
}

func newBlockingProvider() *blockingProvider {
	return &blockingProvider{entered: make(chan struct{}), release: make(chan struct{})}
}

func (p *blockingProvider) History(ctx context.Context, q models.HistoryQuery) (*models.History, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	p.once.Do(func() { close(p.entered) })
	<-p.release

	p.mu.Lock()
	p.ctxErr = ctx.Err()
	p.mu.Unlock()
	return &models.History{Symbol: q.Symbol, Period: q.Period, Interval: q.Interval, Bars: sampleBars()}, nil
}
