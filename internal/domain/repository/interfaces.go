package repository

import (
	"context"

	"PriceCast/internal/domain/models"
)

// HistoryProvider fetches OHLC series from an upstream market data API.
type HistoryProvider interface {
	History(ctx context.Context, q models.HistoryQuery) (*models.History, error)
}

// ForecastPublisher emits forecast events.
type ForecastPublisher interface {
	Publish(ctx context.Context, r *models.ForecastRecord) error
	Close() error
}

// ForecastStore persists forecast records for audit.
type ForecastStore interface {
	Store(ctx context.Context, r *models.ForecastRecord) error
	Recent(ctx context.Context, model string, limit int) ([]*models.ForecastRecord, error)
	Health(ctx context.Context) error
	Close() error
}

type Metrics interface {
	RecordForecast(model, result string, seconds float64)
	RecordClamped(model string)
	RecordUpstream(result string, seconds float64)
	RecordCache(result string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
