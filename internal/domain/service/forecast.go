package service

import (
	"context"

	"PriceCast/internal/domain/models"
	"PriceCast/internal/forecast"
)

// Forecaster fits and predicts one request.
type Forecaster interface {
	Forecast(ctx context.Context, req forecast.Request) (*forecast.Result, error)
	Recent(ctx context.Context, model string, limit int) ([]*models.ForecastRecord, error)
	Catalog() models.ModelsResponse
}

// HistoryService serves OHLC series, possibly from cache.
type HistoryService interface {
	History(ctx context.Context, q models.HistoryQuery) (*models.History, error)
	Refresh(ctx context.Context, q models.HistoryQuery) (*models.History, error)
}
