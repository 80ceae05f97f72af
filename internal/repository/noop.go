package repository

import (
	"context"

	"PriceCast/internal/domain/models"
)

// NoopPublisher drops events. Used when forecast events are disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *models.ForecastRecord) error { return nil }
func (NoopPublisher) Close() error                                          { return nil }

// NoopStore keeps nothing. Used when the audit store is disabled.
type NoopStore struct{}

func (NoopStore) Store(context.Context, *models.ForecastRecord) error { return nil }
func (NoopStore) Recent(context.Context, string, int) ([]*models.ForecastRecord, error) {
	return nil, nil
}
func (NoopStore) Health(context.Context) error { return nil }
func (NoopStore) Close() error                 { return nil }
