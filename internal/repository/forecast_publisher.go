package repository

import (
	"context"

	"PriceCast/internal/domain/models"
	domrepo "PriceCast/internal/domain/repository"
)

type eventProducer interface {
	Publish(ctx context.Context, key []byte, value interface{}) error
	Close() error
}

// KafkaForecastPublisher emits one JSON event per forecast, keyed by model.
type KafkaForecastPublisher struct {
	producer eventProducer
}

var _ domrepo.ForecastPublisher = (*KafkaForecastPublisher)(nil)

// NewKafkaForecastPublisher accepts a *kafka.Producer from pkg/kafka.
func NewKafkaForecastPublisher(p eventProducer) *KafkaForecastPublisher {
	return &KafkaForecastPublisher{producer: p}
}

func (p *KafkaForecastPublisher) Publish(ctx context.Context, r *models.ForecastRecord) error {
	return p.producer.Publish(ctx, []byte(r.Model), r)
}

func (p *KafkaForecastPublisher) Close() error {
	return p.producer.Close()
}
