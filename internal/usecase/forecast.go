package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"PriceCast/internal/domain/models"
	domrepo "PriceCast/internal/domain/repository"
	domsvc "PriceCast/internal/domain/service"
	"PriceCast/internal/forecast"
	applogger "PriceCast/pkg/logger"

	"github.com/google/uuid"
)

// ForecastSinkTimeout bounds each audit sink write.
const ForecastSinkTimeout = 5 * time.Second

// ForecastUseCase runs the engine under a deadline and hands every served
// forecast to the event and audit sinks.
type ForecastUseCase struct {
	engine    *forecast.Engine
	publisher domrepo.ForecastPublisher
	store     domrepo.ForecastStore
	metrics   domrepo.Metrics
	l         *applogger.Logger
	timeout   time.Duration

	sinks sync.WaitGroup
	now   func() time.Time
	newID func() string
	run   func(forecast.Request) (*forecast.Result, error)
}

var _ domsvc.Forecaster = (*ForecastUseCase)(nil)

func NewForecastUseCase(
	engine *forecast.Engine,
	publisher domrepo.ForecastPublisher,
	store domrepo.ForecastStore,
	metrics domrepo.Metrics,
	l *applogger.Logger,
	timeout time.Duration,
) *ForecastUseCase {
	if l == nil {
		l = applogger.Nop()
	}
	return &ForecastUseCase{
		engine:    engine,
		publisher: publisher,
		store:     store,
		metrics:   metrics,
		l:         l,
		timeout:   timeout,
		now:       time.Now,
		newID:     uuid.NewString,
		run:       engine.Forecast,
	}
}

type forecastOutcome struct {
	res *forecast.Result
	err error
}

// Forecast validates, fits and predicts req. A ValidationError is returned
// as is; exceeding the timeout is reported as an InternalError wrapping
// context.DeadlineExceeded.
func (uc *ForecastUseCase) Forecast(ctx context.Context, req forecast.Request) (*forecast.Result, error) {
	if uc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}

	model, _ := forecast.ParseModelType(req.Model)
	start := uc.now()

	done := make(chan forecastOutcome, 1)
	go func() {
		res, err := uc.run(req)
		done <- forecastOutcome{res: res, err: err}
	}()

	var out forecastOutcome
	select {
	case out = <-done:
	case <-ctx.Done():
		out.err = &forecast.InternalError{Model: model, Op: "forecast", Err: ctx.Err()}
	}
	elapsed := uc.now().Sub(start)

	if out.err != nil {
		uc.recordFailure(model, out.err, elapsed)
		return nil, out.err
	}

	res := out.res
	uc.metrics.RecordForecast(string(res.Model), "ok", elapsed.Seconds())
	if res.Clamped {
		uc.metrics.RecordClamped(string(res.Model))
	}

	uc.emit(&models.ForecastRecord{
		ID:               uc.newID(),
		Model:            string(res.Model),
		Points:           len(req.Prices),
		LastPrice:        req.Prices[len(req.Prices)-1],
		Horizon:          res.Horizon,
		RequestedHorizon: res.RequestedHorizon,
		Clamped:          res.Clamped,
		Predictions:      res.Predictions,
		FitMillis:        elapsed.Milliseconds(),
		CreatedAt:        start.UTC(),
	})
	return res, nil
}

func (uc *ForecastUseCase) recordFailure(model forecast.ModelType, err error, elapsed time.Duration) {
	label := string(model)
	if label == "" {
		label = "unknown"
	}

	var verr *forecast.ValidationError
	if errors.As(err, &verr) {
		// Unknown tags collapse into one label to bound cardinality.
		if _, ok := uc.engine.Strategy(model); !ok {
			label = "unknown"
		}
		uc.metrics.RecordForecast(label, "invalid", elapsed.Seconds())
		return
	}

	result := "error"
	if errors.Is(err, context.DeadlineExceeded) {
		result = "timeout"
	}
	uc.metrics.RecordForecast(label, result, elapsed.Seconds())
	uc.metrics.RecordError("forecast_" + result)
	uc.l.Error("forecast failed",
		applogger.String("model", label),
		applogger.Duration("duration_ms", elapsed),
		applogger.Error(err),
	)
}

// emit writes rec to the sinks in the background. Failures are logged only.
func (uc *ForecastUseCase) emit(rec *models.ForecastRecord) {
	uc.sinks.Add(1)
	go func() {
		defer uc.sinks.Done()
		ctx, cancel := context.WithTimeout(context.Background(), ForecastSinkTimeout)
		defer cancel()

		if err := uc.publisher.Publish(ctx, rec); err != nil {
			uc.metrics.RecordError("forecast_publish")
			uc.l.Warn("forecast event publish failed", applogger.String("id", rec.ID), applogger.Error(err))
		}
		if err := uc.store.Store(ctx, rec); err != nil {
			uc.metrics.RecordError("forecast_store")
			uc.l.Warn("forecast audit store failed", applogger.String("id", rec.ID), applogger.Error(err))
		}
	}()
}

// Recent returns stored forecasts for model, newest first.
func (uc *ForecastUseCase) Recent(ctx context.Context, model string, limit int) ([]*models.ForecastRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	recs, err := uc.store.Recent(ctx, model, limit)
	if err != nil {
		return nil, fmt.Errorf("recent forecasts: %w", err)
	}
	return recs, nil
}

// Catalog describes the enabled models and engine limits.
func (uc *ForecastUseCase) Catalog() models.ModelsResponse {
	opts := uc.engine.Options()
	res := models.ModelsResponse{
		MinPoints:     opts.MinPoints,
		MaxPoints:     opts.MaxPoints,
		MaxHorizon:    opts.MaxHorizon,
		EnforceBounds: opts.EnforceBounds,
	}
	for _, m := range uc.engine.Models() {
		s, _ := uc.engine.Strategy(m)
		res.Models = append(res.Models, models.ModelInfo{Name: string(m), Scaled: s.RequiresScaling()})
	}
	return res
}

// Close waits for in-flight sink writes, then closes the sinks.
func (uc *ForecastUseCase) Close() error {
	uc.sinks.Wait()
	return errors.Join(uc.publisher.Close(), uc.store.Close())
}
