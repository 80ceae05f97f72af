// Package forecast fits regression strategies to a closing-price series
// indexed by day and extrapolates a bounded, non-negative horizon.
//
// Every call fits a fresh model; an Engine holds only immutable options and
// is safe for concurrent use.
package forecast

import (
	"errors"
	"fmt"
	"math"
)

// Request is the caller-supplied forecast input.
type Request struct {
	Prices  []float64
	Model   string
	Horizon int
}

// Input is a validated Request.
type Input struct {
	Prices           []float64
	Strategy         Strategy
	Horizon          int
	RequestedHorizon int
}

// Clamped reports whether the requested horizon was cut to the engine limit.
func (in *Input) Clamped() bool { return in.Horizon != in.RequestedHorizon }

// Fitted is a model trained on one series.
type Fitted struct {
	strategy Strategy
	reg      regressor
	scaler   *standardScaler
	n        int
}

// Strategy returns the strategy the model was fitted with.
func (f *Fitted) Strategy() Strategy { return f.strategy }

// Result is a forecast of one value per future day, in order.
type Result struct {
	Model            ModelType `json:"model"`
	Predictions      []float64 `json:"predictions"`
	Horizon          int       `json:"horizon"`
	RequestedHorizon int       `json:"requested_horizon"`
	Clamped          bool      `json:"clamped"`
}

// Engine validates, fits and predicts.
type Engine struct {
	opts       Options
	enabled    []ModelType
	strategies map[ModelType]Strategy
}

// NewEngine builds an engine for opts.
func NewEngine(opts Options) (*Engine, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("forecast options: %w", err)
	}

	enabled := opts.Models
	if len(enabled) == 0 {
		enabled = AllModels()
	}
	e := &Engine{
		opts:       opts,
		strategies: make(map[ModelType]Strategy, len(enabled)),
	}
	for _, m := range enabled {
		m, _ = ParseModelType(string(m))
		if _, dup := e.strategies[m]; dup {
			continue
		}
		e.strategies[m] = newStrategy(m, opts)
		e.enabled = append(e.enabled, m)
	}
	return e, nil
}

// Models returns the enabled selector tags.
func (e *Engine) Models() []ModelType {
	out := make([]ModelType, len(e.enabled))
	copy(out, e.enabled)
	return out
}

// Options returns the engine configuration.
func (e *Engine) Options() Options { return e.opts }

// Strategy looks up an enabled strategy.
func (e *Engine) Strategy(m ModelType) (Strategy, bool) {
	s, ok := e.strategies[m]
	return s, ok
}

// Validate checks req and resolves its strategy. The horizon is clamped to
// MaxHorizon, never rejected for being large.
func (e *Engine) Validate(req Request) (*Input, error) {
	if len(req.Prices) == 0 {
		return nil, invalid("closing_prices", "closing prices are required")
	}
	for i, p := range req.Prices {
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			return nil, invalid("closing_prices", "value at index %d must be a finite non-negative number", i)
		}
	}

	m, _ := ParseModelType(req.Model)
	strategy, ok := e.strategies[m]
	if !ok {
		return nil, invalid("model", "invalid model type %q, choose from: %s", req.Model, joinModels(e.enabled))
	}

	if req.Horizon <= 0 {
		return nil, invalid("future_days", "future days must be a positive integer")
	}

	if e.opts.EnforceBounds && (len(req.Prices) < e.opts.MinPoints || len(req.Prices) > e.opts.MaxPoints) {
		return nil, invalid("closing_prices", "expected between %d and %d closing prices, got %d",
			e.opts.MinPoints, e.opts.MaxPoints, len(req.Prices))
	}
	if len(req.Prices) > HardMaxPoints {
		return nil, invalid("closing_prices", "at most %d closing prices are accepted, got %d",
			HardMaxPoints, len(req.Prices))
	}

	horizon := req.Horizon
	if horizon > e.opts.MaxHorizon {
		horizon = e.opts.MaxHorizon
	}

	prices := make([]float64, len(req.Prices))
	copy(prices, req.Prices)
	return &Input{
		Prices:           prices,
		Strategy:         strategy,
		Horizon:          horizon,
		RequestedHorizon: req.Horizon,
	}, nil
}

// Fit trains in.Strategy on (day index, price). Targets are standardised
// first when the strategy declares it.
func (e *Engine) Fit(in *Input) (fitted *Fitted, err error) {
	s := in.Strategy
	defer func() {
		if r := recover(); r != nil {
			fitted, err = nil, &InternalError{Model: s.Type(), Op: "fit", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	n := len(in.Prices)
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}

	y := in.Prices
	var sc *standardScaler
	if s.RequiresScaling() {
		fittedScaler := fitScaler(y)
		sc = &fittedScaler
		y = sc.transform(y)
	}

	reg, err := s.fit(x, y)
	if err != nil {
		return nil, &InternalError{Model: s.Type(), Op: "fit", Err: err}
	}
	return &Fitted{strategy: s, reg: reg, scaler: sc, n: n}, nil
}

// Predict evaluates days n .. n+horizon-1 and floors each value at zero.
func (e *Engine) Predict(f *Fitted, horizon int) ([]float64, error) {
	if horizon <= 0 {
		return nil, invalid("future_days", "future days must be a positive integer")
	}
	if horizon > e.opts.MaxHorizon {
		horizon = e.opts.MaxHorizon
	}

	out := make([]float64, horizon)
	for i := range out {
		v := f.reg.predict(float64(f.n + i))
		if f.scaler != nil {
			v = f.scaler.inverse(v)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &InternalError{
				Model: f.strategy.Type(),
				Op:    "predict",
				Err:   errors.New("non-finite prediction"),
			}
		}
		out[i] = math.Max(0, v)
	}
	return out, nil
}

// Forecast runs validate, fit and predict.
func (e *Engine) Forecast(req Request) (*Result, error) {
	in, err := e.Validate(req)
	if err != nil {
		return nil, err
	}
	fitted, err := e.Fit(in)
	if err != nil {
		return nil, err
	}
	preds, err := e.Predict(fitted, in.Horizon)
	if err != nil {
		return nil, err
	}
	return &Result{
		Model:            in.Strategy.Type(),
		Predictions:      preds,
		Horizon:          in.Horizon,
		RequestedHorizon: in.RequestedHorizon,
		Clamped:          in.Clamped(),
	}, nil
}
