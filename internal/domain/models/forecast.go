package models

import "time"

// ForecastRecord describes one served forecast. It is published to Kafka
// and stored in ClickHouse when those sinks are enabled.
type ForecastRecord struct {
	ID               string    `json:"id"`
	Model            string    `json:"model"`
	Points           int       `json:"points"`
	LastPrice        float64   `json:"last_price"`
	Horizon          int       `json:"horizon"`
	RequestedHorizon int       `json:"requested_horizon"`
	Clamped          bool      `json:"clamped"`
	Predictions      []float64 `json:"predictions"`
	FitMillis        int64     `json:"fit_ms"`
	CreatedAt        time.Time `json:"created_at"`
}
