package models

import "time"

// Bar is one OHLC sample.
type Bar struct {
	Time  time.Time `json:"time"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

// HistoryQuery selects a series from the upstream provider.
type HistoryQuery struct {
	Symbol   string `json:"symbol"`
	Period   string `json:"period"`
	Interval string `json:"interval"`
}

// History is an ordered OHLC series, oldest first.
type History struct {
	Symbol   string    `json:"symbol"`
	Period   string    `json:"period"`
	Interval string    `json:"interval"`
	Bars     []Bar     `json:"bars"`
	Fetched  time.Time `json:"fetched"`
}

// Closes returns the close column.
func (h *History) Closes() []float64 {
	out := make([]float64, len(h.Bars))
	for i, b := range h.Bars {
		out[i] = b.Close
	}
	return out
}
