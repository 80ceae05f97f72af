package models

// Requests and responses of the public HTTP API.

// PredictRequest keeps prices as pointers so that JSON nulls are
// rejected instead of decoding to zero.
type PredictRequest struct {
	ClosingPrices []*float64 `json:"closing_prices" validate:"required"`
	Model         string     `json:"model" validate:"required"`
	FutureDays    *int       `json:"future_days" validate:"required"`
}

// Prices returns the series, or the index of the first null element.
func (r *PredictRequest) Prices() ([]float64, int) {
	out := make([]float64, len(r.ClosingPrices))
	for i, p := range r.ClosingPrices {
		if p == nil {
			return nil, i
		}
		out[i] = *p
	}
	return out, -1
}

type PredictResponse struct {
	Predictions      []float64 `json:"predictions"`
	Model            string    `json:"model"`
	Horizon          int       `json:"horizon"`
	RequestedHorizon int       `json:"requested_horizon"`
	Clamped          bool      `json:"clamped"`
}

type StockDataRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required"`
	Period   string `query:"period" json:"period" validate:"required,oneof=1d 5d 1mo 3mo 6mo 1y 2y 5y 10y ytd max"`
	Interval string `query:"interval" json:"interval" validate:"required,oneof=1m 2m 5m 15m 30m 60m 90m 1h 1d 5d 1wk 1mo 3mo"`
}

type StockDataResponse struct {
	Symbol        string    `json:"symbol"`
	Dates         []string  `json:"dates"`
	OpenPrices    []float64 `json:"open_prices"`
	HighPrices    []float64 `json:"high_prices"`
	LowPrices     []float64 `json:"low_prices"`
	ClosingPrices []float64 `json:"closing_prices"`
}

type ModelInfo struct {
	Name   string `json:"name"`
	Scaled bool   `json:"scaled"`
}

type ModelsResponse struct {
	Models        []ModelInfo `json:"models"`
	MinPoints     int         `json:"min_points"`
	MaxPoints     int         `json:"max_points"`
	MaxHorizon    int         `json:"max_horizon"`
	EnforceBounds bool        `json:"enforce_bounds"`
}

// NewStockDataResponse flattens h into parallel columns with YYYY-MM-DD dates.
func NewStockDataResponse(h *History) StockDataResponse {
	res := StockDataResponse{
		Symbol:        h.Symbol,
		Dates:         make([]string, len(h.Bars)),
		OpenPrices:    make([]float64, len(h.Bars)),
		HighPrices:    make([]float64, len(h.Bars)),
		LowPrices:     make([]float64, len(h.Bars)),
		ClosingPrices: make([]float64, len(h.Bars)),
	}
	for i, b := range h.Bars {
		res.Dates[i] = b.Time.Format("2006-01-02")
		res.OpenPrices[i] = b.Open
		res.HighPrices[i] = b.High
		res.LowPrices[i] = b.Low
		res.ClosingPrices[i] = b.Close
	}
	return res
}
