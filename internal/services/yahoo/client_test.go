package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"PriceCast/internal/domain/models"
	drepo "PriceCast/internal/domain/repository"
	xhttp "PriceCast/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two days out of order plus a holiday bar with nulls, New York offset.
const chartBody = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "AAPL", "gmtoffset": -18000, "exchangeTimezoneName": "America/New_York"},
      "timestamp": [1704378600, 1704292200, 1704465000],
      "indicators": {
        "quote": [{
          "open":  [182.0, 184.2, null],
          "high":  [183.0, 185.8, null],
          "low":   [180.9, 182.1, null],
          "close": [181.9, 184.0, null]
        }],
        "adjclose": [{"adjclose": [90.95, 92.0, null]}]
      }
    }],
    "error": null
  }
}`

type upstreamRecorder struct{ results []string }

func (r *upstreamRecorder) RecordUpstream(result string, _ float64) {
	r.results = append(r.results, result)
}

func (r *upstreamRecorder) RecordForecast(string, string, float64) {}
func (r *upstreamRecorder) RecordClamped(string)                   {}
func (r *upstreamRecorder) RecordCache(string)                     {}
func (r *upstreamRecorder) RecordError(string)                     {}
func (r *upstreamRecorder) RecordLatency(string, float64)          {}

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) (*Client, *upstreamRecorder) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	rec := &upstreamRecorder{}
	hc := xhttp.NewClient(xhttp.WithHeader("User-Agent", "Mozilla/5.0"))
	opts = append([]Option{WithBaseURL(srv.URL), WithMetrics(rec)}, opts...)
	return New(hc, opts...), rec
}

func TestClient_History(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1mo", r.URL.Query().Get("range"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "Mozilla/5.0", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(chartBody))
	}, WithAutoAdjust(false))

	h, err := c.History(context.Background(), models.HistoryQuery{Symbol: "AAPL", Period: "1mo", Interval: "1d"})
	require.NoError(t, err)
	require.Len(t, h.Bars, 2)

	res := models.NewStockDataResponse(h)
	assert.Equal(t, []string{"2024-01-03", "2024-01-04"}, res.Dates)
	assert.Equal(t, []float64{184.0, 181.9}, res.ClosingPrices)
	assert.Equal(t, []float64{184.2, 182.0}, res.OpenPrices)
	assert.Equal(t, []string{"ok"}, rec.results)
}

func TestClient_HistoryAutoAdjust(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chartBody))
	})

	h, err := c.History(context.Background(), models.HistoryQuery{Symbol: "AAPL", Period: "1mo", Interval: "1d"})
	require.NoError(t, err)
	assert.InDelta(t, 92.0, h.Bars[0].Close, 1e-9)
	assert.InDelta(t, 92.1, h.Bars[0].Open, 1e-9)
	assert.InDelta(t, 90.95, h.Bars[1].Close, 1e-9)
}

func TestClient_NotFound(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	})

	_, err := c.History(context.Background(), models.HistoryQuery{Symbol: "NOPE", Period: "1mo", Interval: "1d"})
	assert.ErrorIs(t, err, drepo.ErrNoData)
	assert.Equal(t, []string{"no_data"}, rec.results)
}

func TestClient_EmptySeries(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{},"timestamp":[],"indicators":{"quote":[{}]}}],"error":null}}`))
	})

	_, err := c.History(context.Background(), models.HistoryQuery{Symbol: "AAPL", Period: "1d", Interval: "1m"})
	assert.ErrorIs(t, err, drepo.ErrNoData)
}

func TestClient_UpstreamFailure(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.History(context.Background(), models.HistoryQuery{Symbol: "AAPL", Period: "1mo", Interval: "1d"})
	assert.ErrorIs(t, err, drepo.ErrUpstream)
	assert.Equal(t, []string{"error"}, rec.results)
}

func TestClient_BreakerOpenIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	hc := xhttp.NewClient(xhttp.WithBreaker("yahoo", 1, time.Minute, time.Minute))
	c := New(hc, WithBaseURL(srv.URL))
	q := models.HistoryQuery{Symbol: "AAPL", Period: "1mo", Interval: "1d"}

	_, err := c.History(context.Background(), q)
	assert.ErrorIs(t, err, drepo.ErrUpstream)

	_, err = c.History(context.Background(), q)
	assert.ErrorIs(t, err, drepo.ErrUpstreamUnavailable)
}
