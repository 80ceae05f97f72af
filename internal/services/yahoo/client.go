// Package yahoo fetches OHLC history from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"PriceCast/internal/domain/models"
	drepo "PriceCast/internal/domain/repository"
	xhttp "PriceCast/pkg/http"
	applogger "PriceCast/pkg/logger"
)

const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client implements HistoryProvider against /v8/finance/chart.
type Client struct {
	baseURL    string
	http       *xhttp.Client
	autoAdjust bool
	metrics    drepo.Metrics
	l          *applogger.Logger
	now        func() time.Time
}

var _ drepo.HistoryProvider = (*Client)(nil)

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the API host, e.g. for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithAutoAdjust rescales OHLC by adjclose/close when the response has it.
func WithAutoAdjust(on bool) Option {
	return func(c *Client) { c.autoAdjust = on }
}

// WithMetrics records upstream calls.
func WithMetrics(m drepo.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) { c.l = l }
}

// New builds a client on top of hc, which carries rate limit, retry and
// breaker policy.
func New(hc *xhttp.Client, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		http:       hc,
		autoAdjust: true,
		l:          applogger.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol       string `json:"symbol"`
		GMTOffset    int    `json:"gmtoffset"`
		ExchangeZone string `json:"exchangeTimezoneName"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open  []*float64 `json:"open"`
			High  []*float64 `json:"high"`
			Low   []*float64 `json:"low"`
			Close []*float64 `json:"close"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

// History fetches q. An unknown symbol or an empty series yields
// ErrNoData; an open breaker yields ErrUpstreamUnavailable; anything else
// from upstream is wrapped in ErrUpstream.
func (c *Client) History(ctx context.Context, q models.HistoryQuery) (*models.History, error) {
	start := c.now()
	h, err := c.fetch(ctx, q)
	c.record(err, c.now().Sub(start))
	if err != nil {
		c.l.Warn("yahoo history failed",
			applogger.String("symbol", q.Symbol),
			applogger.String("period", q.Period),
			applogger.String("interval", q.Interval),
			applogger.Error(err),
		)
		return nil, err
	}
	c.l.Debug("yahoo history ok",
		applogger.String("symbol", q.Symbol),
		applogger.Int("bars", len(h.Bars)),
		applogger.Duration("duration_ms", c.now().Sub(start)),
	)
	return h, nil
}

func (c *Client) fetch(ctx context.Context, q models.HistoryQuery) (*models.History, error) {
	var resp chartResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/v8/finance/chart/" + url.PathEscape(q.Symbol),
		QueryParams: map[string][]string{
			"range":                {q.Period},
			"interval":             {q.Interval},
			"includeAdjustedClose": {"true"},
		},
	}, &resp)
	if err != nil {
		return nil, classify(err)
	}

	if resp.Chart.Error != nil {
		if strings.EqualFold(resp.Chart.Error.Code, "Not Found") {
			return nil, drepo.ErrNoData
		}
		return nil, fmt.Errorf("%w: %s: %s", drepo.ErrUpstream, resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, drepo.ErrNoData
	}

	bars := c.bars(resp.Chart.Result[0])
	if len(bars) == 0 {
		return nil, drepo.ErrNoData
	}
	return &models.History{
		Symbol:   q.Symbol,
		Period:   q.Period,
		Interval: q.Interval,
		Bars:     bars,
		Fetched:  c.now().UTC(),
	}, nil
}

// bars drops timestamps with any missing OHLC value and sorts by time.
// Times are in the exchange's zone so daily bars format to the trading date.
func (c *Client) bars(r chartResult) []models.Bar {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	quote := r.Indicators.Quote[0]
	var adj []*float64
	if c.autoAdjust && len(r.Indicators.AdjClose) > 0 {
		adj = r.Indicators.AdjClose[0].AdjClose
	}
	loc := time.FixedZone(r.Meta.ExchangeZone, r.Meta.GMTOffset)

	out := make([]models.Bar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		o, h, l, cl := at(quote.Open, i), at(quote.High, i), at(quote.Low, i), at(quote.Close, i)
		if o == nil || h == nil || l == nil || cl == nil {
			continue
		}
		ratio := 1.0
		if a := at(adj, i); a != nil && *cl != 0 {
			ratio = *a / *cl
		}
		out = append(out, models.Bar{
			Time:  time.Unix(ts, 0).In(loc),
			Open:  *o * ratio,
			High:  *h * ratio,
			Low:   *l * ratio,
			Close: *cl * ratio,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

func at(s []*float64, i int) *float64 {
	if i < len(s) {
		return s[i]
	}
	return nil
}

func classify(err error) error {
	if errors.Is(err, xhttp.ErrCircuitOpen) {
		return fmt.Errorf("%w: %v", drepo.ErrUpstreamUnavailable, err)
	}
	var se *xhttp.StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return drepo.ErrNoData
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", drepo.ErrUpstream, err)
}

func (c *Client) record(err error, d time.Duration) {
	if c.metrics == nil {
		return
	}
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, drepo.ErrNoData):
		result = "no_data"
	case errors.Is(err, drepo.ErrUpstreamUnavailable):
		result = "breaker_open"
	default:
		result = "error"
	}
	c.metrics.RecordUpstream(result, d.Seconds())
}
