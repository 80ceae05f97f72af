package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"PriceCast/internal/di"
	"PriceCast/internal/domain/models"
	"PriceCast/internal/forecast"
	"PriceCast/pkg/config"
	applogger "PriceCast/pkg/logger"
	"PriceCast/pkg/metrics"

	"github.com/spf13/cobra"
)

// predictCmd runs one forecast offline with the configured engine limits and
// prints the result as JSON. The series comes from --prices or is fetched
// from the market data provider with --symbol.
func predictCmd(configPath *string) *cobra.Command {
	var (
		prices   string
		symbol   string
		period   string
		interval string
		model    string
		days     int
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Forecast a closing-price series without starting the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (prices == "") == (symbol == "") {
				return errors.New("exactly one of --prices or --symbol is required")
			}

			cfg, err := config.LoadWithEnv(*configPath)
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}
			engine, err := di.ProvideEngine(cfg)
			if err != nil {
				return err
			}

			var series []float64
			if prices != "" {
				if series, err = parsePrices(prices); err != nil {
					return err
				}
			} else {
				provider := di.ProvideHistoryProvider(di.ProvideHTTPClient(cfg), cfg, metrics.New(), applogger.Nop())
				h, err := provider.History(cmd.Context(), models.HistoryQuery{
					Symbol:   strings.ToUpper(symbol),
					Period:   period,
					Interval: interval,
				})
				if err != nil {
					return fmt.Errorf("fetch %s: %w", symbol, err)
				}
				series = tail(h.Closes(), engine.Options().MaxPoints)
			}

			res, err := engine.Forecast(forecast.Request{Prices: series, Model: model, Horizon: days})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVar(&prices, "prices", "", "comma separated closing prices, oldest first")
	cmd.Flags().StringVar(&symbol, "symbol", "", "fetch closing prices for this ticker instead of --prices")
	cmd.Flags().StringVar(&period, "period", "1y", "history period used with --symbol")
	cmd.Flags().StringVar(&interval, "interval", "1d", "history interval used with --symbol")
	cmd.Flags().StringVar(&model, "model", string(forecast.ModelLinear), "model type")
	cmd.Flags().IntVar(&days, "days", 7, "number of future days")
	return cmd
}

func parsePrices(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid price %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// tail keeps the most recent n values.
func tail(s []float64, n int) []float64 {
	if n > 0 && len(s) > n {
		return s[len(s)-n:]
	}
	return s
}
