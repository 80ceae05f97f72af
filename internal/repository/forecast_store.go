package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"PriceCast/internal/domain/models"
	domrepo "PriceCast/internal/domain/repository"
	pkgch "PriceCast/pkg/clickhouse"
	applogger "PriceCast/pkg/logger"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// CHForecastStore implements ForecastStore backed by ClickHouse.
type CHForecastStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

var _ domrepo.ForecastStore = (*CHForecastStore)(nil)

// NewCHForecastStore stores records in database.table.
func NewCHForecastStore(ch *pkgch.Client, table string, l *applogger.Logger) (*CHForecastStore, error) {
	if !identRe.MatchString(ch.Database()) || !identRe.MatchString(table) {
		return nil, fmt.Errorf("clickhouse: invalid table name %q.%q", ch.Database(), table)
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &CHForecastStore{
		db:    ch.DB(),
		table: ch.Database() + "." + table,
		l:     l,
	}, nil
}

// SchemaStatements returns the DDL creating the audit table.
func (s *CHForecastStore) SchemaStatements() []string {
	return []string{fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            id                String,
            model             LowCardinality(String),
            points            UInt32,
            last_price        Float64,
            horizon           UInt32,
            requested_horizon UInt32,
            clamped           Bool,
            predictions       Array(Float64),
            fit_ms            Int64,
            created_at        DateTime64(3)
        )
        ENGINE = MergeTree
        ORDER BY (model, created_at)
    `, s.table)}
}

func (s *CHForecastStore) Store(ctx context.Context, r *models.ForecastRecord) error {
	q := fmt.Sprintf(`INSERT INTO %s (id, model, points, last_price, horizon, requested_horizon, clamped, predictions, fit_ms, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	_, err := s.db.ExecContext(ctx, q,
		r.ID,
		r.Model,
		uint32(r.Points),
		r.LastPrice,
		uint32(r.Horizon),
		uint32(r.RequestedHorizon),
		r.Clamped,
		r.Predictions,
		r.FitMillis,
		r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("store forecast: %w", err)
	}
	return nil
}

// Recent returns the latest records for model, newest first. An empty
// model matches every model.
func (s *CHForecastStore) Recent(ctx context.Context, model string, limit int) ([]*models.ForecastRecord, error) {
	start := time.Now()
	const qtpl = `
        SELECT id, model, points, last_price, horizon, requested_horizon, clamped, predictions, fit_ms, created_at
        FROM %s
        WHERE (? = '' OR model = ?)
        ORDER BY created_at DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(qtpl, s.table), model, model, limit)
	if err != nil {
		s.l.Error("clickhouse recent_forecasts query error",
			applogger.String("table", s.table),
			applogger.String("model", model),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("recent forecasts: %w", err)
	}
	defer rows.Close()

	out := make([]*models.ForecastRecord, 0, limit)
	for rows.Next() {
		var r models.ForecastRecord
		var points, horizon, reqHzn uint32
		if err := rows.Scan(&r.ID, &r.Model, &points, &r.LastPrice, &horizon, &reqHzn, &r.Clamped, &r.Predictions, &r.FitMillis, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan forecast: %w", err)
		}
		r.Points, r.Horizon, r.RequestedHorizon = int(points), int(horizon), int(reqHzn)
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	s.l.Debug("clickhouse recent_forecasts ok",
		applogger.String("table", s.table),
		applogger.String("model", model),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func (s *CHForecastStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHForecastStore) Close() error {
	return s.db.Close()
}
