package di

import (
	"context"
	"fmt"
	"time"

	"PriceCast/internal/domain/models"
	domrepo "PriceCast/internal/domain/repository"
	"PriceCast/internal/forecast"
	"PriceCast/internal/handler/api"
	internalrepo "PriceCast/internal/repository"
	"PriceCast/internal/services/yahoo"
	"PriceCast/internal/usecase"
	"PriceCast/pkg/cache"
	pkgch "PriceCast/pkg/clickhouse"
	"PriceCast/pkg/config"
	xhttp "PriceCast/pkg/http"
	pkgkafka "PriceCast/pkg/kafka"
	applogger "PriceCast/pkg/logger"
	"PriceCast/pkg/metrics"
	"PriceCast/pkg/server"
)

const healthCheckTimeout = 2 * time.Second

// ProvideLogger creates the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// EngineOptions maps the forecast section onto engine options.
func EngineOptions(cfg *config.Config) (forecast.Options, error) {
	f := cfg.Forecast
	opts := forecast.DefaultOptions()
	opts.MinPoints = f.MinPoints
	opts.MaxPoints = f.MaxPoints
	opts.MaxHorizon = f.MaxHorizon
	opts.EnforceBounds = f.EnforceBounds
	opts.PolynomialDegree = f.PolynomialDegree
	opts.RidgeAlpha = f.Ridge.Alpha
	opts.RidgeDegree = f.Ridge.Degree
	opts.SVR = forecast.SVROptions{
		C:         f.SVR.C,
		Gamma:     f.SVR.Gamma,
		Epsilon:   f.SVR.Epsilon,
		MaxIter:   f.SVR.MaxIter,
		Tolerance: f.SVR.Tolerance,
	}
	opts.Tree = forecast.TreeOptions{MaxDepth: f.Tree.MaxDepth, MinSamplesLeaf: f.Tree.MinSamplesLeaf}
	opts.Forest = forecast.ForestOptions{Trees: f.Forest.Trees, Seed: f.Forest.Seed}

	if len(f.Models) > 0 {
		opts.Models = make([]forecast.ModelType, 0, len(f.Models))
		for _, s := range f.Models {
			m, ok := forecast.ParseModelType(s)
			if !ok {
				return opts, fmt.Errorf("forecast.models: unknown model %q", s)
			}
			opts.Models = append(opts.Models, m)
		}
	}
	return opts, nil
}

// ProvideEngine creates the forecast engine.
func ProvideEngine(cfg *config.Config) (*forecast.Engine, error) {
	opts, err := EngineOptions(cfg)
	if err != nil {
		return nil, err
	}
	engine, err := forecast.NewEngine(opts)
	if err != nil {
		return nil, fmt.Errorf("forecast engine: %w", err)
	}
	return engine, nil
}

// ProvideCache creates the history cache for the configured backend.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, error) {
	c := cfg.Cache
	if c.Backend == "memory" {
		l.Info("cache: memory", applogger.Int("max_size", c.MemoryMaxSize))
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(c.MemoryMaxSize),
			cache.WithMemoryDefaultTTL(cfg.History.CacheTTL),
		), nil
	}

	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(c.Redis.Host),
		cache.WithRedisPort(c.Redis.Port),
		cache.WithRedisPassword(c.Redis.Password),
		cache.WithRedisDB(c.Redis.DB),
		cache.WithRedisPool(c.Redis.PoolSize, c.Redis.PoolSize/2, 30*time.Second),
		cache.WithRedisPrefix(c.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	l.Info("cache: redis connected",
		applogger.String("backend", c.Backend),
		applogger.String("addr", fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)),
	)

	if c.Backend == "layered" {
		return cache.NewLayeredCache(rc, cache.WithLayeredMemorySize(c.MemoryMaxSize)), nil
	}
	return rc, nil
}

// ProvideHTTPClient creates the outbound client used for market data.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	p := cfg.History.Provider
	return xhttp.NewClient(
		xhttp.WithTimeout(p.Timeout),
		xhttp.WithHeader("User-Agent", p.UserAgent),
		xhttp.WithHeader("Accept", "application/json"),
		xhttp.WithRateLimit(p.RequestsPerSec, p.Burst),
		xhttp.WithRetry(p.MaxElapsed),
		xhttp.WithBreaker("yahoo", p.Breaker.MaxFailures, p.Breaker.Interval, p.Breaker.Timeout),
	)
}

// ProvideHistoryProvider creates the Yahoo chart client.
func ProvideHistoryProvider(hc *xhttp.Client, cfg *config.Config, m domrepo.Metrics, l *applogger.Logger) domrepo.HistoryProvider {
	return yahoo.New(hc,
		yahoo.WithBaseURL(cfg.History.Provider.BaseURL),
		yahoo.WithAutoAdjust(cfg.History.Provider.AutoAdjust),
		yahoo.WithMetrics(m),
		yahoo.WithLogger(l),
	)
}

// ProvideHistoryUseCase creates the cached history use case.
func ProvideHistoryUseCase(p domrepo.HistoryProvider, c cache.Service, cfg *config.Config, m domrepo.Metrics, l *applogger.Logger) *usecase.HistoryUseCase {
	return usecase.NewHistoryUseCase(p, c, cfg.History.CacheTTL, m, l)
}

// ProvideForecastPublisher creates the Kafka event sink, or a no-op sink
// when events are disabled.
func ProvideForecastPublisher(cfg *config.Config, l *applogger.Logger) (domrepo.ForecastPublisher, error) {
	if !cfg.Forecast.Events.Enabled {
		return internalrepo.NoopPublisher{}, nil
	}
	k := cfg.Kafka
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(k.Brokers),
		pkgkafka.WithTopic(k.Topic),
		pkgkafka.WithCompression(k.Compression),
		pkgkafka.WithRequiredAcks(k.RequiredAcks),
		pkgkafka.WithBatching(k.Producer.BatchSize, k.Producer.BatchBytes, k.Producer.Linger),
		pkgkafka.WithTimeouts(k.Producer.WriteTimeout, k.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(k.Producer.MaxAttempts),
		pkgkafka.WithAsync(k.Producer.Async),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithAutoCreateTopic(k.AutoCreateTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	l.Info("kafka: forecast events enabled", applogger.Strings("brokers", k.Brokers), applogger.String("topic", k.Topic))
	return internalrepo.NewKafkaForecastPublisher(producer), nil
}

// ProvideForecastStore creates the ClickHouse audit store and its table, or
// a no-op store when audit is disabled.
func ProvideForecastStore(cfg *config.Config, l *applogger.Logger) (domrepo.ForecastStore, error) {
	if !cfg.Forecast.Audit.Enabled {
		return internalrepo.NoopStore{}, nil
	}
	ch := cfg.ClickHouse
	client, err := pkgch.NewClient(pkgch.Config{
		Host:             ch.Host,
		Port:             ch.Port,
		Database:         ch.Database,
		User:             ch.User,
		Password:         ch.Password,
		UseHTTP:          ch.UseHTTP,
		AsyncInsert:      ch.AsyncInsert,
		WaitForAsync:     ch.WaitForAsync,
		DialTimeout:      ch.DialTimeout,
		ReadTimeout:      ch.ReadTimeout,
		MaxExecutionTime: ch.MaxExecutionTime,
		MaxOpenConns:     ch.MaxOpenConns,
		MaxIdleConns:     ch.MaxIdleConns,
	})
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	store, err := internalrepo.NewCHForecastStore(client, ch.Database+"."+cfg.Forecast.Audit.Table, l)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	stmts := append([]string{"CREATE DATABASE IF NOT EXISTS " + ch.Database}, store.SchemaStatements()...)
	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	l.Info("clickhouse: forecast audit ready", applogger.String("database", ch.Database))
	return store, nil
}

// ProvideForecastUseCase creates the forecast use case.
func ProvideForecastUseCase(
	engine *forecast.Engine,
	pub domrepo.ForecastPublisher,
	store domrepo.ForecastStore,
	m domrepo.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.ForecastUseCase {
	return usecase.NewForecastUseCase(engine, pub, store, m, l, cfg.Forecast.Timeout)
}

// ProvideWarmer creates the cache warmer. It returns nil when warming is off.
func ProvideWarmer(cfg *config.Config, history *usecase.HistoryUseCase, c cache.Service, l *applogger.Logger) (*usecase.Warmer, error) {
	w := cfg.History.Warm
	if !w.Enabled {
		return nil, nil
	}
	watch := make([]models.HistoryQuery, len(w.Watchlist))
	for i, item := range w.Watchlist {
		watch[i] = models.HistoryQuery{Symbol: item.Symbol, Period: item.Period, Interval: item.Interval}
	}
	return usecase.NewWarmer(history, c, w.Schedule, watch, l)
}

// ProvideHandler creates the HTTP route handler.
func ProvideHandler(l *applogger.Logger, fc *usecase.ForecastUseCase, hc *usecase.HistoryUseCase) xhttp.Handler {
	return api.NewForecastEchoHandler(l, fc, hc)
}

// ProvideHTTPServer creates the Echo server with readiness checks on the
// cache and the audit store.
func ProvideHTTPServer(cfg *config.Config, h xhttp.Handler, c cache.Service, store domrepo.ForecastStore, l *applogger.Logger) *xhttp.Server {
	s := cfg.Server
	opts := []xhttp.ServerOption{
		xhttp.WithHost(s.Host),
		xhttp.WithPort(s.Port),
		xhttp.WithTimeouts(s.ReadTimeout, s.WriteTimeout, s.ShutdownTimeout),
		xhttp.WithSlowThreshold(s.SlowThreshold),
		xhttp.WithCORSOrigins(s.CORSOrigins),
		xhttp.WithBodyLimit(s.BodyLimit),
		xhttp.WithLogger(l),
		xhttp.WithHealthChecks(
			xhttp.HealthCheck{Name: "cache", Check: withTimeout(c.Ping)},
			xhttp.HealthCheck{Name: "audit", Check: withTimeout(store.Health)},
		),
	}
	if s.RateLimit.Enabled {
		opts = append(opts, xhttp.WithServerRateLimit(s.RateLimit.RPS, s.RateLimit.Burst))
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(cfg.Metrics.Path))
	} else {
		opts = append(opts, xhttp.WithMetricsPath(""))
	}
	return xhttp.NewServer(h, opts...)
}

func withTimeout(check func(context.Context) error) func() error {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
		defer cancel()
		return check(ctx)
	}
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	srv *xhttp.Server,
	warmer *usecase.Warmer,
	fc *usecase.ForecastUseCase,
	c cache.Service,
	l *applogger.Logger,
) *server.App {
	return server.New(srv, warmer, fc, c, l, cfg.History.Warm.RunOnStart)
}
