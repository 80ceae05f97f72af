package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"5001"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		SlowThreshold   time.Duration `yaml:"slow_threshold" default:"2s"`
		CORSOrigins     []string      `yaml:"cors_origins" default:"[\"*\"]"`
		BodyLimit       string        `yaml:"body_limit" default:"1M"`
		RateLimit       struct {
			Enabled bool    `yaml:"enabled" default:"true"`
			RPS     float64 `yaml:"rps" default:"10"`
			Burst   int     `yaml:"burst" default:"20"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Forecast struct {
		Models           []string      `yaml:"models"`
		MinPoints        int           `yaml:"min_points" default:"5"`
		MaxPoints        int           `yaml:"max_points" default:"365"`
		MaxHorizon       int           `yaml:"max_horizon" default:"183"`
		EnforceBounds    bool          `yaml:"enforce_bounds" default:"true"`
		Timeout          time.Duration `yaml:"timeout" default:"10s"`
		PolynomialDegree int           `yaml:"polynomial_degree" default:"2"`
		Ridge            struct {
			Alpha  float64 `yaml:"alpha" default:"1.0"`
			Degree int     `yaml:"degree" default:"1"`
		} `yaml:"ridge"`
		SVR struct {
			C         float64 `yaml:"c" default:"100"`
			Gamma     float64 `yaml:"gamma" default:"0.1"`
			Epsilon   float64 `yaml:"epsilon" default:"0.1"`
			MaxIter   int     `yaml:"max_iter" default:"1000"`
			Tolerance float64 `yaml:"tolerance" default:"0.000001"`
		} `yaml:"svr"`
		Tree struct {
			MaxDepth       int `yaml:"max_depth"`
			MinSamplesLeaf int `yaml:"min_samples_leaf" default:"1"`
		} `yaml:"tree"`
		Forest struct {
			Trees int   `yaml:"trees" default:"100"`
			Seed  int64 `yaml:"seed" default:"42"`
		} `yaml:"forest"`
		Events struct {
			Enabled bool `yaml:"enabled"`
		} `yaml:"events"`
		Audit struct {
			Enabled bool   `yaml:"enabled"`
			Table   string `yaml:"table" default:"forecasts"`
		} `yaml:"audit"`
	} `yaml:"forecast"`
	History struct {
		CacheTTL time.Duration `yaml:"cache_ttl" default:"15m"`
		Provider struct {
			BaseURL        string        `yaml:"base_url" default:"https://query1.finance.yahoo.com"`
			UserAgent      string        `yaml:"user_agent" default:"Mozilla/5.0"`
			AutoAdjust     bool          `yaml:"auto_adjust" default:"true"`
			Timeout        time.Duration `yaml:"timeout" default:"10s"`
			RequestsPerSec float64       `yaml:"requests_per_sec" default:"5"`
			Burst          int           `yaml:"burst" default:"5"`
			MaxElapsed     time.Duration `yaml:"max_elapsed" default:"15s"`
			Breaker        struct {
				MaxFailures uint32        `yaml:"max_failures" default:"3"`
				Interval    time.Duration `yaml:"interval" default:"60s"`
				Timeout     time.Duration `yaml:"timeout" default:"30s"`
			} `yaml:"breaker"`
		} `yaml:"provider"`
		Warm struct {
			Enabled    bool        `yaml:"enabled"`
			Schedule   string      `yaml:"schedule" default:"0 */10 * * * *"`
			RunOnStart bool        `yaml:"run_on_start"`
			Watchlist  []WatchItem `yaml:"watchlist"`
		} `yaml:"warm"`
	} `yaml:"history"`
	Cache struct {
		Backend       string `yaml:"backend" default:"memory"`
		MemoryMaxSize int    `yaml:"memory_max_size" default:"1000"`
		Redis         struct {
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			PoolSize int    `yaml:"pool_size" default:"10"`
			Prefix   string `yaml:"prefix" default:"pricecast"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"pricecast.forecasts"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"50ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		AutoCreateTopic bool `yaml:"auto_create_topic"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"pricecast"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
		MaxOpenConns     int           `yaml:"max_open_conns" default:"10"`
		MaxIdleConns     int           `yaml:"max_idle_conns" default:"5"`
	} `yaml:"clickhouse"`
}

// WatchItem is one history query kept warm in the cache.
type WatchItem struct {
	Symbol   string `yaml:"symbol"`
	Period   string `yaml:"period"`
	Interval string `yaml:"interval"`
}

// Default returns a config populated only from struct defaults.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads a YAML file on top of the defaults. Keys absent from the file
// keep their default value, including booleans that default to true.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads .env (if present), then the YAML file, then applies
// environment overrides. A missing YAML file falls back to defaults.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		c, err = Default()
	}
	if err != nil {
		return nil, err
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("FORECAST_MODELS"); v != "" {
		c.Forecast.Models = splitList(v)
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		host, port, err := net.SplitHostPort(v)
		if err != nil {
			return fmt.Errorf("REDIS_ADDR: %w", err)
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("REDIS_ADDR port: %w", err)
		}
		c.Cache.Redis.Host, c.Cache.Redis.Port = host, p
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be 'console' or 'json', got '%s'", c.Log.Format)
	}
	f := c.Forecast
	if f.MinPoints < 1 {
		return fmt.Errorf("forecast.min_points must be at least 1")
	}
	if f.MaxPoints < f.MinPoints {
		return fmt.Errorf("forecast.max_points (%d) must be >= forecast.min_points (%d)", f.MaxPoints, f.MinPoints)
	}
	if f.MaxHorizon < 1 {
		return fmt.Errorf("forecast.max_horizon must be positive")
	}
	if f.Timeout <= 0 {
		return fmt.Errorf("forecast.timeout must be positive")
	}
	switch c.Cache.Backend {
	case "memory", "redis", "layered":
	default:
		return fmt.Errorf("cache.backend must be 'memory', 'redis' or 'layered', got '%s'", c.Cache.Backend)
	}
	if c.History.CacheTTL <= 0 {
		return fmt.Errorf("history.cache_ttl must be positive")
	}
	if c.History.Provider.RequestsPerSec <= 0 {
		return fmt.Errorf("history.provider.requests_per_sec must be positive")
	}
	if c.History.Warm.Enabled && len(c.History.Warm.Watchlist) == 0 {
		return fmt.Errorf("history.warm.watchlist cannot be empty when warming is enabled")
	}
	if f.Events.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers are required when forecast.events is enabled")
	}
	if f.Audit.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when forecast.audit is enabled")
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
