package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"sibyl/pkg/errors"
)

type Config struct {
	App           AppConfig
	Server        ServerConfig
	Providers     ProvidersConfig
	Cache         CacheConfig
	Redis         RedisConfig
	Sentiment     SentimentConfig
	Forecast      ForecastConfig
	Ensemble      EnsembleConfig
	Workers       WorkerConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"sibyl"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

type ServerConfig struct {
	Addr string `envconfig:"SERVER_ADDR" default:":8080"`
}

// ProvidersConfig holds credentials and throttling settings for the three
// external market data providers. Concurrency ceilings are per provider:
// Alpha Vantage gets the tightest limit to match its free tier.
type ProvidersConfig struct {
	AlphaVantageKey         string `envconfig:"ALPHA_VANTAGE_KEY"`
	AlphaVantageBase        string `envconfig:"ALPHA_VANTAGE_BASE" default:"https://www.alphavantage.co/query"`
	AlphaVantageConcurrency int    `envconfig:"ALPHA_VANTAGE_CONCURRENCY" default:"2"`
	AlphaVantageRPM         int    `envconfig:"ALPHA_VANTAGE_RPM" default:"5"`

	FMPKey         string `envconfig:"FMP_API_KEY"`
	FMPBase        string `envconfig:"FMP_BASE" default:"https://financialmodelingprep.com/api/v3"`
	FMPConcurrency int    `envconfig:"FMP_CONCURRENCY" default:"3"`
	FMPRPM         int    `envconfig:"FMP_RPM" default:"300"`

	NewsAPIKey         string `envconfig:"NEWS_API_KEY"`
	NewsAPIBase        string `envconfig:"NEWSAPI_BASE" default:"https://newsapi.org/v2"`
	NewsAPIConcurrency int    `envconfig:"NEWSAPI_CONCURRENCY" default:"5"`
	NewsAPIRPM         int    `envconfig:"NEWSAPI_RPM" default:"100"`

	RequestTimeout time.Duration `envconfig:"PROVIDER_REQUEST_TIMEOUT" default:"8s"`
	MaxRetries     int           `envconfig:"PROVIDER_MAX_RETRIES" default:"2"`
	BackoffBase    time.Duration `envconfig:"PROVIDER_BACKOFF_BASE" default:"500ms"`
	BackoffJitter  time.Duration `envconfig:"PROVIDER_BACKOFF_JITTER" default:"200ms"`
}

type CacheConfig struct {
	// Backend selects the store implementation: "redis" or "memory"
	Backend     string        `envconfig:"CACHE_BACKEND" default:"memory"`
	ResponseTTL time.Duration `envconfig:"CACHE_RESPONSE_TTL" default:"5m"`
	ResultTTL   time.Duration `envconfig:"CACHE_RESULT_TTL" default:"5m"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SentimentConfig selects the external sentiment scorer implementation.
// "none" leaves news unscored, "remote" posts to a FinBERT-style model
// server, "openai" asks an LLM to score headline batches.
type SentimentConfig struct {
	Scorer      string        `envconfig:"SENTIMENT_SCORER" default:"none"`
	RemoteURL   string        `envconfig:"SENTIMENT_REMOTE_URL" default:"http://localhost:9001/score"`
	OpenAIKey   string        `envconfig:"OPENAI_API_KEY"`
	OpenAIModel string        `envconfig:"SENTIMENT_OPENAI_MODEL" default:"gpt-4o-mini"`
	Timeout     time.Duration `envconfig:"SENTIMENT_TIMEOUT" default:"30s"`
}

// ForecastConfig selects the price forecaster: a deterministic local stub
// or a remote quantile model server.
type ForecastConfig struct {
	Mode      string        `envconfig:"FORECAST_MODE" default:"local"`
	RemoteURL string        `envconfig:"FORECAST_REMOTE_URL" default:"http://localhost:9000/predict"`
	Timeout   time.Duration `envconfig:"FORECAST_TIMEOUT" default:"15s"`
}

type EnsembleConfig struct {
	// ModelPath points at an ONNX classifier artifact. Empty or missing
	// file selects the weighted-blend baseline.
	ModelPath string `envconfig:"ENSEMBLE_MODEL_PATH"`
}

type WorkerConfig struct {
	PrefetchSymbols  []string      `envconfig:"WORKER_PREFETCH_SYMBOLS"`
	PrefetchHorizon  int           `envconfig:"WORKER_PREFETCH_HORIZON" default:"5"`
	PrefetchInterval time.Duration `envconfig:"WORKER_PREFETCH_INTERVAL" default:"10m"`
	SweepInterval    time.Duration `envconfig:"WORKER_SWEEP_INTERVAL" default:"1m"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
