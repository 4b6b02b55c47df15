package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"tickerpulse/pkg/errors"
)

type Config struct {
	App           AppConfig
	Postgres      PostgresConfig
	Reddit        RedditConfig
	Threads       ThreadsConfig
	Ingest        IngestConfig
	API           APIConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"tickerpulse"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"tickerpulse"`
	Password string `envconfig:"POSTGRES_PASSWORD"`
	Database string `envconfig:"POSTGRES_DB" default:"tickerpulse"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"25"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedditConfig holds credentials for the mandatory Reddit source.
// The adapter constructor fails loudly when ClientID or ClientSecret is empty.
type RedditConfig struct {
	ClientID          string   `envconfig:"REDDIT_CLIENT_ID"`
	ClientSecret      string   `envconfig:"REDDIT_CLIENT_SECRET"`
	UserAgent         string   `envconfig:"REDDIT_USER_AGENT" default:"tickerpulse/1.0"`
	Subreddits        []string `envconfig:"REDDIT_SUBREDDITS" default:"stocks,wallstreetbets,investing,technology,CryptoCurrency,SecurityAnalysis,ValueInvesting"`
	FetchLimit        int      `envconfig:"REDDIT_FETCH_LIMIT" default:"50"`
	RequestsPerMinute int      `envconfig:"REDDIT_REQUESTS_PER_MINUTE" default:"60"`
}

// ThreadsConfig holds credentials for the optional Threads source.
// When unset the adapter constructs successfully and yields nothing.
type ThreadsConfig struct {
	AccessToken string `envconfig:"THREADS_ACCESS_TOKEN"`
	UserID      string `envconfig:"THREADS_USER_ID"`
	FetchLimit  int    `envconfig:"THREADS_FETCH_LIMIT" default:"50"`
}

func (c ThreadsConfig) Configured() bool {
	return c.AccessToken != "" && c.UserID != ""
}

type IngestConfig struct {
	Interval                time.Duration `envconfig:"INGEST_INTERVAL" default:"5m"`
	RetentionDays           int           `envconfig:"POST_RETENTION_DAYS" default:"90"`
	RetentionInterval       time.Duration `envconfig:"RETENTION_INTERVAL" default:"24h"`
	CircuitBreakerThreshold int           `envconfig:"CIRCUIT_BREAKER_THRESHOLD" default:"10"`
	ScoreCacheSize          int           `envconfig:"SCORE_CACHE_SIZE" default:"10000"`
}

type APIConfig struct {
	Port int `envconfig:"API_PORT" default:"8080"`
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
