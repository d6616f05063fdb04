package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Log        LogConfig
	HTTP       HTTPConfig
	Scheduler  SchedulerConfig
	Collection CollectionConfig
	Adapters   AdaptersConfig
	Scoring    ScoringConfig
	Storage    StorageConfig
	Swagger    SwaggerConfig
	Telemetry  TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	AutoMigrate     bool // apply embedded migrations on server start
}

// RedisConfig holds Redis connection settings.
// An empty Host disables Redis and the in-memory enqueue guard is used instead.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds settings for validating operator tokens
type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	CORSAllowOrigins  []string
	TrustedProxies    []string
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// SchedulerConfig holds the scoring worker pool and daily collection trigger settings
type SchedulerConfig struct {
	Enabled           bool
	DailyRunHour      int
	DailyRunMinute    int
	MaxConcurrentJobs int
	QueueSize         int
	JobTimeout        time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
	StartupSweep      bool
	StartupSweepLimit int
}

// CollectionConfig holds orchestrator settings
type CollectionConfig struct {
	AdapterConcurrency int
	AdapterTimeout     time.Duration
	EnqueueTTL         time.Duration
}

// HTTPClientConfig is shared by every network adapter
type HTTPClientConfig struct {
	UserAgent       string
	RequestTimeout  time.Duration
	PolitenessDelay time.Duration
	MaxRetries      int
	MaxBodyBytes    int64
}

// NewsAdapterConfig configures the news site adapter
type NewsAdapterConfig struct {
	Enabled         bool
	IndexURLs       []string
	MaxArticles     int
	ArticleSelector string
}

// DirectoryAdapterConfig configures the business directory adapter
type DirectoryAdapterConfig struct {
	Enabled bool
	URLs    []string
}

// PlacesAdapterConfig configures the Google Places text search adapter
type PlacesAdapterConfig struct {
	Enabled    bool
	APIKey     string
	BaseURL    string
	DetailsURL string // empty skips the per-place details lookup
	Areas      []string
	Queries    []string
	MaxPages   int
}

// SocialAdapterConfig configures the rendered-page adapter
type SocialAdapterConfig struct {
	Enabled   bool
	URLs      []string
	RemoteURL string // chrome devtools websocket; empty launches a local browser
	WaitReady string
	NoSandbox bool
}

// CSVAdapterConfig configures the CSV import adapter
type CSVAdapterConfig struct {
	Enabled   bool
	Paths     []string
	Delimiter string
}

// AdaptersConfig groups source adapter settings
type AdaptersConfig struct {
	HTTP      HTTPClientConfig
	News      NewsAdapterConfig
	Directory DirectoryAdapterConfig
	Places    PlacesAdapterConfig
	Social    SocialAdapterConfig
	CSV       CSVAdapterConfig
}

// ScoringConfig holds prospect analysis settings
type ScoringConfig struct {
	Enabled           bool
	AnthropicAPIKey   string
	AnthropicBaseURL  string
	Model             string
	MaxTokens         int
	Temperature       float64
	RequestTimeout    time.Duration
	MaxRetries        int
	HighPriorityScore int
}

// StorageConfig holds the raw-archive object store settings
type StorageConfig struct {
	Enabled         bool
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	LocalDir        string // archive to disk instead when S3 is disabled
}

// SwaggerConfig holds Swagger documentation endpoint configuration
type SwaggerConfig struct {
	Enabled    bool
	AllowedIPs []string // empty allows every client
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	// Database tracing options
	DBTraceEnabled    bool
	DBLogFullSQL      bool
	DBSlowQueryThresh time.Duration
	// Continuous profiling
	ProfilingEnabled bool
	PyroscopeURL     string
}

// Load loads configuration from an optional .env file, config.toml and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with HBI_ prefix (e.g., HBI_DATABASE_PASSWORD)
// 2. .env file (never overrides variables already set)
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("HBI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:   v.GetString("jwt.secret"),
			Issuer:   v.GetString("jwt.issuer"),
			Audience: v.GetString("jwt.audience"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
		},
		Scheduler: SchedulerConfig{
			Enabled:           v.GetBool("scheduler.enabled"),
			DailyRunHour:      v.GetInt("scheduler.daily_run_hour"),
			DailyRunMinute:    v.GetInt("scheduler.daily_run_minute"),
			MaxConcurrentJobs: v.GetInt("scheduler.max_concurrent_jobs"),
			QueueSize:         v.GetInt("scheduler.queue_size"),
			JobTimeout:        v.GetDuration("scheduler.job_timeout"),
			RetryAttempts:     v.GetInt("scheduler.retry_attempts"),
			RetryDelay:        v.GetDuration("scheduler.retry_delay"),
			StartupSweep:      v.GetBool("scheduler.startup_sweep"),
			StartupSweepLimit: v.GetInt("scheduler.startup_sweep_limit"),
		},
		Collection: CollectionConfig{
			AdapterConcurrency: v.GetInt("collection.adapter_concurrency"),
			AdapterTimeout:     v.GetDuration("collection.adapter_timeout"),
			EnqueueTTL:         v.GetDuration("collection.enqueue_ttl"),
		},
		Adapters: AdaptersConfig{
			HTTP: HTTPClientConfig{
				UserAgent:       v.GetString("adapters.http.user_agent"),
				RequestTimeout:  v.GetDuration("adapters.http.request_timeout"),
				PolitenessDelay: v.GetDuration("adapters.http.politeness_delay"),
				MaxRetries:      v.GetInt("adapters.http.max_retries"),
				MaxBodyBytes:    v.GetInt64("adapters.http.max_body_bytes"),
			},
			News: NewsAdapterConfig{
				Enabled:         v.GetBool("adapters.news.enabled"),
				IndexURLs:       v.GetStringSlice("adapters.news.index_urls"),
				MaxArticles:     v.GetInt("adapters.news.max_articles"),
				ArticleSelector: v.GetString("adapters.news.article_selector"),
			},
			Directory: DirectoryAdapterConfig{
				Enabled: v.GetBool("adapters.directory.enabled"),
				URLs:    v.GetStringSlice("adapters.directory.urls"),
			},
			Places: PlacesAdapterConfig{
				Enabled:    v.GetBool("adapters.places.enabled"),
				APIKey:     v.GetString("adapters.places.api_key"),
				BaseURL:    v.GetString("adapters.places.base_url"),
				DetailsURL: v.GetString("adapters.places.details_url"),
				Areas:      v.GetStringSlice("adapters.places.areas"),
				Queries:    v.GetStringSlice("adapters.places.queries"),
				MaxPages:   v.GetInt("adapters.places.max_pages"),
			},
			Social: SocialAdapterConfig{
				Enabled:   v.GetBool("adapters.social.enabled"),
				URLs:      v.GetStringSlice("adapters.social.urls"),
				RemoteURL: v.GetString("adapters.social.remote_url"),
				WaitReady: v.GetString("adapters.social.wait_ready"),
				NoSandbox: v.GetBool("adapters.social.no_sandbox"),
			},
			CSV: CSVAdapterConfig{
				Enabled:   v.GetBool("adapters.csv.enabled"),
				Paths:     v.GetStringSlice("adapters.csv.paths"),
				Delimiter: v.GetString("adapters.csv.delimiter"),
			},
		},
		Scoring: ScoringConfig{
			Enabled:           v.GetBool("scoring.enabled"),
			AnthropicAPIKey:   v.GetString("scoring.anthropic_api_key"),
			AnthropicBaseURL:  v.GetString("scoring.anthropic_base_url"),
			Model:             v.GetString("scoring.model"),
			MaxTokens:         v.GetInt("scoring.max_tokens"),
			Temperature:       v.GetFloat64("scoring.temperature"),
			RequestTimeout:    v.GetDuration("scoring.request_timeout"),
			MaxRetries:        v.GetInt("scoring.max_retries"),
			HighPriorityScore: v.GetInt("scoring.high_priority_score"),
		},
		Storage: StorageConfig{
			Enabled:         v.GetBool("storage.enabled"),
			Endpoint:        v.GetString("storage.endpoint"),
			Region:          v.GetString("storage.region"),
			Bucket:          v.GetString("storage.bucket"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			UsePathStyle:    v.GetBool("storage.use_path_style"),
			LocalDir:        v.GetString("storage.local_dir"),
		},
		Swagger: SwaggerConfig{
			Enabled:    v.GetBool("swagger.enabled"),
			AllowedIPs: v.GetStringSlice("swagger.allowed_ips"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			PyroscopeURL:      v.GetString("telemetry.pyroscope_url"),
		},
	}

	// Viper reports unset booleans as false, so defaults that should be on
	// are only applied when the key was never provided.
	if !v.IsSet("scoring.enabled") {
		cfg.Scoring.Enabled = true
	}
	if !v.IsSet("scheduler.enabled") {
		cfg.Scheduler.Enabled = true
	}
	if !v.IsSet("swagger.enabled") {
		cfg.Swagger.Enabled = true
	}
	if !v.IsSet("adapters.places.details_url") {
		cfg.Adapters.Places.DetailsURL = "https://maps.googleapis.com/maps/api/place/details/json"
	}
	if !v.IsSet("scheduler.daily_run_hour") {
		cfg.Scheduler.DailyRunHour = 2
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "hawaii-intel"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "hawaii_intel"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host != "" && cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "hawaii-intel"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 120
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if cfg.Scheduler.MaxConcurrentJobs == 0 {
		cfg.Scheduler.MaxConcurrentJobs = 3
	}
	if cfg.Scheduler.QueueSize == 0 {
		cfg.Scheduler.QueueSize = 100
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 2 * time.Minute
	}
	if cfg.Scheduler.RetryAttempts == 0 {
		cfg.Scheduler.RetryAttempts = 3
	}
	if cfg.Scheduler.RetryDelay == 0 {
		cfg.Scheduler.RetryDelay = 30 * time.Second
	}
	if cfg.Scheduler.StartupSweepLimit == 0 {
		cfg.Scheduler.StartupSweepLimit = 500
	}
	if cfg.Collection.AdapterConcurrency == 0 {
		cfg.Collection.AdapterConcurrency = 1
	}
	if cfg.Collection.AdapterTimeout == 0 {
		cfg.Collection.AdapterTimeout = 30 * time.Minute
	}
	if cfg.Collection.EnqueueTTL == 0 {
		cfg.Collection.EnqueueTTL = 7 * 24 * time.Hour
	}
	if cfg.Adapters.HTTP.UserAgent == "" {
		cfg.Adapters.HTTP.UserAgent = "Mozilla/5.0 (compatible; HawaiiBusinessIntel/1.0)"
	}
	if cfg.Adapters.HTTP.RequestTimeout == 0 {
		cfg.Adapters.HTTP.RequestTimeout = 30 * time.Second
	}
	if cfg.Adapters.HTTP.PolitenessDelay == 0 {
		cfg.Adapters.HTTP.PolitenessDelay = 2 * time.Second
	}
	if cfg.Adapters.HTTP.MaxRetries == 0 {
		cfg.Adapters.HTTP.MaxRetries = 3
	}
	if cfg.Adapters.HTTP.MaxBodyBytes == 0 {
		cfg.Adapters.HTTP.MaxBodyBytes = 5 << 20
	}
	if cfg.Adapters.News.MaxArticles == 0 {
		cfg.Adapters.News.MaxArticles = 10
	}
	if cfg.Adapters.Places.BaseURL == "" {
		cfg.Adapters.Places.BaseURL = "https://maps.googleapis.com/maps/api/place/textsearch/json"
	}
	if len(cfg.Adapters.Places.Areas) == 0 {
		cfg.Adapters.Places.Areas = []string{"Honolulu", "Kahului", "Hilo", "Kailua-Kona", "Lihue"}
	}
	if len(cfg.Adapters.Places.Queries) == 0 {
		cfg.Adapters.Places.Queries = []string{"business", "company"}
	}
	if cfg.Adapters.Places.MaxPages == 0 {
		cfg.Adapters.Places.MaxPages = 3
	}
	if cfg.Adapters.Social.WaitReady == "" {
		cfg.Adapters.Social.WaitReady = "body"
	}
	if cfg.Adapters.CSV.Delimiter == "" {
		cfg.Adapters.CSV.Delimiter = ","
	}
	if cfg.Scoring.AnthropicBaseURL == "" {
		cfg.Scoring.AnthropicBaseURL = "https://api.anthropic.com"
	}
	if cfg.Scoring.Model == "" {
		cfg.Scoring.Model = "claude-3-haiku-20240307"
	}
	if cfg.Scoring.MaxTokens == 0 {
		cfg.Scoring.MaxTokens = 1500
	}
	if cfg.Scoring.Temperature == 0 {
		cfg.Scoring.Temperature = 0.7
	}
	if cfg.Scoring.RequestTimeout == 0 {
		cfg.Scoring.RequestTimeout = 60 * time.Second
	}
	if cfg.Scoring.MaxRetries == 0 {
		cfg.Scoring.MaxRetries = 3
	}
	if cfg.Scoring.HighPriorityScore == 0 {
		cfg.Scoring.HighPriorityScore = 80
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-west-2"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "hawaii-intel"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Collection.AdapterConcurrency < 1 {
		return fmt.Errorf("collection.adapter_concurrency must be at least 1")
	}
	if c.Scheduler.DailyRunHour < 0 || c.Scheduler.DailyRunHour > 23 {
		return fmt.Errorf("scheduler.daily_run_hour must be between 0 and 23, got %d", c.Scheduler.DailyRunHour)
	}
	if c.Scheduler.DailyRunMinute < 0 || c.Scheduler.DailyRunMinute > 59 {
		return fmt.Errorf("scheduler.daily_run_minute must be between 0 and 59, got %d", c.Scheduler.DailyRunMinute)
	}
	if c.Scoring.HighPriorityScore < 0 || c.Scoring.HighPriorityScore > 100 {
		return fmt.Errorf("scoring.high_priority_score must be between 0 and 100, got %d", c.Scoring.HighPriorityScore)
	}
	if c.Scoring.Temperature < 0 || c.Scoring.Temperature > 1 {
		return fmt.Errorf("scoring.temperature must be between 0.0 and 1.0, got %f", c.Scoring.Temperature)
	}
	if c.Adapters.Places.Enabled && c.Adapters.Places.APIKey == "" {
		return fmt.Errorf("adapters.places.api_key is required when the places adapter is enabled")
	}
	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage is enabled")
	}
	if len(c.Adapters.CSV.Delimiter) != 1 {
		return fmt.Errorf("adapters.csv.delimiter must be a single character")
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
