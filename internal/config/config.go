package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"

	"github.com/projecta/notifier/internal/queue"
	"github.com/projecta/notifier/internal/repository/sqlstore"
	"github.com/projecta/notifier/pkg/logger"
	"github.com/projecta/notifier/pkg/messaging/redis"
	"github.com/projecta/notifier/pkg/worker"
)

const envPrefix = "PROJECTA"

// Store backends.
const (
	StoreMemory    = "memory"
	StoreSQLite    = "sqlite"
	StorePostgres  = "postgres"
	StoreFirestore = "firestore"
)

// Ledger backends.
const (
	LedgerMemory = "memory"
	LedgerRedis  = "redis"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Store     StoreConfig     `mapstructure:"store"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Broker    BrokerConfig    `mapstructure:"broker"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Scanner   ScannerConfig   `mapstructure:"scanner"`
	Settings  SettingsConfig  `mapstructure:"settings"`
	Retention RetentionConfig `mapstructure:"retention"`
	Queue     QueueConfig     `mapstructure:"queue"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type StoreConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Firebase        FirebaseFile  `mapstructure:"firebase"`
}

// FirebaseFile points at service-account credentials on disk. When
// CredentialsFile is empty the FIREBASE_* environment is used instead.
type FirebaseFile struct {
	ProjectID       string `mapstructure:"project_id"`
	DatabaseURL     string `mapstructure:"database_url"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type BrokerConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type LedgerConfig struct {
	Backend string `mapstructure:"backend"`
	Prefix  string `mapstructure:"prefix"`
}

type ScannerConfig struct {
	Enabled             bool          `mapstructure:"enabled"`
	StartupDelay        time.Duration `mapstructure:"startup_delay"`
	Interval            time.Duration `mapstructure:"interval"`
	LedgerClearInterval time.Duration `mapstructure:"ledger_clear_interval"`
	Timezone            string        `mapstructure:"timezone"`
	OverdueMilestones   []int         `mapstructure:"overdue_milestones"`
}

type SettingsConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type RetentionConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	ReadDays int           `mapstructure:"read_days"`
	Interval time.Duration `mapstructure:"interval"`
}

type QueueConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	RedisURL    string        `mapstructure:"redis_url"`
	Concurrency int           `mapstructure:"concurrency"`
	MaxRetry    int           `mapstructure:"max_retry"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Retention   time.Duration `mapstructure:"retention"`
}

type JWTConfig struct {
	Secret   string `mapstructure:"secret"`
	Issuer   string `mapstructure:"issuer"`
	Audience string `mapstructure:"audience"`
}

type SMTPConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 0)
	v.SetDefault("server.request_timeout", 10*time.Second)
	v.SetDefault("server.max_header_bytes", 1<<20)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logger.FormatJSON)

	v.SetDefault("store.driver", StoreMemory)
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.max_open_conns", 10)
	v.SetDefault("store.max_idle_conns", 5)
	v.SetDefault("store.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("store.firebase.project_id", "")
	v.SetDefault("store.firebase.database_url", "")
	v.SetDefault("store.firebase.credentials_file", "")

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)

	v.SetDefault("broker.enabled", false)

	v.SetDefault("ledger.backend", LedgerMemory)
	v.SetDefault("ledger.prefix", "projecta")

	v.SetDefault("scanner.enabled", true)
	v.SetDefault("scanner.startup_delay", 5*time.Second)
	v.SetDefault("scanner.interval", time.Hour)
	v.SetDefault("scanner.ledger_clear_interval", 24*time.Hour)
	v.SetDefault("scanner.timezone", "UTC")
	v.SetDefault("scanner.overdue_milestones", []int{1, 3, 7, 14, 30})

	v.SetDefault("settings.cache_ttl", time.Minute)

	v.SetDefault("retention.enabled", true)
	v.SetDefault("retention.read_days", 30)
	v.SetDefault("retention.interval", 24*time.Hour)

	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.redis_url", "redis://localhost:6379/1")
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.max_retry", 3)
	v.SetDefault("queue.timeout", time.Minute)
	v.SetDefault("queue.retention", 24*time.Hour)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "")
	v.SetDefault("jwt.audience", "")

	v.SetDefault("smtp.enabled", false)
	v.SetDefault("smtp.host", "localhost")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "no-reply@projecta.app")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 20)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("metrics.namespace", "projecta")
	v.SetDefault("metrics.path", "/metrics")
}

// LoadConfig reads path, or config.yml from the usual locations when path is
// empty. A missing file is not an error; defaults and PROJECTA_* environment
// variables still apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app")
		v.AddConfigPath("/app/config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreMemory, StoreSQLite, StorePostgres, StoreFirestore:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	switch c.Ledger.Backend {
	case LedgerMemory, LedgerRedis:
	default:
		return fmt.Errorf("unknown ledger backend %q", c.Ledger.Backend)
	}
	if c.Scanner.Interval <= 0 || c.Scanner.LedgerClearInterval <= 0 {
		return errors.New("scanner intervals must be positive")
	}
	if c.Retention.ReadDays < 0 {
		return errors.New("retention.read_days must not be negative")
	}
	if _, err := time.LoadLocation(c.Scanner.Timezone); err != nil {
		return fmt.Errorf("invalid scanner.timezone: %w", err)
	}
	return nil
}

// Location returns the zone calendar days are computed in.
func (c *ScannerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *LogConfig) ToLoggerConfig() *logger.Config {
	return &logger.Config{
		Level:      logger.ParseLevel(c.Level),
		Format:     c.Format,
		TimeFormat: time.RFC3339,
	}
}

func (c *StoreConfig) ToSQLConfig() sqlstore.Config {
	return sqlstore.Config{
		Driver:          c.Driver,
		DSN:             c.DSN,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}
}

func (c *RedisConfig) ToBrokerConfig() redis.Config {
	return redis.Config{
		URL:          c.URL,
		MaxRetries:   c.MaxRetries,
		RetryBackoff: c.RetryBackoff,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
	}
}

func (c *ScannerConfig) ToWorkerConfig() worker.DeadlineScannerConfig {
	return worker.DeadlineScannerConfig{
		StartupDelay:        c.StartupDelay,
		ScanInterval:        c.Interval,
		LedgerClearInterval: c.LedgerClearInterval,
	}
}

func (c *QueueConfig) ToQueueConfig() queue.Config {
	return queue.Config{
		RedisURL:    c.RedisURL,
		Concurrency: c.Concurrency,
		MaxRetry:    c.MaxRetry,
		Timeout:     c.Timeout,
		Retention:   c.Retention,
	}
}
