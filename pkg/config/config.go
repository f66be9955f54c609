package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "POS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StorageDriverSQLite = "sqlite"
	StorageDriverMemory = "memory"
	StorageDriverRedis  = "redis"
)

type Config struct {
	App     AppConfig
	API     APIConfig
	Storage StorageConfig
	Redis   RedisConfig
	Sync    SyncConfig
	Cache   CacheConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"POS_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"POS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"POS_LOG_WARN_STACK" default:"false"`
	MetricsAddr  string `envconfig:"POS_METRICS_ADDR"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type APIConfig struct {
	BaseURL        string        `envconfig:"POS_API_BASE_URL" required:"true"`
	RequestTimeout time.Duration `envconfig:"POS_API_REQUEST_TIMEOUT" default:"10s"`
	RetryAttempts  int           `envconfig:"POS_API_RETRY_ATTEMPTS" default:"2"`
	RetryDelay     time.Duration `envconfig:"POS_API_RETRY_DELAY" default:"2s"`
}

type StorageConfig struct {
	Driver string `envconfig:"POS_STORAGE_DRIVER" default:"sqlite"`
	Path   string `envconfig:"POS_STORAGE_PATH" default:"pos-profile.db"`
}

func (s StorageConfig) validate() error {
	switch s.Driver {
	case StorageDriverSQLite:
		if s.Path == "" {
			return fmt.Errorf("POS_STORAGE_PATH is required for the sqlite driver")
		}
	case StorageDriverMemory:
	case StorageDriverRedis:
	default:
		return fmt.Errorf("unknown storage driver %q", s.Driver)
	}
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"POS_REDIS_URL"`
	Address      string        `envconfig:"POS_REDIS_ADDR"`
	Password     string        `envconfig:"POS_REDIS_PASSWORD"`
	DB           int           `envconfig:"POS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"POS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"POS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"POS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"POS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"POS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type SyncConfig struct {
	Interval      time.Duration `envconfig:"POS_SYNC_INTERVAL" default:"2m"`
	ProbeInterval time.Duration `envconfig:"POS_SYNC_PROBE_INTERVAL" default:"15s"`
}

type CacheConfig struct {
	MenuTTL    time.Duration `envconfig:"POS_CACHE_MENU_TTL" default:"5m"`
	OrdersTTL  time.Duration `envconfig:"POS_CACHE_ORDERS_TTL" default:"30s"`
	ReportsTTL time.Duration `envconfig:"POS_CACHE_REPORTS_TTL" default:"2m"`
}
