// Package config loads the transsaction service settings from the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-transsaction-cache/cache"
	"github.com/goliatone/go-transsaction-cache/internal/cacheinfra"
	"github.com/goliatone/go-transsaction-cache/internal/storeinfra"
	"github.com/goliatone/go-transsaction-cache/pkg/logger"
	"github.com/goliatone/go-transsaction-cache/resilience"
)

// Config is the full service configuration.
type Config struct {
	HTTPAddr        string        `env:"TRANSSACTION_HTTP_ADDR"        envDefault:":9081"`
	ShutdownTimeout time.Duration `env:"TRANSSACTION_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Cache   CacheConfig   `envPrefix:"TRANSSACTION_CACHE_"`
	Circuit CircuitConfig `envPrefix:"TRANSSACTION_CIRCUIT_"`
	Redis   RedisConfig   `envPrefix:"TRANSSACTION_REDIS_"`
	Store   StoreConfig   `envPrefix:"TRANSSACTION_STORE_"`
	Log     LogConfig     `envPrefix:"TRANSSACTION_LOG_"`
}

// CacheConfig switches the caching layer and sizes the in-process engine.
type CacheConfig struct {
	Enabled      bool          `env:"ENABLED"        envDefault:"true"`
	EvictOnWrite bool          `env:"EVICT_ON_WRITE" envDefault:"false"`
	Capacity     int           `env:"CAPACITY"       envDefault:"10000"`
	NumShards    int           `env:"NUM_SHARDS"     envDefault:"256"`
	TTL          time.Duration `env:"TTL"            envDefault:"720h"`
}

// CircuitConfig mirrors resilience.Config.
type CircuitConfig struct {
	Name                     string        `env:"NAME"                         envDefault:"transsactionCircuit"`
	FailureRateThreshold     float64       `env:"FAILURE_RATE_THRESHOLD"       envDefault:"50"`
	SlidingWindowSize        int           `env:"SLIDING_WINDOW_SIZE"          envDefault:"10"`
	MinimumNumberOfCalls     int           `env:"MINIMUM_NUMBER_OF_CALLS"      envDefault:"10"`
	WaitDurationInOpenState  time.Duration `env:"WAIT_DURATION_IN_OPEN_STATE"  envDefault:"10s"`
	PermittedCallsInHalfOpen int           `env:"PERMITTED_CALLS_IN_HALF_OPEN" envDefault:"3"`
	HalfOpenSuccessRatio     float64       `env:"HALF_OPEN_SUCCESS_RATIO"      envDefault:"1"`
	MaxCallDuration          time.Duration `env:"MAX_CALL_DURATION"            envDefault:"2s"`
}

// RedisConfig selects the Redis cache. An empty URL keeps the cache in process.
type RedisConfig struct {
	URL          string        `env:"URL"`
	PoolSize     int           `env:"POOL_SIZE"`
	MinIdleConns int           `env:"MIN_IDLE_CONNS"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT"   envDefault:"5s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT"   envDefault:"3s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT"  envDefault:"3s"`
}

// StoreConfig selects the durable store. Driver is "sqlite" or "memory".
type StoreConfig struct {
	Driver       string `env:"DRIVER"         envDefault:"sqlite"`
	DSN          string `env:"DSN"            envDefault:"file:transsaction?mode=memory&cache=shared"`
	MaxOpenConns int    `env:"MAX_OPEN_CONNS" envDefault:"1"`
	PageSize     int    `env:"PAGE_SIZE"      envDefault:"100"`
}

type LogConfig struct {
	Level  string `env:"LEVEL"  envDefault:"info"`
	JSON   bool   `env:"JSON"   envDefault:"false"`
	Source bool   `env:"SOURCE" envDefault:"false"`
}

// Load parses the process environment and validates the result.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return &ConfigError{Field: "HTTPAddr", Message: "must not be empty"}
	}
	if c.ShutdownTimeout <= 0 {
		return &ConfigError{Field: "ShutdownTimeout", Message: "must be greater than 0"}
	}
	switch c.Store.Driver {
	case StoreDriverSQLite:
		if err := c.Store.Infra().Validate(); err != nil {
			return err
		}
	case StoreDriverMemory:
	default:
		return &ConfigError{Field: "Store.Driver", Message: fmt.Sprintf("unknown driver %q", c.Store.Driver)}
	}
	switch logger.LogLevel(c.Log.Level) {
	case logger.DebugLevel, logger.InfoLevel, logger.WarnLevel, logger.ErrorLevel, logger.DisabledLevel:
	default:
		return &ConfigError{Field: "Log.Level", Message: fmt.Sprintf("unknown level %q", c.Log.Level)}
	}
	if err := c.Circuit.Resilience().Validate(); err != nil {
		return err
	}
	return c.Cache.Local().Validate()
}

const (
	StoreDriverSQLite = "sqlite"
	StoreDriverMemory = "memory"
)

// Resilience converts the circuit settings.
func (c CircuitConfig) Resilience() resilience.Config {
	return resilience.Config{
		Name:                     c.Name,
		FailureRateThreshold:     c.FailureRateThreshold,
		SlidingWindowSize:        c.SlidingWindowSize,
		MinimumNumberOfCalls:     c.MinimumNumberOfCalls,
		WaitDurationInOpenState:  c.WaitDurationInOpenState,
		PermittedCallsInHalfOpen: c.PermittedCallsInHalfOpen,
		HalfOpenSuccessRatio:     c.HalfOpenSuccessRatio,
		MaxCallDuration:          c.MaxCallDuration,
	}
}

// Local converts the in-process cache settings.
func (c CacheConfig) Local() cache.Config {
	cfg := cache.DefaultConfig()
	cfg.Capacity = c.Capacity
	cfg.NumShards = c.NumShards
	cfg.TTL = c.TTL
	return cfg
}

func (c RedisConfig) Client() cacheinfra.RedisConfig {
	return cacheinfra.RedisConfig{
		URL:          c.URL,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
	}
}

func (c StoreConfig) Infra() storeinfra.Config {
	return storeinfra.Config{
		DSN:          c.DSN,
		MaxOpenConns: c.MaxOpenConns,
		PageSize:     c.PageSize,
	}
}

// Logger converts the log settings.
func (c LogConfig) Logger() *logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = logger.LogLevel(c.Level)
	cfg.JSON = c.JSON
	cfg.AddSource = c.Source
	cfg.Output = os.Stderr
	return cfg
}

// ConfigError reports an invalid setting.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Field + " " + e.Message
}
