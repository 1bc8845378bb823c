package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-transsaction-cache/cache"
	"github.com/goliatone/go-transsaction-cache/internal/cacheinfra"
	"github.com/goliatone/go-transsaction-cache/internal/metrics"
	"github.com/goliatone/go-transsaction-cache/internal/storeinfra"
	"github.com/goliatone/go-transsaction-cache/pkg/config"
	"github.com/goliatone/go-transsaction-cache/pkg/logger"
	"github.com/goliatone/go-transsaction-cache/repositorycache"
	"github.com/goliatone/go-transsaction-cache/resilience"
	"github.com/goliatone/go-transsaction-cache/store"
	"github.com/prometheus/client_golang/prometheus"
)

// Container wires the transsaction service from configuration.
// It owns the store and cache connections it opens and releases them on Close.
type Container struct {
	config   config.Config
	logger   logger.Logger
	now      func() time.Time
	promReg  *prometheus.Registry
	metrics  *metrics.Metrics
	registry *resilience.Registry
	store    store.Gateway
	cache    cache.Gateway
	service  repositorycache.Service
	closers  []func() error
}

// Option overrides a dependency the container would otherwise build.
type Option func(*Container)

func WithLogger(l logger.Logger) Option {
	return func(c *Container) { c.logger = l }
}

// WithStore skips opening the configured store.
func WithStore(st store.Gateway) Option {
	return func(c *Container) { c.store = st }
}

// WithCache skips building the configured cache.
func WithCache(gw cache.Gateway) Option {
	return func(c *Container) { c.cache = gw }
}

// WithClock sets the clock used for registration dates and circuit cooldowns.
func WithClock(now func() time.Time) Option {
	return func(c *Container) { c.now = now }
}

// NewContainer builds every component described by cfg.
func NewContainer(ctx context.Context, cfg config.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{config: cfg, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.NewLogger(cfg.Log.Logger())
	}

	c.promReg = prometheus.NewRegistry()
	c.metrics = metrics.New(c.promReg)
	c.registry = resilience.NewRegistry(c.metrics.CircuitListener(), c.logTransition).
		WithClock(c.now).
		OnCreate(c.metrics.CircuitCreated())

	if err := c.initStore(ctx); err != nil {
		return nil, errors.Join(err, c.Close())
	}
	if err := c.initCache(ctx); err != nil {
		return nil, errors.Join(err, c.Close())
	}
	if err := c.initService(); err != nil {
		return nil, errors.Join(err, c.Close())
	}
	return c, nil
}

// NewContainerWithDefaults builds a container from the default configuration.
func NewContainerWithDefaults(ctx context.Context, opts ...Option) (*Container, error) {
	cfg, err := config.LoadFrom(map[string]string{})
	if err != nil {
		return nil, err
	}
	return NewContainer(ctx, cfg, opts...)
}

func (c *Container) initStore(ctx context.Context) error {
	if c.store != nil {
		return nil
	}
	switch c.config.Store.Driver {
	case config.StoreDriverMemory:
		c.store = store.NewMemoryGateway()
	default:
		gw, db, err := storeinfra.NewGateway(ctx, c.config.Store.Infra())
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		c.closers = append(c.closers, db.Close)
		c.store = gw
	}
	return nil
}

func (c *Container) initCache(ctx context.Context) error {
	if c.cache != nil || !c.config.Cache.Enabled {
		return nil
	}

	client, err := cacheinfra.NewRedisClient(ctx, c.config.Redis.Client())
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if client != nil {
		c.closers = append(c.closers, client.Close)
		c.cache = cache.NewRedisGateway(client)
		c.logger.Info("using redis cache", "namespace", cache.Namespace)
		return nil
	}

	local, err := cache.NewLocalGateway(c.config.Cache.Local())
	if err != nil {
		return fmt.Errorf("build local cache: %w", err)
	}
	c.cache = local
	c.logger.Info("using in-process cache", "namespace", cache.Namespace)
	return nil
}

func (c *Container) initService() error {
	if !c.config.Cache.Enabled {
		c.logger.Warn("caching layer disabled, serving directly from the store")
		c.service = repositorycache.NewDirect(c.store, c.now)
		return nil
	}

	guard, err := c.registry.Guard(c.config.Circuit.Resilience())
	if err != nil {
		return err
	}
	c.service = repositorycache.New(c.store, c.cache, guard,
		repositorycache.WithLogger(c.logger.With("component", "repositorycache")),
		repositorycache.WithClock(c.now),
		repositorycache.WithRecorder(c.metrics),
		repositorycache.WithEvictOnWrite(c.config.Cache.EvictOnWrite),
	)
	return nil
}

func (c *Container) logTransition(change resilience.StateChange) {
	c.logger.Warn("circuit state changed",
		"circuit", change.Name,
		"from", change.From.String(),
		"to", change.To.String(),
	)
}

// Service returns the cache-aside service, or the direct store service when
// caching is disabled.
func (c *Container) Service() repositorycache.Service {
	return c.service
}

func (c *Container) Store() store.Gateway {
	return c.store
}

// Cache returns nil when caching is disabled.
func (c *Container) Cache() cache.Gateway {
	return c.cache
}

func (c *Container) Registry() *resilience.Registry {
	return c.registry
}

func (c *Container) Metrics() *metrics.Metrics {
	return c.metrics
}

// Gatherer exposes the container's metrics for scraping.
func (c *Container) Gatherer() prometheus.Gatherer {
	return c.promReg
}

func (c *Container) Logger() logger.Logger {
	return c.logger
}

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() config.Config {
	return c.config
}

// Close releases the connections opened by the container in reverse order.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
