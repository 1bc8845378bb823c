package di

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/goliatone/go-transsaction-cache/internal/cacheinfra"
	"github.com/goliatone/go-transsaction-cache/pkg/config"
	"github.com/goliatone/go-transsaction-cache/pkg/logger"
	"github.com/goliatone/go-transsaction-cache/repositorycache"
	"github.com/goliatone/go-transsaction-cache/resilience"
	"github.com/goliatone/go-transsaction-cache/store"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testConfig(t *testing.T, vars map[string]string) config.Config {
	t.Helper()
	base := map[string]string{
		"TRANSSACTION_STORE_DSN": fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
	}
	for k, v := range vars {
		base[k] = v
	}
	cfg, err := config.LoadFrom(base)
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}
	return cfg
}

func newTestContainer(t *testing.T, cfg config.Config, opts ...Option) *Container {
	t.Helper()
	opts = append([]Option{WithLogger(logger.NewForTests())}, opts...)
	c, err := NewContainer(context.Background(), cfg, opts...)
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Errorf("Close() failed: %v", err)
		}
	})
	return c
}

func TestNewContainer_Defaults(t *testing.T) {
	c := newTestContainer(t, testConfig(t, nil))

	if _, ok := c.Service().(*repositorycache.CachedStore); !ok {
		t.Errorf("Service() = %T, want *repositorycache.CachedStore", c.Service())
	}
	if _, ok := c.Store().(*store.RepositoryGateway); !ok {
		t.Errorf("Store() = %T, want *store.RepositoryGateway", c.Store())
	}
	if _, ok := c.Cache().(*cacheinfra.SturdycGateway); !ok {
		t.Errorf("Cache() = %T, want *cacheinfra.SturdycGateway", c.Cache())
	}
	if _, ok := c.Registry().Lookup(resilience.DefaultCircuitName); !ok {
		t.Error("default circuit not registered")
	}
	if c.Metrics() == nil || c.Gatherer() == nil {
		t.Fatal("metrics not wired")
	}
	if n := testutil.CollectAndCount(c.Metrics().CircuitState); n != 1 {
		t.Errorf("circuit state series = %d, want 1 before any transition", n)
	}
	if c.Config().HTTPAddr != ":9081" {
		t.Errorf("Config().HTTPAddr = %q", c.Config().HTTPAddr)
	}
}

func TestNewContainer_RedisCache(t *testing.T) {
	s := miniredis.RunT(t)
	c := newTestContainer(t, testConfig(t, map[string]string{
		"TRANSSACTION_REDIS_URL": "redis://" + s.Addr(),
	}))

	if _, ok := c.Cache().(*cacheinfra.RedisGateway); !ok {
		t.Fatalf("Cache() = %T, want *cacheinfra.RedisGateway", c.Cache())
	}
}

func TestNewContainer_UnreachableRedis(t *testing.T) {
	s := miniredis.RunT(t)
	addr := s.Addr()
	s.Close()

	cfg := testConfig(t, map[string]string{
		"TRANSSACTION_REDIS_URL":          "redis://" + addr,
		"TRANSSACTION_REDIS_DIAL_TIMEOUT": "200ms",
	})
	if _, err := NewContainer(context.Background(), cfg, WithLogger(logger.NewForTests())); err == nil {
		t.Fatal("expected error for unreachable redis")
	}
}

func TestNewContainer_CacheDisabled(t *testing.T) {
	c := newTestContainer(t, testConfig(t, map[string]string{
		"TRANSSACTION_CACHE_ENABLED": "false",
		"TRANSSACTION_STORE_DRIVER":  "memory",
	}))

	if _, ok := c.Service().(*repositorycache.Direct); !ok {
		t.Errorf("Service() = %T, want *repositorycache.Direct", c.Service())
	}
	if c.Cache() != nil {
		t.Errorf("Cache() = %T, want nil", c.Cache())
	}
	if _, ok := c.Store().(*store.MemoryGateway); !ok {
		t.Errorf("Store() = %T, want *store.MemoryGateway", c.Store())
	}
}

func TestNewContainer_Overrides(t *testing.T) {
	gw := store.NewMemoryGateway()
	c := newTestContainer(t, testConfig(t, nil), WithStore(gw))

	if c.Store() != gw {
		t.Error("WithStore() override ignored")
	}
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	cfg := testConfig(t, nil)
	cfg.Circuit.SlidingWindowSize = 0

	if _, err := NewContainer(context.Background(), cfg); err == nil {
		t.Fatal("expected error for invalid circuit config")
	}
}

func TestNewContainerWithDefaults(t *testing.T) {
	c, err := NewContainerWithDefaults(context.Background(),
		WithLogger(logger.NewForTests()),
		WithStore(store.NewMemoryGateway()),
	)
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}
	defer c.Close()

	if c.Service() == nil {
		t.Fatal("Service() is nil")
	}
}
