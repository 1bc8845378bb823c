package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/goliatone/go-transsaction-cache/model"
	"github.com/redis/go-redis/v9"
)

func TestNewLocalGateway(t *testing.T) {
	gw, err := NewLocalGateway(DefaultConfig())
	if err != nil {
		t.Fatalf("NewLocalGateway() error = %v", err)
	}
	roundTrip(t, gw)
}

func TestNewLocalGateway_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Capacity = 0

	gw, err := NewLocalGateway(cfg)
	if err == nil {
		t.Fatal("expected an error for zero capacity")
	}
	if gw != nil {
		t.Errorf("NewLocalGateway() = %T, want nil gateway", gw)
	}
}

func TestNewRedisGateway(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	roundTrip(t, NewRedisGateway(client))
	if !server.Exists(Namespace) {
		t.Errorf("expected hash %s in redis", Namespace)
	}
}

func roundTrip(t *testing.T, gw Gateway) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := gw.Get(ctx, Namespace, "tx-1"); err != nil || ok {
		t.Fatalf("Get() on empty cache = %v, %v", ok, err)
	}
	if err := gw.Put(ctx, Namespace, "tx-1", &model.Transsaction{ID: "tx-1", IdentityDni: "45871236"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, ok, err := gw.Get(ctx, Namespace, "tx-1")
	if err != nil || !ok || got.IdentityDni != "45871236" {
		t.Fatalf("Get() = %+v, %v, %v", got, ok, err)
	}

	all, err := gw.GetAll(ctx, Namespace)
	if err != nil || len(all) != 1 {
		t.Fatalf("GetAll() = %d records, %v", len(all), err)
	}
}
