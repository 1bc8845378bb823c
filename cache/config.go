package cache

import (
	"github.com/goliatone/go-transsaction-cache/internal/cacheinfra"
	"github.com/redis/go-redis/v9"
)

// Config exposes the in-process cache engine options.
type Config = cacheinfra.Config

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return cacheinfra.DefaultConfig()
}

// NewLocalGateway builds the in-process Gateway used when no Redis server is configured.
func NewLocalGateway(cfg Config) (Gateway, error) {
	gw, err := cacheinfra.NewSturdycGateway(cfg)
	if err != nil {
		return nil, err
	}
	return gw, nil
}

// NewRedisGateway builds a Gateway storing each namespace as a Redis hash.
func NewRedisGateway(client redis.Cmdable) Gateway {
	return cacheinfra.NewRedisGateway(client)
}
