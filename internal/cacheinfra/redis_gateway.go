package cacheinfra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goliatone/go-transsaction-cache/model"
	"github.com/redis/go-redis/v9"
)

// RedisGateway stores each namespace as a Redis hash whose fields are record ids
// and whose values are JSON encoded snapshots.
type RedisGateway struct {
	client redis.Cmdable
}

// NewRedisGateway wraps a go-redis client.
func NewRedisGateway(client redis.Cmdable) *RedisGateway {
	return &RedisGateway{client: client}
}

// Get reads one hash field.
func (g *RedisGateway) Get(ctx context.Context, namespace, id string) (*model.Transsaction, bool, error) {
	data, err := g.client.HGet(ctx, namespace, id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis hget %s %s: %w", namespace, id, err)
	}

	record, err := decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("decode %s %s: %w", namespace, id, err)
	}
	return record, true, nil
}

// GetAll reads every value of the hash.
func (g *RedisGateway) GetAll(ctx context.Context, namespace string) ([]*model.Transsaction, error) {
	values, err := g.client.HVals(ctx, namespace).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hvals %s: %w", namespace, err)
	}

	records := make([]*model.Transsaction, 0, len(values))
	for _, v := range values {
		record, err := decode([]byte(v))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", namespace, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// Put writes one hash field.
func (g *RedisGateway) Put(ctx context.Context, namespace, id string, record *model.Transsaction) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", namespace, id, err)
	}
	if err := g.client.HSet(ctx, namespace, id, data).Err(); err != nil {
		return fmt.Errorf("redis hset %s %s: %w", namespace, id, err)
	}
	return nil
}

// Delete removes one hash field.
func (g *RedisGateway) Delete(ctx context.Context, namespace, id string) error {
	if err := g.client.HDel(ctx, namespace, id).Err(); err != nil {
		return fmt.Errorf("redis hdel %s %s: %w", namespace, id, err)
	}
	return nil
}

func decode(data []byte) (*model.Transsaction, error) {
	var record model.Transsaction
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
