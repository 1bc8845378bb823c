package cacheinfra

import (
	"context"
	"sort"

	"github.com/goliatone/go-transsaction-cache/model"
	"github.com/viccon/sturdyc"
)

// SturdycGateway keeps transsaction snapshots in an in-process sturdyc client.
// Values are cloned on the way in and out so callers never share a pointer
// with the cache.
type SturdycGateway struct {
	client *sturdyc.Client[*model.Transsaction]
}

// NewSturdycGateway validates the configuration and builds the sturdyc client.
func NewSturdycGateway(cfg Config) (*SturdycGateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[*model.Transsaction](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)
	return &SturdycGateway{client: client}, nil
}

// Get returns the snapshot stored for id.
func (g *SturdycGateway) Get(ctx context.Context, namespace, id string) (*model.Transsaction, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	record, ok := g.client.Get(Key(namespace, id))
	if !ok || record == nil {
		return nil, false, nil
	}
	return record.Clone(), true, nil
}

// GetAll returns every snapshot in the namespace ordered by key.
func (g *SturdycGateway) GetAll(ctx context.Context, namespace string) ([]*model.Transsaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var keys []string
	for _, key := range g.client.ScanKeys() {
		if ns, _, ok := SplitKey(key); ok && ns == namespace {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	records := make([]*model.Transsaction, 0, len(keys))
	for _, key := range keys {
		// an entry can expire between the scan and the read
		if record, ok := g.client.Get(key); ok && record != nil {
			records = append(records, record.Clone())
		}
	}
	return records, nil
}

// Put stores a copy of record under id.
func (g *SturdycGateway) Put(ctx context.Context, namespace, id string, record *model.Transsaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.client.Set(Key(namespace, id), record.Clone())
	return nil
}

// Delete removes the entry for id.
func (g *SturdycGateway) Delete(ctx context.Context, namespace, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.client.Delete(Key(namespace, id))
	return nil
}

// Size reports how many entries the client currently holds across namespaces.
func (g *SturdycGateway) Size() int {
	return g.client.Size()
}
