package cache

import (
	"context"

	"github.com/goliatone/go-transsaction-cache/model"
)

// Namespace is the cache namespace holding transsaction snapshots keyed by id.
const Namespace = "TranssactionRedis"

// Gateway is the key-value cache the orchestrator reads through and writes back to.
// A miss is reported as ok == false, never as an error.
type Gateway interface {
	Get(ctx context.Context, namespace, id string) (*model.Transsaction, bool, error)
	GetAll(ctx context.Context, namespace string) ([]*model.Transsaction, error)
	Put(ctx context.Context, namespace, id string, record *model.Transsaction) error
	Delete(ctx context.Context, namespace, id string) error
}
