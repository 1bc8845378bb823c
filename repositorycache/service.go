package repositorycache

import (
	"context"
	"iter"

	"github.com/goliatone/go-transsaction-cache/model"
)

// Operation names used for logging, metrics and fallback events.
const (
	OpFindAll           = "findAll"
	OpFindByID          = "findById"
	OpFindByIdentityDni = "findByIdentityDni"
	OpCreate            = "create"
	OpUpdate            = "update"
	OpDelete            = "delete"
)

// Service is the transsaction access surface consumed by the transport layer.
// Single value operations report a missing or degraded result as ok == false.
type Service interface {
	FindAll(ctx context.Context) iter.Seq2[*model.Transsaction, error]
	FindByID(ctx context.Context, id string) (*model.Transsaction, bool, error)
	FindByIdentityDni(ctx context.Context, dni string) (*model.Transsaction, bool, error)
	Create(ctx context.Context, record *model.Transsaction) (*model.Transsaction, bool, error)
	Update(ctx context.Context, id string, patch *model.Transsaction) (*model.Transsaction, bool, error)
	Delete(ctx context.Context, id string) (*model.Transsaction, bool, error)
}

var (
	_ Service = (*CachedStore)(nil)
	_ Service = (*Direct)(nil)
)
