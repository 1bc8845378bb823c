package repositorycache

import (
	"context"
	"iter"
	"time"

	"github.com/goliatone/go-transsaction-cache/model"
	"github.com/goliatone/go-transsaction-cache/store"
)

// Direct talks to the store with no cache and no guard. It backs the service
// when the caching layer is switched off.
type Direct struct {
	store store.Gateway
	now   func() time.Time
}

func NewDirect(st store.Gateway, now func() time.Time) *Direct {
	if now == nil {
		now = time.Now
	}
	return &Direct{store: st, now: now}
}

func (d *Direct) FindAll(ctx context.Context) iter.Seq2[*model.Transsaction, error] {
	return d.store.FetchAll(ctx)
}

func (d *Direct) FindByID(ctx context.Context, id string) (*model.Transsaction, bool, error) {
	return d.store.FetchByID(ctx, id)
}

func (d *Direct) FindByIdentityDni(ctx context.Context, dni string) (*model.Transsaction, bool, error) {
	return d.store.FetchByIdentityDni(ctx, dni)
}

func (d *Direct) Create(ctx context.Context, record *model.Transsaction) (*model.Transsaction, bool, error) {
	pending, err := prepareCreate(record, d.now())
	if err != nil {
		return nil, false, err
	}
	created, err := d.store.Save(ctx, pending)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

func (d *Direct) Update(ctx context.Context, id string, patch *model.Transsaction) (*model.Transsaction, bool, error) {
	updated, err := applyUpdate(ctx, d.store, id, patch)
	return updated, updated != nil, err
}

func (d *Direct) Delete(ctx context.Context, id string) (*model.Transsaction, bool, error) {
	deleted, err := applyDelete(ctx, d.store, id)
	return deleted, deleted != nil, err
}
