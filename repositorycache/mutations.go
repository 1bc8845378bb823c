package repositorycache

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-transsaction-cache/model"
	"github.com/goliatone/go-transsaction-cache/store"
)

// prepareCreate returns the record to insert: a copy registered today with no id.
func prepareCreate(record *model.Transsaction, now time.Time) (*model.Transsaction, error) {
	if record == nil {
		return nil, fmt.Errorf("create transsaction: nil record")
	}
	out := record.Clone()
	out.ID = ""
	out.DateRegister = model.Date(now)
	return out, nil
}

// applyUpdate reads the stored record, merges patch onto it and saves the result.
// It returns nil when id does not exist.
func applyUpdate(ctx context.Context, st store.Gateway, id string, patch *model.Transsaction) (*model.Transsaction, error) {
	if patch == nil {
		return nil, fmt.Errorf("update transsaction %s: nil patch", id)
	}
	existing, ok, err := st.FetchByID(ctx, id)
	if err != nil || !ok {
		return nil, err
	}

	if err := model.MergeInto(existing, patch.Clone()); err != nil {
		return nil, err
	}
	return st.Save(ctx, existing)
}

// applyDelete removes id and returns the record as it was before deletion.
// It returns nil when id does not exist.
func applyDelete(ctx context.Context, st store.Gateway, id string) (*model.Transsaction, error) {
	existing, ok, err := st.FetchByID(ctx, id)
	if err != nil || !ok {
		return nil, err
	}
	if err := st.Delete(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}
