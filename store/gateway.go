// Package store defines the durable store gateway behind the transsaction cache
// and its implementations.
package store

import (
	"context"
	"iter"

	"github.com/goliatone/go-transsaction-cache/model"
)

// Gateway is the durable repository. It owns no cache logic.
//
// Lookups report a missing record as ok == false, never as an error.
type Gateway interface {
	// FetchAll lazily yields every record. Iteration stops at the first error.
	FetchAll(ctx context.Context) iter.Seq2[*model.Transsaction, error]
	FetchByID(ctx context.Context, id string) (*model.Transsaction, bool, error)
	// FetchByIdentityDni returns the earliest registered record for dni.
	FetchByIdentityDni(ctx context.Context, dni string) (*model.Transsaction, bool, error)
	// Save inserts when ID is empty, assigning a new ID, and fully replaces otherwise.
	Save(ctx context.Context, record *model.Transsaction) (*model.Transsaction, error)
	Delete(ctx context.Context, record *model.Transsaction) error
}
