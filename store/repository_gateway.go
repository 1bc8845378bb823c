package store

import (
	"context"
	"fmt"
	"iter"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-transsaction-cache/model"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultPageSize is how many rows FetchAll pulls per query.
const DefaultPageSize = 100

// RepositoryGateway adapts a go-repository-bun repository to Gateway.
// Lookups go through List with explicit criteria so that a missing row is an
// empty page rather than a driver specific error.
type RepositoryGateway struct {
	repo     repository.Repository[*Row]
	pageSize int
}

// NewRepositoryGateway wraps repo. A non-positive pageSize uses DefaultPageSize.
func NewRepositoryGateway(repo repository.Repository[*Row], pageSize int) *RepositoryGateway {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &RepositoryGateway{repo: repo, pageSize: pageSize}
}

// FetchAll pages through the table ordered by id, one query per page, as the
// caller iterates.
func (g *RepositoryGateway) FetchAll(ctx context.Context) iter.Seq2[*model.Transsaction, error] {
	return func(yield func(*model.Transsaction, error) bool) {
		for offset := 0; ; offset += g.pageSize {
			rows, _, err := g.repo.List(ctx, g.page(offset))
			if err != nil {
				yield(nil, fmt.Errorf("list transsactions at offset %d: %w", offset, err))
				return
			}
			for _, row := range rows {
				if !yield(FromRow(row), nil) {
					return
				}
			}
			if len(rows) < g.pageSize {
				return
			}
		}
	}
}

// FetchByID returns the record with the given id. Ids that are not UUIDs
// cannot exist in the table and are reported as missing.
func (g *RepositoryGateway) FetchByID(ctx context.Context, id string) (*model.Transsaction, bool, error) {
	pk, err := uuid.Parse(id)
	if err != nil {
		return nil, false, nil
	}
	return g.first(ctx, fmt.Sprintf("id %s", id), func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.id = ?", pk)
	})
}

// FetchByIdentityDni returns the earliest registered record for dni.
func (g *RepositoryGateway) FetchByIdentityDni(ctx context.Context, dni string) (*model.Transsaction, bool, error) {
	return g.first(ctx, fmt.Sprintf("%s %s", IdentifierColumn, dni), func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.? = ?", bun.Ident(IdentifierColumn), dni).
			OrderExpr("?TableAlias.date_register ASC, ?TableAlias.id ASC")
	})
}

// Save creates the row when the record has no id and updates it otherwise.
func (g *RepositoryGateway) Save(ctx context.Context, record *model.Transsaction) (*model.Transsaction, error) {
	row := ToRow(record)

	if row.ID == uuid.Nil {
		row.ID = uuid.New()
		created, err := g.repo.Create(ctx, row)
		if err != nil {
			return nil, fmt.Errorf("create transsaction: %w", err)
		}
		return FromRow(created), nil
	}

	updated, err := g.repo.Update(ctx, row)
	if err != nil {
		return nil, fmt.Errorf("update transsaction %s: %w", row.ID, err)
	}
	return FromRow(updated), nil
}

// Delete removes the record's row.
func (g *RepositoryGateway) Delete(ctx context.Context, record *model.Transsaction) error {
	row := ToRow(record)
	if row.ID == uuid.Nil {
		return fmt.Errorf("delete transsaction: invalid id %q", record.ID)
	}
	if err := g.repo.Delete(ctx, row); err != nil {
		return fmt.Errorf("delete transsaction %s: %w", row.ID, err)
	}
	return nil
}

func (g *RepositoryGateway) page(offset int) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.id ASC").Limit(g.pageSize).Offset(offset)
	}
}

func (g *RepositoryGateway) first(ctx context.Context, what string, criteria repository.SelectCriteria) (*model.Transsaction, bool, error) {
	rows, _, err := g.repo.List(ctx, criteria, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Limit(1)
	})
	if err != nil {
		return nil, false, fmt.Errorf("fetch transsaction by %s: %w", what, err)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return FromRow(rows[0]), true, nil
}
