package store

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/goliatone/go-transsaction-cache/model"
	"github.com/google/uuid"
)

// MemoryGateway is an in-process Gateway used by the demo binary and tests.
// Records are kept in insertion order.
type MemoryGateway struct {
	mu      sync.RWMutex
	order   []string
	records map[string]*model.Transsaction
}

// NewMemoryGateway seeds the gateway in order. Nil records are skipped and
// records without an id get a fresh one.
func NewMemoryGateway(seed ...*model.Transsaction) *MemoryGateway {
	g := &MemoryGateway{records: make(map[string]*model.Transsaction)}
	for _, record := range seed {
		if record == nil {
			continue
		}
		g.put(record.Clone())
	}
	return g
}

// FetchAll iterates over a snapshot taken when iteration starts.
func (g *MemoryGateway) FetchAll(ctx context.Context) iter.Seq2[*model.Transsaction, error] {
	return func(yield func(*model.Transsaction, error) bool) {
		g.mu.RLock()
		snapshot := make([]*model.Transsaction, 0, len(g.order))
		for _, id := range g.order {
			snapshot = append(snapshot, g.records[id].Clone())
		}
		g.mu.RUnlock()

		for _, record := range snapshot {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(record, nil) {
				return
			}
		}
	}
}

func (g *MemoryGateway) FetchByID(ctx context.Context, id string) (*model.Transsaction, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()

	record, ok := g.records[id]
	if !ok {
		return nil, false, nil
	}
	return record.Clone(), true, nil
}

func (g *MemoryGateway) FetchByIdentityDni(ctx context.Context, dni string) (*model.Transsaction, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, id := range g.order {
		if record := g.records[id]; record.IdentityDni == dni {
			return record.Clone(), true, nil
		}
	}
	return nil, false, nil
}

func (g *MemoryGateway) Save(ctx context.Context, record *model.Transsaction) (*model.Transsaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("save transsaction: nil record")
	}

	return g.put(record.Clone()).Clone(), nil
}

func (g *MemoryGateway) put(record *model.Transsaction) *model.Transsaction {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.records[record.ID]; !exists {
		g.order = append(g.order, record.ID)
	}
	g.records[record.ID] = record
	return record
}

func (g *MemoryGateway) Delete(ctx context.Context, record *model.Transsaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("delete transsaction: nil record")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.records[record.ID]; !exists {
		return nil
	}
	delete(g.records, record.ID)
	g.order = slices.DeleteFunc(g.order, func(id string) bool { return id == record.ID })
	return nil
}

// Len reports the number of stored records.
func (g *MemoryGateway) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.records)
}
