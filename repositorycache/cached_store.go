package repositorycache

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/goliatone/go-transsaction-cache/cache"
	"github.com/goliatone/go-transsaction-cache/model"
	"github.com/goliatone/go-transsaction-cache/pkg/logger"
	"github.com/goliatone/go-transsaction-cache/resilience"
	"github.com/goliatone/go-transsaction-cache/store"
)

// CachedStore is the cache-aside orchestrator. Reads go to the cache first and
// fall through to the store; every store access runs under the guard.
type CachedStore struct {
	store        store.Gateway
	cache        cache.Gateway
	guard        *resilience.Guard
	logger       logger.Logger
	recorder     Recorder
	onFallback   FallbackHook
	now          func() time.Time
	evictOnWrite bool
}

// New wires the orchestrator from its collaborators.
func New(st store.Gateway, c cache.Gateway, guard *resilience.Guard, opts ...Option) *CachedStore {
	s := &CachedStore{
		store:    st,
		cache:    c,
		guard:    guard,
		logger:   logger.NewForTests(),
		recorder: nopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindAll yields the cache namespace when it holds anything. Otherwise it scans
// the store, writing every record to the cache before yielding it.
func (s *CachedStore) FindAll(ctx context.Context) iter.Seq2[*model.Transsaction, error] {
	return func(yield func(*model.Transsaction, error) bool) {
		defer s.recorder.ObserveOperation(OpFindAll, time.Now())

		cached, err := s.cache.GetAll(ctx, cache.Namespace)
		if err != nil {
			yield(nil, fmt.Errorf("read cache namespace %s: %w", cache.Namespace, err))
			return
		}

		if len(cached) > 0 {
			s.recorder.CacheHit(OpFindAll)
			for _, record := range cached {
				if !yield(record, nil) {
					return
				}
			}
			return
		}

		s.recorder.CacheMiss(OpFindAll)
		s.streamFromStore(ctx, yield)
	}
}

// scanItem is one step of a store scan: a record already written back to the
// cache, a store error, or a cache write-back error.
type scanItem struct {
	record   *model.Transsaction
	err      error
	cacheErr error
}

// streamFromStore scans the store in its own goroutine. Each record is written
// to the cache before it is handed over, and every hand-off is a separate
// guarded call, so the time budget covers the store and the write back but
// never the time the caller spends between records.
func (s *CachedStore) streamFromStore(ctx context.Context, yield func(*model.Transsaction, error) bool) {
	scanCtx, cancelScan := context.WithCancel(ctx)
	defer cancelScan()

	items := make(chan scanItem)
	go s.scan(scanCtx, items)

	for {
		var item scanItem
		var more bool
		err := s.guard.Execute(ctx, func(callCtx context.Context) error {
			select {
			case item, more = <-items:
				return item.err
			case <-callCtx.Done():
				return callCtx.Err()
			}
		})

		switch {
		case err == nil && !more:
			return
		case err == nil && item.cacheErr != nil:
			yield(nil, item.cacheErr)
			return
		case err == nil:
			if !yield(item.record, nil) {
				return
			}
		case ctx.Err() != nil:
			yield(nil, ctx.Err())
			return
		default:
			s.fallbackFindAll(ctx, err)
			return
		}
	}
}

func (s *CachedStore) scan(ctx context.Context, items chan<- scanItem) {
	defer close(items)

	send := func(item scanItem) bool {
		select {
		case items <- item:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for record, err := range s.store.FetchAll(ctx) {
		if err != nil {
			send(scanItem{err: err})
			return
		}
		if err := s.cache.Put(ctx, cache.Namespace, record.ID, record); err != nil {
			send(scanItem{cacheErr: fmt.Errorf("write back %s: %w", record.ID, err)})
			return
		}
		if !send(scanItem{record: record}) {
			return
		}
	}
}

// FindByID serves id from the cache, or fetches it from the store and writes it back.
func (s *CachedStore) FindByID(ctx context.Context, id string) (*model.Transsaction, bool, error) {
	defer s.recorder.ObserveOperation(OpFindByID, time.Now())

	record, ok, err := s.cache.Get(ctx, cache.Namespace, id)
	if err != nil {
		return nil, false, fmt.Errorf("read cache %s: %w", id, err)
	}
	if ok {
		s.recorder.CacheHit(OpFindByID)
		return record, true, nil
	}
	s.recorder.CacheMiss(OpFindByID)

	var found *model.Transsaction
	err = s.guard.Execute(ctx, func(ctx context.Context) error {
		record, ok, err := s.store.FetchByID(ctx, id)
		if ok {
			found = record
		}
		return err
	})
	if err != nil {
		return s.fallbackFindByID(ctx, id, err)
	}
	if found == nil {
		return nil, false, nil
	}

	if err := s.cache.Put(ctx, cache.Namespace, found.ID, found); err != nil {
		return nil, false, fmt.Errorf("write back %s: %w", found.ID, err)
	}
	return found, true, nil
}

// FindByIdentityDni always reads the store.
func (s *CachedStore) FindByIdentityDni(ctx context.Context, dni string) (*model.Transsaction, bool, error) {
	defer s.recorder.ObserveOperation(OpFindByIdentityDni, time.Now())

	var found *model.Transsaction
	err := s.guard.Execute(ctx, func(ctx context.Context) error {
		record, ok, err := s.store.FetchByIdentityDni(ctx, dni)
		if ok {
			found = record
		}
		return err
	})
	if err != nil {
		return s.fallbackFindByIdentityDni(ctx, dni, err)
	}
	return found, found != nil, nil
}

// Create registers record today and persists it. The cache is not written.
func (s *CachedStore) Create(ctx context.Context, record *model.Transsaction) (*model.Transsaction, bool, error) {
	defer s.recorder.ObserveOperation(OpCreate, time.Now())

	pending, err := prepareCreate(record, s.now())
	if err != nil {
		return nil, false, err
	}

	var created *model.Transsaction
	err = s.guard.Execute(ctx, func(ctx context.Context) error {
		saved, err := s.store.Save(ctx, pending)
		created = saved
		return err
	})
	if err != nil {
		return s.fallbackCreate(ctx, pending, err)
	}
	return created, true, nil
}

// Update merges patch onto the stored record for id. The stored registration
// date and id are kept.
func (s *CachedStore) Update(ctx context.Context, id string, patch *model.Transsaction) (*model.Transsaction, bool, error) {
	defer s.recorder.ObserveOperation(OpUpdate, time.Now())

	if patch == nil {
		return nil, false, fmt.Errorf("update transsaction %s: nil patch", id)
	}

	var updated *model.Transsaction
	err := s.guard.Execute(ctx, func(ctx context.Context) error {
		saved, err := applyUpdate(ctx, s.store, id, patch)
		updated = saved
		return err
	})
	if err != nil {
		return s.fallbackUpdate(ctx, id, err)
	}
	if updated == nil {
		return nil, false, nil
	}

	if s.evictOnWrite {
		if err := s.cache.Put(ctx, cache.Namespace, updated.ID, updated); err != nil {
			return nil, false, fmt.Errorf("refresh cache %s: %w", updated.ID, err)
		}
	}
	return updated, true, nil
}

// Delete removes id from the store and returns its last known state.
func (s *CachedStore) Delete(ctx context.Context, id string) (*model.Transsaction, bool, error) {
	defer s.recorder.ObserveOperation(OpDelete, time.Now())

	var deleted *model.Transsaction
	err := s.guard.Execute(ctx, func(ctx context.Context) error {
		existing, err := applyDelete(ctx, s.store, id)
		deleted = existing
		return err
	})
	if err != nil {
		return s.fallbackDelete(ctx, id, err)
	}
	if deleted == nil {
		return nil, false, nil
	}

	if s.evictOnWrite {
		if err := s.cache.Delete(ctx, cache.Namespace, deleted.ID); err != nil {
			return nil, false, fmt.Errorf("evict cache %s: %w", deleted.ID, err)
		}
	}
	return deleted, true, nil
}
