package repositorycache

import (
	"context"

	"github.com/goliatone/go-transsaction-cache/model"
	"github.com/goliatone/go-transsaction-cache/resilience"
)

// Each operation has its own fallback. A fallback never fails: it reports the
// cause and returns the empty result for its operation. A cancelled caller is
// not degraded and gets its context error back instead.

func (s *CachedStore) fallbackFindAll(ctx context.Context, cause error) {
	s.degrade(ctx, OpFindAll, "", cause, "serving empty transsaction list")
}

func (s *CachedStore) fallbackFindByID(ctx context.Context, id string, cause error) (*model.Transsaction, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.degrade(ctx, OpFindByID, id, cause, "transsaction lookup by id unavailable")
	return nil, false, nil
}

func (s *CachedStore) fallbackFindByIdentityDni(ctx context.Context, dni string, cause error) (*model.Transsaction, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.degrade(ctx, OpFindByIdentityDni, dni, cause, "transsaction lookup by identity dni unavailable")
	return nil, false, nil
}

func (s *CachedStore) fallbackCreate(ctx context.Context, pending *model.Transsaction, cause error) (*model.Transsaction, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.degrade(ctx, OpCreate, pending.IdentityDni, cause, "transsaction not registered")
	return nil, false, nil
}

func (s *CachedStore) fallbackUpdate(ctx context.Context, id string, cause error) (*model.Transsaction, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.degrade(ctx, OpUpdate, id, cause, "transsaction not updated")
	return nil, false, nil
}

func (s *CachedStore) fallbackDelete(ctx context.Context, id string, cause error) (*model.Transsaction, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.degrade(ctx, OpDelete, id, cause, "transsaction not deleted")
	return nil, false, nil
}

func (s *CachedStore) degrade(ctx context.Context, operation, key string, cause error, msg string) {
	reason := resilience.ReasonOf(cause)
	circuit := s.guard.Breaker().Name()

	log := s.logger.Error
	if resilience.IsDegraded(cause) {
		log = s.logger.Warn
	}
	log(msg,
		"operation", operation,
		"circuit", circuit,
		"reason", reason,
		"key", key,
		"error", cause,
	)
	s.recorder.Fallback(operation, reason)

	if s.onFallback != nil {
		s.onFallback(ctx, FallbackEvent{
			Operation: operation,
			Circuit:   circuit,
			Reason:    reason,
			Key:       key,
			Err:       cause,
		})
	}
}
