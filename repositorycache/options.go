package repositorycache

import (
	"context"
	"time"

	"github.com/goliatone/go-transsaction-cache/pkg/logger"
	"github.com/goliatone/go-transsaction-cache/resilience"
)

// Option configures a CachedStore.
type Option func(*CachedStore)

// Recorder receives cache and fallback measurements. *metrics.Metrics satisfies it.
type Recorder interface {
	CacheHit(operation string)
	CacheMiss(operation string)
	Fallback(operation string, reason resilience.Reason)
	ObserveOperation(operation string, start time.Time)
}

// FallbackEvent describes a degraded result served by a fallback.
type FallbackEvent struct {
	Operation string
	Circuit   string
	Reason    resilience.Reason
	Key       string
	Err       error
}

// FallbackHook is the diagnostic signal that tells degraded results apart from
// genuinely missing ones.
type FallbackHook func(ctx context.Context, event FallbackEvent)

func WithLogger(l logger.Logger) Option {
	return func(s *CachedStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the clock used to stamp registration dates.
func WithClock(now func() time.Time) Option {
	return func(s *CachedStore) {
		if now != nil {
			s.now = now
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *CachedStore) {
		if r != nil {
			s.recorder = r
		}
	}
}

func WithFallbackHook(hook FallbackHook) Option {
	return func(s *CachedStore) {
		s.onFallback = hook
	}
}

// WithEvictOnWrite keeps the cache in step with mutations: Update writes the
// merged record and Delete evicts the id. Off by default, in which case cached
// copies may be stale until overwritten.
func WithEvictOnWrite(enabled bool) Option {
	return func(s *CachedStore) {
		s.evictOnWrite = enabled
	}
}

type nopRecorder struct{}

func (nopRecorder) CacheHit(string) {}
func (nopRecorder) CacheMiss(string) {}
func (nopRecorder) Fallback(string, resilience.Reason) {}
func (nopRecorder) ObserveOperation(string, time.Time) {}
