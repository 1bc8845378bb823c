// Package repositorycache provides the cache-aside orchestrator for transsaction records.
//
// # Overview
//
// CachedStore sits between the transport layer, a key-value cache (cache.Gateway)
// and the durable store (store.Gateway). It decides per operation whether the
// cache can answer, when the store must be consulted and what to return when
// the store is slow or failing. Every store access runs under a
// resilience.Guard, so a time budget and a shared circuit breaker apply.
// Cache-only paths are never guarded.
//
// # Basic Usage
//
//	registry := resilience.NewRegistry()
//	guard, err := registry.Guard(resilience.DefaultConfig())
//	if err != nil {
//		return err
//	}
//
//	svc := repositorycache.New(storeGateway, cacheGateway, guard,
//		repositorycache.WithLogger(log),
//		repositorycache.WithRecorder(metrics.New(reg)),
//	)
//
//	rec, ok, err := svc.FindByID(ctx, id)
//
// # Operations
//
//   - FindAll: when the cache namespace holds anything, exactly those records are
//     returned and the store is not read. Otherwise the store is scanned and every
//     record is written to the cache before it is yielded.
//   - FindByID: a cache hit returns without touching the store. On a miss the
//     store is read and a found record is written back under its own id.
//   - FindByIdentityDni: always read from the store; the cache is keyed by id only.
//   - Create: stamps DateRegister with today's date and saves. The store assigns the id.
//   - Update: reads the stored record, merges the patch onto it keeping id and
//     DateRegister, and saves the result.
//   - Delete: reads the stored record, deletes it and returns the last known state.
//
// A record that does not exist is reported as ok == false with a nil error.
//
// # Fallbacks
//
// Each operation has a dedicated fallback that runs when the circuit is open,
// the call exceeded its time budget or the store returned an error. A fallback
// logs the cause, reports it to the Recorder and the FallbackHook and returns
// the empty result: FindAll stops yielding, the other operations return
// ok == false. Fallbacks never return an error, so a degraded result is told
// apart from a missing one only through the hook or the metrics.
//
// A caller that cancels its own context receives the context error instead of
// a fallback, and the call is not counted against the circuit.
//
// # Cache Consistency
//
// By default Update and Delete leave the cache alone, so a cached copy can be
// stale until it is overwritten. WithEvictOnWrite(true) writes the merged
// record on Update and evicts the id on Delete.
//
// Errors from the cache itself are returned to the caller unchanged.
//
// # Disabled Cache
//
// Direct implements the same Service against the store only, with no guard.
// It is used when the caching layer is switched off.
package repositorycache
