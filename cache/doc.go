// Package cache defines the cache gateway used by the transsaction cache-aside layer.
//
// # Overview
//
// A Gateway stores full transsaction snapshots keyed by record id inside a named
// namespace. The orchestrator in package repositorycache only ever uses the
// Namespace constant, mirroring a single Redis hash:
//
//	HGET  TranssactionRedis <id>   -> Get
//	HVALS TranssactionRedis        -> GetAll
//	HSET  TranssactionRedis <id> v -> Put
//	HDEL  TranssactionRedis <id>   -> Delete
//
// # Implementations
//
//   - NewRedisGateway: one Redis hash per namespace, JSON encoded values.
//   - NewLocalGateway: an in-process sturdyc cache with keys of the form
//     "namespace::id". Useful for development and single-instance deployments.
//
// # Expiry
//
// This layer defines no TTL. Redis entries persist until overwritten or evicted
// by the server. The local engine needs a TTL to run its eviction loop, so
// DefaultConfig uses a long one.
//
// # Errors
//
// A missing id is (nil, false, nil). Transport or decoding failures are returned
// as errors and are not retried here.
package cache
