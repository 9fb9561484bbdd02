package store

import "github.com/cespare/xxhash/v2"

// router maps keys onto shard indices. Routing is pure arithmetic over the
// key bytes: a key's shard depends only on the shard count, never on store
// contents or operation history, so the same key always lands on the same
// shard for the store's lifetime.
type router struct {
	shardCount uint64
}

// newRouter builds a router over shardCount shards. The count must be
// positive; New enforces that before any router exists.
func newRouter(shardCount int) router {
	return router{shardCount: uint64(shardCount)}
}

// index returns the shard index for key, in [0, shardCount).
func (r router) index(key string) int {
	return int(xxhash.Sum64String(key) % r.shardCount)
}
