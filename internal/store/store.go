package store

import "fmt"

// Construction defaults, used by the binaries when the environment does not
// say otherwise.
const (
	DefaultShardCapacity = 100
	DefaultShardCount    = 16
)

// Pair is a key-value pair, used for batch writes and snapshots.
type Pair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// EvictedFunc receives an entry that was just evicted to make room for a
// new key. It runs on the goroutine that performed the write, after the
// shard lock has been released, so it may safely call back into the store.
type EvictedFunc func(key, value string)

// Stats is a point-in-time aggregate of the store's counters. The per-shard
// snapshots it sums are taken one shard at a time, so under concurrent load
// the totals are approximate, never torn.
type Stats struct {
	Keys      int    // live entries across all shards
	Capacity  int    // shards × per-shard capacity
	Shards    int    // shard count
	Hits      uint64 // lookups that found their key
	Misses    uint64 // lookups that did not
	Puts      uint64 // upserts, inserts and updates alike
	Deletes   uint64 // removals of present keys
	Evictions uint64 // entries displaced by inserts into full shards
}

// Store is a sharded, bounded, in-memory key-value store with LRU eviction
// per shard.
//
// Keys route to shards by hash; each operation locks exactly one shard, so
// goroutines working disjoint shards never contend. Within a shard,
// capacity is enforced on insert: a new key arriving at a full shard
// silently displaces the shard's least-recently-used entry. Reads count as
// use: a Get keeps an entry alive just as a Put does.
//
// Thread safety: all methods are safe for concurrent use. OnEvicted is the
// one exception; set it before the store is shared between goroutines.
type Store struct {
	shards []*shard
	router router

	// OnEvicted, when non-nil, is called once per evicted entry, after the
	// owning shard's lock has been released. Nil by default: eviction is
	// silent unless a caller opts in.
	OnEvicted EvictedFunc
}

// New constructs a store with shardCount shards of capacityPerShard entries
// each. Both figures are fixed for the store's lifetime; there is no
// resize.
//
// Parameters:
//   - capacityPerShard: maximum live entries per shard, must be positive
//   - shardCount: number of independent lock domains, must be positive
//
// Returns:
//   - *Store: the constructed store, ready for concurrent use
//   - error: non-nil when either figure is zero or negative
func New(capacityPerShard, shardCount int) (*Store, error) {
	if capacityPerShard <= 0 {
		return nil, fmt.Errorf("store: shard capacity cannot be %d, must be greater than zero", capacityPerShard)
	}
	if shardCount <= 0 {
		return nil, fmt.Errorf("store: shard count cannot be %d, must be greater than zero", shardCount)
	}
	shards := make([]*shard, shardCount)
	for i := range shards {
		shards[i] = newShard(capacityPerShard)
	}
	return &Store{
		shards: shards,
		router: newRouter(shardCount),
	}, nil
}

// Put stores value under key, overwriting any previous value. The written
// entry becomes its shard's most recently used.
//
// Put always succeeds and always returns true: when the destination shard
// is full, the least-recently-used entry is evicted to make room, and the
// only trace of the victim is a call to OnEvicted if one is set.
func (st *Store) Put(key, value string) bool {
	sh := st.shards[st.router.index(key)]

	evictedKey, evictedValue, evicted := func() (string, string, bool) {
		sh.mu.Lock()
		defer sh.mu.Unlock()
		return sh.upsert(key, value)
	}()

	if evicted && st.OnEvicted != nil {
		st.OnEvicted(evictedKey, evictedValue)
	}
	return true
}

// Get returns the value stored under key. A hit promotes the entry to most
// recently used, which is why reads serialize with writes on the same
// shard. Absence is reported through the boolean, not an error.
func (st *Store) Get(key string) (string, bool) {
	sh := st.shards[st.router.index(key)]
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.lookup(key)
}

// Delete removes key from the store. It reports whether the key was
// present; deleting an absent key is a no-op, not an error.
func (st *Store) Delete(key string) bool {
	sh := st.shards[st.router.index(key)]
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.remove(key)
}

// PutMany stores a batch of pairs, equivalent to calling Put for each pair
// in order, but with one lock acquisition per destination shard instead of
// one per pair.
//
// Pairs are partitioned by destination shard before any lock is taken,
// preserving input order within each shard's group, and each group is then
// applied under a single hold of its shard's lock. The batch is atomic per
// shard only: shards are visited one at a time, and a concurrent reader may
// observe one shard's portion of the batch before another's. Evictions
// caused by the batch reach OnEvicted after all locks are released.
func (st *Store) PutMany(pairs []Pair) {
	if len(pairs) == 0 {
		return
	}

	groups := make([][]Pair, len(st.shards))
	for _, p := range pairs {
		i := st.router.index(p.Key)
		groups[i] = append(groups[i], p)
	}

	var victims []Pair
	for i, group := range groups {
		if len(group) == 0 {
			continue
		}
		sh := st.shards[i]
		func() {
			sh.mu.Lock()
			defer sh.mu.Unlock()
			for _, p := range group {
				if key, value, evicted := sh.upsert(p.Key, p.Value); evicted && st.OnEvicted != nil {
					victims = append(victims, Pair{Key: key, Value: value})
				}
			}
		}()
	}

	for _, v := range victims {
		st.OnEvicted(v.Key, v.Value)
	}
}

// Clear empties every shard. Shards are cleared one at a time, so a
// concurrent writer can repopulate an early shard while a later one is
// still being emptied; there is no store-wide freeze.
func (st *Store) Clear() {
	for _, sh := range st.shards {
		sh.mu.Lock()
		sh.removeAll()
		sh.mu.Unlock()
	}
}

// Snapshot returns a copy of every shard's contents, indexed by shard, each
// listed most-recently-used first. Like Clear, it is per-shard consistent
// only: a diagnostic view, not a point-in-time dump.
func (st *Store) Snapshot() [][]Pair {
	out := make([][]Pair, len(st.shards))
	for i, sh := range st.shards {
		sh.mu.Lock()
		out[i] = sh.snapshot()
		sh.mu.Unlock()
	}
	return out
}

// Len returns the number of live entries across all shards.
func (st *Store) Len() int {
	total := 0
	for _, sh := range st.shards {
		sh.mu.Lock()
		total += sh.size()
		sh.mu.Unlock()
	}
	return total
}

// Stats aggregates the per-shard counters into a single snapshot.
func (st *Store) Stats() Stats {
	stats := Stats{
		Capacity: len(st.shards) * st.ShardCapacity(),
		Shards:   len(st.shards),
	}
	for _, sh := range st.shards {
		sh.mu.Lock()
		stats.Keys += sh.size()
		stats.Hits += sh.hits
		stats.Misses += sh.misses
		stats.Puts += sh.puts
		stats.Deletes += sh.deletes
		stats.Evictions += sh.evictions
		sh.mu.Unlock()
	}
	return stats
}

// NumShards returns the shard count fixed at construction.
func (st *Store) NumShards() int {
	return len(st.shards)
}

// ShardCapacity returns the per-shard entry limit fixed at construction.
func (st *Store) ShardCapacity() int {
	return st.shards[0].capacity
}
