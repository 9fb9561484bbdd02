// Package store implements a sharded, bounded, in-memory key-value store
// with least-recently-used eviction.
//
// # Overview
//
// The store partitions its key space across a fixed set of independent
// shards. Each shard owns a bounded map of entries together with a recency
// list that orders the shard's keys from most- to least-recently used. When
// an insert would grow a shard beyond its capacity, the shard silently
// evicts its least-recently-used entry to make room. Every mutating and
// reading operation touches exactly one shard and acquires exactly one
// lock, so operations on different shards never contend.
//
// # Architecture
//
// The package is organized in three layers:
//
//	┌─────────────────────────────────────────────┐
//	│                    Store                    │
//	│   (routing, locking, batching, snapshots)   │
//	└──────────────────────┬──────────────────────┘
//	                       │ xxhash(key) % N
//	       ┌───────────────┼───────────────┐
//	       ▼               ▼               ▼
//	┌───────────┐    ┌───────────┐   ┌───────────┐
//	│  shard 0  │    │  shard 1  │   │ shard N-1 │
//	│ map+mutex │    │ map+mutex │   │ map+mutex │
//	└─────┬─────┘    └─────┬─────┘   └─────┬─────┘
//	      ▼                ▼               ▼
//	┌───────────┐    ┌───────────┐   ┌───────────┐
//	│  recency  │    │  recency  │   │  recency  │
//	│   list    │    │   list    │   │   list    │
//	└───────────┘    └───────────┘   └───────────┘
//
// # Core Components
//
// Store: the only public entry point. It routes each key to its shard,
// manages the shard locks, and exposes Put, Get, Delete, PutMany, Clear,
// Snapshot, Len, and Stats. Construction fixes both the shard count and the
// per-shard capacity for the store's lifetime.
//
// shard: one lock domain. A shard couples a map of entries with a recency
// list and keeps the two in strict one-to-one correspondence: every map
// entry holds the slab index of its recency node, and every node names a
// live map key. Shard methods assume the caller holds the shard lock.
//
// recencyList: a doubly linked list laid out in a contiguous slab of nodes
// addressed by integer index instead of by pointer. Freed slots are
// threaded onto an internal free chain and reused, so a shard that has
// reached capacity performs no further list allocations.
//
// # Concurrency Model
//
// Each shard carries its own sync.Mutex. The lock is exclusive even for
// reads: a Get promotes the entry to most-recently-used, which rewrites
// list links and therefore mutates shard state. No operation ever holds two
// shard locks at once, which rules out lock-ordering deadlocks; batch
// writes visit shards strictly one at a time. There is no store-wide lock,
// so Clear, Len, Snapshot, and Stats are sequences of per-shard steps
// rather than atomic global views.
//
// # Performance Characteristics
//
//   - Put, Get, Delete: O(1) map and list work per call.
//   - PutMany: O(n) over the batch, with one lock acquisition per distinct
//     destination shard rather than one per pair.
//   - Eviction: O(1), since the victim is always the list tail.
//   - Len, Stats, Clear, Snapshot: O(shards) lock acquisitions.
//
// Keys hash with xxhash64, whose distribution keeps shard occupancy even
// for realistic key sets.
//
// # Usage Example
//
//	st, err := store.New(100, 16)
//	if err != nil {
//		log.Fatal(err)
//	}
//	st.OnEvicted = func(key, value string) {
//		log.Printf("evicted %s", key)
//	}
//
//	st.Put("user:1", "alice")
//	if v, ok := st.Get("user:1"); ok {
//		fmt.Println(v)
//	}
//	st.PutMany([]store.Pair{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}})
//
// # Limitations and Future Work
//
// Entries never expire; the only way out of a full shard is eviction or an
// explicit Delete. Capacity is counted in entries, not bytes, so a few
// large values can dominate memory while the store still reports headroom.
// PutMany is atomic per shard only: a concurrent reader can observe one
// shard's portion of a batch before another's. Snapshot and Stats stitch
// together per-shard views taken at slightly different instants.
//
// # See Also
//
//   - Package kvstore: the repository's simpler unbounded map, used where
//     eviction semantics are not wanted.
//   - Package api: the wire types the server exposes this store through.
package store
