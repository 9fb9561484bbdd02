package store

import "sync"

// entry is a shard-resident value together with the slab index of its
// recency node.
type entry struct {
	value string
	slot  int
}

// shard is one lock domain of the store: a bounded map of entries coupled
// to the recency list that picks eviction victims. The two structures stay
// in one-to-one correspondence. Every map entry names a live recency node
// through its slot, and every node's key is present in the map.
//
// All fields are guarded by mu. The lock is acquired by the Store façade,
// not here: shard methods assume the caller already holds it and provide
// sequential correctness only.
type shard struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]entry
	recency  recencyList

	// lifetime op counters, guarded by mu like everything else
	hits      uint64
	misses    uint64
	puts      uint64
	deletes   uint64
	evictions uint64
}

func newShard(capacity int) *shard {
	return &shard{
		capacity: capacity,
		entries:  make(map[string]entry, capacity),
		recency:  newRecencyList(capacity),
	}
}

// upsert stores value under key, updating in place when the key is already
// present and inserting otherwise. Inserting into a full shard first evicts
// the least-recently-used entry; the victim is returned so the caller can
// report it once the lock is released. Either way the written key ends up
// most recently used.
func (s *shard) upsert(key, value string) (evictedKey, evictedValue string, evicted bool) {
	s.puts++
	if e, ok := s.entries[key]; ok {
		e.value = value
		s.entries[key] = e
		s.recency.moveToFront(e.slot)
		return "", "", false
	}
	if len(s.entries) >= s.capacity {
		victim := s.recency.back()
		evictedKey = s.recency.keyAt(victim)
		evictedValue = s.entries[evictedKey].value
		s.recency.remove(victim)
		delete(s.entries, evictedKey)
		s.evictions++
		evicted = true
	}
	s.entries[key] = entry{value: value, slot: s.recency.pushFront(key)}
	return evictedKey, evictedValue, evicted
}

// lookup returns the value stored under key and promotes the entry to most
// recently used. Promotion rewrites list links, which is why reads take the
// exclusive lock too.
func (s *shard) lookup(key string) (string, bool) {
	e, ok := s.entries[key]
	if !ok {
		s.misses++
		return "", false
	}
	s.hits++
	s.recency.moveToFront(e.slot)
	return e.value, true
}

// remove deletes key from both structures. It reports whether the key was
// present; absence is not an error.
func (s *shard) remove(key string) bool {
	e, ok := s.entries[key]
	if !ok {
		return false
	}
	s.recency.remove(e.slot)
	delete(s.entries, key)
	s.deletes++
	return true
}

// removeAll empties the shard. Counters survive: they describe the shard's
// lifetime, not its current contents.
func (s *shard) removeAll() {
	s.entries = make(map[string]entry, s.capacity)
	s.recency.reset()
}

// snapshot copies the shard's entries in usage order, most recent first.
func (s *shard) snapshot() []Pair {
	pairs := make([]Pair, 0, len(s.entries))
	for _, key := range s.recency.keysMostRecentFirst() {
		pairs = append(pairs, Pair{Key: key, Value: s.entries[key].value})
	}
	return pairs
}

func (s *shard) size() int {
	return len(s.entries)
}
