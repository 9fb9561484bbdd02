package kvstore

import (
	"sync"

	logger "github.com/harwoeck/liblog/contract"
)

// KV is a plain map of string keys to string values behind a single
// read-write lock. It never evicts: writes grow the map until the caller
// deletes.
//
// Thread safety: all methods are safe for concurrent use.
type KV struct {
	mu   sync.RWMutex
	data map[string]string
	log  logger.Logger
}

// New returns an empty map that reports its operations on log at debug
// level.
func New(log logger.Logger) *KV {
	return &KV{
		data: make(map[string]string),
		log:  log.Named("kvstore"),
	}
}

// Put stores value under key, overwriting any previous value. It always
// succeeds.
func (kv *KV) Put(key, value string) bool {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	kv.data[key] = value
	kv.log.Debug("wrote key", logger.NewField("key", key))
	return true
}

// Get returns the value stored under key. Absence is reported through the
// boolean, not an error.
func (kv *KV) Get(key string) (string, bool) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()

	value, ok := kv.data[key]
	if !ok {
		kv.log.Debug("key not found", logger.NewField("key", key))
		return "", false
	}
	kv.log.Debug("read key", logger.NewField("key", key))
	return value, true
}

// Del removes key from the map. It reports whether the key was present.
func (kv *KV) Del(key string) bool {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	if _, ok := kv.data[key]; !ok {
		kv.log.Debug("key not found for deletion", logger.NewField("key", key))
		return false
	}
	delete(kv.data, key)
	kv.log.Debug("deleted key", logger.NewField("key", key))
	return true
}

// Len returns the number of stored entries.
func (kv *KV) Len() int {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	return len(kv.data)
}
