// Package main implements the storm server, which exposes the sharded
// in-memory key-value store over a JSON HTTP API.
//
// The server owns a single store instance and maps each endpoint onto one
// store operation:
//   - Storing, reading, and deleting single keys
//   - Batch writes grouped by destination shard
//   - Clearing and listing the full store
//   - Aggregate operation statistics
//
// Architecture:
//
//	┌─────────────────────────────────────────┐
//	│                Server                   │
//	├─────────────────────────────────────────┤
//	│  HTTP API:                              │
//	│    /health       - Health check         │
//	│    /kv/{key}     - GET, PUT, DELETE     │
//	│    /batch        - Batch writes         │
//	│    /clear        - Remove everything    │
//	│    /list         - Per-shard contents   │
//	│    /stats        - Operation counters   │
//	├─────────────────────────────────────────┤
//	│  Components:                            │
//	│    store.Store   - Sharded LRU store    │
//	│    statsLoop     - Periodic stats log   │
//	└─────────────────────────────────────────┘
//
// Configuration:
//   - STORM_LISTEN: Listen address (default: ":50051")
//   - STORM_SHARDS: Shard count (default: 16)
//   - STORM_SHARD_CAPACITY: Max entries per shard (default: 100)
//
// Example usage:
//
//	# Start server
//	STORM_LISTEN=:50051 \
//	STORM_SHARDS=16 \
//	STORM_SHARD_CAPACITY=100 \
//	./server
//
//	# Store and read a value
//	curl -X PUT localhost:50051/kv/user:123 -d '{"value":"alice"}'
//	curl localhost:50051/kv/user:123
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	logger "github.com/harwoeck/liblog/contract"

	"github.com/currentlycrafting/S.T.O.R.M/internal/api"
	"github.com/currentlycrafting/S.T.O.R.M/internal/store"
)

// logFatal is a variable to allow mocking log.Fatal in tests.
// This indirection enables test code to intercept fatal errors
// without actually terminating the test process.
var logFatal = log.Fatalf

// statsInterval is how often the server logs an aggregate statistics
// snapshot while running.
const statsInterval = time.Minute

// server binds the HTTP handlers to a store instance.
type server struct {
	store *store.Store
	log   logger.Logger
}

func newServer(st *store.Store, log logger.Logger) *server {
	return &server{
		store: st,
		log:   log,
	}
}

// handleKey dispatches single-key operations on /kv/{key}. The key is
// everything after the prefix, so keys may contain slashes; only the empty
// key is rejected.
//
// Methods:
//   - GET: 200 with the value, or 404 when the key is absent
//   - PUT: 200 after storing the body's value under the key
//   - DELETE: 200 when the key existed, 404 otherwise
func (s *server) handleKey(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Path[len("/kv/"):]
	if key == "" {
		http.Error(w, "key required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getKey(key, w)
	case http.MethodPut:
		s.putKey(key, w, r)
	case http.MethodDelete:
		s.deleteKey(key, w)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// getKey reads one key from the store
func (s *server) getKey(key string, w http.ResponseWriter) {
	value, ok := s.store.Get(key)
	if !ok {
		writeJSON(w, http.StatusNotFound, api.GetResponse{Success: false})
		return
	}
	writeJSON(w, http.StatusOK, api.GetResponse{Success: true, Value: value})
}

// putKey stores one key; the path key wins over any key in the body
func (s *server) putKey(key string, w http.ResponseWriter, r *http.Request) {
	var req api.PutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.store.Put(key, req.Value)
	writeJSON(w, http.StatusOK, api.PutResponse{Success: true})
}

// deleteKey removes one key from the store
func (s *server) deleteKey(key string, w http.ResponseWriter) {
	if !s.store.Delete(key) {
		writeJSON(w, http.StatusNotFound, api.DeleteResponse{Success: false})
		return
	}
	writeJSON(w, http.StatusOK, api.DeleteResponse{Success: true})
}

// handleBatch applies a batch of writes in one request. The batch is
// grouped by destination shard and applied with one lock hold per shard,
// but it is not atomic across shards: a concurrent reader can see part of
// the batch before the rest lands.
func (s *server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req api.BatchPutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	pairs := make([]store.Pair, 0, len(req.Pairs))
	for _, kv := range req.Pairs {
		pairs = append(pairs, store.Pair{Key: kv.Key, Value: kv.Value})
	}
	s.store.PutMany(pairs)

	w.WriteHeader(http.StatusNoContent)
}

// handleClear empties every shard
func (s *server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.store.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// handleList returns every shard's contents, most recently used first.
// Empty shards are listed too, so the response always names every shard.
func (s *server) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot := s.store.Snapshot()
	resp := api.ListResponse{Shards: make([]api.ShardListing, 0, len(snapshot))}
	for i, pairs := range snapshot {
		entries := make([]api.KeyValue, 0, len(pairs))
		for _, p := range pairs {
			entries = append(entries, api.KeyValue{Key: p.Key, Value: p.Value})
		}
		resp.Shards = append(resp.Shards, api.ShardListing{Shard: i, Entries: entries})
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleStats returns the aggregate operation counters
func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats := s.store.Stats()
	writeJSON(w, http.StatusOK, api.StatsResponse{
		Keys:      stats.Keys,
		Capacity:  stats.Capacity,
		Shards:    stats.Shards,
		Hits:      stats.Hits,
		Misses:    stats.Misses,
		Puts:      stats.Puts,
		Deletes:   stats.Deletes,
		Evictions: stats.Evictions,
	})
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statsLoop logs an aggregate statistics snapshot on every tick until ctx
// is cancelled. It gives operators a heartbeat of hit rates and eviction
// pressure without scraping /stats.
func statsLoop(ctx context.Context, st *store.Store, log logger.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats := st.Stats()
			log.Debug("store statistics",
				logger.NewField("keys", stats.Keys),
				logger.NewField("hits", stats.Hits),
				logger.NewField("misses", stats.Misses),
				logger.NewField("evictions", stats.Evictions))
		case <-ctx.Done():
			return
		}
	}
}

func main() {
	// Read configuration, falling back to the store's defaults
	listen := getenv("STORM_LISTEN", ":50051")
	shardCount := getenvInt("STORM_SHARDS", store.DefaultShardCount)
	capacity := getenvInt("STORM_SHARD_CAPACITY", store.DefaultShardCapacity)

	log := logger.MustNewStd().Named("storm")

	st, err := store.New(capacity, shardCount)
	if err != nil {
		logFatal("invalid store configuration: %v", err)
		return
	}

	// Evictions are silent at the store level; surface them in the log
	st.OnEvicted = func(key, value string) {
		log.Debug("evicted key", logger.NewField("key", key))
	}

	srv := newServer(st, log.Named("server"))

	// Configure HTTP routes
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/kv/", srv.handleKey)
	mux.HandleFunc("/batch", srv.handleBatch)
	mux.HandleFunc("/clear", srv.handleClear)
	mux.HandleFunc("/list", srv.handleList)
	mux.HandleFunc("/stats", srv.handleStats)

	// Configure HTTP server with security timeouts
	s := &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second, // Prevent slowloris attacks
	}

	// Start server in goroutine for non-blocking operation
	go func() {
		log.Info("server listening",
			logger.NewField("addr", listen),
			logger.NewField("shards", shardCount),
			logger.NewField("capacity_per_shard", capacity))
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logFatal("listen: %v", err)
		}
	}()

	// Periodic statistics heartbeat
	loopCtx, cancelLoop := context.WithCancel(context.Background())
	go statsLoop(loopCtx, st, log.Named("stats"), statsInterval)

	// Set up signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Wait for shutdown signal
	<-stop
	cancelLoop()

	// Initiate graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		log.Warn("server shutdown error", logger.NewField("error", err))
	}
	log.Info("server stopped")
}

// getenv retrieves an environment variable with a default fallback value.
func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getenvInt retrieves an integer environment variable with a default
// fallback. A value that does not parse as an integer is a configuration
// error and terminates the program.
func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logFatal("invalid %s: %v", k, err)
		return def
	}
	return n
}
