package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	logger "github.com/harwoeck/liblog/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/currentlycrafting/S.T.O.R.M/internal/api"
	"github.com/currentlycrafting/S.T.O.R.M/internal/store"
)

// newTestServer builds a server around a fresh store for handler tests.
func newTestServer(t *testing.T, capacity, shards int) *server {
	t.Helper()
	st, err := store.New(capacity, shards)
	require.NoError(t, err)
	return newServer(st, logger.MustNewStd().Named("test"))
}

// TestHandleKeyPut tests storing a value through the HTTP surface
func TestHandleKeyPut(t *testing.T) {
	srv := newTestServer(t, 8, 4)

	req := httptest.NewRequest(http.MethodPut, "/kv/name", strings.NewReader(`{"value":"alice"}`))
	rec := httptest.NewRecorder()
	srv.handleKey(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.PutResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)

	value, ok := srv.store.Get("name")
	require.True(t, ok, "the stored key should be readable from the store")
	assert.Equal(t, "alice", value)
}

// TestHandleKeyGet tests reading present and absent keys
func TestHandleKeyGet(t *testing.T) {
	srv := newTestServer(t, 8, 4)
	srv.store.Put("name", "alice")

	t.Run("present key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/kv/name", nil)
		rec := httptest.NewRecorder()
		srv.handleKey(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.GetResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "alice", resp.Value)
	})

	t.Run("absent key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/kv/unknown", nil)
		rec := httptest.NewRecorder()
		srv.handleKey(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)

		var resp api.GetResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.False(t, resp.Success)
	})
}

// TestHandleKeyDelete tests removing present and absent keys
func TestHandleKeyDelete(t *testing.T) {
	srv := newTestServer(t, 8, 4)
	srv.store.Put("name", "alice")

	t.Run("present key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/kv/name", nil)
		rec := httptest.NewRecorder()
		srv.handleKey(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		_, ok := srv.store.Get("name")
		assert.False(t, ok, "the key should be gone from the store")
	})

	t.Run("absent key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/kv/name", nil)
		rec := httptest.NewRecorder()
		srv.handleKey(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

// TestHandleKeyValidation tests rejection of malformed single-key requests
func TestHandleKeyValidation(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
	}{
		{
			name:           "empty key",
			method:         http.MethodGet,
			path:           "/kv/",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unsupported method",
			method:         http.MethodPost,
			path:           "/kv/name",
			body:           `{"value":"x"}`,
			expectedStatus: http.StatusMethodNotAllowed,
		},
		{
			name:           "malformed put body",
			method:         http.MethodPut,
			path:           "/kv/name",
			body:           `{not json`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	srv := newTestServer(t, 8, 4)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			} else {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			}
			rec := httptest.NewRecorder()
			srv.handleKey(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

// TestHandleKeyWithSlashes tests that keys may contain path separators
func TestHandleKeyWithSlashes(t *testing.T) {
	srv := newTestServer(t, 8, 4)

	req := httptest.NewRequest(http.MethodPut, "/kv/user/1/profile", strings.NewReader(`{"value":"x"}`))
	rec := httptest.NewRecorder()
	srv.handleKey(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	value, ok := srv.store.Get("user/1/profile")
	require.True(t, ok)
	assert.Equal(t, "x", value)
}

// TestHandleBatch tests batch writes
func TestHandleBatch(t *testing.T) {
	srv := newTestServer(t, 8, 4)

	body := `{"pairs":[{"key":"a","value":"1"},{"key":"b","value":"2"},{"key":"c","value":"3"}]}`
	req := httptest.NewRequest(http.MethodPost, "/batch", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.handleBatch(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	for _, key := range []string{"a", "b", "c"} {
		_, ok := srv.store.Get(key)
		assert.True(t, ok, "expected %q to be stored", key)
	}
}

// TestHandleBatchValidation tests batch request rejection
func TestHandleBatchValidation(t *testing.T) {
	srv := newTestServer(t, 8, 4)

	t.Run("wrong method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/batch", nil)
		rec := httptest.NewRecorder()
		srv.handleBatch(rec, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/batch", strings.NewReader(`{broken`))
		rec := httptest.NewRecorder()
		srv.handleBatch(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

// TestHandleBatchEviction tests that a batch overflowing a shard evicts
// rather than grows it
func TestHandleBatchEviction(t *testing.T) {
	srv := newTestServer(t, 2, 1)

	body := `{"pairs":[{"key":"a","value":"1"},{"key":"b","value":"2"},{"key":"c","value":"3"}]}`
	req := httptest.NewRequest(http.MethodPost, "/batch", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.handleBatch(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 2, srv.store.Len())
	_, ok := srv.store.Get("a")
	assert.False(t, ok, "the oldest batch key should have been evicted")
}

// TestHandleClear tests emptying the store over HTTP
func TestHandleClear(t *testing.T) {
	srv := newTestServer(t, 8, 4)
	for i := 0; i < 10; i++ {
		srv.store.Put(fmt.Sprintf("key-%d", i), "v")
	}

	req := httptest.NewRequest(http.MethodPost, "/clear", nil)
	rec := httptest.NewRecorder()
	srv.handleClear(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, srv.store.Len())

	t.Run("wrong method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/clear", nil)
		rec := httptest.NewRecorder()
		srv.handleClear(rec, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

// TestHandleList tests the per-shard listing and its ordering
func TestHandleList(t *testing.T) {
	srv := newTestServer(t, 4, 1)
	srv.store.Put("a", "1")
	srv.store.Put("b", "2")
	srv.store.Get("a") // promote

	req := httptest.NewRequest(http.MethodGet, "/list", nil)
	rec := httptest.NewRecorder()
	srv.handleList(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.ListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Shards, 1)
	assert.Equal(t, 0, resp.Shards[0].Shard)
	require.Len(t, resp.Shards[0].Entries, 2)
	assert.Equal(t, api.KeyValue{Key: "a", Value: "1"}, resp.Shards[0].Entries[0])
	assert.Equal(t, api.KeyValue{Key: "b", Value: "2"}, resp.Shards[0].Entries[1])
}

// TestHandleListIncludesEmptyShards tests that every shard appears in the
// listing even when empty
func TestHandleListIncludesEmptyShards(t *testing.T) {
	srv := newTestServer(t, 4, 4)

	req := httptest.NewRequest(http.MethodGet, "/list", nil)
	rec := httptest.NewRecorder()
	srv.handleList(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	// The raw body must carry empty arrays, not nulls, for every shard.
	body := rec.Body.String()
	assert.NotContains(t, body, "null")

	var resp api.ListResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.Len(t, resp.Shards, 4)
	for i, listing := range resp.Shards {
		assert.Equal(t, i, listing.Shard)
		assert.Empty(t, listing.Entries)
	}
}

// TestHandleStats tests the counters exposed over HTTP
func TestHandleStats(t *testing.T) {
	srv := newTestServer(t, 2, 1)
	srv.store.Put("a", "1")
	srv.store.Put("b", "2")
	srv.store.Get("a")
	srv.store.Get("zz")
	srv.store.Put("c", "3") // evicts b

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	srv.handleStats(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.StatsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, api.StatsResponse{
		Keys:      2,
		Capacity:  2,
		Shards:    1,
		Hits:      1,
		Misses:    1,
		Puts:      3,
		Deletes:   0,
		Evictions: 1,
	}, resp)
}
