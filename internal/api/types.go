package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// PutRequest carries the value for a single-key write. The key travels in
// the URL path; a Key field in the body is tolerated but the path wins.
type PutRequest struct {
	Key   string `json:"key,omitempty"`
	Value string `json:"value"`
}

type PutResponse struct {
	Success bool `json:"success"`
}

type GetResponse struct {
	Success bool   `json:"success"`
	Value   string `json:"value,omitempty"`
}

type DeleteResponse struct {
	Success bool `json:"success"`
}

type BatchPutRequest struct {
	Pairs []KeyValue `json:"pairs"`
}

// ShardListing is one shard's contents, most recently used first.
type ShardListing struct {
	Shard   int        `json:"shard"`
	Entries []KeyValue `json:"entries"`
}

type ListResponse struct {
	Shards []ShardListing `json:"shards"`
}

type StatsResponse struct {
	Keys      int    `json:"keys"`
	Capacity  int    `json:"capacity"`
	Shards    int    `json:"shards"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Puts      uint64 `json:"puts"`
	Deletes   uint64 `json:"deletes"`
	Evictions uint64 `json:"evictions"`
}

var httpClient = &http.Client{Timeout: 5 * time.Second}

// sendJSON builds and performs one request with an optional JSON body,
// enforcing the shared status policy: any status of 300 or above is an
// error, and the body is decoded into out only when out is non-nil.
func sendJSON(ctx context.Context, method, url string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %s: %d", url, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// PostJSON sends body as JSON in a POST to url and decodes the response
// into out when out is non-nil.
func PostJSON(ctx context.Context, url string, body any, out any) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return sendJSON(ctx, http.MethodPost, url, bytes.NewReader(reqBody), out)
}

// PutJSON sends body as JSON in a PUT to url and decodes the response
// into out when out is non-nil.
func PutJSON(ctx context.Context, url string, body any, out any) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return sendJSON(ctx, http.MethodPut, url, bytes.NewReader(reqBody), out)
}

// GetJSON performs a GET against url and decodes the JSON response into out.
func GetJSON(ctx context.Context, url string, out any) error {
	return sendJSON(ctx, http.MethodGet, url, nil, out)
}

// DeleteJSON performs a DELETE against url, decoding the response into out
// when out is non-nil.
func DeleteJSON(ctx context.Context, url string, out any) error {
	return sendJSON(ctx, http.MethodDelete, url, nil, out)
}
