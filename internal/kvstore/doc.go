// Package kvstore provides a minimal concurrency-safe map of string keys
// to string values.
//
// Unlike the sharded store, it is unbounded and unsharded: one map, one
// lock, no eviction. An entry stays until deleted, so it suits small,
// long-lived data sets where losing keys to capacity pressure would be a
// bug rather than a feature. Every operation is reported on the package's
// logger at debug level.
package kvstore
