// Package api defines the wire contract of the key-value server: the JSON
// request and response types for every endpoint, plus small HTTP helpers
// for talking to a running server.
//
// # Overview
//
// The server speaks plain JSON over HTTP. Single-key operations address
// their key in the URL path (GET, PUT, DELETE on /kv/{key}); batch writes,
// clearing, listing, and statistics have their own endpoints. Success and
// absence travel in a boolean success flag rather than bespoke error
// bodies, mirroring the store's own absence-is-not-an-error convention.
//
// # Wire Format
//
// A successful read:
//
//	GET /kv/user:1
//	200 {"success":true,"value":"alice"}
//
// A miss:
//
//	GET /kv/unknown
//	404 {"success":false}
//
// A batch write:
//
//	POST /batch
//	{"pairs":[{"key":"a","value":"1"},{"key":"b","value":"2"}]}
//	204
//
// # HTTP Helpers
//
// PostJSON, PutJSON, GetJSON, and DeleteJSON wrap the request/response
// cycle for one verb each: marshal the body, attach the context, check the
// status, decode the response. They share a package-level client with a
// five second timeout. Any status of 300 or above is reported as an error,
// so a 404 miss surfaces as a non-nil error to the caller.
//
// # See Also
//
//   - Package store: the sharded store these types describe.
//   - cmd/server: the binary serving this contract.
package api
