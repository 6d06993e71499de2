// Package ledgerd implements the development ledger daemon used in place of
// the real chat contract during development and tests.
//
// It exposes the contract's read/write surface as JSON over HTTP and
// enforces the same write rules the contract would: one identity record per
// account, first-writer-wins for session records, and an append-only,
// totally ordered message log. It never inspects ciphertexts and holds no
// key material.
//
// HTTP API
//
//	POST /identity              Publish an identity record (409 if present).
//	GET  /identity/{account}    Fetch an identity record.
//	POST /session               Publish both session ciphertexts (409 if the
//	                            pair already has a session).
//	GET  /session/{a}/{b}       Fetch the pair's session record.
//	GET  /sessions/{account}    List accounts sharing a session with account.
//	POST /message               Append a message; returns its sequence.
//	GET  /messages/{a}/{b}      List messages between a and b, both
//	                            directions, by sequence ascending.
//
// State lives in a Store: MemStore for tests and throwaway runs, or
// SQLiteStore for a durable dev ledger.
package ledgerd
