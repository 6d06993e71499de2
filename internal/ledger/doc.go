// Package ledger provides an HTTP implementation of domain.LedgerClient.
//
// The ledger is the append-only public store of identity, session and
// message records (the chat contract). This client speaks JSON over HTTP to
// a node exposing the contract's read/write surface, such as cmd/ledgerd.
//
// Responses are decoded into typed results exactly once here: write
// conflicts become ErrAlreadyRegistered / ErrSessionExists, other refusals
// ErrLedgerRejected, and transport failures ErrLedgerUnavailable. Reads are
// retried a few times with capped backoff since they are idempotent; writes
// are never retried by the client.
package ledger
