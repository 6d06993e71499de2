package domain

import (
	"context"
	"time"
)

// LedgerClient is how we talk to the chat contract on the ledger. All writes
// are atomic from the caller's perspective and reads reflect the latest
// confirmed state. Implementations decode ledger responses into the typed
// errors of this package exactly once, at this boundary.
type LedgerClient interface {
	// RegisterIdentity publishes an identity record. ErrAlreadyRegistered
	// when the account already has one.
	RegisterIdentity(ctx context.Context, rec IdentityRecord) (Receipt, error)

	// FetchIdentity returns the identity record for account. An account
	// with no record yields a zero record with Registered=false, not an
	// error.
	FetchIdentity(ctx context.Context, account Account) (IdentityRecord, error)

	// IsSessionEstablished reports whether the unordered pair {a, b} has a
	// confirmed session record.
	IsSessionEstablished(ctx context.Context, a, b Account) (bool, error)

	// EstablishSession publishes both session ciphertexts in one write.
	// ErrSessionExists when another writer got there first.
	EstablishSession(ctx context.Context, rec SessionRecord) (Receipt, error)

	// FetchSession returns the session record for the unordered pair.
	FetchSession(ctx context.Context, a, b Account) (SessionRecord, bool, error)

	// SendMessage appends a message and returns its ledger sequence.
	SendMessage(ctx context.Context, rec MessageRecord) (uint64, error)

	// FetchMessages returns every message between a and b, in either
	// direction, ordered by ledger sequence ascending.
	FetchMessages(ctx context.Context, a, b Account) ([]MessageRecord, error)

	// FetchPeers returns the accounts that share a confirmed session with
	// account.
	FetchPeers(ctx context.Context, account Account) ([]Account, error)
}

// Wallet is the externally-held asymmetric encryption capability bound to an
// account, consumed as an opaque service. Calls may block on user approval
// and may be declined at any time; declines surface as ErrWrapRejected or
// ErrUnwrapRejected and are never retried automatically.
type Wallet interface {
	Encrypt(ctx context.Context, account Account, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, account Account, ciphertext []byte) ([]byte, error)
}

// IdentityService provisions and unlocks the bound account's identity.
type IdentityService interface {
	// Register performs the one-time identity provisioning: generate a
	// scalar, wrap it via the wallet, publish the record, and cache the
	// scalar once the ledger confirms. ErrAlreadyRegistered (without any
	// ledger write) when a record already exists.
	Register(ctx context.Context) (IdentityRecord, Receipt, error)

	// Unlock recovers the identity scalar for an already-registered
	// account by wallet-decrypting the wrapped secret from the ledger.
	Unlock(ctx context.Context) (Fingerprint, error)

	// Registered reports whether the bound account has an identity record.
	Registered(ctx context.Context) (bool, error)
}

// SessionService establishes pairwise session secrets.
type SessionService interface {
	// Establish makes the session secret for {self, peer} available,
	// creating it on the ledger if no writer has yet. Losing the
	// concurrent-establish race is absorbed by adopting the winner's
	// record.
	Establish(ctx context.Context, peer Account) error

	// Secret returns the cached session secret for peer, adopting an
	// already-established ledger session if needed. ErrNoSession when the
	// pair has no session; Secret never creates one.
	Secret(ctx context.Context, peer Account) (SessionSecret, error)
}

// MessageService encrypts, sends, fetches and decrypts messages.
type MessageService interface {
	// Send encrypts plaintext under the pair's session secret and appends
	// it to the ledger. Returns the assigned ledger sequence.
	Send(ctx context.Context, peer Account, plaintext []byte) (uint64, error)

	// History returns all messages with peer, decrypted, ordered by
	// AppTimestamp ascending with ledger sequence breaking ties.
	History(ctx context.Context, peer Account) ([]DecryptedMessage, error)

	// Watch polls the ledger and delivers newly confirmed messages with
	// peer, in ledger-sequence order, starting after the given sequence.
	// The channel closes when ctx is cancelled or on a non-transient
	// failure.
	Watch(ctx context.Context, peer Account, every time.Duration, after uint64) (<-chan DecryptedMessage, error)

	// Peers lists accounts the bound account shares a session with.
	Peers(ctx context.Context) ([]Account, error)
}
