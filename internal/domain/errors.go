package domain

import "errors"

// Failure reasons surfaced by the protocol. Each is a disjoint reason code;
// callers match with errors.Is and decide presentation themselves.
//
// Cryptographic and encoding failures are never retried automatically: they
// indicate malformed external data or a declined user action. Only
// ErrLedgerUnavailable is safe to retry.
var (
	// ErrKeyGeneration reports an entropy-source failure while drawing an
	// identity scalar or session secret.
	ErrKeyGeneration = errors.New("key generation failed")

	// ErrWrapRejected reports that the wallet capability declined to encrypt
	// the identity scalar (for example the user dismissed the prompt).
	ErrWrapRejected = errors.New("wallet rejected wrap request")

	// ErrUnwrapRejected reports that the wallet capability declined to
	// decrypt the wrapped identity scalar.
	ErrUnwrapRejected = errors.New("wallet rejected unwrap request")

	// ErrUnwrapCorrupted reports that the wallet decrypted the wrapped
	// secret but the result is not a valid 32-byte scalar for the
	// registered public key.
	ErrUnwrapCorrupted = errors.New("wrapped secret is corrupted")

	// ErrInvalidKeyEncoding reports a (parity, x) pair that is not a valid
	// compressed curve point.
	ErrInvalidKeyEncoding = errors.New("invalid public key encoding")

	// ErrNotRegistered reports an operation that requires the bound account
	// to be registered on the ledger.
	ErrNotRegistered = errors.New("account is not registered")

	// ErrPeerNotRegistered reports a peer with no identity record.
	ErrPeerNotRegistered = errors.New("peer is not registered")

	// ErrAlreadyRegistered reports a second register attempt for an account
	// that already has an identity record. Registration is one-time.
	ErrAlreadyRegistered = errors.New("account is already registered")

	// ErrNoSession reports a message operation on a pair with no
	// established session.
	ErrNoSession = errors.New("no session established with peer")

	// ErrSessionExists reports a session write for a pair that already has
	// one. The first writer wins; callers reconcile by reading the
	// existing record.
	ErrSessionExists = errors.New("session already established for pair")

	// ErrSessionDecryption reports a failed ECIES open of a session
	// ciphertext (tag mismatch or malformed ciphertext).
	ErrSessionDecryption = errors.New("session secret decryption failed")

	// ErrMessageDecryption reports an authentication failure while
	// decrypting a message (wrong key, corruption, or tampering).
	ErrMessageDecryption = errors.New("message decryption failed")

	// ErrLedgerRejected reports a ledger write refused for any reason other
	// than the specific conflicts above.
	ErrLedgerRejected = errors.New("ledger rejected write")

	// ErrLedgerUnavailable reports a transport failure or timeout talking
	// to the ledger. Reads may be retried with backoff.
	ErrLedgerUnavailable = errors.New("ledger unavailable")

	// ErrNoAccountBound reports a protocol call before Bind.
	ErrNoAccountBound = errors.New("no account bound")

	// ErrIdentityLocked reports a call that needs the unwrapped identity
	// scalar before Register or Unlock has cached it.
	ErrIdentityLocked = errors.New("identity is locked")
)
