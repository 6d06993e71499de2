package domain

// Account is a ledger account address. It is treated as an opaque, stable,
// case-sensitive identifier; the ledger is the authority on its format.
type Account string

// String returns the string form of the account.
func (a Account) String() string { return string(a) }

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// Receipt identifies a confirmed ledger write.
type Receipt string

// String returns the string form of the receipt.
func (r Receipt) String() string { return string(r) }

// Scalar is a 32-byte secp256k1 private scalar.
type Scalar [32]byte

// Slice returns the scalar as a []byte.
func (s Scalar) Slice() []byte { return s[:] }

// SessionSecret is a 32-byte pairwise symmetric secret.
type SessionSecret [32]byte

// Slice returns the secret as a []byte.
func (s SessionSecret) Slice() []byte { return s[:] }

// IdentityRecord is the per-account record held by the ledger. The public
// key is stored in the ledger's split compressed form: a parity flag plus
// the 32-byte x-coordinate.
type IdentityRecord struct {
	Account Account `json:"account"`

	// PublicKeyParity is true for an even-y (0x02) compressed point.
	PublicKeyParity bool     `json:"public_key_parity"`
	PublicKeyX      [32]byte `json:"public_key_x"`

	// WrappedSecret is the identity scalar encrypted under the account's
	// wallet capability. Only the wallet that produced it can open it.
	WrappedSecret []byte `json:"wrapped_secret"`

	Registered bool `json:"registered"`
}

// SessionRecord is the per-pair record held by the ledger. Both ciphertexts
// encrypt the same 32-byte session secret, one under each party's identity
// public key. The pair is unordered; Initiator records who wrote it.
type SessionRecord struct {
	Initiator Account `json:"initiator"`
	Peer      Account `json:"peer"`

	CipherForInitiator []byte `json:"cipher_for_initiator"`
	CipherForPeer      []byte `json:"cipher_for_peer"`

	Receipt Receipt `json:"receipt,omitempty"`
}

// CiphertextFor returns the session ciphertext readable by account.
// The second return is false when account is not part of the pair.
func (r SessionRecord) CiphertextFor(account Account) ([]byte, bool) {
	switch account {
	case r.Initiator:
		return r.CipherForInitiator, true
	case r.Peer:
		return r.CipherForPeer, true
	default:
		return nil, false
	}
}

// MessageRecord is an immutable, append-only message entry on the ledger.
type MessageRecord struct {
	Sender     Account `json:"sender"`
	Recipient  Account `json:"recipient"`
	Ciphertext []byte  `json:"ciphertext"`

	// AppTimestamp is the sender's wall clock in milliseconds since epoch.
	// It is the primary message order.
	AppTimestamp int64 `json:"app_timestamp"`

	// Sequence is the ledger-assigned total order, used only to break
	// AppTimestamp ties.
	Sequence uint64 `json:"sequence"`
}

// DecryptedMessage is a message after session decryption.
type DecryptedMessage struct {
	Sender       Account `json:"sender"`
	Recipient    Account `json:"recipient"`
	Plaintext    []byte  `json:"plaintext"`
	AppTimestamp int64   `json:"app_timestamp"`
	Sequence     uint64  `json:"sequence"`

	// Own is true when the bound account sent the message.
	Own bool `json:"own"`
}

// PairKey returns the canonical unordered-pair key for two accounts.
// PairKey(a, b) == PairKey(b, a); self-pairs are valid.
func PairKey(a, b Account) string {
	if b < a {
		a, b = b, a
	}
	return string(a) + "/" + string(b)
}
