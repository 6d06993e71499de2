// Package crypto exposes the primitives used by ledgerchat.
//
// Contents
//
//   - secp256k1 identity scalar generation and public key derivation
//     (GenerateScalar, PublicKeyOf)
//   - The ledger's split compressed-point codec and the wallet envelope
//     layout (EncodePublicKey, DecodePublicKey, SplitWalletEnvelope,
//     JoinWalletEnvelope)
//   - ECIES sealing/opening of the 32-byte session secret (SealSecret,
//     OpenSecret, GenerateSecret)
//   - Authenticated message encryption under a session secret
//     (EncryptMessage, DecryptMessage)
//   - Short public-key fingerprints for display (Fingerprint)
//
// # Notes
//
// Secrets use fixed-size array types from internal/domain to avoid
// accidental reallocations. Callers should treat returned secrets as
// sensitive and rely on memzero when practical to reduce lifetime in memory.
package crypto
