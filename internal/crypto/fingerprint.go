package crypto

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"ledgerchat/internal/domain"
)

// Fingerprint returns a short hex fingerprint of an identity public key,
// for display next to an account.
//
// It hashes the compressed point with SHA-256 and truncates to 10 bytes
// (20 hex chars).
func Fingerprint(pub *secp256k1.PublicKey) domain.Fingerprint {
	sum := sha256.Sum256(pub.SerializeCompressed())
	return domain.Fingerprint(hex.EncodeToString(sum[:10]))
}
