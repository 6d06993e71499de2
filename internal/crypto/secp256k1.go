package crypto

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"ledgerchat/internal/domain"
)

// GenerateScalar draws a fresh secp256k1 private scalar and derives its
// public key. Fails only when the entropy source does.
func GenerateScalar() (domain.Scalar, *secp256k1.PublicKey, error) {
	var scalar domain.Scalar
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return scalar, nil, fmt.Errorf("%w: %v", domain.ErrKeyGeneration, err)
	}
	copy(scalar[:], priv.Serialize())
	return scalar, priv.PubKey(), nil
}

// PublicKeyOf derives the public key for a private scalar. The derivation is
// deterministic: the same scalar always yields the same point.
func PublicKeyOf(scalar domain.Scalar) *secp256k1.PublicKey {
	return secp256k1.PrivKeyFromBytes(scalar[:]).PubKey()
}
