package crypto

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"ledgerchat/internal/domain"
)

// The ledger stores a compressed public key split into a parity flag and the
// 32-byte x-coordinate. The wallet capability produces ciphertexts with a
// fixed prefix layout: ephemeral public key, then nonce, then the box.
const (
	WalletEphemeralSize = 32
	WalletNonceSize     = 24

	compressedEven = 0x02
	compressedOdd  = 0x03
)

// EncodePublicKey splits pub into the ledger's (parity, x) form. Parity is
// true for an even-y point. Pure and deterministic.
func EncodePublicKey(pub *secp256k1.PublicKey) (evenParity bool, x [32]byte) {
	c := pub.SerializeCompressed()
	copy(x[:], c[1:])
	return c[0] == compressedEven, x
}

// DecodePublicKey is the inverse of EncodePublicKey. It rejects an x that is
// not the coordinate of a curve point with the given parity.
func DecodePublicKey(evenParity bool, x [32]byte) (*secp256k1.PublicKey, error) {
	buf := make([]byte, 1+len(x))
	buf[0] = compressedOdd
	if evenParity {
		buf[0] = compressedEven
	}
	copy(buf[1:], x[:])

	pub, err := secp256k1.ParsePubKey(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidKeyEncoding, err)
	}
	return pub, nil
}

// JoinWalletEnvelope concatenates the wallet ciphertext parts into the
// single buffer stored on the ledger.
func JoinWalletEnvelope(ephemeral [WalletEphemeralSize]byte, nonce [WalletNonceSize]byte, boxed []byte) []byte {
	out := make([]byte, 0, WalletEphemeralSize+WalletNonceSize+len(boxed))
	out = append(out, ephemeral[:]...)
	out = append(out, nonce[:]...)
	return append(out, boxed...)
}

// SplitWalletEnvelope is the inverse of JoinWalletEnvelope.
func SplitWalletEnvelope(env []byte) (ephemeral [WalletEphemeralSize]byte, nonce [WalletNonceSize]byte, boxed []byte, err error) {
	if len(env) <= WalletEphemeralSize+WalletNonceSize {
		return ephemeral, nonce, nil, fmt.Errorf("%w: wallet envelope too short (%d bytes)", domain.ErrUnwrapCorrupted, len(env))
	}
	copy(ephemeral[:], env[:WalletEphemeralSize])
	copy(nonce[:], env[WalletEphemeralSize:WalletEphemeralSize+WalletNonceSize])
	return ephemeral, nonce, env[WalletEphemeralSize+WalletNonceSize:], nil
}
