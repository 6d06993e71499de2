package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"ledgerchat/internal/domain"
	"ledgerchat/internal/util/memzero"
)

// ECIES wire layout: compressed ephemeral public key, then AEAD nonce, then
// ciphertext with tag.
const (
	eciesEphemeralSize = 33
	eciesNonceSize     = chacha20poly1305.NonceSize
	eciesOverhead      = eciesEphemeralSize + eciesNonceSize + chacha20poly1305.Overhead

	eciesInfo = "ledgerchat/ecies/v1"
)

// GenerateSecret draws a fresh 32-byte session secret.
func GenerateSecret() (domain.SessionSecret, error) {
	var secret domain.SessionSecret
	if _, err := rand.Read(secret[:]); err != nil {
		return secret, fmt.Errorf("%w: %v", domain.ErrKeyGeneration, err)
	}
	return secret, nil
}

// SealSecret ECIES-encrypts secret under pub: a fresh ephemeral key pair per
// call, ECDH, HKDF-SHA256, then ChaCha20-Poly1305. Reusing an ephemeral key
// across calls would link ciphertexts, so none is ever kept.
func SealSecret(pub *secp256k1.PublicKey, secret domain.SessionSecret) ([]byte, error) {
	eph, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKeyGeneration, err)
	}
	defer eph.Zero()

	ephPub := eph.PubKey().SerializeCompressed()
	shared := secp256k1.GenerateSharedSecret(eph, pub)
	key := deriveKey(ephPub, shared)
	memzero.Zero(shared)
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, eciesNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKeyGeneration, err)
	}

	out := make([]byte, 0, eciesOverhead+len(secret))
	out = append(out, ephPub...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, secret[:], ephPub), nil
}

// OpenSecret decrypts a SealSecret ciphertext with the recipient's private
// scalar. Any malformation or tag mismatch yields ErrSessionDecryption.
func OpenSecret(scalar domain.Scalar, ciphertext []byte) (domain.SessionSecret, error) {
	var secret domain.SessionSecret
	if len(ciphertext) < eciesOverhead {
		return secret, fmt.Errorf("%w: ciphertext too short (%d bytes)", domain.ErrSessionDecryption, len(ciphertext))
	}

	ephPub := ciphertext[:eciesEphemeralSize]
	nonce := ciphertext[eciesEphemeralSize : eciesEphemeralSize+eciesNonceSize]
	sealed := ciphertext[eciesEphemeralSize+eciesNonceSize:]

	eph, err := secp256k1.ParsePubKey(ephPub)
	if err != nil {
		return secret, fmt.Errorf("%w: bad ephemeral key: %v", domain.ErrSessionDecryption, err)
	}

	priv := secp256k1.PrivKeyFromBytes(scalar[:])
	defer priv.Zero()
	shared := secp256k1.GenerateSharedSecret(priv, eph)
	key := deriveKey(ephPub, shared)
	memzero.Zero(shared)
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return secret, err
	}
	plain, err := aead.Open(nil, nonce, sealed, ephPub)
	if err != nil {
		return secret, fmt.Errorf("%w: %v", domain.ErrSessionDecryption, err)
	}
	if len(plain) != len(secret) {
		memzero.Zero(plain)
		return secret, fmt.Errorf("%w: unexpected secret length %d", domain.ErrSessionDecryption, len(plain))
	}
	copy(secret[:], plain)
	memzero.Zero(plain)
	return secret, nil
}

// deriveKey binds the AEAD key to both the ephemeral public key and the ECDH
// x-coordinate via HKDF-SHA256.
func deriveKey(ephPub, shared []byte) []byte {
	ikm := make([]byte, 0, len(ephPub)+len(shared))
	ikm = append(ikm, ephPub...)
	ikm = append(ikm, shared...)

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, nil, []byte(eciesInfo)), key); err != nil {
		// HKDF over a fixed-size request cannot fail; keep the invariant loud.
		panic(err)
	}
	memzero.Zero(ikm)
	return key
}
