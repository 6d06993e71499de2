package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"ledgerchat/internal/domain"
)

// Message wire layout: AEAD nonce, then ciphertext with tag. The nonce is
// fresh per call so decryption is self-contained.
const messageNonceSize = chacha20poly1305.NonceSize

// EncryptMessage seals plaintext under the pair's session secret.
func EncryptMessage(secret domain.SessionSecret, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(secret[:])
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, messageNonceSize, messageNonceSize+len(plaintext)+chacha20poly1305.Overhead)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKeyGeneration, err)
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// DecryptMessage opens a sealed message. A wrong key, corruption or
// tampering fails the authentication tag and yields ErrMessageDecryption;
// garbage is never returned silently.
func DecryptMessage(secret domain.SessionSecret, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < messageNonceSize+chacha20poly1305.Overhead {
		return nil, fmt.Errorf("%w: ciphertext too short (%d bytes)", domain.ErrMessageDecryption, len(ciphertext))
	}
	aead, err := chacha20poly1305.New(secret[:])
	if err != nil {
		return nil, err
	}
	plain, err := aead.Open(nil, ciphertext[:messageNonceSize], ciphertext[messageNonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMessageDecryption, err)
	}
	return plain, nil
}
