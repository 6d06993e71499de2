package wallet

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/nacl/box"
	"golang.org/x/crypto/scrypt"

	"ledgerchat/internal/crypto"
	"ledgerchat/internal/domain"
	"ledgerchat/internal/util/memzero"
)

const saltSize = 16

// scrypt cost parameters for the keyfile KEK.
func scryptParams() (N, r, p int) { return 1 << 15, 8, 1 }

// KeyfileWallet implements domain.Wallet with per-account NaCl box keys held
// in passphrase-encrypted files under dir. The first Encrypt for an unknown
// account creates its key pair, like a wallet provisioning an encryption key
// on first use.
type KeyfileWallet struct {
	dir        string
	passphrase string

	mu sync.Mutex
}

// NewKeyfile returns a wallet rooted at dir. The passphrase gates every
// wrap/unwrap; a wrong passphrase behaves as a declined request.
func NewKeyfile(dir, passphrase string) *KeyfileWallet {
	return &KeyfileWallet{dir: dir, passphrase: passphrase}
}

var _ domain.Wallet = (*KeyfileWallet)(nil)

// Encrypt seals plaintext to account's wallet public key using an ephemeral
// sender key, producing the ephemeral pub, nonce, box layout.
func (w *KeyfileWallet) Encrypt(ctx context.Context, account domain.Account, plaintext []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrWrapRejected, err)
	}

	w.mu.Lock()
	pair, err := w.loadOrCreate(account)
	w.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrWrapRejected, err)
	}
	defer pair.wipe()

	ephPub, ephPriv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrWrapRejected, err)
	}
	defer memzero.Zero(ephPriv[:])

	var nonce [crypto.WalletNonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrWrapRejected, err)
	}

	boxed := box.Seal(nil, plaintext, &nonce, &pair.Public, ephPriv)
	return crypto.JoinWalletEnvelope(*ephPub, nonce, boxed), nil
}

// Decrypt opens a ciphertext produced by Encrypt for the same account.
func (w *KeyfileWallet) Decrypt(ctx context.Context, account domain.Account, ciphertext []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnwrapRejected, err)
	}

	w.mu.Lock()
	pair, ok, err := w.load(account)
	w.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnwrapRejected, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: no wallet key for %s", domain.ErrUnwrapRejected, account)
	}
	defer pair.wipe()

	ephPub, nonce, boxed, err := crypto.SplitWalletEnvelope(ciphertext)
	if err != nil {
		return nil, err
	}
	plain, ok := box.Open(nil, boxed, &nonce, &ephPub, &pair.Private)
	if !ok {
		return nil, fmt.Errorf("%w: box authentication failed", domain.ErrUnwrapCorrupted)
	}
	return plain, nil
}

// boxPair is an account's long-term wallet key pair.
type boxPair struct {
	Public  [32]byte `json:"public"`
	Private [32]byte `json:"private"`
}

func (p *boxPair) wipe() {
	memzero.Zero(p.Private[:])
}

func (w *KeyfileWallet) path(account domain.Account) string {
	return filepath.Join(w.dir, account.String()+".wallet")
}

func (w *KeyfileWallet) loadOrCreate(account domain.Account) (*boxPair, error) {
	pair, ok, err := w.load(account)
	if err != nil {
		return nil, err
	}
	if ok {
		return pair, nil
	}

	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	pair = &boxPair{Public: *pub, Private: *priv}
	memzero.Zero(priv[:])

	if err := w.save(account, pair); err != nil {
		pair.wipe()
		return nil, err
	}
	return pair, nil
}

func (w *KeyfileWallet) load(account domain.Account) (*boxPair, bool, error) {
	blob, err := os.ReadFile(w.path(account))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	raw, err := openEnvelope(w.passphrase, blob)
	if err != nil {
		return nil, false, err
	}
	defer memzero.Zero(raw)

	var pair boxPair
	if err := json.Unmarshal(raw, &pair); err != nil {
		return nil, false, err
	}
	return &pair, true, nil
}

func (w *KeyfileWallet) save(account domain.Account, pair *boxPair) error {
	if err := os.MkdirAll(w.dir, 0o700); err != nil {
		return err
	}
	raw, err := json.Marshal(pair)
	if err != nil {
		return err
	}
	blob, err := sealEnvelope(w.passphrase, raw)
	memzero.Zero(raw)
	if err != nil {
		return err
	}
	return os.WriteFile(w.path(account), blob, 0o600)
}

// keyfile at-rest envelope: scrypt KEK over a random salt, ChaCha20-Poly1305
// with the salt as associated data. The key is fresh per salt so a zero
// nonce is safe.
type envelope struct {
	Salt []byte `json:"salt"`
	CT   []byte `json:"ct"`
}

func sealEnvelope(passphrase string, plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	N, r, p := scryptParams()
	key, err := scrypt.Key([]byte(passphrase), salt, N, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	ct := aead.Seal(nil, nonce, plaintext, salt)
	return json.Marshal(envelope{Salt: salt, CT: ct})
}

func openEnvelope(passphrase string, blob []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return nil, err
	}
	N, r, p := scryptParams()
	key, err := scrypt.Key([]byte(passphrase), env.Salt, N, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	return aead.Open(nil, nonce, env.CT, env.Salt)
}
