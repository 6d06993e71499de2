// Package keyring holds the only sensitive in-process state of the
// protocol: the bound account, its unwrapped identity scalar, and the
// session secrets opened so far. Nothing here is ever persisted or logged;
// Unbind wipes everything, so switching accounts cannot leak material
// across identities.
package keyring

import (
	"sync"

	"ledgerchat/internal/domain"
	"ledgerchat/internal/util/memzero"
)

// Keyring is safe for concurrent use.
type Keyring struct {
	mu sync.Mutex

	account  domain.Account
	bound    bool
	unlocked bool
	scalar   domain.Scalar

	sessions map[domain.Account]domain.SessionSecret
}

func New() *Keyring {
	return &Keyring{sessions: make(map[domain.Account]domain.SessionSecret)}
}

// Bind sets the active account. Binding a different account first wipes all
// cached material; re-binding the same account keeps it.
func (k *Keyring) Bind(account domain.Account) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.bound && k.account == account {
		return
	}
	k.wipeLocked()
	k.account = account
	k.bound = true
}

// Unbind clears the active account and wipes the scalar and all session
// secrets.
func (k *Keyring) Unbind() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.wipeLocked()
	k.account = ""
	k.bound = false
}

// Account returns the bound account.
func (k *Keyring) Account() (domain.Account, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.bound {
		return "", domain.ErrNoAccountBound
	}
	return k.account, nil
}

// SetScalar caches the unwrapped identity scalar for the bound account.
func (k *Keyring) SetScalar(scalar domain.Scalar) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.bound {
		return domain.ErrNoAccountBound
	}
	k.scalar = scalar
	k.unlocked = true
	return nil
}

// Scalar returns the cached identity scalar. ErrIdentityLocked before
// Register or Unlock has cached it.
func (k *Keyring) Scalar() (domain.Scalar, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.bound {
		return domain.Scalar{}, domain.ErrNoAccountBound
	}
	if !k.unlocked {
		return domain.Scalar{}, domain.ErrIdentityLocked
	}
	return k.scalar, nil
}

// PutSession caches the session secret for peer.
func (k *Keyring) PutSession(peer domain.Account, secret domain.SessionSecret) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.sessions[peer] = secret
}

// Session returns the cached session secret for peer, if any.
func (k *Keyring) Session(peer domain.Account) (domain.SessionSecret, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	s, ok := k.sessions[peer]
	return s, ok
}

func (k *Keyring) wipeLocked() {
	memzero.Zero(k.scalar[:])
	k.unlocked = false
	for peer, s := range k.sessions {
		memzero.Zero(s[:])
		delete(k.sessions, peer)
	}
}
