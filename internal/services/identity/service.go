// Package identity manages the account's long-lived identity key: creating
// and publishing it on first registration, and unwrapping it through the
// wallet on later unlocks.
package identity

import (
	"context"
	"fmt"

	"ledgerchat/internal/crypto"
	"ledgerchat/internal/domain"
	"ledgerchat/internal/keyring"
	"ledgerchat/internal/util/memzero"
)

// Service drives the registration lifecycle for the bound account.
type Service struct {
	ledger domain.LedgerClient
	wallet domain.Wallet
	ring   *keyring.Keyring
}

// New returns an identity service over the given ledger, wallet, and keyring.
func New(ledger domain.LedgerClient, wallet domain.Wallet, ring *keyring.Keyring) *Service {
	return &Service{ledger: ledger, wallet: wallet, ring: ring}
}

var _ domain.IdentityService = (*Service)(nil)

// Register creates a fresh identity key for the bound account, wraps the
// scalar through the wallet, and publishes the record. The ledger is queried
// first: an existing record means the account already registered, and no key
// material is generated or written.
func (s *Service) Register(ctx context.Context) (domain.IdentityRecord, domain.Receipt, error) {
	account, err := s.ring.Account()
	if err != nil {
		return domain.IdentityRecord{}, "", err
	}

	existing, err := s.ledger.FetchIdentity(ctx, account)
	if err != nil {
		return domain.IdentityRecord{}, "", err
	}
	if existing.Registered {
		return domain.IdentityRecord{}, "", domain.ErrAlreadyRegistered
	}

	scalar, pub, err := crypto.GenerateScalar()
	if err != nil {
		return domain.IdentityRecord{}, "", err
	}

	wrapped, err := s.wallet.Encrypt(ctx, account, scalar.Slice())
	if err != nil {
		memzero.Zero(scalar[:])
		return domain.IdentityRecord{}, "", fmt.Errorf("wrap identity scalar: %w", err)
	}

	parity, x := crypto.EncodePublicKey(pub)
	rec := domain.IdentityRecord{
		Account:         account,
		PublicKeyParity: parity,
		PublicKeyX:      x,
		WrappedSecret:   wrapped,
		Registered:      true,
	}

	receipt, err := s.ledger.RegisterIdentity(ctx, rec)
	if err != nil {
		memzero.Zero(scalar[:])
		return domain.IdentityRecord{}, "", err
	}

	// Cache only after the ledger confirmed the write.
	if err := s.ring.SetScalar(scalar); err != nil {
		return domain.IdentityRecord{}, "", err
	}
	return rec, receipt, nil
}

// Unlock recovers the identity scalar for an already registered account by
// fetching its record and unwrapping the scalar through the wallet. The
// recovered scalar is checked against the published public key before it is
// cached.
func (s *Service) Unlock(ctx context.Context) (domain.Fingerprint, error) {
	account, err := s.ring.Account()
	if err != nil {
		return "", err
	}

	rec, err := s.ledger.FetchIdentity(ctx, account)
	if err != nil {
		return "", err
	}
	if !rec.Registered {
		return "", domain.ErrNotRegistered
	}

	plain, err := s.wallet.Decrypt(ctx, account, rec.WrappedSecret)
	if err != nil {
		return "", fmt.Errorf("unwrap identity scalar: %w", err)
	}
	if len(plain) != len(domain.Scalar{}) {
		return "", fmt.Errorf("%w: unwrapped scalar is %d bytes", domain.ErrUnwrapCorrupted, len(plain))
	}
	var scalar domain.Scalar
	copy(scalar[:], plain)

	pub := crypto.PublicKeyOf(scalar)
	parity, x := crypto.EncodePublicKey(pub)
	if parity != rec.PublicKeyParity || x != rec.PublicKeyX {
		return "", fmt.Errorf("%w: unwrapped scalar does not match published key", domain.ErrUnwrapCorrupted)
	}

	if err := s.ring.SetScalar(scalar); err != nil {
		return "", err
	}
	return crypto.Fingerprint(pub), nil
}

// Registered reports whether the bound account has published an identity.
func (s *Service) Registered(ctx context.Context) (bool, error) {
	account, err := s.ring.Account()
	if err != nil {
		return false, err
	}
	rec, err := s.ledger.FetchIdentity(ctx, account)
	if err != nil {
		return false, err
	}
	return rec.Registered, nil
}
