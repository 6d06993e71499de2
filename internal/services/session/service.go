// Package session establishes and recovers the pairwise session secret that
// encrypts all messages between the bound account and one peer.
package session

import (
	"context"
	"errors"
	"fmt"

	"ledgerchat/internal/crypto"
	"ledgerchat/internal/domain"
	"ledgerchat/internal/keyring"
	"ledgerchat/internal/util/memzero"
)

// Service drives the session lifecycle for the bound account.
type Service struct {
	ledger domain.LedgerClient
	ring   *keyring.Keyring
}

// New returns a session service over the given ledger and keyring.
func New(ledger domain.LedgerClient, ring *keyring.Keyring) *Service {
	return &Service{ledger: ledger, ring: ring}
}

var _ domain.SessionService = (*Service)(nil)

// Establish makes a session with peer available, creating one on the ledger
// if none exists. Establishing is idempotent: if a session already exists,
// on the ledger or in the cache, it is adopted instead of replaced. When two
// parties race, the ledger admits exactly one record; the loser discards its
// own draft and adopts the winner's.
func (s *Service) Establish(ctx context.Context, peer domain.Account) error {
	self, err := s.ring.Account()
	if err != nil {
		return err
	}
	if _, ok := s.ring.Session(peer); ok {
		return nil
	}

	established, err := s.ledger.IsSessionEstablished(ctx, self, peer)
	if err != nil {
		return err
	}
	if established {
		_, err := s.adopt(ctx, self, peer)
		return err
	}

	scalar, err := s.ring.Scalar()
	if err != nil {
		return err
	}

	peerRec, err := s.ledger.FetchIdentity(ctx, peer)
	if err != nil {
		return err
	}
	if !peerRec.Registered {
		return fmt.Errorf("%w: %s", domain.ErrPeerNotRegistered, peer)
	}
	peerPub, err := crypto.DecodePublicKey(peerRec.PublicKeyParity, peerRec.PublicKeyX)
	if err != nil {
		return fmt.Errorf("peer identity key: %w", err)
	}
	selfPub := crypto.PublicKeyOf(scalar)

	secret, err := crypto.GenerateSecret()
	if err != nil {
		return err
	}

	forSelf, err := crypto.SealSecret(selfPub, secret)
	if err != nil {
		return err
	}
	forPeer, err := crypto.SealSecret(peerPub, secret)
	if err != nil {
		return err
	}

	_, err = s.ledger.EstablishSession(ctx, domain.SessionRecord{
		Initiator:          self,
		Peer:               peer,
		CipherForInitiator: forSelf,
		CipherForPeer:      forPeer,
	})
	if errors.Is(err, domain.ErrSessionExists) {
		// Lost the race. The ledger kept the other party's record; our
		// draft secret is never used.
		memzero.Zero(secret[:])
		_, err := s.adopt(ctx, self, peer)
		return err
	}
	if err != nil {
		memzero.Zero(secret[:])
		return err
	}

	s.ring.PutSession(peer, secret)
	return nil
}

// Secret returns the session secret shared with peer, recovering it from the
// ledger if it is not cached. ErrNoSession when no session exists yet.
func (s *Service) Secret(ctx context.Context, peer domain.Account) (domain.SessionSecret, error) {
	self, err := s.ring.Account()
	if err != nil {
		return domain.SessionSecret{}, err
	}
	if secret, ok := s.ring.Session(peer); ok {
		return secret, nil
	}
	return s.adopt(ctx, self, peer)
}

// adopt fetches the pair's session record, opens our ciphertext with the
// identity scalar, and caches the secret.
func (s *Service) adopt(ctx context.Context, self, peer domain.Account) (domain.SessionSecret, error) {
	scalar, err := s.ring.Scalar()
	if err != nil {
		return domain.SessionSecret{}, err
	}

	rec, ok, err := s.ledger.FetchSession(ctx, self, peer)
	if err != nil {
		return domain.SessionSecret{}, err
	}
	if !ok {
		return domain.SessionSecret{}, fmt.Errorf("%w: with %s", domain.ErrNoSession, peer)
	}

	ct, ok := rec.CiphertextFor(self)
	if !ok {
		return domain.SessionSecret{}, fmt.Errorf("%w: record does not include %s", domain.ErrSessionDecryption, self)
	}

	secret, err := crypto.OpenSecret(scalar, ct)
	if err != nil {
		return domain.SessionSecret{}, err
	}
	s.ring.PutSession(peer, secret)
	return secret, nil
}
