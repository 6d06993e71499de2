// Package message sends and reads encrypted messages over the ledger's
// append-only log, using the pairwise session secret for the symmetric
// layer.
package message

import (
	"context"
	"errors"
	"sort"
	"time"

	"ledgerchat/internal/crypto"
	"ledgerchat/internal/domain"
	"ledgerchat/internal/keyring"
)

// Clock supplies message timestamps; replaced in tests.
type Clock func() int64

// Service encrypts, appends, and decrypts messages for the bound account.
type Service struct {
	ledger   domain.LedgerClient
	sessions domain.SessionService
	ring     *keyring.Keyring
	now      Clock
}

// New returns a message service. A nil clock uses the wall clock in
// milliseconds.
func New(ledger domain.LedgerClient, sessions domain.SessionService, ring *keyring.Keyring, now Clock) *Service {
	if now == nil {
		now = func() int64 { return time.Now().UnixMilli() }
	}
	return &Service{ledger: ledger, sessions: sessions, ring: ring, now: now}
}

var _ domain.MessageService = (*Service)(nil)

// Send encrypts plaintext under the session secret with peer and appends it
// to the ledger. Returns the ledger-assigned sequence.
func (s *Service) Send(ctx context.Context, peer domain.Account, plaintext []byte) (uint64, error) {
	self, err := s.ring.Account()
	if err != nil {
		return 0, err
	}
	secret, err := s.sessions.Secret(ctx, peer)
	if err != nil {
		return 0, err
	}

	ct, err := crypto.EncryptMessage(secret, plaintext)
	if err != nil {
		return 0, err
	}

	return s.ledger.SendMessage(ctx, domain.MessageRecord{
		Sender:       self,
		Recipient:    peer,
		Ciphertext:   ct,
		AppTimestamp: s.now(),
	})
}

// History returns the full decrypted conversation with peer, both
// directions, ordered by sender timestamp ascending with ledger sequence
// breaking ties.
func (s *Service) History(ctx context.Context, peer domain.Account) ([]domain.DecryptedMessage, error) {
	self, err := s.ring.Account()
	if err != nil {
		return nil, err
	}
	secret, err := s.sessions.Secret(ctx, peer)
	if err != nil {
		return nil, err
	}

	recs, err := s.ledger.FetchMessages(ctx, self, peer)
	if err != nil {
		return nil, err
	}

	out := make([]domain.DecryptedMessage, 0, len(recs))
	for _, rec := range recs {
		plain, err := crypto.DecryptMessage(secret, rec.Ciphertext)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.DecryptedMessage{
			Sender:       rec.Sender,
			Recipient:    rec.Recipient,
			Plaintext:    plain,
			AppTimestamp: rec.AppTimestamp,
			Sequence:     rec.Sequence,
			Own:          rec.Sender == self,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AppTimestamp != out[j].AppTimestamp {
			return out[i].AppTimestamp < out[j].AppTimestamp
		}
		return out[i].Sequence < out[j].Sequence
	})
	return out, nil
}

// Watch polls the conversation with peer and emits messages whose sequence
// is greater than after, in sequence order. The channel closes when ctx is
// cancelled or the ledger fails permanently; transient unavailability is
// retried on the next tick.
func (s *Service) Watch(ctx context.Context, peer domain.Account, every time.Duration, after uint64) (<-chan domain.DecryptedMessage, error) {
	self, err := s.ring.Account()
	if err != nil {
		return nil, err
	}
	secret, err := s.sessions.Secret(ctx, peer)
	if err != nil {
		return nil, err
	}
	if every <= 0 {
		every = 2 * time.Second
	}

	out := make(chan domain.DecryptedMessage)
	go func() {
		defer close(out)
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		seen := after
		for {
			recs, err := s.ledger.FetchMessages(ctx, self, peer)
			if err != nil {
				if !errors.Is(err, domain.ErrLedgerUnavailable) {
					return
				}
			}
			for _, rec := range recs {
				if rec.Sequence <= seen {
					continue
				}
				plain, err := crypto.DecryptMessage(secret, rec.Ciphertext)
				if err != nil {
					return
				}
				msg := domain.DecryptedMessage{
					Sender:       rec.Sender,
					Recipient:    rec.Recipient,
					Plaintext:    plain,
					AppTimestamp: rec.AppTimestamp,
					Sequence:     rec.Sequence,
					Own:          rec.Sender == self,
				}
				select {
				case out <- msg:
					seen = rec.Sequence
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return out, nil
}

// Peers lists the accounts that share a session with the bound account.
func (s *Service) Peers(ctx context.Context) ([]domain.Account, error) {
	self, err := s.ring.Account()
	if err != nil {
		return nil, err
	}
	return s.ledger.FetchPeers(ctx, self)
}
