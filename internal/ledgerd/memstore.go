package ledgerd

import (
	"context"
	"sort"
	"sync"

	"ledgerchat/internal/domain"
)

// MemStore keeps all ledger state in memory. State is lost on process exit.
type MemStore struct {
	mu         sync.Mutex
	identities map[domain.Account]domain.IdentityRecord
	sessions   map[string]domain.SessionRecord
	messages   []domain.MessageRecord
	sequence   uint64
}

func NewMemStore() *MemStore {
	return &MemStore{
		identities: make(map[domain.Account]domain.IdentityRecord),
		sessions:   make(map[string]domain.SessionRecord),
	}
}

var _ Store = (*MemStore)(nil)

func (s *MemStore) PutIdentity(_ context.Context, rec domain.IdentityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.identities[rec.Account]; exists {
		return ErrDuplicateIdentity
	}
	rec.Registered = true
	s.identities[rec.Account] = rec
	return nil
}

func (s *MemStore) GetIdentity(_ context.Context, account domain.Account) (domain.IdentityRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.identities[account]
	return rec, ok, nil
}

func (s *MemStore) PutSession(_ context.Context, rec domain.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := domain.PairKey(rec.Initiator, rec.Peer)
	if _, exists := s.sessions[key]; exists {
		return ErrDuplicateSession
	}
	s.sessions[key] = rec
	return nil
}

func (s *MemStore) GetSession(_ context.Context, a, b domain.Account) (domain.SessionRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[domain.PairKey(a, b)]
	return rec, ok, nil
}

func (s *MemStore) ListPeers(_ context.Context, account domain.Account) ([]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var peers []domain.Account
	for _, rec := range s.sessions {
		switch account {
		case rec.Initiator:
			peers = append(peers, rec.Peer)
		case rec.Peer:
			peers = append(peers, rec.Initiator)
		}
	}
	sort.Slice(peers, func(i, j int) bool { return peers[i] < peers[j] })
	return peers, nil
}

func (s *MemStore) AppendMessage(_ context.Context, rec domain.MessageRecord) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequence++
	rec.Sequence = s.sequence
	s.messages = append(s.messages, rec)
	return rec.Sequence, nil
}

func (s *MemStore) ListMessages(_ context.Context, a, b domain.Account) ([]domain.MessageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.MessageRecord
	for _, m := range s.messages {
		if (m.Sender == a && m.Recipient == b) || (m.Sender == b && m.Recipient == a) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *MemStore) Close() error { return nil }
