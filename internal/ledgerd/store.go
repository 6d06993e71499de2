package ledgerd

import (
	"context"
	"errors"

	"ledgerchat/internal/domain"
)

// Store write-conflict sentinels, mapped to 409 by the server.
var (
	ErrDuplicateIdentity = errors.New("identity already registered")
	ErrDuplicateSession  = errors.New("session already established")
)

// Store is the ledger state behind the daemon. Implementations must make
// each method atomic: concurrent PutSession calls for one pair admit
// exactly one winner.
type Store interface {
	PutIdentity(ctx context.Context, rec domain.IdentityRecord) error
	GetIdentity(ctx context.Context, account domain.Account) (domain.IdentityRecord, bool, error)

	PutSession(ctx context.Context, rec domain.SessionRecord) error
	GetSession(ctx context.Context, a, b domain.Account) (domain.SessionRecord, bool, error)
	ListPeers(ctx context.Context, account domain.Account) ([]domain.Account, error)

	// AppendMessage assigns and returns the next ledger sequence.
	AppendMessage(ctx context.Context, rec domain.MessageRecord) (uint64, error)
	ListMessages(ctx context.Context, a, b domain.Account) ([]domain.MessageRecord, error)

	Close() error
}
