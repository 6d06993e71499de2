package ledgerd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"ledgerchat/internal/domain"
)

// SQLiteStore implements Store on a SQLite database, giving the dev ledger
// durability across restarts.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at dbPath.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL for concurrent readers during writes.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

var _ Store = (*SQLiteStore)(nil)

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS identities (
		account TEXT PRIMARY KEY,
		public_key_parity INTEGER NOT NULL,
		public_key_x BLOB NOT NULL,
		wrapped_secret BLOB NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sessions (
		pair_key TEXT PRIMARY KEY,
		initiator TEXT NOT NULL,
		peer TEXT NOT NULL,
		cipher_for_initiator BLOB NOT NULL,
		cipher_for_peer BLOB NOT NULL,
		receipt TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_initiator ON sessions(initiator);
	CREATE INDEX IF NOT EXISTS idx_sessions_peer ON sessions(peer);

	CREATE TABLE IF NOT EXISTS messages (
		sequence INTEGER PRIMARY KEY AUTOINCREMENT,
		sender TEXT NOT NULL,
		recipient TEXT NOT NULL,
		ciphertext BLOB NOT NULL,
		app_timestamp INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(sender, recipient);
	`
	_, err := s.db.Exec(query)
	return err
}

func (s *SQLiteStore) PutIdentity(ctx context.Context, rec domain.IdentityRecord) error {
	parity := 0
	if rec.PublicKeyParity {
		parity = 1
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO identities (account, public_key_parity, public_key_x, wrapped_secret, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.Account.String(), parity, rec.PublicKeyX[:], rec.WrappedSecret, time.Now().Unix())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDuplicateIdentity
	}
	return nil
}

func (s *SQLiteStore) GetIdentity(ctx context.Context, account domain.Account) (domain.IdentityRecord, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT public_key_parity, public_key_x, wrapped_secret FROM identities WHERE account = ?`,
		account.String())

	var parity int
	var x, wrapped []byte
	if err := row.Scan(&parity, &x, &wrapped); errors.Is(err, sql.ErrNoRows) {
		return domain.IdentityRecord{}, false, nil
	} else if err != nil {
		return domain.IdentityRecord{}, false, err
	}

	rec := domain.IdentityRecord{
		Account:         account,
		PublicKeyParity: parity == 1,
		WrappedSecret:   wrapped,
		Registered:      true,
	}
	copy(rec.PublicKeyX[:], x)
	return rec, true, nil
}

func (s *SQLiteStore) PutSession(ctx context.Context, rec domain.SessionRecord) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO sessions (pair_key, initiator, peer, cipher_for_initiator, cipher_for_peer, receipt, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		domain.PairKey(rec.Initiator, rec.Peer), rec.Initiator.String(), rec.Peer.String(),
		rec.CipherForInitiator, rec.CipherForPeer, rec.Receipt.String(), time.Now().Unix())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDuplicateSession
	}
	return nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, a, b domain.Account) (domain.SessionRecord, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT initiator, peer, cipher_for_initiator, cipher_for_peer, receipt FROM sessions WHERE pair_key = ?`,
		domain.PairKey(a, b))

	var rec domain.SessionRecord
	var initiator, peer, receipt string
	err := row.Scan(&initiator, &peer, &rec.CipherForInitiator, &rec.CipherForPeer, &receipt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SessionRecord{}, false, nil
	} else if err != nil {
		return domain.SessionRecord{}, false, err
	}
	rec.Initiator = domain.Account(initiator)
	rec.Peer = domain.Account(peer)
	rec.Receipt = domain.Receipt(receipt)
	return rec, true, nil
}

func (s *SQLiteStore) ListPeers(ctx context.Context, account domain.Account) ([]domain.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT initiator, peer FROM sessions WHERE initiator = ? OR peer = ? ORDER BY created_at`,
		account.String(), account.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var peers []domain.Account
	for rows.Next() {
		var initiator, peer string
		if err := rows.Scan(&initiator, &peer); err != nil {
			return nil, err
		}
		if domain.Account(initiator) == account {
			peers = append(peers, domain.Account(peer))
		} else {
			peers = append(peers, domain.Account(initiator))
		}
	}
	return peers, rows.Err()
}

func (s *SQLiteStore) AppendMessage(ctx context.Context, rec domain.MessageRecord) (uint64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (sender, recipient, ciphertext, app_timestamp) VALUES (?, ?, ?, ?)`,
		rec.Sender.String(), rec.Recipient.String(), rec.Ciphertext, rec.AppTimestamp)
	if err != nil {
		return 0, err
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(seq), nil
}

func (s *SQLiteStore) ListMessages(ctx context.Context, a, b domain.Account) ([]domain.MessageRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sequence, sender, recipient, ciphertext, app_timestamp FROM messages
		 WHERE (sender = ? AND recipient = ?) OR (sender = ? AND recipient = ?)
		 ORDER BY sequence`,
		a.String(), b.String(), b.String(), a.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MessageRecord
	for rows.Next() {
		var rec domain.MessageRecord
		var sender, recipient string
		if err := rows.Scan(&rec.Sequence, &sender, &recipient, &rec.Ciphertext, &rec.AppTimestamp); err != nil {
			return nil, err
		}
		rec.Sender = domain.Account(sender)
		rec.Recipient = domain.Account(recipient)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
