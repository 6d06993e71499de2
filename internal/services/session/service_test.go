package session

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerchat/internal/domain"
	"ledgerchat/internal/keyring"
	"ledgerchat/internal/ledger"
	"ledgerchat/internal/ledgerd"
	"ledgerchat/internal/services/identity"
)

type fakeWallet struct{}

func (fakeWallet) Encrypt(_ context.Context, account domain.Account, plaintext []byte) ([]byte, error) {
	return append([]byte(account.String()+":"), plaintext...), nil
}

func (fakeWallet) Decrypt(_ context.Context, account domain.Account, ciphertext []byte) ([]byte, error) {
	prefix := []byte(account.String() + ":")
	if !bytes.HasPrefix(ciphertext, prefix) {
		return nil, domain.ErrUnwrapCorrupted
	}
	return ciphertext[len(prefix):], nil
}

// party is one registered account with its own keyring and services.
type party struct {
	ring     *keyring.Keyring
	sessions *Service
}

func newLedger(t *testing.T) domain.LedgerClient {
	t.Helper()
	srv := ledgerd.NewServer(ledgerd.NewMemStore(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ledger.NewHTTP(ts.URL, ts.Client())
}

func newParty(t *testing.T, led domain.LedgerClient, account domain.Account) party {
	t.Helper()
	ring := keyring.New()
	ring.Bind(account)
	_, _, err := identity.New(led, fakeWallet{}, ring).Register(context.Background())
	require.NoError(t, err)
	return party{ring: ring, sessions: New(led, ring)}
}

func TestEstablishSharesOneSecret(t *testing.T) {
	led := newLedger(t)
	ctx := context.Background()
	alice := newParty(t, led, "0xalice")
	bob := newParty(t, led, "0xbob")

	require.NoError(t, alice.sessions.Establish(ctx, "0xbob"))

	sa, err := alice.sessions.Secret(ctx, "0xbob")
	require.NoError(t, err)
	sb, err := bob.sessions.Secret(ctx, "0xalice")
	require.NoError(t, err)
	assert.Equal(t, sa, sb, "both parties must open the same session secret")
	assert.NotEqual(t, domain.SessionSecret{}, sa)
}

func TestEstablishIsIdempotent(t *testing.T) {
	led := newLedger(t)
	ctx := context.Background()
	alice := newParty(t, led, "0xalice")
	newParty(t, led, "0xbob")

	require.NoError(t, alice.sessions.Establish(ctx, "0xbob"))
	first, err := alice.sessions.Secret(ctx, "0xbob")
	require.NoError(t, err)

	require.NoError(t, alice.sessions.Establish(ctx, "0xbob"))
	second, err := alice.sessions.Secret(ctx, "0xbob")
	require.NoError(t, err)
	assert.Equal(t, first, second, "re-establishing must not rotate the secret")
}

func TestEstablishAdoptsExistingLedgerSession(t *testing.T) {
	led := newLedger(t)
	ctx := context.Background()
	alice := newParty(t, led, "0xalice")
	bob := newParty(t, led, "0xbob")

	require.NoError(t, alice.sessions.Establish(ctx, "0xbob"))

	// Bob also calls Establish rather than Secret; he must adopt, not fail.
	require.NoError(t, bob.sessions.Establish(ctx, "0xalice"))
	sa, err := alice.sessions.Secret(ctx, "0xbob")
	require.NoError(t, err)
	sb, err := bob.sessions.Secret(ctx, "0xalice")
	require.NoError(t, err)
	assert.Equal(t, sa, sb)
}

func TestConcurrentEstablishConverges(t *testing.T) {
	led := newLedger(t)
	ctx := context.Background()
	alice := newParty(t, led, "0xalice")
	bob := newParty(t, led, "0xbob")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() { defer wg.Done(); errs[0] = alice.sessions.Establish(ctx, "0xbob") }()
	go func() { defer wg.Done(); errs[1] = bob.sessions.Establish(ctx, "0xalice") }()
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	sa, err := alice.sessions.Secret(ctx, "0xbob")
	require.NoError(t, err)
	sb, err := bob.sessions.Secret(ctx, "0xalice")
	require.NoError(t, err)
	assert.Equal(t, sa, sb, "the race loser must adopt the winner's secret")

	rec, ok, err := led.FetchSession(ctx, "0xalice", "0xbob")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, rec.Receipt)
}

func TestEstablishPeerNotRegistered(t *testing.T) {
	led := newLedger(t)
	alice := newParty(t, led, "0xalice")

	err := alice.sessions.Establish(context.Background(), "0xghost")
	require.ErrorIs(t, err, domain.ErrPeerNotRegistered)
}

func TestSecretWithoutSession(t *testing.T) {
	led := newLedger(t)
	alice := newParty(t, led, "0xalice")
	newParty(t, led, "0xbob")

	_, err := alice.sessions.Secret(context.Background(), "0xbob")
	require.ErrorIs(t, err, domain.ErrNoSession)
}

func TestEstablishNeedsUnlockedIdentity(t *testing.T) {
	led := newLedger(t)
	newParty(t, led, "0xbob")

	// Bound but never registered or unlocked.
	ring := keyring.New()
	ring.Bind("0xalice")
	svc := New(led, ring)

	err := svc.Establish(context.Background(), "0xbob")
	require.ErrorIs(t, err, domain.ErrIdentityLocked)
}
