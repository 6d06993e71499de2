package app

import (
	"net/http"
	"path/filepath"

	"ledgerchat/internal/domain"
	"ledgerchat/internal/keyring"
	"ledgerchat/internal/ledger"
	identitysvc "ledgerchat/internal/services/identity"
	messagesvc "ledgerchat/internal/services/message"
	sessionsvc "ledgerchat/internal/services/session"
	"ledgerchat/internal/wallet"
)

// Wire bundles all services and clients for the CLI.
type Wire struct {
	Ring     *keyring.Keyring
	Identity domain.IdentityService
	Sessions domain.SessionService
	Messages domain.MessageService
	Ledger   domain.LedgerClient
	HTTP     *http.Client
}

// NewWire constructs the dependency graph from cfg and binds the configured
// account.
func NewWire(cfg Config) (*Wire, error) {
	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	w := wallet.NewKeyfile(filepath.Join(cfg.Home, "wallet"), cfg.Passphrase)
	lc := ledger.NewHTTP(cfg.LedgerURL, httpClient)

	ring := keyring.New()
	if cfg.Account != "" {
		ring.Bind(domain.Account(cfg.Account))
	}

	identitySvc := identitysvc.New(lc, w, ring)
	sessionSvc := sessionsvc.New(lc, ring)
	messageSvc := messagesvc.New(lc, sessionSvc, ring, nil)

	return &Wire{
		Ring:     ring,
		Identity: identitySvc,
		Sessions: sessionSvc,
		Messages: messageSvc,
		Ledger:   lc,
		HTTP:     httpClient,
	}, nil
}
