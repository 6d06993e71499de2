package app

import "net/http"

// Config holds runtime wiring options for building the app.
type Config struct {
	Home       string       // config directory, e.g. $HOME/.ledgerchat
	LedgerURL  string       // ledger node base URL, e.g. http://127.0.0.1:8545
	Account    string       // ledger account to bind
	Passphrase string       // wallet keyfile passphrase
	HTTP       *http.Client // optional; defaults to http.DefaultClient
}
