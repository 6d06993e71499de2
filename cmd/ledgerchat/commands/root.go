package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ledgerchat/internal/app"
)

var (
	home       string
	account    string
	passphrase string
	ledgerURL  string

	appCtx *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:   "ledgerchat",
		Short: "End-to-end encrypted chat over a public ledger",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".ledgerchat")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}
			if account == "" {
				return fmt.Errorf("account required (--account)")
			}

			var err error
			appCtx, err = app.NewWire(app.Config{
				Home:       home,
				LedgerURL:  ledgerURL,
				Account:    account,
				Passphrase: passphrase,
			})
			return err
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.ledgerchat)")
	root.PersistentFlags().StringVar(&account, "account", "", "ledger account address")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "wallet keyfile passphrase")
	root.PersistentFlags().StringVar(&ledgerURL, "ledger", "http://127.0.0.1:8545", "ledger node base URL")

	root.AddCommand(
		registerCmd(), unlockCmd(), whoamiCmd(),
		startChatCmd(), peersCmd(),
		sendCmd(), recvCmd(), watchCmd(),
	)
	return root.Execute()
}

// requirePassphrase guards commands that touch the wallet keyfile.
func requirePassphrase() error {
	if passphrase == "" {
		return fmt.Errorf("passphrase required (-p)")
	}
	return nil
}
