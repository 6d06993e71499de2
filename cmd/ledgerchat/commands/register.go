package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// register: create an identity key and publish it on the ledger.
func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Create an identity key and publish it on the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			rec, receipt, err := appCtx.Identity.Register(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("registered %s\nreceipt: %s\n", rec.Account, receipt)
			return nil
		},
	}
}
