package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// unlock: recover the identity key through the wallet and print its
// fingerprint.
func unlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock",
		Short: "Recover the identity key through the wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			fp, err := appCtx.Identity.Unlock(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("unlocked %s\nfingerprint: %s\n", account, fp)
			return nil
		},
	}
}
