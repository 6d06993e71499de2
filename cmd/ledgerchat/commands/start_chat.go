package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"ledgerchat/internal/domain"
)

// start-chat <peer>: establish an encrypted session with <peer>.
func startChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start-chat <peer>",
		Short: "Establish an encrypted session with a peer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			if _, err := appCtx.Identity.Unlock(cmd.Context()); err != nil {
				return err
			}
			peer := domain.Account(args[0])
			if err := appCtx.Sessions.Establish(cmd.Context(), peer); err != nil {
				return err
			}
			fmt.Printf("session ready with %s\n", peer)
			return nil
		},
	}
}
