package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"ledgerchat/internal/domain"
)

// send <peer> <message>: encrypt and send a message to <peer>.
func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <peer> <message>",
		Short: "Encrypt and send a message to a peer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			if _, err := appCtx.Identity.Unlock(cmd.Context()); err != nil {
				return err
			}
			peer := domain.Account(args[0])
			seq, err := appCtx.Messages.Send(cmd.Context(), peer, []byte(args[1]))
			if err != nil {
				return err
			}
			fmt.Printf("sent (sequence %d)\n", seq)
			return nil
		},
	}
}
