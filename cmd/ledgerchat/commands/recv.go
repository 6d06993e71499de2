package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ledgerchat/internal/domain"
)

// recv <peer>: fetch and decrypt the conversation with <peer>.
func recvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recv <peer>",
		Short: "Fetch and decrypt the conversation with a peer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			if _, err := appCtx.Identity.Unlock(cmd.Context()); err != nil {
				return err
			}
			peer := domain.Account(args[0])
			msgs, err := appCtx.Messages.History(cmd.Context(), peer)
			if err != nil {
				return err
			}
			if len(msgs) == 0 {
				fmt.Println("no messages")
				return nil
			}
			for _, m := range msgs {
				printMessage(m)
			}
			return nil
		},
	}
}

func printMessage(m domain.DecryptedMessage) {
	who := m.Sender.String()
	if m.Own {
		who = "you"
	}
	at := time.UnixMilli(m.AppTimestamp).Format(time.RFC3339)
	fmt.Printf("[%s] %s: %s\n", at, who, m.Plaintext)
}
