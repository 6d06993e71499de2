package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// peers: list accounts sharing a session with the bound account.
func peersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "peers",
		Short: "List accounts sharing a session with you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			peers, err := appCtx.Messages.Peers(cmd.Context())
			if err != nil {
				return err
			}
			if len(peers) == 0 {
				fmt.Println("no sessions yet")
				return nil
			}
			for _, p := range peers {
				fmt.Println(p)
			}
			return nil
		},
	}
}
