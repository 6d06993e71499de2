package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// whoami: print the bound account and its registration state.
func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the bound account and registration state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registered, err := appCtx.Identity.Registered(cmd.Context())
			if err != nil {
				return err
			}
			state := "unregistered"
			if registered {
				state = "registered"
			}
			fmt.Printf("%s (%s)\n", account, state)
			return nil
		},
	}
}
