package commands

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ledgerchat/internal/domain"
)

// watch <peer>: follow the conversation with <peer>, printing new messages
// as they land on the ledger.
func watchCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch <peer>",
		Short: "Follow a conversation, printing new messages as they land",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if _, err := appCtx.Identity.Unlock(ctx); err != nil {
				return err
			}
			peer := domain.Account(args[0])

			// Print the existing history, then follow from its tail.
			history, err := appCtx.Messages.History(ctx, peer)
			if err != nil {
				return err
			}
			var after uint64
			for _, m := range history {
				printMessage(m)
				if m.Sequence > after {
					after = m.Sequence
				}
			}

			ch, err := appCtx.Messages.Watch(ctx, peer, interval, after)
			if err != nil {
				return err
			}
			for m := range ch {
				printMessage(m)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "poll interval")
	return cmd
}
