package cmd

import (
	"fmt"
	"time"
	"xmpp-homepage/app/worker/handlers"

	"github.com/spf13/cobra"
)

func newCleanupCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired confirmations, old log entries and unconfirmed users",
		Long:  "Run the same cleanup the worker runs periodically, once.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rt.Config()
			if err != nil {
				return err
			}
			db, err := rt.DB()
			if err != nil {
				return err
			}

			res, err := handlers.Cleanup(cmd.Context(), db, cfg, time.Now())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Deleted %d expired confirmations.\n", res.Confirmations)
			fmt.Fprintf(out, "Deleted %d log entries.\n", res.LogEntries)
			fmt.Fprintf(out, "Deleted %d unconfirmed users.\n", res.Users)
			return nil
		},
	}
}
