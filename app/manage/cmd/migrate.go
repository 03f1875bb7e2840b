package cmd

import (
	"fmt"
	"xmpp-homepage/app/server/inits"

	"github.com/spf13/cobra"
)

func newMigrateCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := rt.DB()
			if err != nil {
				return err
			}
			if err = inits.Migrate(db.WithContext(cmd.Context())); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database migrated.")
			return nil
		},
	}
}
