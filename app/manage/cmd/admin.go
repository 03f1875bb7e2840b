package cmd

import (
	"errors"
	"fmt"
	"strings"
	"xmpp-homepage/app/server/models"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newSetAdminCmd(rt *Runtime) *cobra.Command {
	var revoke bool

	cmd := &cobra.Command{
		Use:   "set-admin <jid>",
		Short: "Grant or revoke access to the admin API",
		Long: `Grant a registered user access to the admin API.
The user has to log in again to get a token with the new permission.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := rt.DB()
			if err != nil {
				return err
			}
			db = db.WithContext(cmd.Context())

			username := strings.ToLower(strings.TrimSpace(args[0]))
			var user models.User
			if err = db.Where("username = ?", username).First(&user).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("user %s not found", username)
				}
				return fmt.Errorf("failed to get user: %w", err)
			}

			if err = db.Model(&user).Update("is_admin", !revoke).Error; err != nil {
				return fmt.Errorf("failed to update user: %w", err)
			}

			if revoke {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is no longer an admin.\n", user.Username)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin.\n", user.Username)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&revoke, "revoke", false, "Revoke admin permission instead of granting it")
	return cmd
}
