// Package cmd 实现站点的管理命令。
package cmd

import (
	"github.com/spf13/cobra"
)

func NewRootCmd(rt *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "manage",
		Short:        "Maintenance commands for the XMPP homepage",
		Long:         "Maintenance commands that share the configuration (config.yaml and environment) with the server and the worker.",
		SilenceUsage: true,
	}

	cmd.AddCommand(
		newMigrateCmd(rt),
		newSetAdminCmd(rt),
		newCleanupCmd(rt),
		newCheckDNSBLCmd(rt),
	)
	return cmd
}
