package cmd

import (
	"fmt"

	"github.com/relloyd/tablesync/actions"
	"github.com/relloyd/tablesync/config"
	"github.com/spf13/cobra"
)

var connRemoveCfg = actions.ConnectionConfig{}

var configConnRemoveCmd = &cobra.Command{
	Use:     "remove",
	Aliases: []string{"rm", "delete"},
	Short:   "Remove a saved connection",
	Long: fmt.Sprintf(`Remove a connection from the encrypted store %q.
Runs and schedules that refer to the connection by name will fail until it is added again.`, config.Connections.FullPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		connRemoveCfg.ConfigFile = getConnectionGetterSetter()
		return actions.RunConnectionRemove(&connRemoveCfg)
	},
}

func initConnRemove() {
	configConnCmd.AddCommand(configConnRemoveCmd)
	configConnRemoveCmd.Flags().StringVarP(&connRemoveCfg.LogicalName, "connection-name", "c", "", "* Name of the connection to remove")
	_ = configConnRemoveCmd.MarkFlagRequired("connection-name")
}
