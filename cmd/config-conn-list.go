package cmd

import (
	"fmt"

	"github.com/relloyd/tablesync/actions"
	"github.com/relloyd/tablesync/config"
	"github.com/relloyd/tablesync/constants"
	"github.com/spf13/cobra"
)

var connListCfg = actions.ConnectionListConfig{}

var configConnListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Print all connections",
	Long: fmt.Sprintf(`List connections stored in config store %q
by printing them all to STDOUT with passwords redacted`,
		config.Connections.FullPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		connListCfg.ConfigFile = config.Connections
		return actions.RunConnectionList(&connListCfg)
	},
}

func initConnList() {
	configConnCmd.AddCommand(configConnListCmd)
	switches.addFlag(configConnListCmd, &connListCfg.Output, "output", constants.OutputFormatText, false, "")
}
