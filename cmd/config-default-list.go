package cmd

import (
	"fmt"

	"github.com/relloyd/tablesync/actions"
	"github.com/relloyd/tablesync/config"
	"github.com/spf13/cobra"
)

var defaultListCfg = actions.DefaultListConfig{}

var configDefaultListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Print all default flag values",
	Long: fmt.Sprintf(`List default flag values stored in config file %q
by printing them all to STDOUT`,
		config.Main.FullPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		defaultListCfg.ConfigFile = config.Main
		return actions.RunDefaultList(&defaultListCfg)
	},
}

func init() {
	defaultCmd.AddCommand(configDefaultListCmd)
}
