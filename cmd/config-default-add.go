package cmd

import (
	"fmt"

	"github.com/relloyd/tablesync/actions"
	"github.com/relloyd/tablesync/config"
	"github.com/spf13/cobra"
)

var defaultAddCfg = actions.DefaultAddConfig{}

var defaultAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Set the default value of a flag",
	Long: fmt.Sprintf(`Save a default flag value to config file %q.
The key must be the name of a flag, e.g. load-mode, and the value is then used by every command
that accepts the flag unless it is supplied on the command line.`, config.Main.FullPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		if err := validateDefaultKey(defaultAddCfg.Key); err != nil {
			return err
		}
		defaultAddCfg.ConfigFile = config.Main
		return actions.RunDefaultAdd(&defaultAddCfg)
	},
}

func init() {
	defaultCmd.AddCommand(defaultAddCmd)
	defaultAddCmd.Flags().SortFlags = false
	defaultAddCmd.Flags().StringVarP(&defaultAddCfg.Key, "key", "k", "", "* Name of the flag to set a default for")
	defaultAddCmd.Flags().StringVarP(&defaultAddCfg.Value, "value", "v", "", "* The default value")
	defaultAddCmd.Flags().BoolVarP(&defaultAddCfg.Force, "force", "f", false, "Overwrite an existing default")
	_ = defaultAddCmd.MarkFlagRequired("key")
	_ = defaultAddCmd.MarkFlagRequired("value")
}

// validateDefaultKey rejects keys that no command would read.
func validateDefaultKey(key string) error {
	if _, ok := switches[key]; !ok {
		return fmt.Errorf("unknown flag %q, defaults can only be set for flags such as %q", key, "load-mode")
	}
	return nil
}
