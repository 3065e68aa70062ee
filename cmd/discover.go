package cmd

import (
	"fmt"

	"github.com/relloyd/tablesync/actions"
	"github.com/relloyd/tablesync/constants"
	"github.com/spf13/cobra"
)

var discoverCfg = actions.DiscoverGenericConfig{}
var discoverCmd = &cobra.Command{
	Use:   "discover <source-connection>[.<database>]",
	Short: "List the base tables that a run would copy",
	Long: fmt.Sprintf(`List the base tables found in the source database without copying any data.
Use the same table-filter and tables flags as the run command to check which tables will be copied.
Supported source connection types are: %v
`, actions.GetSupportedSourceConnectionTypes()),
	Args: getConnectionArgsFunc(&discoverCfg.SourceString, "requires source <connection>[.<database>]"),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runDiscover()
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.Flags().SortFlags = false
	switches.addFlag(discoverCmd, &discoverCfg.SourceDatabase, "source-database", "", false, "")
	switches.addFlag(discoverCmd, &discoverCfg.TableFilter, "table-filter", "", false, "")
	switches.addFlag(discoverCmd, &discoverCfg.Tables, "tables", "", false, "")
	switches.addFlag(discoverCmd, &discoverCfg.Output, "output", constants.OutputFormatText, false, "")
	switches.addFlag(discoverCmd, &discoverCfg.LogLevel, "log-level", "error", false, "")
}

func runDiscover() error {
	discoverCfg.Connections = getConnectionHandler()
	discoverCfg.StackDumpOnPanic = stackDumpOnPanic
	sourceType, err := discoverCfg.Connections.GetConnectionType(discoverCfg.SourceString.GetConnectionName())
	if err != nil {
		return err
	}
	return actions.ActionLauncher(&discoverCfg, actions.GetDiscoverAction, sourceType, "")
}
