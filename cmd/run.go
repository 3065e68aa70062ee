package cmd

import (
	"fmt"

	"github.com/relloyd/tablesync/actions"
	"github.com/spf13/cobra"
)

var runCfg = actions.RunConfig{}
var runCmd = &cobra.Command{
	Use:   "run " + argsDefinitionTxt,
	Short: "Copy every base table of a source database to the target",
	Long: fmt.Sprintf(`Copy every base table of a source database to a Snowflake schema (or stdout):

- Tables are discovered using INFORMATION_SCHEMA and copied one at a time
- Column names are upper-cased and LOADED_AT_UTC is added to every row
- Each target table is replaced in full, so repeat runs are safe
- A table that fails is reported and the run carries on with the next one
- Use load-mode stage to bulk load via S3 and a Snowflake external stage
- Supported <source-connection>-<target-connection> combinations are:

%v
`, actions.GetSupportedRunConnectionTypes()),
	Args: getConnectionsArgsFunc(&runCfg.SourceString, &runCfg.TargetString, ""),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true // the args are valid so errors from here are not about usage.
		return runTableSync()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().SortFlags = false
	addFlagsRun(runCmd, &runCfg, "warn")
}

func runTableSync() error {
	runCfg.Connections = getConnectionHandler()
	runCfg.StackDumpOnPanic = stackDumpOnPanic
	// Get connection types.
	sourceType, err := runCfg.Connections.GetConnectionType(runCfg.SourceString.GetConnectionName())
	if err != nil {
		return err
	}
	targetType, err := runCfg.Connections.GetConnectionType(runCfg.TargetString.GetConnectionName())
	if err != nil {
		return err
	}
	return actions.ActionLauncher(&runCfg, actions.GetRunAction, sourceType, targetType)
}
