package cmd

import (
	"fmt"

	"github.com/relloyd/tablesync/actions"
	"github.com/relloyd/tablesync/config"
	"github.com/relloyd/tablesync/constants"
	"github.com/relloyd/tablesync/rdbms"
	"github.com/relloyd/tablesync/rdbms/shared"
	"github.com/spf13/cobra"
)

var configConnSnowflakeCfg = &actions.ConnectionConfig{}
var snowflakeConn = shared.DsnConnectionDetails{}

var configConnAddSnowflakeCmd = &cobra.Command{
	Use:   "snowflake",
	Short: "Add a Snowflake connection",
	Long: fmt.Sprintf(`Add a Snowflake connection to the config store %q
by providing a DSN of the form:

snowflake://<user>:<password>@<account>/<database>/<schema>?warehouse=<warehouse>&role=<role>

The database and schema are used as the default target for the run command.
`,
		config.Connections.FullPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		if _, err := rdbms.SnowflakeParseDSN(snowflakeConn.Dsn); err != nil { // if the DSN is not understood by the driver...
			return err
		}
		configConnSnowflakeCfg.Type = constants.ConnectionTypeSnowflake
		configConnSnowflakeCfg.ConfigFile = getConnectionGetterSetter()
		configConnSnowflakeCfg.ConnDetails = &snowflakeConn
		return actions.RunConnectionAdd(configConnSnowflakeCfg)
	},
}

func initConnAddSnowflake() {
	configConnAddCmd.AddCommand(configConnAddSnowflakeCmd)
	configConnAddSnowflakeCmd.Flags().SortFlags = false
	switches.addFlag(configConnAddSnowflakeCmd, &configConnSnowflakeCfg.LogicalName, "connection-name", "", true, "")
	switches.addFlag(configConnAddSnowflakeCmd, &configConnSnowflakeCfg.Force, "force-connection", "", false, "")
	switches.addFlag(configConnAddSnowflakeCmd, &snowflakeConn.Dsn, "dsn", "", true, "")
}
