package cmd

import (
	"fmt"

	"github.com/relloyd/tablesync/actions"
	"github.com/relloyd/tablesync/config"
	"github.com/relloyd/tablesync/constants"
	"github.com/relloyd/tablesync/rdbms/shared"
	"github.com/spf13/cobra"
)

// dsnConnAdd holds the flag values for a connection type that is saved as a plain DSN.
type dsnConnAdd struct {
	cfg  actions.ConnectionConfig
	conn shared.DsnConnectionDetails
}

// newConfigConnAddDsnCmd returns a command to add a connection of type connType.
// The help text is formed by adding the config file path to longFmt.
func newConfigConnAddDsnCmd(connType string, short string, longFmt string) *cobra.Command {
	d := &dsnConnAdd{}
	c := &cobra.Command{
		Use:   connType,
		Short: short,
		Long:  fmt.Sprintf(longFmt, config.Connections.FullPath),
		RunE: func(cmd *cobra.Command, args []string) error {
			d.cfg.Type = connType
			d.cfg.ConfigFile = getConnectionGetterSetter()
			d.cfg.ConnDetails = &d.conn
			cmd.SilenceUsage = true
			return actions.RunConnectionAdd(&d.cfg)
		},
	}
	c.Flags().SortFlags = false
	switches.addFlag(c, &d.cfg.LogicalName, "connection-name", "", true, "")
	switches.addFlag(c, &d.cfg.Force, "force-connection", "", false, "")
	switches.addFlag(c, &d.conn.Dsn, "dsn", "", true, "")
	return c
}

func initConnAddDsn() {
	configConnAddCmd.AddCommand(newConfigConnAddDsnCmd(constants.ConnectionTypeSqlServer,
		"Add a SQL Server connection",
		`Add SQL Server database connection to the config store %q
by providing a DSN of the form:

sqlserver://<user>:<pass>@<host>[:<port>][/<instance>]?database=<dbname>[&<opt1>=<value1>&...]

The database is used as the default source database for the run and discover commands.
`))
	configConnAddCmd.AddCommand(newConfigConnAddDsnCmd(constants.ConnectionTypePostgres,
		"Add a PostgreSQL connection",
		`Add PostgreSQL database connection to the config store %q
by providing a DSN of the form:

postgres://<user>:<pass>@<host>[:<port>]/<dbname>[?sslmode=disable&<opt1>=<value1>&...]

The database is used as the default source database for the run and discover commands.
`))
	configConnAddCmd.AddCommand(newConfigConnAddDsnCmd(constants.ConnectionTypeMySql,
		"Add a MySQL connection",
		`Add MySQL database connection to the config store %q
by providing a DSN of the form:

mysql://<user>:<pass>@<host>[:<port>]/<dbname>[?<opt1>=<value1>&...]

The database is used as the default source database for the run and discover commands.
`))
}
