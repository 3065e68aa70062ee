package cmd

import (
	"fmt"
	"net"
	"strconv"

	"github.com/relloyd/tablesync/actions"
	"github.com/relloyd/tablesync/constants"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve " + argsDefinitionTxt,
	Short: "Start a web service to run the table sync on demand or on a schedule",
	Long: `Start a web service that runs the table sync between the supplied source and target.
Only one run is allowed at a time. The following endpoints are available:

  POST /runs                  start a run
  GET  /runs                  list runs
  GET  /runs/<run id>         fetch the status and report of a run
  GET  /runs/<run id>/stats   fetch the progress of a run
  POST /runs/<run id>/stop    cancel a run after its current table
  GET  /health                check the service is up
  GET  /stop                  stop the web service

Supply a cron expression using the schedule flag to start runs automatically.
Scheduled runs are skipped while another run is in progress.`,
	Args: getConnectionsArgsFunc(&serveRunCfg.SourceString, &serveRunCfg.TargetString, ""),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runServe()
	},
}

var serveRunCfg = actions.RunConfig{}
var serveCfg = actions.WebServerConfig{Scheme: "http"}
var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().SortFlags = false
	switches.addFlag(serveCmd, &serveCfg.Port, "port", strconv.Itoa(constants.WebServerPortDefault), false, "")
	switches.addFlag(serveCmd, &serveAddr, "address", constants.WebServerAddrDefault, false, "")
	switches.addFlag(serveCmd, &serveCfg.Schedule, "schedule", "", false, "")
	addFlagsRun(serveCmd, &serveRunCfg, "info")
}

func runServe() error {
	serveRunCfg.Connections = getConnectionHandler()
	serveRunCfg.StackDumpOnPanic = stackDumpOnPanic
	addr := net.ParseIP(serveAddr)
	if addr == nil {
		return fmt.Errorf("invalid address %q", serveAddr)
	}
	// Check the combination of connection types is supported.
	sourceType, err := serveRunCfg.Connections.GetConnectionType(serveRunCfg.SourceString.GetConnectionName())
	if err != nil {
		return err
	}
	targetType, err := serveRunCfg.Connections.GetConnectionType(serveRunCfg.TargetString.GetConnectionName())
	if err != nil {
		return err
	}
	if _, err = actions.GetRunAction(sourceType, targetType); err != nil {
		return err
	}
	// Resolve the run config once; every run started by the server shares it.
	tsCfg := &actions.TableSyncConfig{}
	if err = actions.SetupTableSync(&serveRunCfg, tsCfg); err != nil {
		return err
	}
	serveCfg.Addr = addr
	serveCfg.Run = tsCfg
	serveCfg.LogLevel = serveRunCfg.LogLevel
	serveCfg.StatsDumpFrequencySeconds = serveRunCfg.StatsDumpFrequency
	serveCfg.StackDumpOnPanic = stackDumpOnPanic
	return actions.RunWebServer(&serveCfg)
}
