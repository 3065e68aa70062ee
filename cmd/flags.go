package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/relloyd/tablesync/actions"
	"github.com/relloyd/tablesync/config"
	"github.com/relloyd/tablesync/constants"
	"github.com/relloyd/tablesync/helper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	argsDefinitionTxt = "<source-connection>[.<database>] <target-connection>[.<schema>]"
)

type cliFlag struct {
	name      string // name of flag
	val       string // default value
	shortHand string // single character name for the flag
	desc      string // description of the flag; the long text
}

type cliFlags map[string]cliFlag

var switches = cliFlags{
	"mock": cliFlag{name: "mock", shortHand: "m", desc: "mock switch for testing"},
	// Run.
	"source-database": cliFlag{name: "source-database", shortHand: "D",
		desc: "The source database (catalog) to copy. Takes priority over <source-connection>.<database>\n" +
			"and the database found in the source DSN"},
	"target-database": cliFlag{name: "target-database", shortHand: "T",
		desc: "The Snowflake database to load. Leave blank to use the database in the target DSN"},
	"target-schema": cliFlag{name: "target-schema", shortHand: "z",
		desc: "The Snowflake schema to load. Takes priority over <target-connection>.<schema>\n" +
			"and the schema found in the target DSN"},
	"load-mode": cliFlag{name: "load-mode", shortHand: "m",
		desc: "How rows reach Snowflake: \"insert\" uses batched INSERT statements;\n" +
			"\"stage\" writes gzipped CSV files to S3 and runs COPY INTO"},
	"batch-size": cliFlag{name: "batch-size", shortHand: "b",
		desc: "Number of rows combined into a single INSERT statement (load-mode insert)"},
	"stage": cliFlag{name: "stage", shortHand: "s",
		desc: "The external Snowflake stage name to load data from. Required by load-mode stage"},
	"s3-connection": cliFlag{name: "s3-connection", shortHand: "B",
		desc: "The S3 bucket connection in which to write CSV files. Required by load-mode stage\n" +
			"(set AWS environment variables for access)"},
	"csv-rows": cliFlag{name: "csv-rows", shortHand: "r",
		desc: "Max number of rows to store in a single CSV file (0 for unlimited)"},
	"table-filter": cliFlag{name: "table-filter", shortHand: "f",
		desc: "A JSON Logic rule applied to {\"schema\": ..., \"table\": ...} that must be true\n" +
			"for a table to be copied"},
	"tables": cliFlag{name: "tables", shortHand: "t",
		desc: "The CSV list of tables to copy, using <table> or <schema>.<table> (case insensitive)"},
	"retries": cliFlag{name: "retries", shortHand: "R",
		desc: "Number of times to retry the extract or load of a table after an error"},
	"retry-backoff": cliFlag{name: "retry-backoff", shortHand: "w",
		desc: "Number of seconds to wait before the first retry, doubled for each retry after that"},
	"output": cliFlag{name: "output", shortHand: "o",
		desc: "Output format: \"text\", \"json\" or \"yaml\""},
	"fail-on-error": cliFlag{name: "fail-on-error", shortHand: "e",
		desc: "Exit with an error if any table failed"},
	"log-level": cliFlag{name: "log-level", shortHand: "l",
		desc: "Log level: \"error | warn | info | debug\""},
	"stats": cliFlag{name: "stats", shortHand: "L",
		desc: "Number of seconds between logging run statistics (use 0 to disable)"},
	// Serve.
	"port": cliFlag{name: "port", shortHand: "p",
		desc: "Port to listen on"},
	"address": cliFlag{name: "address", shortHand: "a",
		desc: "Address to listen on"},
	"schedule": cliFlag{name: "schedule", shortHand: "c",
		desc: "Optional cron expression used to start runs e.g. \"0 2 * * *\" or \"@every 6h\""},
	// Query.
	"dry-run": cliFlag{name: "dry-run", shortHand: "d",
		desc: "Print the SQL query without executing it"},
	"print-header": cliFlag{name: "print-header", shortHand: "x",
		desc: "Print a header for SQL query results"},
	// Create stage.
	"s3-url": cliFlag{name: "s3-url", shortHand: "u",
		desc: "AWS S3 bucket URL to be added to a new STAGE object. Use format: s3://<bucket>[/<prefix>/]"},
	"s3-key": cliFlag{name: "s3-key", shortHand: "K",
		desc: "AWS IAM user key that can access the bucket (or set AWS_ACCESS_KEY_ID)"},
	"s3-secret": cliFlag{name: "s3-secret", shortHand: "S",
		desc: "AWS IAM user secret that can access the bucket (or set AWS_SECRET_ACCESS_KEY)"},
	"execute-ddl": cliFlag{name: "execute-ddl", shortHand: "e",
		desc: "Execute the generated DDL against the target connection (otherwise it's printed only)"},
	// Connections.
	"connection-name": cliFlag{name: "connection-name", shortHand: "c",
		desc: "Connection name referred to by commands"},
	"dsn": cliFlag{name: "dsn", shortHand: "d",
		desc: "Connect string (DSN) to parse"},
	"force-connection": cliFlag{name: "force", shortHand: "f",
		desc: "Allow overwrite of existing connections"},
	"s3-dsn": cliFlag{name: "dsn", shortHand: "d",
		desc: "DSN of the form s3://<bucket name>/<prefix> (takes priority over individual flags)"},
	"s3-bucket": cliFlag{name: "s3-bucket", shortHand: "b",
		desc: "AWS S3 bucket name"},
	"s3-prefix": cliFlag{name: "s3-prefix", shortHand: "P",
		desc: "AWS S3 bucket prefix"},
	"s3-region": cliFlag{name: "s3-region", shortHand: "R",
		desc: "AWS S3 bucket region"},
}

// addFlag binds the registered flag name to targetVar, which must be a *string, *bool or *int.
// The default comes from getCliFlag. In twelveFactorMode no cobra flag is created and targetVar is set directly.
// desc2 is appended to the registered description.
func (f *cliFlags) addFlag(c *cobra.Command, targetVar interface{}, name string, defaultValue string, required bool, desc2 string) {
	sw := f.getCliFlag(name, defaultValue, config.Main.Get)
	if twelveFactorMode {
		if err := assignFlagValue(targetVar, sw.val); err != nil {
			fmt.Printf("Error: %v %v\n", flagNameToEnvVar(name), err)
			os.Exit(1)
		}
		return
	}
	fs := c.Flags()
	desc := sw.desc + desc2
	switch p := targetVar.(type) {
	case *string:
		fs.StringVarP(p, sw.name, sw.shortHand, "", desc)
	case *bool:
		fs.BoolVarP(p, sw.name, sw.shortHand, false, desc)
	case *int:
		fs.IntVarP(p, sw.name, sw.shortHand, 0, desc)
	default:
		panic(fmt.Sprintf("unhandled target type %T for CLI flag %q", targetVar, name))
	}
	// Set the resolved default through pflag so it is validated and shown as the default in help.
	if sw.val != "" {
		mustSetFlag(fs, sw.name, sw.val)
		fs.Lookup(sw.name).DefValue = sw.val
	}
	if required {
		_ = c.MarkFlagRequired(sw.name)
	}
}

// assignFlagValue converts val into the type of targetVar.
// Any bool value other than empty or false is true.
func assignFlagValue(targetVar interface{}, val string) error {
	switch p := targetVar.(type) {
	case *string:
		*p = val
	case *bool:
		*p = val != "" && strings.ToLower(val) != "false"
	case *int:
		if val == "" {
			*p = 0
			return nil
		}
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("must be an integer: %w", err)
		}
		*p = i
	default:
		return fmt.Errorf("unhandled target type %T", targetVar)
	}
	return nil
}

// getCliFlag resolves the value of flag name from the environment in twelveFactorMode,
// otherwise from the Main config file. defaultValue applies when neither has a value.
func (f *cliFlags) getCliFlag(name string, defaultValue string, fnGetConfig func(key string, out interface{}) error) cliFlag {
	s, ok := switches[name]
	if !ok {
		panic(fmt.Sprintf("unregistered CLI flag, %q", name))
	}
	var err error
	if twelveFactorMode {
		err = helper.ReadValueFromEnv(flagNameToEnvVar(name), &s.val)
	} else {
		err = fnGetConfig(s.name, &s.val)
	}
	if err != nil || s.val == "" {
		s.val = defaultValue
	}
	return s
}

// flagNameToEnvVar will form a sanitised environment variable name using constants.EnvVarPrefix.
func flagNameToEnvVar(name string) string {
	return constants.EnvVarPrefix + "_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func mustSetFlag(f *pflag.FlagSet, name string, val string) {
	if err := f.Set(name, val); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// addFlagsRun adds the flags shared by the run and serve commands.
func addFlagsRun(c *cobra.Command, cfg *actions.RunConfig, logLevelDefault string) {
	switches.addFlag(c, &cfg.SourceDatabase, "source-database", "", false, "")
	switches.addFlag(c, &cfg.TargetDatabase, "target-database", "", false, "")
	switches.addFlag(c, &cfg.TargetSchema, "target-schema", "", false, "")
	switches.addFlag(c, &cfg.LoadMode, "load-mode", constants.LoadModeInsert, false, "")
	switches.addFlag(c, &cfg.BatchSize, "batch-size", strconv.Itoa(constants.LoadTxtBatchNumRowsDefault), false, "")
	switches.addFlag(c, &cfg.StageName, "stage", "", false, "")
	switches.addFlag(c, &cfg.S3Connection, "s3-connection", "", false, "")
	switches.addFlag(c, &cfg.CsvMaxFileRows, "csv-rows", strconv.Itoa(constants.CsvMaxFileRowsDefault), false, "")
	switches.addFlag(c, &cfg.TableFilter, "table-filter", "", false, "")
	switches.addFlag(c, &cfg.Tables, "tables", "", false, "")
	switches.addFlag(c, &cfg.Retries, "retries", strconv.Itoa(constants.RetriesDefault), false, "")
	switches.addFlag(c, &cfg.RetryBackoffSeconds, "retry-backoff", strconv.Itoa(constants.RetryBackoffSecondsDefault), false, "")
	switches.addFlag(c, &cfg.Output, "output", constants.OutputFormatText, false, "")
	switches.addFlag(c, &cfg.FailOnError, "fail-on-error", "", false, "")
	switches.addFlag(c, &cfg.LogLevel, "log-level", logLevelDefault, false, "")
	switches.addFlag(c, &cfg.StatsDumpFrequency, "stats", strconv.Itoa(constants.StatsCaptureFrequencySeconds), false, "")
}

// getConnectionsArgsFunc returns a func that cobra uses to validate that we have 2 args.
// It saves arg[0] as the src connection and arg[1] as the tgt connection.
func getConnectionsArgsFunc(src *actions.ConnectionObject, tgt *actions.ConnectionObject, customErrMsg string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 2 {
			if customErrMsg != "" {
				return errors.New(customErrMsg)
			}
			return errors.New("requires source <connection>[.<database>] and target <connection>[.<schema>]")
		}
		*src = actions.ConnectionObject{ConnectionObject: args[0]}
		*tgt = actions.ConnectionObject{ConnectionObject: args[1]}
		return nil
	}
}

// getConnectionArgsFunc returns a func that cobra uses to validate that we have 1 arg.
// It saves arg[0] as the connection.
func getConnectionArgsFunc(conn *actions.ConnectionObject, customErrMsg string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			if customErrMsg != "" {
				return errors.New(customErrMsg)
			}
			return errors.New("requires source <connection>")
		}
		*conn = actions.ConnectionObject{ConnectionObject: args[0]}
		return nil
	}
}

// getQueryFromArgsFunc concatenates all args into a string.
// Returns an error if there are no args.
func getQueryFromArgsFunc(src *actions.ConnectionObject, query *string, customErrMsg string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < 2 { // if we are missing arguments...
			if customErrMsg != "" {
				return errors.New(customErrMsg)
			}
			return errors.New("please supply a connection and a SQL query")
		}
		*src = actions.ConnectionObject{ConnectionObject: args[0]}
		// Skip the connection in arg[0].
		*query = strings.Join(args[1:], " ")
		return nil
	}
}
