package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/relloyd/tablesync/actions"
	"github.com/relloyd/tablesync/aws/s3"
	"github.com/relloyd/tablesync/config"
	c "github.com/relloyd/tablesync/constants"
	"github.com/relloyd/tablesync/helper"
	"github.com/relloyd/tablesync/logger"
	"github.com/relloyd/tablesync/rdbms"
	"github.com/relloyd/tablesync/rdbms/shared"
	"github.com/xo/dburl"
)

// init will be called first due to the lexical order in which these functions are executed.
// This ensures the value of twelveFactorMode is set such that other init() functions that configure
// Cobra can do the job of processing all environment variables that would contain equivalent of the CLI flag
// structures used by the actions.
func init() {
	if name, err := config.LoadEnvFile(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	} else if name != "" && os.Getenv(envVarLogLevel) == "debug" {
		fmt.Printf("Loaded environment from %v\n", name)
	}
	setupTwelveFactorMode()
}

// setupTwelveFactorMode will enable or disable 12 factor mode based on environment variable.
func setupTwelveFactorMode() {
	mode := os.Getenv(envVarTwelveFactorMode)
	if mode != "" { // if variable for 12factor mode is set and we should read env vars to determine actions...
		twelveFactorMode = true
		if strings.ToLower(mode) == "lambda" {
			lambdaMode = true
		}
	} else { // else 12factor mode should be off...
		twelveFactorMode = false // explicitly turn off this mode since tests may have turned it on while others require it off.
		lambdaMode = false
	}
}

const (
	envVarTwelveFactorMode      = c.EnvVarPrefix + "_" + "12FACTOR_MODE"
	envVarCommand               = c.EnvVarPrefix + "_" + "COMMAND"       // run|discover|serve
	envVarSourceObject          = c.EnvVarPrefix + "_" + "SOURCE_OBJECT" // optional source database
	envVarTargetObject          = c.EnvVarPrefix + "_" + "TARGET_OBJECT" // optional target schema
	envVarSourceType            = c.EnvVarPrefix + "_" + "SOURCE_TYPE"   // optional, else taken from the DSN scheme
	envVarTargetType            = c.EnvVarPrefix + "_" + "TARGET_TYPE"   // optional, else taken from the DSN scheme
	envVarLogLevel              = c.EnvVarPrefix + "_" + "LOG_LEVEL"
	envVarStackDump             = c.EnvVarPrefix + "_" + "STACK_DUMP"
	defaultConnectionNameSource = "SOURCE"
	defaultConnectionNameTarget = "TARGET"
)

var (
	twelveFactorMode bool // true if os env var envVarTwelveFactorMode is set
	lambdaMode       bool // true if os env var envVarTwelveFactorMode is set to "lambda"
	twelveFactorVars = map[string]string{
		envVarCommand: "",
		// Source
		envVarSourceType: "",
		helper.GetDsnEnvVarName(defaultConnectionNameSource): "",
		envVarSourceObject: "",
		// Target
		envVarTargetType: "",
		helper.GetDsnEnvVarName(defaultConnectionNameTarget): "",
		envVarTargetObject: "",
		// Misc
		c.EnvVarConfigKey: "",
		envVarLogLevel:    "",
		envVarStackDump:   "",
	}
	twelveFactorVarsSensitive = map[string]string{ // used to flag some of the above variables as being sensitive.
		helper.GetDsnEnvVarName(defaultConnectionNameSource): "",
		helper.GetDsnEnvVarName(defaultConnectionNameTarget): "",
		c.EnvVarConfigKey: "",
	}
)

type twelveFactorAction struct {
	setupFunc  func(src string, tgt string)
	runnerFunc func() error
}

var twelveFactorActions = map[string]twelveFactorAction{
	c.ActionFuncsCommandRun: {
		setupFunc: func(src string, tgt string) {
			runCfg.SrcAndTgtConnections.SourceString.ConnectionObject = src
			runCfg.SrcAndTgtConnections.TargetString.ConnectionObject = tgt
		},
		runnerFunc: runTableSync,
	},
	c.ActionFuncsCommandDiscover: {
		setupFunc: func(src string, tgt string) {
			discoverCfg.SourceString.ConnectionObject = src
		},
		runnerFunc: runDiscover,
	},
	"serve": {
		setupFunc: func(src string, tgt string) {
			serveRunCfg.SrcAndTgtConnections.SourceString.ConnectionObject = src
			serveRunCfg.SrcAndTgtConnections.TargetString.ConnectionObject = tgt
		},
		runnerFunc: runServe,
	},
}

func getConnectionHandler() actions.ConnectionHandler {
	if twelveFactorMode {
		return &TwelveFactorConnections{}
	} else {
		return config.Connections
	}
}

func getConnectionLoader() actions.ConnectionLoader {
	if twelveFactorMode {
		return &TwelveFactorConnections{}
	} else {
		return config.Connections
	}
}

func getConnectionGetterSetter() actions.ConnectionGetterSetter {
	if twelveFactorMode {
		fmt.Printf("Error: connections cannot be configured when %v is set (supply them using %v and %v instead)\n",
			envVarTwelveFactorMode,
			helper.GetDsnEnvVarName(defaultConnectionNameSource),
			helper.GetDsnEnvVarName(defaultConnectionNameTarget))
		os.Exit(1)
	}
	return config.Connections
}

func execute12FactorMode(acts map[string]twelveFactorAction) (err error) {
	logLevel := helper.ReadValueFromEnvWithDefault(envVarLogLevel, "warn") // fetch logLevel from env as this is not a persistent flag, given that we wanted different logging defaults per cobra action.
	if helper.ReadBoolFromEnv(envVarStackDump) {
		stackDumpOnPanic = true
	}
	log := logger.NewLogger("tablesync", logLevel, stackDumpOnPanic)
	log.Info("TableSync is running in 12 Factor mode...")
	// Save values for the required variables.
	for k := range twelveFactorVars { // for each env variable that we need...
		// Save it and log it.
		twelveFactorVars[k] = os.Getenv(k)
		_, sensitive := twelveFactorVarsSensitive[k]
		if !sensitive { // if the env variable does not contain sensitive values...
			log.Debug(k, "=", twelveFactorVars[k])
		} else if twelveFactorVars[k] != "" { // else output a redacted value...
			log.Debug(k, "=", shared.RedactDsn(twelveFactorVars[k]))
		}
	}
	// Use the command to fetch the appropriate action.
	command := strings.ToLower(strings.TrimSpace(twelveFactorVars[envVarCommand]))
	a, ok := acts[command]
	if !ok {
		err = fmt.Errorf("invalid command %q found in %v", twelveFactorVars[envVarCommand], envVarCommand)
		log.Error(err.Error())
		return
	}
	// Setup the connection source and target strings to include the object, as Cobra would have with CLI args.
	a.setupFunc(
		joinConnectionObject(defaultConnectionNameSource, twelveFactorVars[envVarSourceObject]), // e.g. SOURCE.clinic
		joinConnectionObject(defaultConnectionNameTarget, twelveFactorVars[envVarTargetObject]), // e.g. TARGET.CLINIC
	)
	// Run the action.
	err = a.runnerFunc()
	if err != nil {
		log.Error("Error: ", err)
	}
	return err
}

func joinConnectionObject(connectionName string, object string) string {
	if object == "" {
		return connectionName
	}
	return fmt.Sprintf("%v.%v", connectionName, object)
}

type TwelveFactorConnections struct{} // implements interfaces in module, actions.

// GetConnectionType is for use when running in twelveFactorMode.
// The type of the source and target connections is read from envVarSourceType or envVarTargetType when set,
// otherwise it is derived from the scheme of the connection DSN.
// A target without a DSN, or with DSN "stdout", prints to stdout.
// Any other connection name, such as an S3 bucket, has its type derived from its DSN.
func (t *TwelveFactorConnections) GetConnectionType(connectionName string) (connectionType string, err error) {
	var kType string
	switch strings.ToUpper(connectionName) {
	case defaultConnectionNameSource:
		kType = envVarSourceType
	case defaultConnectionNameTarget:
		kType = envVarTargetType
	}
	if kType != "" {
		if v := strings.TrimSpace(os.Getenv(kType)); v != "" { // if the type was given explicitly...
			return strings.ToLower(v), nil
		}
	}
	dsn := strings.TrimSpace(os.Getenv(helper.GetDsnEnvVarName(connectionName)))
	if strings.ToLower(dsn) == c.ConnectionTypeStdout ||
		(dsn == "" && strings.ToUpper(connectionName) == defaultConnectionNameTarget) {
		return c.ConnectionTypeStdout, nil
	}
	if dsn == "" {
		return "", fmt.Errorf("missing value for %v", helper.GetDsnEnvVarName(connectionName))
	}
	return shared.ConnectionTypeFromDsn(dsn)
}

// GetConnectionDetails fills shared.ConnectionDetails with values fetched from env variables by using the
// connectionName to do the lookup.
// The DSN is validated according to the connection type.
func (t *TwelveFactorConnections) GetConnectionDetails(connectionName string) (*shared.ConnectionDetails, error) {
	var vDsn string
	connectionDetails := shared.ConnectionDetails{
		LogicalName: connectionName,
		Data:        make(map[string]string),
	}
	// Fetch connection type from the environment based on the connection name.
	vType, err := t.GetConnectionType(connectionName)
	if err != nil {
		return nil, err
	}
	connectionDetails.Type = vType
	if vType == c.ConnectionTypeStdout {
		return &connectionDetails, nil
	}
	// Fetch connection info from the environment based on the connection name.
	kDsn := helper.GetDsnEnvVarName(connectionName)
	if err = helper.ReadValueFromEnv(kDsn, &vDsn); err != nil { // if we cannot find the DSN in the environment...
		return nil, fmt.Errorf("unable to find value for %v in the environment: %w", kDsn, err)
	}
	// Parse the connection based on the type.
	switch vType { // switch on the connection type...
	case c.ConnectionTypeSnowflake: // if the user wants Snowflake connection details...
		if _, err := rdbms.SnowflakeParseDSN(vDsn); err != nil { // if the DSN was invalid...
			return nil, err
		}
		connectionDetails.Data = shared.DsnConnectionDetails{Dsn: vDsn}.GetMap(connectionDetails.Data)
	case c.ConnectionTypeS3: // if the user wants S3 bucket details...
		// Fetch bucket region from the environment.
		var vRegion string
		kRegion := helper.GetRegionEnvVarName(connectionName)
		if err := helper.ReadValueFromEnv(kRegion, &vRegion); err != nil { // if we cannot find the bucket region in the environment...
			vRegion = os.Getenv("AWS_REGION")
		}
		cn, err := s3.ParseDSN(vDsn, vRegion)
		if err != nil { // if the DSN was invalid...
			return nil, err
		}
		connectionDetails.Data = cn.GetMap(connectionDetails.Data)
	default: // fallback to the DSN connection type.
		if !actions.IsSupportedConnectionType(vType) {
			return nil, fmt.Errorf("unsupported connection type %q for DSN %v", vType, shared.RedactDsn(vDsn))
		}
		if _, err := dburl.Parse(vDsn); err != nil { // if the DSN was invalid...
			return nil, fmt.Errorf("unable to parse DSN %v: %w", shared.RedactDsn(vDsn), err)
		}
		connectionDetails.Data = shared.DsnConnectionDetails{Dsn: vDsn}.GetMap(connectionDetails.Data)
	}
	return &connectionDetails, nil
}

// LoadConnection mimics loading connection details from the config file, but reads them from the
// environment instead.
func (t *TwelveFactorConnections) LoadConnection(connectionName string) (shared.ConnectionDetails, error) {
	cn, err := t.GetConnectionDetails(connectionName)
	if err != nil {
		return shared.ConnectionDetails{}, err
	}
	return *cn, nil
}
