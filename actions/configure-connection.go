package actions

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/tablesync/config"
	"github.com/relloyd/tablesync/constants"
	"github.com/relloyd/tablesync/helper"
	"github.com/relloyd/tablesync/rdbms/shared"
)

type ConnectionConfig struct {
	ConfigFile        ConnectionGetterSetter
	LogicalName       string
	Type              string
	ConnDetails       ConnectionValidator // type in (DsnConnectionDetails, SnowflakeConnectionDetails, AwsS3Bucket)
	Force             bool
	MustUseOdbcScheme bool
}

type ConnectionListConfig struct {
	ConfigFile ConnectionLister `errorTxt:"config file" mandatory:"yes"`
	Output     string
	Writer     io.Writer
}

// connectionListItem is the redacted form of a saved connection.
type connectionListItem struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Dsn  string `json:"dsn,omitempty"`
	Url  string `json:"url,omitempty"`
}

func RunConnectionAdd(cfg *ConnectionConfig) error {
	// Setup the basics ready to be persisted below.
	connection := shared.ConnectionDetails{
		LogicalName: cfg.LogicalName,
		Type:        cfg.Type,
		Data:        make(map[string]string),
	}
	if err := helper.ValidateStructIsPopulated(connection); err != nil { // if the basics were not supplied...
		return err
	}
	// Validate connection name.
	if strings.Contains(cfg.LogicalName, ".") {
		return fmt.Errorf("connection name cannot contain period characters '.' as they're used to split data sources e.g. <connection>[.<database>]")
	}
	if strings.ToLower(cfg.LogicalName) == constants.ConnectionTypeStdout {
		return fmt.Errorf("connection name %q is reserved", cfg.LogicalName)
	}
	// Validate DSN and metadata based on connection type.
	var err error
	if err := cfg.ConnDetails.Parse(); err != nil {
		return errors.Wrap(err, "unable to create connection")
	}
	connection.Type, err = cfg.ConnDetails.GetScheme() // save the full connection type e.g. odbc+sqlserver, since pure sqlserver will be using the Go native module.
	if err != nil {
		return err
	}
	// Check that DSN is valid for the given database type.
	// 1) For type=odbc, the original scheme must match those types listed for 'connection add odbc' subcommand.
	// 2) For non-ODBC, this must match any of those types listed in ActionFuncs.
	switch cfg.Type { // switch on the database type...
	case constants.ConnectionTypeOdbc: // type == "odbc" is set by the caller and is overridden below!
		m := getSupportedConnectionTypesMap("", constants.ConnectionTypeOdbc)
		if _, ok := m[connection.Type]; !ok { // if the ODBC connection type is NOT supported by any of the ActionFunc entries...
			return fmt.Errorf("%v is an unsupported ODBC connection type, please use one of these: %v", connection.Type, GetSupportedOdbcConnectionTypes())
		}
	case constants.ConnectionTypeS3:
	default:
		if !IsSupportedConnectionType(connection.Type) {
			return fmt.Errorf("%v is an unsupported connection type, please use one of these: %v", connection.Type, GetSupportedSourceConnectionTypes())
		}
	}
	cfg.ConnDetails.GetMap(connection.Data)
	// Check for an existing saved connection.
	tmpConn := &shared.ConnectionDetails{}
	err = cfg.ConfigFile.Get(cfg.LogicalName, tmpConn)
	if err != nil { // if there is an error finding the connection...
		var keyErr config.KeyNotFoundError
		if !errors.As(err, &keyErr) { // if the error is real...
			return err
		}
	} else if tmpConn.LogicalName != "" && !cfg.Force { // else if the connection exists, but we are not allowed to overwrite it...
		return fmt.Errorf("connection exists, use force to update the connection or remove it first")
	}
	// Set config (creates the file if missing).
	err = cfg.ConfigFile.Set(cfg.LogicalName, &connection)
	if err != nil {
		return fmt.Errorf("error writing connections config file after adding: %v", err)
	}
	fmt.Printf("Connection %q added\n", cfg.LogicalName)
	return nil
}

func RunConnectionRemove(cfg *ConnectionConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil { // if the basics were not supplied...
		return err
	}
	err := cfg.ConfigFile.Delete(cfg.LogicalName)
	if err != nil {
		return fmt.Errorf("unable to delete connection %q from config: %v", cfg.LogicalName, err)
	}
	fmt.Printf("Connection %q removed\n", cfg.LogicalName)
	return nil
}

// RunConnectionList writes all saved connections to cfg.Writer with passwords redacted.
func RunConnectionList(cfg *ConnectionListConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	keys, err := cfg.ConfigFile.GetAllKeys()
	if err != nil {
		return err
	}
	items := make([]connectionListItem, 0, len(keys))
	details := make(map[string]shared.ConnectionDetails, len(keys))
	for _, k := range keys { // for each saved connection...
		c := shared.ConnectionDetails{}
		if err := cfg.ConfigFile.Get(k, &c); err != nil {
			return errors.Wrapf(err, "unable to read connection %q", k)
		}
		details[k] = c
		item := connectionListItem{Name: k, Type: c.Type}
		if dsn, ok := c.Data[shared.DefaultDsnConnectionKeyNames.Dsn]; ok {
			item.Dsn = shared.RedactDsn(dsn)
		} else if c.Type == constants.ConnectionTypeS3 {
			item.Url = fmt.Sprintf("s3://%v/%v (region %v)", c.Data["name"], c.Data["prefix"], c.Data["region"])
		}
		items = append(items, item)
	}
	switch cfg.Output {
	case constants.OutputFormatJson, constants.OutputFormatYaml:
		return writeOutput(cfg.Writer, cfg.Output, items)
	case "", constants.OutputFormatText:
		if len(keys) == 0 {
			_, err = fmt.Fprintln(cfg.Writer, "No connections found")
			return err
		}
		for _, k := range keys {
			if _, err = fmt.Fprintf(cfg.Writer, "%v:\n%v\n", k, details[k]); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unsupported output format %q", cfg.Output)
}
