package rdbms

import (
	"fmt"
	"reflect"

	"github.com/relloyd/tablesync/constants"
	"github.com/relloyd/tablesync/logger"
	pluginloader "github.com/relloyd/tablesync/plugin-loader"
	"github.com/relloyd/tablesync/rdbms/shared"
)

// NewOdbcConnection opens a connection via the ODBC plugin, which needs cgo and unixODBC at build time.
func NewOdbcConnection(log logger.Logger, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	exports, err := pluginloader.LoadPluginExports(constants.TsPluginOdbc)
	if err != nil {
		return nil, err
	}
	i, ok := exports.(shared.OdbcConnector)
	if !ok {
		r := reflect.TypeOf(exports)
		return nil, fmt.Errorf("plugin %v does not implement the required interface: OdbcConnector: %v", constants.TsPluginOdbc, r.String())
	}
	return i.NewOdbcConnection(log, d)
}
