package config

import (
	"fmt"
	"strings"

	"github.com/relloyd/tablesync/constants"
	"github.com/relloyd/tablesync/rdbms/shared"
)

// GetConnectionType returns the type of the named connection.
// The special name stdout needs no config.
func (c *File) GetConnectionType(connectionName string) (connectionType string, err error) {
	if strings.ToLower(connectionName) == constants.ConnectionTypeStdout { // if the connection name is special stdout...
		return constants.ConnectionTypeStdout, nil
	}
	genericConn := &shared.ConnectionDetails{}
	if err := c.Get(connectionName, genericConn); err != nil {
		return "", err
	}
	if genericConn.Type == "" {
		return "", fmt.Errorf("unknown type for connection %q", connectionName)
	}
	return genericConn.Type, nil
}

// GetConnectionDetails fetches generic connection details from the File c using the connectionName to do the lookup.
// If the connection is not found the an error is produced.
func (c *File) GetConnectionDetails(connectionName string) (*shared.ConnectionDetails, error) {
	genericConn := &shared.ConnectionDetails{}
	if err := c.Get(connectionName, genericConn); err != nil {
		return nil, err
	}
	if genericConn.Type == "" { // if the connection was not found...
		return nil, fmt.Errorf("connection %q is not configured: use 'config' command to create it", connectionName)
	}
	return genericConn, nil
}

// LoadConnection implements shared.ConnectionGetter.
func (c *File) LoadConnection(connectionName string) (shared.ConnectionDetails, error) {
	d := shared.ConnectionDetails{}
	err := c.Get(connectionName, &d)
	return d, err
}
