package actions

import (
	"github.com/relloyd/tablesync/rdbms/shared"
)

// ConnectionHandler resolves logical connection names to their type and details.
// It is implemented by config.File and by the 12 factor environment reader in package cmd.
type ConnectionHandler interface {
	GetConnectionType(connectionName string) (connectionType string, err error)
	GetConnectionDetails(connectionName string) (connectionDetails *shared.ConnectionDetails, err error)
}

type ConnectionLoader interface {
	LoadConnection(connectionName string) (shared.ConnectionDetails, error)
}

type ConnectionGetterSetter interface {
	Get(key string, out interface{}) error
	Set(key string, val interface{}) error
	Delete(key string) error
}

// ConnectionLister is satisfied by config.File.
type ConnectionLister interface {
	Get(key string, out interface{}) error
	GetAllKeys() ([]string, error)
}

type ConnectionValidator interface {
	Parse() error
	GetMap(m map[string]string) map[string]string
	GetScheme() (string, error)
}
