package rdbms

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/relloyd/tablesync/constants"
	"github.com/relloyd/tablesync/logger"
	"github.com/relloyd/tablesync/rdbms/shared"
	"github.com/xo/dburl"
)

// supportedDsnConnectionTypes is a map where keys are the supported connections based on values in module constants.
// Snowflake connections are handled explicitly so do not need to be here.
var supportedDsnConnectionTypes = map[string]string{ // connection type => database/sql driver name
	constants.ConnectionTypeSqlServer: "sqlserver",
	constants.ConnectionTypePostgres:  "postgres",
	constants.ConnectionTypeMySql:     "mysql",
}

// isSupportedConnection returns true if it can look up the supplied connection type t in map of supported
// connections supportedDsnConnectionTypes.
func isSupportedConnection(connectionType string) bool {
	_, ok := supportedDsnConnectionTypes[connectionType]
	return ok
}

// OpenDbConnection opens a database connection using the supplied ConnectionDetails struct in c.
func OpenDbConnection(log logger.Logger, c shared.ConnectionDetails) (db shared.Connector, err error) {
	return OpenDbConnectionContext(context.Background(), log, c)
}

// OpenDbConnectionContext opens and pings a database connection using the supplied ConnectionDetails struct in c.
func OpenDbConnectionContext(ctx context.Context, log logger.Logger, c shared.ConnectionDetails) (db shared.Connector, err error) {
	log.Debug("opening connection type ", c.Type, " with logicalName ", c.LogicalName) // don't log password details in c.Data!
	switch c.Type {
	case constants.ConnectionTypeSnowflake:
		db, err = newSnowflakeConnection(ctx, log, shared.GetDsnConnectionDetails(&c))
	case constants.ConnectionTypeOdbcSqlServer:
		db, err = NewOdbcConnection(log, shared.GetDsnConnectionDetails(&c))
	default:
		if isSupportedConnection(c.Type) { // if the connection type is supported...
			db, err = newConnectionWithDsn(ctx, log, c.Type, shared.GetDsnConnectionDetails(&c))
		} else { // else we have an unsupported database...
			err = fmt.Errorf("unsupported database type, %q", c.Type)
		}
	}
	return
}

func newConnectionWithDsn(ctx context.Context, log logger.Logger, connectionType string, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	log.Info("Opening database connection: ", d)
	u, err := dburl.Parse(d.Dsn)
	if err != nil { // if the DSN could not be parsed...
		return nil, fmt.Errorf("error parsing DSN %v: %w", d, err)
	}
	driver := supportedDsnConnectionTypes[connectionType]
	dsn := u.DSN
	if connectionType == constants.ConnectionTypeMySql && !strings.Contains(dsn, "parseTime") {
		// Scan DATE and DATETIME values into time.Time instead of []byte.
		if strings.Contains(dsn, "?") {
			dsn = dsn + "&parseTime=true"
		} else {
			dsn = dsn + "?parseTime=true"
		}
	}
	// Create the new Connector.
	conn := &shared.HpConnection{
		Dml:    &shared.DmlGeneratorTxtBatch{}, // generic DML handling for now
		DbType: connectionType,
	}
	// Open the connection.
	conn.DbSql, err = sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	// Test the connection.
	if err = conn.DbSql.PingContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	log.Info("Successful connection to: ", d)
	return conn, nil
}

// ConnectionOpener opens a fresh connection per call so that no connection is shared between operations.
type ConnectionOpener struct {
	log     logger.Logger
	details shared.ConnectionDetails
}

func NewConnectionOpener(log logger.Logger, details shared.ConnectionDetails) *ConnectionOpener {
	return &ConnectionOpener{log: log, details: details}
}

func (o *ConnectionOpener) Open(ctx context.Context) (shared.Connector, error) {
	return OpenDbConnectionContext(ctx, o.log, o.details)
}

func (o *ConnectionOpener) GetType() string {
	return o.details.Type
}
