package shared

import (
	"context"

	"github.com/relloyd/tablesync/logger"
)

// Connector abstracts all access to Go SQL functionality.
type Connector interface {
	// Go SQL entry points:
	Begin() (Transacter, error)
	BeginTx(ctx context.Context) (Transacter, error)
	Exec(query string, args ...interface{}) (Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error)
	Query(query string, args ...interface{}) (*HpRows, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*HpRows, error)
	PingContext(ctx context.Context) error
	Close()
	// TableSync functionality:
	GetType() string
	GetDmlGenerator() DmlGenerator
}

type Transacter interface {
	Exec(query string, args ...interface{}) (Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error)
	Commit() error
	Rollback() error
}

type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}

// ConnectionOpener opens a new Connector each time it is called.
// Callers own the connection and must Close it.
type ConnectionOpener interface {
	Open(ctx context.Context) (Connector, error)
	GetType() string
}

// More TableSync specific interfaces.

type DmlGenerator interface {
	NewInsertGenerator(cfg *SqlStatementGeneratorConfig) (SqlStmtGenerator, error)
}

// SqlStmtGenerator is used as part of SqlStmtTxtBatcher.
type SqlStmtGenerator interface {
	GetStatement() string
}

// SqlStmtTxtBatcher is used to combine DML statements that affect individual records into one statement, aiming
// to improve performance and reduce network round trips.
type SqlStmtTxtBatcher interface {
	SqlStmtGenerator
	InitBatch(batchSize int)                             // reset variables and preallocate slices for the given batch size.
	AddValuesToBatch(values []interface{}) (bool, error) // add values to SQL statement.
	GetValues() []interface{}                            // get all values added to the batch so they can be supplied as args to exec the SQL returned by getStatement().
	NumRows() int                                        // number of rows currently held in the batch.
}

type SqlResultHandler interface {
	HandleHeader(i []interface{}) error
	HandleRow(i []interface{}) error
}

// SqlColumnTypeHandler is optionally implemented by a SqlResultHandler that needs full column metadata.
type SqlColumnTypeHandler interface {
	HandleColumnTypes(c []ColumnType) error
}

// ColumnType is satisfied by *sql.ColumnType.
type ColumnType interface {
	Name() string
	DatabaseTypeName() string
	Length() (length int64, ok bool)
	DecimalSize() (precision, scale int64, ok bool)
	Nullable() (nullable, ok bool)
}

type ConnectionGetter interface {
	LoadConnection(name string) (ConnectionDetails, error)
}

// ODBC plugin interfaces.

type OdbcConnector interface {
	NewOdbcConnection(log logger.Logger, d *DsnConnectionDetails) (Connector, error)
}
