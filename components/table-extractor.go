package components

import (
	"context"
	"strings"

	mssql "github.com/denisenkom/go-mssqldb"
	"github.com/pkg/errors"
	"github.com/relloyd/tablesync/helper"
	"github.com/relloyd/tablesync/logger"
	"github.com/relloyd/tablesync/rdbms"
	"github.com/relloyd/tablesync/rdbms/shared"
	"github.com/relloyd/tablesync/tablesync"
)

type TableExtractorConfig struct {
	Log    logger.Logger           `errorTxt:"logger" mandatory:"yes"`
	Opener shared.ConnectionOpener `errorTxt:"source connection" mandatory:"yes"`
}

// TableExtractor implements tablesync.Extractor by running SELECT * against the source.
type TableExtractor struct {
	log     logger.Logger
	opener  shared.ConnectionOpener
	dialect rdbms.Dialect
}

func NewTableExtractor(cfg *TableExtractorConfig) (*TableExtractor, error) {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return nil, err
	}
	d, err := rdbms.GetDialect(cfg.Opener.GetType())
	if err != nil {
		return nil, err
	}
	return &TableExtractor{log: cfg.Log, opener: cfg.Opener, dialect: d}, nil
}

// Extract fetches every row of table into memory.
func (e *TableExtractor) Extract(ctx context.Context, sourceDatabase string, table tablesync.TableRef) (*tablesync.RowSet, error) {
	conn, err := e.opener.Open(ctx)
	if err != nil {
		return nil, &tablesync.ConnectionError{Table: table.String(), Err: err}
	}
	defer conn.Close()
	st := rdbms.SchemaTable{Database: sourceDatabase, Schema: table.Schema, Table: table.Name}
	sqltext := e.dialect.SelectAllSql(st)
	e.log.Debug("Extracting rows using SQL: ", sqltext)
	b := &rowSetBuilder{}
	if err = rdbms.SqlQuery(ctx, e.log, conn, sqltext, b); err != nil {
		return nil, &tablesync.QueryError{Table: table.String(), Sql: sqltext, Err: err}
	}
	return b.rows, nil
}

// rowSetBuilder implements shared.SqlResultHandler and shared.SqlColumnTypeHandler.
type rowSetBuilder struct {
	rows       *tablesync.RowSet
	converters []func(v interface{}) (interface{}, error)
}

func (b *rowSetBuilder) HandleColumnTypes(colTypes []shared.ColumnType) error {
	cols := make([]tablesync.Column, len(colTypes))
	b.converters = make([]func(v interface{}) (interface{}, error), len(colTypes))
	for idx, ct := range colTypes { // for each column...
		c := tablesync.Column{Name: ct.Name(), DatabaseType: ct.DatabaseTypeName()}
		c.Length, c.HasLength = ct.Length()
		c.Precision, c.Scale, c.HasPrecisionScale = ct.DecimalSize()
		nullable, ok := ct.Nullable()
		c.Nullable = nullable || !ok // prefer nullable over not null!
		cols[idx] = c
		b.converters[idx] = getValueConverter(c.DatabaseType)
	}
	b.rows = tablesync.NewRowSet(cols)
	return nil
}

func (b *rowSetBuilder) HandleHeader(i []interface{}) error {
	if b.rows == nil {
		return errors.New("missing column metadata before header")
	}
	return nil
}

func (b *rowSetBuilder) HandleRow(i []interface{}) error {
	for idx := range i { // for each value...
		if i[idx] == nil {
			continue
		}
		v, err := b.converters[idx](i[idx])
		if err != nil {
			return errors.Wrapf(err, "error converting value in column %v", b.rows.Columns[idx].Name)
		}
		i[idx] = v
	}
	return b.rows.Append(i)
}

var binaryDatabaseTypes = map[string]bool{
	"BINARY":     true,
	"VARBINARY":  true,
	"IMAGE":      true,
	"BYTEA":      true,
	"BLOB":       true,
	"TINYBLOB":   true,
	"MEDIUMBLOB": true,
	"LONGBLOB":   true,
	"BIT":        true, // MySQL returns []byte; go-mssqldb returns bool which passes through unchanged.
}

// getValueConverter returns a func that turns driver values of databaseType into the RowSet value types.
// Drivers return DECIMAL, MONEY and many character types as []byte, which are converted to strings.
// SQL Server GUIDs are converted to their string form.
func getValueConverter(databaseType string) func(v interface{}) (interface{}, error) {
	dt := strings.ToUpper(databaseType)
	switch {
	case dt == "UNIQUEIDENTIFIER":
		return convertUniqueIdentifier
	case binaryDatabaseTypes[dt]:
		return convertNothing
	}
	return convertBytesToString
}

func convertNothing(v interface{}) (interface{}, error) {
	return v, nil
}

func convertBytesToString(v interface{}) (interface{}, error) {
	if b, ok := v.([]byte); ok {
		return string(b), nil
	}
	return v, nil
}

func convertUniqueIdentifier(v interface{}) (interface{}, error) {
	var u mssql.UniqueIdentifier
	if err := u.Scan(v); err != nil {
		return nil, err
	}
	return u.String(), nil
}
