package components

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/relloyd/tablesync/logger"
	"github.com/relloyd/tablesync/rdbms/shared"
)

var testLog = logger.NewLogger("tablesync", "error", true)

// testOpener returns the same connection on every Open.
type testOpener struct {
	conn   shared.Connector
	dbType string
	err    error
	opened int
}

func (o *testOpener) Open(ctx context.Context) (shared.Connector, error) {
	o.opened++
	if o.err != nil {
		return nil, o.err
	}
	return o.conn, nil
}

func (o *testOpener) GetType() string {
	return o.dbType
}

func newMockConnection(t *testing.T, dbType string) (*shared.HpConnection, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatal("unable to create sqlmock: ", err)
	}
	return &shared.HpConnection{DbSql: db, Dml: &shared.DmlGeneratorTxtBatch{}, DbType: dbType}, mock
}

func assertExpectations(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal("unfulfilled SQL expectations: ", err)
	}
}
