package actions

import (
	"bytes"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/relloyd/tablesync/constants"
	"github.com/relloyd/tablesync/rdbms/shared"
)

func TestRunQuery(t *testing.T) {
	conn, mock := newMockConnection(t, constants.ConnectionTypePostgres)
	mock.ExpectQuery("select id, name from patients").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "Ann").AddRow(int64(2), "O'Brien, Bob"))
	mock.ExpectClose()
	buf := &bytes.Buffer{}
	cfg := &QueryConfig{
		SourceString: ConnectionObject{ConnectionObject: "pg"},
		Query:        "select id, name from patients",
		PrintHeader:  true,
		Writer:       buf,
		Opener:       &testOpener{conns: []shared.Connector{conn}, dbType: constants.ConnectionTypePostgres},
	}
	if err := RunQuery(cfg); err != nil {
		t.Fatal(err)
	}
	assertExpectations(t, mock)
	expected := "id,name\n1,Ann\n2,\"O'Brien, Bob\"\n"
	if buf.String() != expected {
		t.Fatalf("unexpected output:\nexpected %q\ngot      %q", expected, buf.String())
	}
}

func TestRunQueryDryRun(t *testing.T) {
	buf := &bytes.Buffer{}
	cfg := &QueryConfig{
		SourceString: ConnectionObject{ConnectionObject: "pg"},
		Query:        "select 1",
		DryRun:       true,
		Writer:       buf,
	}
	if err := RunQuery(cfg); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "select 1\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestRunDefaults(t *testing.T) {
	f := newTestConfigFile(t)
	if err := RunDefaultAdd(&DefaultAddConfig{ConfigFile: f, Key: "source", Value: "mssql"}); err != nil {
		t.Fatal(err)
	}
	if err := RunDefaultAdd(&DefaultAddConfig{ConfigFile: f, Key: "source", Value: "pg"}); err == nil {
		t.Fatal("expected an error adding an existing key without force")
	}
	if err := RunDefaultAdd(&DefaultAddConfig{ConfigFile: f, Key: "source", Value: "pg", Force: true}); err != nil {
		t.Fatal(err)
	}
	buf := &bytes.Buffer{}
	if err := RunDefaultList(&DefaultListConfig{ConfigFile: f, Writer: buf}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "source = pg\n" {
		t.Fatalf("unexpected defaults %q", buf.String())
	}
	if err := RunDefaultRemove(&DefaultRemoveConfig{ConfigFile: f, Key: "source"}); err != nil {
		t.Fatal(err)
	}
	if err := RunDefaultRemove(&DefaultRemoveConfig{ConfigFile: f, Key: "source"}); err == nil {
		t.Fatal("expected an error removing a missing key")
	}
}
