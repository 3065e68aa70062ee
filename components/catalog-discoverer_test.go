package components

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/relloyd/tablesync/constants"
	"github.com/relloyd/tablesync/tablesync"
)

const sqlServerDiscoverySql = "SELECT TABLE_SCHEMA, TABLE_NAME FROM [clinic].INFORMATION_SCHEMA.TABLES " +
	"WHERE TABLE_TYPE = 'BASE TABLE' AND TABLE_CATALOG = @p1"

func TestCatalogDiscovererReturnsTablesInCatalogOrder(t *testing.T) {
	conn, mock := newMockConnection(t, constants.ConnectionTypeSqlServer)
	mock.ExpectQuery(sqlServerDiscoverySql).
		WithArgs("clinic").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_SCHEMA", "TABLE_NAME"}).
			AddRow("dbo", "patients").
			AddRow("dbo", "visits").
			AddRow("billing", "invoices"))
	mock.ExpectClose()
	d, err := NewCatalogDiscoverer(&CatalogDiscovererConfig{Log: testLog, Opener: &testOpener{conn: conn, dbType: constants.ConnectionTypeSqlServer}})
	if err != nil {
		t.Fatal(err)
	}
	got, err := d.Discover(context.Background(), "clinic")
	if err != nil {
		t.Fatal(err)
	}
	expected := []tablesync.TableRef{{Schema: "dbo", Name: "patients"}, {Schema: "dbo", Name: "visits"}, {Schema: "billing", Name: "invoices"}}
	if len(got) != len(expected) {
		t.Fatalf("expected %v tables; got %v", len(expected), got)
	}
	for idx := range expected {
		if got[idx] != expected[idx] {
			t.Fatalf("expected table %v at position %v; got %v", expected[idx], idx, got[idx])
		}
	}
	assertExpectations(t, mock)
}

func TestCatalogDiscovererEmptyDatabase(t *testing.T) {
	conn, mock := newMockConnection(t, constants.ConnectionTypeSqlServer)
	mock.ExpectQuery(sqlServerDiscoverySql).
		WithArgs("clinic").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_SCHEMA", "TABLE_NAME"}))
	d, _ := NewCatalogDiscoverer(&CatalogDiscovererConfig{Log: testLog, Opener: &testOpener{conn: conn, dbType: constants.ConnectionTypeSqlServer}})
	got, err := d.Discover(context.Background(), "clinic")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected an empty list of tables; got %v", got)
	}
}

func TestCatalogDiscovererConnectionFailure(t *testing.T) {
	d, _ := NewCatalogDiscoverer(&CatalogDiscovererConfig{Log: testLog, Opener: &testOpener{dbType: constants.ConnectionTypeSqlServer, err: errors.New("login failed")}})
	_, err := d.Discover(context.Background(), "clinic")
	var ce *tablesync.ConnectionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected a connection error; got %v", err)
	}
}

func TestCatalogDiscovererQueryFailure(t *testing.T) {
	conn, mock := newMockConnection(t, constants.ConnectionTypeSqlServer)
	mock.ExpectQuery(sqlServerDiscoverySql).WithArgs("clinic").WillReturnError(errors.New("permission denied"))
	d, _ := NewCatalogDiscoverer(&CatalogDiscovererConfig{Log: testLog, Opener: &testOpener{conn: conn, dbType: constants.ConnectionTypeSqlServer}})
	_, err := d.Discover(context.Background(), "clinic")
	var qe *tablesync.QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("expected a query error; got %v", err)
	}
	if qe.Sql != sqlServerDiscoverySql {
		t.Fatalf("expected the failing SQL on the error; got %q", qe.Sql)
	}
}

func TestCatalogDiscovererUnsupportedType(t *testing.T) {
	_, err := NewCatalogDiscoverer(&CatalogDiscovererConfig{Log: testLog, Opener: &testOpener{dbType: "oracle"}})
	if err == nil {
		t.Fatal("expected an error for an unsupported source type")
	}
}
