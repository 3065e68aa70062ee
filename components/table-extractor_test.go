package components

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/relloyd/tablesync/constants"
	"github.com/relloyd/tablesync/tablesync"
)

func TestTableExtractor(t *testing.T) {
	conn, mock := newMockConnection(t, constants.ConnectionTypeSqlServer)
	guid := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x0E, 0x0F, 0x10}
	rows := sqlmock.NewRowsWithColumnDefinition(
		sqlmock.NewColumn("Id").OfType("INT", int64(0)).Nullable(false),
		sqlmock.NewColumn("Name").OfType("NVARCHAR", "").WithLength(20).Nullable(true),
		sqlmock.NewColumn("Amount").OfType("DECIMAL", []byte{}).WithPrecisionAndScale(10, 2).Nullable(true),
		sqlmock.NewColumn("Ref").OfType("UNIQUEIDENTIFIER", []byte{}).Nullable(true),
		sqlmock.NewColumn("Photo").OfType("VARBINARY", []byte{}).WithLength(100).Nullable(true),
	).
		AddRow(int64(1), "Ann", []byte("12.50"), guid, []byte{0xCA, 0xFE}).
		AddRow(int64(2), nil, nil, nil, nil)
	mock.ExpectQuery("SELECT * FROM [clinic].[dbo].[patients]").WillReturnRows(rows)
	mock.ExpectClose()
	e, err := NewTableExtractor(&TableExtractorConfig{Log: testLog, Opener: &testOpener{conn: conn, dbType: constants.ConnectionTypeSqlServer}})
	if err != nil {
		t.Fatal(err)
	}
	rs, err := e.Extract(context.Background(), "clinic", tablesync.TableRef{Schema: "dbo", Name: "patients"})
	if err != nil {
		t.Fatal(err)
	}
	assertExpectations(t, mock)

	// Check metadata.
	if len(rs.Columns) != 5 {
		t.Fatalf("expected 5 columns; got %v", len(rs.Columns))
	}
	if rs.Columns[0].Name != "Id" || rs.Columns[0].DatabaseType != "INT" || rs.Columns[0].Nullable {
		t.Fatalf("unexpected metadata for column Id: %+v", rs.Columns[0])
	}
	if !rs.Columns[1].HasLength || rs.Columns[1].Length != 20 || !rs.Columns[1].Nullable {
		t.Fatalf("unexpected metadata for column Name: %+v", rs.Columns[1])
	}
	if !rs.Columns[2].HasPrecisionScale || rs.Columns[2].Precision != 10 || rs.Columns[2].Scale != 2 {
		t.Fatalf("unexpected metadata for column Amount: %+v", rs.Columns[2])
	}

	// Check values.
	if rs.Len() != 2 {
		t.Fatalf("expected 2 rows; got %v", rs.Len())
	}
	r := rs.Rows[0]
	if r[0] != int64(1) || r[1] != "Ann" {
		t.Fatalf("unexpected values in row 1: %v", r)
	}
	if r[2] != "12.50" {
		t.Fatalf("expected decimal bytes to be converted to a string; got %#v", r[2])
	}
	if r[3] != "04030201-0605-0807-090A-0B0C0D0E0F10" {
		t.Fatalf("unexpected GUID string; got %#v", r[3])
	}
	if b, ok := r[4].([]byte); !ok || len(b) != 2 || b[0] != 0xCA {
		t.Fatalf("expected binary values to stay as bytes; got %#v", r[4])
	}
	for idx, v := range rs.Rows[1][1:] {
		if v != nil {
			t.Fatalf("expected nil in column %v of row 2; got %#v", idx+1, v)
		}
	}
}

func TestTableExtractorQueryFailure(t *testing.T) {
	conn, mock := newMockConnection(t, constants.ConnectionTypePostgres)
	mock.ExpectQuery(`SELECT * FROM "public"."visits"`).WillReturnError(errors.New("relation does not exist"))
	e, _ := NewTableExtractor(&TableExtractorConfig{Log: testLog, Opener: &testOpener{conn: conn, dbType: constants.ConnectionTypePostgres}})
	_, err := e.Extract(context.Background(), "clinic", tablesync.TableRef{Schema: "public", Name: "visits"})
	var qe *tablesync.QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("expected a query error; got %v", err)
	}
	if qe.Table != "public.visits" {
		t.Fatalf("expected the table name on the error; got %q", qe.Table)
	}
}

func TestTableExtractorConnectionFailure(t *testing.T) {
	e, _ := NewTableExtractor(&TableExtractorConfig{Log: testLog, Opener: &testOpener{dbType: constants.ConnectionTypeMySql, err: errors.New("refused")}})
	_, err := e.Extract(context.Background(), "clinic", tablesync.TableRef{Schema: "clinic", Name: "visits"})
	var ce *tablesync.ConnectionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected a connection error; got %v", err)
	}
}

func TestGetValueConverter(t *testing.T) {
	cases := []struct {
		dbType   string
		in       interface{}
		expected interface{}
	}{
		{"varchar", []byte("abc"), "abc"},
		{"NUMERIC", []byte("1.5"), "1.5"},
		{"BIGINT", int64(7), int64(7)},
		{"uuid", []byte("a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11"), "a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11"},
		{"BIT", []byte{0x01}, []byte{0x01}}, // MySQL
		{"BIT", true, true},                 // SQL Server
		{"VARBINARY", []byte{0xCA, 0xFE}, []byte{0xCA, 0xFE}},
	}
	for _, c := range cases {
		got, err := getValueConverter(c.dbType)(c.in)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, c.expected) {
			t.Fatalf("type %v: expected %#v; got %#v", c.dbType, c.expected, got)
		}
	}
	if _, err := getValueConverter("UNIQUEIDENTIFIER")([]byte{0x01}); err == nil {
		t.Fatal("expected an error for a short GUID")
	}
}
