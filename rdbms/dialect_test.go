package rdbms

import (
	"testing"

	"github.com/relloyd/tablesync/constants"
)

func TestDialectSqlServer(t *testing.T) {
	d, err := GetDialect(constants.ConnectionTypeSqlServer)
	if err != nil {
		t.Fatal(err)
	}
	st := SchemaTable{Database: "H1_hospital_data", Schema: "dbo", Table: "patients"}
	if got := d.SelectAllSql(st); got != "SELECT * FROM [H1_hospital_data].[dbo].[patients]" {
		t.Fatalf("unexpected select: %v", got)
	}
	expected := "SELECT TABLE_SCHEMA, TABLE_NAME FROM [H1_hospital_data].INFORMATION_SCHEMA.TABLES " +
		"WHERE TABLE_TYPE = 'BASE TABLE' AND TABLE_CATALOG = @p1"
	if got := d.DiscoverySql("H1_hospital_data"); got != expected {
		t.Fatalf("expected %v; got %v", expected, got)
	}
	if got := d.QuoteIdentifier("odd]name"); got != "[odd]]name]" {
		t.Fatalf("expected closing bracket to be escaped; got %v", got)
	}
}

func TestDialectPostgresOmitsDatabase(t *testing.T) {
	d, err := GetDialect(constants.ConnectionTypePostgres)
	if err != nil {
		t.Fatal(err)
	}
	st := SchemaTable{Database: "warehouse", Schema: "public", Table: "Orders"}
	if got := d.SelectAllSql(st); got != `SELECT * FROM "public"."Orders"` {
		t.Fatalf("unexpected select: %v", got)
	}
	if got := d.Bind(2); got != "$2" {
		t.Fatalf("unexpected bind: %v", got)
	}
}

func TestDialectMySql(t *testing.T) {
	d, err := GetDialect(constants.ConnectionTypeMySql)
	if err != nil {
		t.Fatal(err)
	}
	st := SchemaTable{Database: "shop", Schema: "shop", Table: "items"}
	if got := d.SelectAllSql(st); got != "SELECT * FROM `shop`.`items`" {
		t.Fatalf("unexpected select: %v", got)
	}
}

func TestDialectSnowflake(t *testing.T) {
	d, err := GetDialect(constants.ConnectionTypeSnowflake)
	if err != nil {
		t.Fatal(err)
	}
	st := SchemaTable{Database: "HOSPITAL_DATA_DB", Schema: "HOSPITAL_BRONZE", Table: `pat"ients`}
	if got := d.QualifiedName(st); got != `"HOSPITAL_DATA_DB"."HOSPITAL_BRONZE"."pat""ients"` {
		t.Fatalf("unexpected name: %v", got)
	}
	if got := d.QualifiedSchema(st); got != `"HOSPITAL_DATA_DB"."HOSPITAL_BRONZE"` {
		t.Fatalf("unexpected schema: %v", got)
	}
}

func TestGetDialectUnsupported(t *testing.T) {
	if _, err := GetDialect("oracle"); err == nil {
		t.Fatal("expected error for unsupported dialect")
	}
}
