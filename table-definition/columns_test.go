package tabledefinition

import (
	"testing"

	"github.com/relloyd/tablesync/logger"
	"github.com/relloyd/tablesync/rdbms"
)

var columns = []TableColumn{
	{ColName: "Id", DataType: "INT", Nullable: false},
	{ColName: "NAME", DataType: "NVARCHAR", DataLen: 20, Nullable: true},
	{ColName: "AMOUNT", DataType: "DECIMAL", DataPrecision: 10, DataScale: 2, Nullable: true},
	{ColName: "LOADED_AT_UTC", DataType: "", TargetType: "timestamp_ntz", Nullable: false},
}

func TestConvertTableDefinitionToSnowflake(t *testing.T) {
	log := logger.NewLogger("tablesync", "error", false)
	tabCols := TableColumns{Owner: "dbo", TableName: "Orders", Columns: columns}
	target := rdbms.SchemaTable{Database: "RAW", Schema: "BRONZE", Table: "Orders"}
	ddl, unmapped, err := ConvertTableDefinitionToSnowflake(log, tabCols, target, NewSqlServerToSnowflakeDataTypeMapper(), false)
	if err != nil {
		t.Fatal(err)
	}
	expected := `CREATE TABLE "RAW"."BRONZE"."Orders" ( "Id" integer not null, "NAME" varchar(20), "AMOUNT" number(10,2), "LOADED_AT_UTC" timestamp_ntz not null )`
	if ddl != expected {
		t.Fatalf("expected = '%v'; got = '%v'", expected, ddl)
	}
	if len(unmapped) != 0 {
		t.Fatalf("expected no unmapped columns; got %v", unmapped)
	}
}

func TestConvertTableDefinitionToSnowflakeFallsBackToVarchar(t *testing.T) {
	log := logger.NewLogger("tablesync", "error", false)
	tabCols := TableColumns{TableName: "geo", Columns: []TableColumn{
		{ColName: "SHAPE", DataType: "GEOGRAPHY", Nullable: true},
	}}
	ddl, unmapped, err := ConvertTableDefinitionToSnowflake(log, tabCols, rdbms.SchemaTable{}, NewSqlServerToSnowflakeDataTypeMapper(), true)
	if err != nil {
		t.Fatal(err)
	}
	expected := `CREATE OR REPLACE TABLE "geo" ( "SHAPE" varchar )`
	if ddl != expected {
		t.Fatalf("expected = '%v'; got = '%v'", expected, ddl)
	}
	if len(unmapped) != 1 || unmapped[0] != "SHAPE" {
		t.Fatalf("expected SHAPE to be reported as unmapped; got %v", unmapped)
	}
}

func TestConvertTableDefinitionToSnowflakeNoColumns(t *testing.T) {
	log := logger.NewLogger("tablesync", "error", false)
	_, _, err := ConvertTableDefinitionToSnowflake(log, TableColumns{TableName: "t"}, rdbms.SchemaTable{}, NewMockDataTypeMapper(), false)
	if err == nil {
		t.Fatal("expected error when there are no columns")
	}
}

func TestConvertTableDefinitionToSnowflakeKeepsNumericScale(t *testing.T) {
	log := logger.NewLogger("tablesync", "error", false)
	tabCols := TableColumns{TableName: "T", Columns: []TableColumn{
		{ColName: "AMOUNT", DataType: "NUMERIC", DataPrecision: 65535, DataScale: 65531, Nullable: true},
	}}
	target := rdbms.SchemaTable{Schema: "S", Table: "T"}
	ddl, _, err := ConvertTableDefinitionToSnowflake(log, tabCols, target, NewPostgresToSnowflakeDataTypeMapper(), true)
	if err != nil {
		t.Fatal(err)
	}
	expected := `CREATE OR REPLACE TABLE "S"."T" ( "AMOUNT" number(38,12) )`
	if ddl != expected {
		t.Fatalf("expected = '%v'; got = '%v'", expected, ddl)
	}
}
