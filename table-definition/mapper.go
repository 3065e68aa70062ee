package tabledefinition

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/relloyd/tablesync/constants"
)

// UnsupportedDataTypeError is returned by a Mapper when it has no entry for a source data type.
type UnsupportedDataTypeError struct {
	DataType string
}

func (e UnsupportedDataTypeError) Error() string {
	return fmt.Sprintf("unsupported data type %q during conversion", e.DataType)
}

// Mapper Map takes and input and returns it's equivalent output.
type Mapper interface {
	Map(inputDataType string) (output string, err error)
	Sanitise(inputDataType string, dataLen, precision, scale int) (output string, err error)
}

// GetMapper returns a new Mapper that converts data types of databaseType into Snowflake types.
// The prefix "odbc+" is trimmed from databaseType.
func GetMapper(databaseType string) (Mapper, error) {
	dt := strings.TrimPrefix(databaseType, "odbc+")
	fn, ok := mappers[dt]
	if !ok { // if we do not support the clean database type...
		return nil, fmt.Errorf("unable to find data type mapper for RDBMS type %q", databaseType)
	}
	return fn(), nil
}

var mappers = map[string]func() Mapper{
	constants.ConnectionTypeSqlServer:  NewSqlServerToSnowflakeDataTypeMapper,
	constants.ConnectionTypePostgres:   NewPostgresToSnowflakeDataTypeMapper,
	constants.ConnectionTypeMySql:      NewMySqlToSnowflakeDataTypeMapper,
	constants.ConnectionTypeSnowflake:  NewSnowflakeDataTypeMapper,
	constants.ConnectionTypeMockSource: NewMockDataTypeMapper,
}

// NewMockDataTypeMapper returns an instance of dataTypeMap{}
func NewMockDataTypeMapper() Mapper {
	return newDataTypeMapper(MockDataTypeMapping)
}

// NewSqlServerToSnowflakeDataTypeMapper returns an instance of dataTypeMap{}
// which implements interface Mapper.
func NewSqlServerToSnowflakeDataTypeMapper() Mapper {
	return newDataTypeMapper(SqlServerToSnowflakeDataTypeMapping)
}

// NewPostgresToSnowflakeDataTypeMapper returns an instance of dataTypeMap{}
// which implements interface Mapper.
func NewPostgresToSnowflakeDataTypeMapper() Mapper {
	return newDataTypeMapper(PostgresToSnowflakeDataTypeMapping)
}

// NewMySqlToSnowflakeDataTypeMapper returns an instance of dataTypeMap{}
// which implements interface Mapper.
func NewMySqlToSnowflakeDataTypeMapper() Mapper {
	return newDataTypeMapper(MySqlToSnowflakeDataTypeMapping)
}

// NewSnowflakeDataTypeMapper returns an instance of dataTypeMap{}
// which implements interface Mapper.
// This is used for columns that already carry a Snowflake target type.
func NewSnowflakeDataTypeMapper() Mapper {
	return newDataTypeMapper(SnowflakeToSnowflakeDataTypeMapping)
}

// sanitiserFuncT converts data length, precision and scale into a string ready for use in CREATE TABLE DDL.
type sanitiserFuncT func(dataLen, dataPrecision, dataScale int) string

// dataTypeMap implements Map and Sanitise interfaces.
type dataTypeMap struct {
	mapTypes      map[string]string
	mapSanitisers map[string]sanitiserFuncT
}

// Map will convert inputDataType to lower case and use it to return the output from map mapTypes.
func (o dataTypeMap) Map(inputDataType string) (string, error) {
	v, ok := o.mapTypes[strings.ToLower(inputDataType)]
	if !ok {
		return "", UnsupportedDataTypeError{DataType: inputDataType}
	}
	return v, nil
}

func (o dataTypeMap) Sanitise(inputDataType string, dataLen, dataPrecision, dataScale int) (string, error) {
	fn, ok := o.mapSanitisers[strings.ToLower(inputDataType)]
	if !ok {
		return "", UnsupportedDataTypeError{DataType: inputDataType}
	}
	return fn(dataLen, dataPrecision, dataScale), nil
}

type dataTypeLink struct {
	SourceDataType string `json:"sourceDataType"`
	TargetDataType string `json:"snowflakeDataType"`
	SanitiserFunc  sanitiserFuncT
}

func newDataTypeMapper(types []dataTypeLink) dataTypeMap {
	dtm := dataTypeMap{}
	dtm.mapTypes = make(map[string]string)
	dtm.mapSanitisers = make(map[string]sanitiserFuncT)
	for _, row := range types { // for each data type link...
		// Save the src vs target mapping.
		dtm.mapTypes[row.SourceDataType] = row.TargetDataType
		dtm.mapSanitisers[row.SourceDataType] = row.SanitiserFunc
	}
	return dtm
}

var MockDataTypeMapping = []dataTypeLink{
	{SourceDataType: "int", TargetDataType: "number", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "varchar", TargetDataType: "varchar", SanitiserFunc: sanitiseVarcharLen},
	{SourceDataType: "datetime", TargetDataType: "timestamp_ntz", SanitiserFunc: sanitiseBlank},
}

// SqlServerToSnowflakeDataTypeMapping contains a mapping of SQL Server to Snowflake data types.
// Type names match those reported by go-mssqldb and the ODBC driver.
var SqlServerToSnowflakeDataTypeMapping = []dataTypeLink{
	// Interval types are not supported in Snowflake: https://docs.snowflake.com/en/sql-reference/data-types-datetime.html#interval-constants
	{SourceDataType: "bigint", TargetDataType: "bigint", SanitiserFunc: sanitiseBlank}, // precision,scale = 19,0 signed, or 20,0 for unsigned
	{SourceDataType: "bit", TargetDataType: "boolean", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "char", TargetDataType: "varchar", SanitiserFunc: sanitiseVarcharLen},
	{SourceDataType: "date", TargetDataType: "date", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "datetime", TargetDataType: "timestamp_ntz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "datetime2", TargetDataType: "timestamp_ntz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "datetimeoffset", TargetDataType: "timestamp_tz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "decimal", TargetDataType: "number", SanitiserFunc: sanitisePrecisionScale},
	{SourceDataType: "float", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "image", TargetDataType: "binary", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "int", TargetDataType: "integer", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "money", TargetDataType: "number", SanitiserFunc: sanitiseMoney},
	{SourceDataType: "nchar", TargetDataType: "varchar", SanitiserFunc: sanitiseVarcharLen},
	{SourceDataType: "ntext", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "numeric", TargetDataType: "number", SanitiserFunc: sanitisePrecisionScale},
	{SourceDataType: "nvarchar", TargetDataType: "varchar", SanitiserFunc: sanitiseVarcharLen},
	{SourceDataType: "real", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "smalldatetime", TargetDataType: "timestamp_ntz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "smallint", TargetDataType: "smallint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "smallmoney", TargetDataType: "number", SanitiserFunc: sanitiseSmallMoney},
	{SourceDataType: "sql_variant", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "text", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "time", TargetDataType: "time", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "tinyint", TargetDataType: "number", SanitiserFunc: sanitiseTinyInt},
	{SourceDataType: "uniqueidentifier", TargetDataType: "varchar", SanitiserFunc: sanitiseGuid}, // values are converted to their string form.
	{SourceDataType: "varbinary", TargetDataType: "binary", SanitiserFunc: sanitiseBinaryLen},
	{SourceDataType: "binary", TargetDataType: "binary", SanitiserFunc: sanitiseBinaryLen},
	{SourceDataType: "varchar", TargetDataType: "varchar", SanitiserFunc: sanitiseVarcharLen},
	{SourceDataType: "xml", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
	// ODBC type names.
	{SourceDataType: "utcdatetime", TargetDataType: "timestamp_ntz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "utctime", TargetDataType: "time", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "varwchar", TargetDataType: "varchar", SanitiserFunc: sanitiseVarcharLen},
	{SourceDataType: "wchar", TargetDataType: "varchar", SanitiserFunc: sanitiseVarcharLen},
	{SourceDataType: "double precision", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "integer", TargetDataType: "integer", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "boolean", TargetDataType: "boolean", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "guid", TargetDataType: "varchar", SanitiserFunc: sanitiseGuid},
}

// PostgresToSnowflakeDataTypeMapping uses the type names reported by lib/pq.
var PostgresToSnowflakeDataTypeMapping = []dataTypeLink{
	{SourceDataType: "bool", TargetDataType: "boolean", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "bpchar", TargetDataType: "varchar", SanitiserFunc: sanitiseVarcharLen},
	{SourceDataType: "bytea", TargetDataType: "binary", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "char", TargetDataType: "varchar", SanitiserFunc: sanitiseVarcharLen},
	{SourceDataType: "date", TargetDataType: "date", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "float4", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "float8", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "int2", TargetDataType: "smallint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "int4", TargetDataType: "integer", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "int8", TargetDataType: "bigint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "json", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "jsonb", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "numeric", TargetDataType: "number", SanitiserFunc: sanitisePrecisionScale},
	{SourceDataType: "text", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "time", TargetDataType: "time", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "timestamp", TargetDataType: "timestamp_ntz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "timestamptz", TargetDataType: "timestamp_tz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "uuid", TargetDataType: "varchar", SanitiserFunc: sanitiseGuid},
	{SourceDataType: "varchar", TargetDataType: "varchar", SanitiserFunc: sanitiseVarcharLen},
}

// MySqlToSnowflakeDataTypeMapping uses the type names reported by go-sql-driver/mysql.
var MySqlToSnowflakeDataTypeMapping = []dataTypeLink{
	{SourceDataType: "bigint", TargetDataType: "bigint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "unsigned bigint", TargetDataType: "number", SanitiserFunc: sanitiseUnsignedBigInt},
	{SourceDataType: "binary", TargetDataType: "binary", SanitiserFunc: sanitiseBinaryLen},
	{SourceDataType: "bit", TargetDataType: "binary", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "blob", TargetDataType: "binary", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "char", TargetDataType: "varchar", SanitiserFunc: sanitiseVarcharLen},
	{SourceDataType: "date", TargetDataType: "date", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "datetime", TargetDataType: "timestamp_ntz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "decimal", TargetDataType: "number", SanitiserFunc: sanitisePrecisionScale},
	{SourceDataType: "double", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "enum", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "float", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "int", TargetDataType: "integer", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "unsigned int", TargetDataType: "bigint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "json", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "mediumint", TargetDataType: "integer", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "unsigned mediumint", TargetDataType: "integer", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "set", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "smallint", TargetDataType: "smallint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "unsigned smallint", TargetDataType: "integer", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "text", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "time", TargetDataType: "time", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "timestamp", TargetDataType: "timestamp_ntz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "tinyint", TargetDataType: "smallint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "unsigned tinyint", TargetDataType: "smallint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "varbinary", TargetDataType: "binary", SanitiserFunc: sanitiseBinaryLen},
	{SourceDataType: "varchar", TargetDataType: "varchar", SanitiserFunc: sanitiseVarcharLen},
	{SourceDataType: "year", TargetDataType: "smallint", SanitiserFunc: sanitiseBlank},
}

var SnowflakeToSnowflakeDataTypeMapping = []dataTypeLink{
	{SourceDataType: "bigint", TargetDataType: "bigint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "binary", TargetDataType: "binary", SanitiserFunc: sanitiseBinaryLen},
	{SourceDataType: "boolean", TargetDataType: "boolean", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "date", TargetDataType: "date", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "float", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "integer", TargetDataType: "integer", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "number", TargetDataType: "number", SanitiserFunc: sanitisePrecisionScale},
	{SourceDataType: "time", TargetDataType: "time", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "timestamp_ltz", TargetDataType: "timestamp_ltz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "timestamp_ntz", TargetDataType: "timestamp_ntz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "timestamp_tz", TargetDataType: "timestamp_tz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "varchar", TargetDataType: "varchar", SanitiserFunc: sanitiseVarcharLen},
	{SourceDataType: "variant", TargetDataType: "variant", SanitiserFunc: sanitiseBlank},
}

// SANITISER FUNCTIONS.

const (
	snowflakeMaxPrecision     = 38
	snowflakeMaxScale         = 37
	unconstrainedNumericScale = 12
)

func sanitiseBlank(dataLen, dataPrecision, dataScale int) string {
	return ""
}

func sanitiseTinyInt(dataLen, dataPrecision, dataScale int) string {
	return "(3,0)"
}

func sanitiseUnsignedBigInt(dataLen, dataPrecision, dataScale int) string {
	return "(20,0)"
}

func sanitiseMoney(dataLen, dataPrecision, dataScale int) string {
	return "(19,4)"
}

func sanitiseSmallMoney(dataLen, dataPrecision, dataScale int) string {
	return "(10,4)"
}

func sanitiseGuid(dataLen, dataPrecision, dataScale int) string {
	return "(36)"
}

// sanitiseVarcharLen drops lengths that are unknown or too large for Snowflake e.g. NVARCHAR(MAX).
func sanitiseVarcharLen(dataLen, dataPrecision, dataScale int) string {
	return sanitiseDataLenWithMax(dataLen, constants.SnowflakeMaxVarcharLength)
}

func sanitiseBinaryLen(dataLen, dataPrecision, dataScale int) string {
	return sanitiseDataLenWithMax(dataLen, constants.SnowflakeMaxBinaryLength)
}

func sanitiseDataLenWithMax(dataLen, max int) string {
	if dataLen > 0 && dataLen <= max { // if dataLen is valid and not negative (see SQLServer for examples of -ve values)
		return "(" + strconv.Itoa(dataLen) + ")"
	}
	return ""
}

// sanitisePrecisionScale always returns an explicit "(p,s)" since a bare Snowflake number is number(38,0).
// A precision and scale Snowflake cannot hold keep their integer digits and give up fractional ones.
// Unknown or unconstrained values, e.g. lib/pq reports Postgres NUMERIC as (65535,65531), use
// unconstrainedNumericScale.
func sanitisePrecisionScale(dataLen, dataPrecision, dataScale int) string {
	if dataPrecision > 0 && dataPrecision <= snowflakeMaxPrecision && dataScale >= 0 && dataScale <= dataPrecision && dataScale <= snowflakeMaxScale {
		return fmt.Sprintf("(%d,%d)", dataPrecision, dataScale)
	}
	scale := unconstrainedNumericScale
	if dataPrecision > snowflakeMaxPrecision && dataScale >= 0 && dataScale <= dataPrecision {
		scale = snowflakeMaxPrecision - (dataPrecision - dataScale)
		if scale < 0 {
			scale = 0
		}
	}
	if scale > snowflakeMaxScale {
		scale = snowflakeMaxScale
	}
	return fmt.Sprintf("(%d,%d)", snowflakeMaxPrecision, scale)
}
