package tabledefinition

import (
	"errors"
	"fmt"
	"strings"

	"github.com/relloyd/tablesync/constants"
	"github.com/relloyd/tablesync/logger"
	"github.com/relloyd/tablesync/rdbms"
)

// TableColumn defines a single table column.
type TableColumn struct {
	ColName       string
	DataType      string // source database type name.
	DataLen       int
	DataPrecision int
	DataScale     int
	Nullable      bool
	TargetType    string // optional Snowflake type that overrides the mapped DataType.
}

// TableColumns is a struct representing the columns of one table.
type TableColumns struct {
	Owner     string
	TableName string
	Columns   []TableColumn
}

// ConvertTableDefinitionToSnowflake converts each column in tabCols to its snowflake
// equivalent and returns the snowflake CREATE TABLE statement for snowSchemaTable.
// Columns with a data type the mapper does not support fall back to varchar and are returned in unmapped.
func ConvertTableDefinitionToSnowflake(log logger.Logger, tabCols TableColumns, snowSchemaTable rdbms.SchemaTable, mapper Mapper, orReplace bool) (ddl string, unmapped []string, err error) {
	d, err := rdbms.GetDialect(constants.ConnectionTypeSnowflake)
	if err != nil {
		return "", nil, err
	}
	if snowSchemaTable.Table == "" {
		snowSchemaTable.Table = tabCols.TableName
		log.Info("Using table name \"", tabCols.TableName, "\" as the target")
	}
	if snowSchemaTable.Table == "" {
		return "", nil, errors.New("missing target table name for Snowflake CREATE TABLE DDL")
	}
	snowMapper := NewSnowflakeDataTypeMapper()
	// Remap column types.
	fields := make([]string, 0, len(tabCols.Columns))
	for _, col := range tabCols.Columns { // for each column...
		var tgtDataType, detail string
		if col.TargetType != "" { // if the column already carries a Snowflake type...
			if tgtDataType, err = snowMapper.Map(col.TargetType); err != nil {
				return "", nil, err
			}
			detail, _ = snowMapper.Sanitise(col.TargetType, col.DataLen, col.DataPrecision, col.DataScale)
		} else {
			tgtDataType, err = mapper.Map(col.DataType)
			var e UnsupportedDataTypeError
			if errors.As(err, &e) { // if the source type is unknown...
				unmapped = append(unmapped, col.ColName)
				tgtDataType = "varchar"
			} else if err != nil {
				return "", nil, err
			} else {
				detail, _ = mapper.Sanitise(col.DataType, col.DataLen, col.DataPrecision, col.DataScale)
			}
			err = nil
		}
		// Handle NOT NULL.
		notNull := ""
		if !col.Nullable { // if we should add NOT NULL...
			notNull = " not null"
		}
		log.Debug("column = ", col.ColName,
			"; type = ", col.DataType,
			"; len = ", col.DataLen,
			"; precision = ", col.DataPrecision,
			"; scale = ", col.DataScale,
			"; nullable = ", col.Nullable,
			"; target type = ", tgtDataType, detail,
		)
		// Save this field definition.
		fields = append(fields, fmt.Sprintf("%v %v%v%v", d.QuoteIdentifier(col.ColName), tgtDataType, detail, notNull))
	}
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("no column metadata found to build Snowflake CREATE TABLE DDL")
	}
	ct := "CREATE TABLE"
	if orReplace {
		ct = "CREATE OR REPLACE TABLE"
	}
	ddl = fmt.Sprintf("%v %v ( %v )", ct, d.QualifiedName(snowSchemaTable), strings.Join(fields, ", "))
	log.Debug("Generated Snowflake SQL: ", ddl)
	return ddl, unmapped, nil
}
