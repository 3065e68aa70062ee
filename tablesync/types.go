package tablesync

import (
	"fmt"
	"strings"
	"time"
)

// TableRef identifies one source base table.
type TableRef struct {
	Schema string `json:"schema"`
	Name   string `json:"name"`
}

func (t TableRef) String() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// Column holds the source driver's metadata about one field in a RowSet.
type Column struct {
	Name              string
	DatabaseType      string
	HasLength         bool
	Length            int64
	HasPrecisionScale bool
	Precision         int64
	Scale             int64
	Nullable          bool
	TargetType        string // optional Snowflake type used instead of mapping DatabaseType.
}

// RowSet is a fully materialised table.
// Every row holds one value per column, in column order.
type RowSet struct {
	Columns []Column
	Rows    [][]interface{}
}

// NewRowSet returns an empty RowSet with the given columns.
func NewRowSet(cols []Column) *RowSet {
	return &RowSet{Columns: cols, Rows: make([][]interface{}, 0)}
}

// Append adds row to the set after checking it has a value for every column.
func (r *RowSet) Append(row []interface{}) error {
	if len(row) != len(r.Columns) {
		return fmt.Errorf("row has %v values but the row set has %v columns", len(row), len(r.Columns))
	}
	r.Rows = append(r.Rows, row)
	return nil
}

// Len returns the number of rows.
func (r *RowSet) Len() int {
	return len(r.Rows)
}

// ColumnNames returns the column names in order.
func (r *RowSet) ColumnNames() []string {
	retval := make([]string, len(r.Columns))
	for idx, c := range r.Columns {
		retval[idx] = c.Name
	}
	return retval
}

// ColumnIndex returns the position of the column whose name matches name ignoring case, or -1.
func (r *RowSet) ColumnIndex(name string) int {
	for idx, c := range r.Columns {
		if strings.EqualFold(c.Name, name) {
			return idx
		}
	}
	return -1
}

// LoadTarget is where a RowSet is written.
// Table always equals the source table name.
type LoadTarget struct {
	Database string `json:"database"`
	Schema   string `json:"schema"`
	Table    string `json:"table"`
}

func (t LoadTarget) String() string {
	s := make([]string, 0, 3)
	for _, v := range []string{t.Database, t.Schema, t.Table} {
		if v != "" {
			s = append(s, v)
		}
	}
	return strings.Join(s, ".")
}

type LoadResult struct {
	RowsExported int
}

type TableSuccess struct {
	Schema       string `json:"schema"`
	Table        string `json:"table"`
	RowsExported int    `json:"rowsExported"`
}

type TableFailure struct {
	Schema string `json:"schema"`
	Table  string `json:"table"`
	Error  string `json:"error"`
}

// RunReport is the outcome of one Job run.
type RunReport struct {
	RunId     string         `json:"runId"`
	StartTime time.Time      `json:"startTime"`
	EndTime   time.Time      `json:"endTime"`
	Successes []TableSuccess `json:"successes"`
	Failures  []TableFailure `json:"failures"`
}
