package tablesync

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/relloyd/tablesync/constants"
)

// ColumnNormaliser implements Transformer.
// It upper-cases every column name and stamps each row with the same LOADED_AT_UTC time.
type ColumnNormaliser struct {
	Now func() time.Time // defaults to time.Now.
}

func NewColumnNormaliser() *ColumnNormaliser {
	return &ColumnNormaliser{Now: time.Now}
}

// LoadedAtColumn returns the metadata of the column added by ColumnNormaliser.
func LoadedAtColumn() Column {
	return Column{
		Name:         constants.LoadedAtColumnName,
		DatabaseType: "TIMESTAMP_NTZ",
		TargetType:   "timestamp_ntz",
		Nullable:     false,
	}
}

// Transform returns a new RowSet and leaves rows untouched.
// An existing LOADED_AT_UTC column is overwritten so that repeat calls do not add a second one.
func (n *ColumnNormaliser) Transform(rows *RowSet) (*RowSet, error) {
	if rows == nil {
		return nil, errors.New("unable to transform a nil row set")
	}
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	loadedAt := now().UTC() // once per table.
	// Rename columns.
	cols := make([]Column, 0, len(rows.Columns)+1)
	seen := make(map[string]string, len(rows.Columns))
	stampIdx := -1
	for idx, c := range rows.Columns { // for each source column...
		upper := strings.ToUpper(c.Name)
		if prev, ok := seen[upper]; ok {
			return nil, &ColumnCollisionError{Column: upper, Sources: []string{prev, c.Name}}
		}
		seen[upper] = c.Name
		if upper == constants.LoadedAtColumnName { // if we are transforming our own output...
			stampIdx = idx
			c = LoadedAtColumn()
		}
		c.Name = upper
		cols = append(cols, c)
	}
	if stampIdx < 0 {
		cols = append(cols, LoadedAtColumn())
		stampIdx = len(cols) - 1
	}
	// Copy rows.
	out := &RowSet{Columns: cols, Rows: make([][]interface{}, len(rows.Rows))}
	for idx, row := range rows.Rows { // for each row...
		if len(row) != len(rows.Columns) {
			return nil, fmt.Errorf("row %v has %v values but the row set has %v columns", idx, len(row), len(rows.Columns))
		}
		newRow := make([]interface{}, len(cols))
		copy(newRow, row)
		newRow[stampIdx] = loadedAt
		out.Rows[idx] = newRow
	}
	return out, nil
}
