package rdbms

import (
	"fmt"

	"github.com/relloyd/tablesync/logger"
	"github.com/relloyd/tablesync/rdbms/shared"
	"golang.org/x/net/context"
)

// SqlQuery runs sqltext and sends the header and each row to i.
// If i also implements shared.SqlColumnTypeHandler it receives the column metadata before the header.
func SqlQuery(ctx context.Context, log logger.Logger, db shared.Connector, sqltext string, i shared.SqlResultHandler, args ...interface{}) error {
	rows, err := db.QueryContext(ctx, sqltext, args...)
	if err != nil {
		return fmt.Errorf("error during database query using SQL: '%v': %w", sqltext, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	// Set up column types for Scan(...)
	log.Debug("fetching column types...")
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return fmt.Errorf("error fetching column types: %w", err)
	}
	if h, ok := i.(shared.SqlColumnTypeHandler); ok { // if the handler wants full metadata...
		c := make([]shared.ColumnType, len(colTypes))
		for idx := range colTypes {
			c[idx] = colTypes[idx]
		}
		if err = h.HandleColumnTypes(c); err != nil {
			return err
		}
	}
	// Scan the values dynamically.
	lenColTypes := len(colTypes)
	scanPtrs := make([]interface{}, lenColTypes)
	scanVals := make([]interface{}, lenColTypes)
	for idx := 0; idx < lenColTypes; idx++ { // for each column...
		scanPtrs[idx] = &scanVals[idx]
	}
	// Build and send the header.
	header := make([]interface{}, lenColTypes)
	for idx := range colTypes {
		header[idx] = colTypes[idx].Name()
	}
	if err = i.HandleHeader(header); err != nil {
		return err
	}
	// Send the rows via callback interface.
	for rows.Next() {
		if err = ctx.Err(); err != nil { // quit if asked to...
			return err
		}
		if err = rows.Scan(scanPtrs...); err != nil {
			return fmt.Errorf("error scanning row: %w", err)
		}
		// Make a new row.
		row := make([]interface{}, lenColTypes)
		for idx := range scanVals { // for each value...
			row[idx] = copyValue(scanVals[idx])
		}
		if err = i.HandleRow(row); err != nil {
			return err
		}
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("error fetching rows: %w", err)
	}
	return nil
}

// copyValue takes a copy of byte slices since drivers may reuse the underlying memory on the next Scan.
func copyValue(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		c := make([]byte, len(b))
		copy(c, b)
		return c
	}
	return v
}
