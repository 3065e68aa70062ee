package components

import (
	"context"
	"fmt"
	"io"

	"github.com/relloyd/tablesync/logger"
	"github.com/relloyd/tablesync/stream"
	"github.com/relloyd/tablesync/tablesync"
)

// StdOutLoader implements tablesync.Loader by writing each row as a line of JSON.
// Use it to preview a run without touching Snowflake.
type StdOutLoader struct {
	log    logger.Logger
	writer io.Writer
}

func NewStdOutLoader(log logger.Logger, w io.Writer) *StdOutLoader {
	return &StdOutLoader{log: log, writer: w}
}

func (l *StdOutLoader) Load(ctx context.Context, rows *tablesync.RowSet, target tablesync.LoadTarget) (tablesync.LoadResult, error) {
	names := rows.ColumnNames()
	for idx, row := range rows.Rows { // for each row...
		if err := ctx.Err(); err != nil {
			return tablesync.LoadResult{RowsExported: idx}, err
		}
		rec, err := stream.NewRecordFromRow(names, row)
		if err != nil {
			return tablesync.LoadResult{}, &tablesync.WriteError{Table: target.String(), Err: err}
		}
		j, err := rec.GetJson()
		if err != nil {
			return tablesync.LoadResult{}, &tablesync.WriteError{Table: target.String(), Err: err}
		}
		if _, err = fmt.Fprintf(l.writer, "%v\n", j); err != nil {
			return tablesync.LoadResult{}, &tablesync.WriteError{Table: target.String(), Err: err}
		}
	}
	l.log.Debug("Wrote ", rows.Len(), " rows for ", target)
	return tablesync.LoadResult{RowsExported: rows.Len()}, nil
}
