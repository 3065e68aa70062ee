package tablesync

import "context"

// Discoverer lists the base tables of a source database in catalog order.
type Discoverer interface {
	Discover(ctx context.Context, sourceDatabase string) ([]TableRef, error)
}

// Extractor fetches every row of one source table.
type Extractor interface {
	Extract(ctx context.Context, sourceDatabase string, table TableRef) (*RowSet, error)
}

// Transformer returns a new RowSet derived from rows.
type Transformer interface {
	Transform(rows *RowSet) (*RowSet, error)
}

// Loader replaces the contents of target with rows.
type Loader interface {
	Load(ctx context.Context, rows *RowSet, target LoadTarget) (LoadResult, error)
}

// TableFilter decides which discovered tables are processed.
type TableFilter interface {
	Include(table TableRef) (bool, error)
}

// ProgressWatcher receives progress events from a running Job.
// Table names are given as schema.table.
type ProgressWatcher interface {
	RunStarted(numTables int)
	TableStarted(table string)
	TableSucceeded(table string, rowsExported int)
	TableFailed(table string, err error)
	RunFinished()
}
