package tablesync

import "fmt"

// ConnectionError is returned when a source or target database cannot be reached.
// It is the only error retried by a RetryPolicy.
type ConnectionError struct {
	Table string // empty during discovery.
	Err   error
}

func (e *ConnectionError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("connection error: %v", e.Err)
	}
	return fmt.Sprintf("connection error for table %v: %v", e.Table, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// QueryError is returned when a query against the source fails.
type QueryError struct {
	Table string
	Sql   string
	Err   error
}

func (e *QueryError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("query error: %v", e.Err)
	}
	return fmt.Sprintf("query error for table %v: %v", e.Table, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// WriteError is returned when rows cannot be written to the target.
type WriteError struct {
	Table string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write error for table %v: %v", e.Table, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// ColumnCollisionError is returned when two source columns have the same upper-case name.
type ColumnCollisionError struct {
	Column  string
	Sources []string
}

func (e *ColumnCollisionError) Error() string {
	return fmt.Sprintf("columns %q collide when upper-cased to %q", e.Sources, e.Column)
}

// DiscoveryError aborts a run before any table is processed.
type DiscoveryError struct {
	Database string
	Err      error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("unable to discover tables in database %q: %v", e.Database, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}
