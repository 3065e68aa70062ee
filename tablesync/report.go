package tablesync

import (
	"fmt"

	"github.com/relloyd/tablesync/logger"
	"github.com/rs/xid"
)

// NewRunId returns a new globally unique, sortable run identifier.
func NewRunId() string {
	return xid.New().String()
}

func newRunReport(runId string) *RunReport {
	return &RunReport{
		RunId:     runId,
		Successes: make([]TableSuccess, 0),
		Failures:  make([]TableFailure, 0),
	}
}

func (r *RunReport) addSuccess(t TableRef, rowsExported int) {
	r.Successes = append(r.Successes, TableSuccess{Schema: t.Schema, Table: t.Name, RowsExported: rowsExported})
}

func (r *RunReport) addFailure(t TableRef, err error) {
	r.Failures = append(r.Failures, TableFailure{Schema: t.Schema, Table: t.Name, Error: err.Error()})
}

// HasFailures returns true if any table failed.
func (r *RunReport) HasFailures() bool {
	return len(r.Failures) > 0
}

// TotalRowsExported sums the rows written for every successful table.
func (r *RunReport) TotalRowsExported() (total int) {
	for _, s := range r.Successes {
		total += s.RowsExported
	}
	return
}

// LogSummary writes the number of successes and failures followed by one line per failure.
func (r *RunReport) LogSummary(log logger.Logger) {
	log.Info(fmt.Sprintf("Successfully processed %v tables", len(r.Successes)))
	if len(r.Failures) == 0 {
		return
	}
	log.Warn(fmt.Sprintf("Failed to process %v tables", len(r.Failures)))
	for _, f := range r.Failures {
		log.Warn(fmt.Sprintf("  - %v.%v: %v", f.Schema, f.Table, f.Error))
	}
}
