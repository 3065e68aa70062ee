package tablesync

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/tablesync/helper"
	"github.com/relloyd/tablesync/logger"
)

// JobConfig wires the stages of a Job together.
type JobConfig struct {
	Log            logger.Logger `errorTxt:"logger" mandatory:"yes"`
	RunId          string        // optional; a new id is generated when blank.
	SourceDatabase string        `errorTxt:"source database" mandatory:"yes"`
	TargetDatabase string
	TargetSchema   string
	Discoverer     Discoverer  `errorTxt:"table discoverer" mandatory:"yes"`
	Extractor      Extractor   `errorTxt:"table extractor" mandatory:"yes"`
	Transformer    Transformer // defaults to ColumnNormaliser.
	Loader         Loader      `errorTxt:"table loader" mandatory:"yes"`
	Filter         TableFilter
	Watcher        ProgressWatcher
	Retry          RetryPolicy
	Now            func() time.Time
}

// Job discovers the tables of a source database and copies each of them to the target in turn.
type Job struct {
	cfg JobConfig
}

func NewJob(cfg JobConfig) (*Job, error) {
	if err := helper.ValidateStructIsPopulated(&cfg); err != nil {
		return nil, err
	}
	if cfg.Transformer == nil {
		cfg.Transformer = NewColumnNormaliser()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.RunId == "" {
		cfg.RunId = NewRunId()
	}
	return &Job{cfg: cfg}, nil
}

func (j *Job) RunId() string {
	return j.cfg.RunId
}

// Run processes every discovered table sequentially.
// Only a discovery failure is fatal: per-table errors are recorded in the report and the run continues.
// If ctx is cancelled the loop stops before the next table and the partial report is returned with ctx.Err().
func (j *Job) Run(ctx context.Context) (*RunReport, error) {
	log := j.cfg.Log.WithField("runId", j.cfg.RunId)
	report := newRunReport(j.cfg.RunId)
	report.StartTime = j.cfg.Now().UTC()
	log.Info("Discovering tables in source database ", j.cfg.SourceDatabase)
	tables, err := j.cfg.Discoverer.Discover(ctx, j.cfg.SourceDatabase)
	if err != nil {
		log.Error("Table discovery failed: ", err)
		return nil, &DiscoveryError{Database: j.cfg.SourceDatabase, Err: err}
	}
	if tables, err = j.filter(tables); err != nil {
		log.Error(err)
		return nil, err
	}
	log.Info(fmt.Sprintf("Found %v tables to process", len(tables)))
	for name, refs := range sharedTargetNames(tables) {
		log.Warn(fmt.Sprintf("Source tables %v load into the same target table %v, the last one loaded replaces the others", refs, name))
	}
	if j.cfg.Watcher != nil {
		j.cfg.Watcher.RunStarted(len(tables))
		defer j.cfg.Watcher.RunFinished()
	}
	for idx, t := range tables { // for each table...
		if err = ctx.Err(); err != nil { // if we were asked to stop...
			log.Warn("Run cancelled before table ", t, ": ", err)
			report.EndTime = j.cfg.Now().UTC()
			report.LogSummary(log)
			return report, err
		}
		tlog := log.WithField("table", t.String())
		tlog.Info(fmt.Sprintf("Processing table %v/%v: %v", idx+1, len(tables), t))
		if j.cfg.Watcher != nil {
			j.cfg.Watcher.TableStarted(t.String())
		}
		rowsExported, err := j.processTable(ctx, tlog, t)
		if err != nil {
			tlog.Error("Failed to process table ", t, ": ", err)
			report.addFailure(t, err)
			if j.cfg.Watcher != nil {
				j.cfg.Watcher.TableFailed(t.String(), err)
			}
			continue
		}
		tlog.Info(fmt.Sprintf("Exported %v rows to %v", rowsExported, j.loadTarget(t)))
		report.addSuccess(t, rowsExported)
		if j.cfg.Watcher != nil {
			j.cfg.Watcher.TableSucceeded(t.String(), rowsExported)
		}
	}
	report.EndTime = j.cfg.Now().UTC()
	report.LogSummary(log)
	return report, nil
}

func (j *Job) processTable(ctx context.Context, log logger.Logger, t TableRef) (int, error) {
	var rows *RowSet
	err := j.cfg.Retry.Do(ctx, log, "extract", func() (err error) {
		rows, err = j.cfg.Extractor.Extract(ctx, j.cfg.SourceDatabase, t)
		return
	})
	if err != nil {
		return 0, err
	}
	if rows == nil {
		return 0, &QueryError{Table: t.String(), Err: errors.New("extractor returned no row set")}
	}
	log.Debug("Extracted ", rows.Len(), " rows")
	out, err := j.cfg.Transformer.Transform(rows)
	if err != nil {
		return 0, errors.Wrap(err, "transform failed")
	}
	var res LoadResult
	err = j.cfg.Retry.Do(ctx, log, "load", func() (err error) {
		res, err = j.cfg.Loader.Load(ctx, out, j.loadTarget(t))
		return
	})
	if err != nil {
		return 0, err
	}
	return res.RowsExported, nil
}

func (j *Job) loadTarget(t TableRef) LoadTarget {
	return LoadTarget{Database: j.cfg.TargetDatabase, Schema: j.cfg.TargetSchema, Table: t.Name}
}

// sharedTargetNames returns the source tables, keyed by target table name, where more than one
// table maps to the same target e.g. dbo.patients and audit.patients.
func sharedTargetNames(tables []TableRef) map[string][]TableRef {
	byName := make(map[string][]TableRef, len(tables))
	for _, t := range tables {
		byName[t.Name] = append(byName[t.Name], t)
	}
	for name, refs := range byName {
		if len(refs) < 2 {
			delete(byName, name)
		}
	}
	return byName
}

func (j *Job) filter(tables []TableRef) ([]TableRef, error) {
	if j.cfg.Filter == nil {
		return tables, nil
	}
	retval := make([]TableRef, 0, len(tables))
	for _, t := range tables {
		ok, err := j.cfg.Filter.Include(t)
		if err != nil {
			return nil, errors.Wrapf(err, "error applying table filter to %v", t)
		}
		if ok {
			retval = append(retval, t)
		} else {
			j.cfg.Log.Debug("Skipping table excluded by filter: ", t)
		}
	}
	return retval, nil
}
