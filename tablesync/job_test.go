package tablesync

import (
	"context"
	"errors"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/relloyd/tablesync/logger"
)

type fakeDiscoverer struct {
	tables []TableRef
	err    error
}

func (d *fakeDiscoverer) Discover(ctx context.Context, sourceDatabase string) ([]TableRef, error) {
	return d.tables, d.err
}

type fakeExtractor struct {
	rows     map[string]int   // table name => number of rows
	failures map[string]error // table name => error to return
	calls    []string
}

func (e *fakeExtractor) Extract(ctx context.Context, sourceDatabase string, table TableRef) (*RowSet, error) {
	e.calls = append(e.calls, table.Name)
	if err, ok := e.failures[table.Name]; ok {
		return nil, err
	}
	rs := NewRowSet([]Column{{Name: "id"}, {Name: "name"}})
	for idx := 0; idx < e.rows[table.Name]; idx++ {
		_ = rs.Append([]interface{}{int64(idx), fmt.Sprintf("row%v", idx)})
	}
	return rs, nil
}

type fakeLoader struct {
	targets  []LoadTarget
	columns  [][]string
	failures map[string]error
	cancel   context.CancelFunc // optional; called after the first load.
}

func (l *fakeLoader) Load(ctx context.Context, rows *RowSet, target LoadTarget) (LoadResult, error) {
	l.targets = append(l.targets, target)
	l.columns = append(l.columns, rows.ColumnNames())
	if l.cancel != nil {
		l.cancel()
	}
	if err, ok := l.failures[target.Table]; ok {
		return LoadResult{}, err
	}
	return LoadResult{RowsExported: rows.Len()}, nil
}

type fakeFilter struct {
	exclude string
}

func (f fakeFilter) Include(table TableRef) (bool, error) {
	return table.Name != f.exclude, nil
}

type fakeWatcher struct {
	total, started, succeeded, failed int
	finished                          bool
}

func (w *fakeWatcher) RunStarted(numTables int)                     { w.total = numTables }
func (w *fakeWatcher) TableStarted(table string)                    { w.started++ }
func (w *fakeWatcher) TableSucceeded(table string, rowsExported int) { w.succeeded++ }
func (w *fakeWatcher) TableFailed(table string, err error)          { w.failed++ }
func (w *fakeWatcher) RunFinished()                                 { w.finished = true }

var _ = Describe("Job", func() {
	var (
		log        logger.Logger
		discoverer *fakeDiscoverer
		extractor  *fakeExtractor
		loader     *fakeLoader
		cfg        JobConfig
	)

	BeforeEach(func() {
		log = logger.NewLogger("tablesync-test", "error", false)
		discoverer = &fakeDiscoverer{tables: []TableRef{{Schema: "dbo", Name: "patients"}, {Schema: "dbo", Name: "visits"}}}
		extractor = &fakeExtractor{rows: map[string]int{"patients": 100, "visits": 250}}
		loader = &fakeLoader{}
		cfg = JobConfig{
			Log:            log,
			SourceDatabase: "clinic",
			TargetDatabase: "RAW",
			TargetSchema:   "BRONZE",
			Discoverer:     discoverer,
			Extractor:      extractor,
			Loader:         loader,
		}
	})

	Describe("NewJob", func() {
		It("rejects a config with missing stages", func() {
			_, err := NewJob(JobConfig{Log: log, SourceDatabase: "clinic"})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("table discoverer"))
			Expect(err.Error()).To(ContainSubstring("table loader"))
		})

		It("generates a run id when none is given", func() {
			j, err := NewJob(cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(j.RunId()).NotTo(BeEmpty())
		})
	})

	Describe("Run", func() {
		It("reports every table exported", func() {
			j, err := NewJob(cfg)
			Expect(err).NotTo(HaveOccurred())
			report, err := j.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Successes).To(Equal([]TableSuccess{
				{Schema: "dbo", Table: "patients", RowsExported: 100},
				{Schema: "dbo", Table: "visits", RowsExported: 250},
			}))
			Expect(report.Failures).To(BeEmpty())
			Expect(report.RunId).To(Equal(j.RunId()))
			Expect(report.TotalRowsExported()).To(Equal(350))
		})

		It("loads into a table with the same name as the source", func() {
			j, _ := NewJob(cfg)
			_, err := j.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(loader.targets).To(Equal([]LoadTarget{
				{Database: "RAW", Schema: "BRONZE", Table: "patients"},
				{Database: "RAW", Schema: "BRONZE", Table: "visits"},
			}))
		})

		It("transforms rows before loading", func() {
			j, _ := NewJob(cfg)
			_, err := j.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(loader.columns[0]).To(Equal([]string{"ID", "NAME", "LOADED_AT_UTC"}))
		})

		It("continues past a table that fails to extract", func() {
			discoverer.tables = []TableRef{{Schema: "dbo", Name: "t1"}, {Schema: "dbo", Name: "t2"}, {Schema: "dbo", Name: "t3"}}
			extractor.rows = map[string]int{"t1": 1, "t3": 3}
			extractor.failures = map[string]error{"t2": &QueryError{Table: "dbo.t2", Err: errors.New("invalid object name")}}
			j, _ := NewJob(cfg)
			report, err := j.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Successes).To(Equal([]TableSuccess{
				{Schema: "dbo", Table: "t1", RowsExported: 1},
				{Schema: "dbo", Table: "t3", RowsExported: 3},
			}))
			Expect(report.Failures).To(HaveLen(1))
			Expect(report.Failures[0].Table).To(Equal("t2"))
			Expect(report.Failures[0].Error).To(ContainSubstring("invalid object name"))
			Expect(report.HasFailures()).To(BeTrue())
		})

		It("records a load failure and continues", func() {
			loader.failures = map[string]error{"patients": &WriteError{Table: "patients", Err: errors.New("insufficient privileges")}}
			j, _ := NewJob(cfg)
			report, err := j.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Failures).To(HaveLen(1))
			Expect(report.Successes).To(HaveLen(1))
			Expect(report.Successes[0].Table).To(Equal("visits"))
		})

		It("records a column collision as a table failure", func() {
			cfg.Extractor = collidingExtractor{}
			j, _ := NewJob(cfg)
			report, err := j.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Successes).To(BeEmpty())
			Expect(report.Failures).To(HaveLen(2))
			Expect(report.Failures[0].Error).To(ContainSubstring("collide"))
		})

		It("records a table as failed when the extractor returns no row set", func() {
			cfg.Extractor = nilExtractor{}
			j, _ := NewJob(cfg)
			report, err := j.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Successes).To(BeEmpty())
			Expect(report.Failures).To(HaveLen(2))
			Expect(report.Failures[0].Error).To(ContainSubstring("no row set"))
			Expect(loader.targets).To(BeEmpty())
		})

		It("loads tables that share a name in different schemas into the same target", func() {
			discoverer.tables = []TableRef{{Schema: "dbo", Name: "patients"}, {Schema: "audit", Name: "patients"}}
			j, _ := NewJob(cfg)
			report, err := j.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Successes).To(HaveLen(2))
			Expect(loader.targets).To(Equal([]LoadTarget{
				{Database: "RAW", Schema: "BRONZE", Table: "patients"},
				{Database: "RAW", Schema: "BRONZE", Table: "patients"},
			}))
		})

		It("returns an empty report when there are no tables", func() {
			discoverer.tables = nil
			j, _ := NewJob(cfg)
			report, err := j.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Successes).To(BeEmpty())
			Expect(report.Failures).To(BeEmpty())
		})

		It("aborts when discovery fails", func() {
			discoverer.err = &ConnectionError{Err: errors.New("login failed")}
			j, _ := NewJob(cfg)
			report, err := j.Run(context.Background())
			Expect(report).To(BeNil())
			var de *DiscoveryError
			Expect(errors.As(err, &de)).To(BeTrue())
			var ce *ConnectionError
			Expect(errors.As(err, &ce)).To(BeTrue())
			Expect(extractor.calls).To(BeEmpty())
		})

		It("skips tables excluded by the filter", func() {
			cfg.Filter = fakeFilter{exclude: "patients"}
			j, _ := NewJob(cfg)
			report, err := j.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(extractor.calls).To(Equal([]string{"visits"}))
			Expect(report.Successes).To(HaveLen(1))
		})

		It("stops before the next table when cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			loader.cancel = cancel
			j, _ := NewJob(cfg)
			report, err := j.Run(ctx)
			Expect(err).To(Equal(context.Canceled))
			Expect(report).NotTo(BeNil())
			Expect(report.Successes).To(HaveLen(1))
			Expect(extractor.calls).To(Equal([]string{"patients"}))
		})

		It("retries extracts that fail to connect", func() {
			cfg.Extractor = &flakyExtractor{fakeExtractor: extractor, failuresLeft: 1}
			cfg.Retry = RetryPolicy{MaxAttempts: 2, Backoff: time.Millisecond}
			j, _ := NewJob(cfg)
			report, err := j.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Failures).To(BeEmpty())
			Expect(report.Successes).To(HaveLen(2))
		})

		It("notifies the progress watcher", func() {
			w := &fakeWatcher{}
			cfg.Watcher = w
			loader.failures = map[string]error{"visits": &WriteError{Table: "visits", Err: errors.New("boom")}}
			j, _ := NewJob(cfg)
			_, err := j.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(w.total).To(Equal(2))
			Expect(w.started).To(Equal(2))
			Expect(w.succeeded).To(Equal(1))
			Expect(w.failed).To(Equal(1))
			Expect(w.finished).To(BeTrue())
		})
	})
})

type collidingExtractor struct{}

func (collidingExtractor) Extract(ctx context.Context, sourceDatabase string, table TableRef) (*RowSet, error) {
	rs := NewRowSet([]Column{{Name: "id"}, {Name: "ID"}})
	_ = rs.Append([]interface{}{1, 2})
	return rs, nil
}

type flakyExtractor struct {
	*fakeExtractor
	failuresLeft int
}

func (f *flakyExtractor) Extract(ctx context.Context, sourceDatabase string, table TableRef) (*RowSet, error) {
	if f.failuresLeft > 0 {
		f.failuresLeft--
		return nil, &ConnectionError{Table: table.String(), Err: errors.New("connection reset")}
	}
	return f.fakeExtractor.Extract(ctx, sourceDatabase, table)
}

type nilExtractor struct{}

func (nilExtractor) Extract(ctx context.Context, sourceDatabase string, table TableRef) (*RowSet, error) {
	return nil, nil
}

var _ = Describe("sharedTargetNames", func() {
	It("returns only target names loaded by more than one source table", func() {
		got := sharedTargetNames([]TableRef{
			{Schema: "dbo", Name: "patients"},
			{Schema: "dbo", Name: "visits"},
			{Schema: "audit", Name: "patients"},
		})
		Expect(got).To(Equal(map[string][]TableRef{
			"patients": {{Schema: "dbo", Name: "patients"}, {Schema: "audit", Name: "patients"}},
		}))
	})

	It("returns nothing when target names are unique", func() {
		Expect(sharedTargetNames([]TableRef{{Schema: "dbo", Name: "patients"}})).To(BeEmpty())
	})
})
