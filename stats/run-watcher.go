package stats

import (
	"fmt"
	"sync"
	"time"

	"github.com/cevaris/ordered_map"
	c "github.com/relloyd/tablesync/constants"
	"github.com/relloyd/tablesync/logger"
)

const (
	StatusPending  = "pending"
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

var statusEmoji = map[string]string{
	StatusPending:  "\U0001F4A4", // zzz
	StatusRunning:  "\U0000231B", // hour glass
	StatusComplete: "\U00002705", // green tick
	StatusFailed:   c.EmojiBang,
}

type StatsFetcher interface {
	GetStats() RunStats
}

// TableStats is the progress of a single table.
type TableStats struct {
	Table          string `json:"table"`
	StatusText     string `json:"statusText"`
	StatusEmoji    string `json:"statusEmoji"`
	ElapsedTimeSec int    `json:"elapsedTimeSec"`
	RowsExported   int    `json:"rowsExported"`
	Error          string `json:"error,omitempty"`
	startTime      time.Time
	endTime        time.Time
}

// RunStats is a snapshot of the progress of a run.
type RunStats struct {
	StatusText        string       `json:"statusText"`
	StatusEmoji       string       `json:"statusEmoji"`
	ElapsedTimeSec    int          `json:"elapsedTimeSec"`
	TablesTotal       int          `json:"tablesTotal"`
	TablesDone        int          `json:"tablesDone"`
	TablesFailed      int          `json:"tablesFailed"`
	TotalRowsExported int          `json:"totalRowsExported"`
	RowsPerSecondAvg  int          `json:"rowsPerSecondAvg"`
	Tables            []TableStats `json:"tables"`
}

// RunWatcher implements tablesync.ProgressWatcher.
// It records the progress of each table and logs a snapshot every dump interval while the run is going.
type RunWatcher struct {
	mu                sync.Mutex
	log               logger.Logger
	tickerFrequency   int
	ticker            *time.Ticker
	tickerDone        chan struct{}
	isRunning         bool
	startTime         time.Time
	endTime           time.Time
	tablesTotal       int
	tablesDone        int
	tablesFailed      int
	totalRowsExported int
	mapTableStats     *ordered_map.OrderedMap // table name => *TableStats
}

// SetStatsDumpFrequency returns a function that can be supplied as an option to constructor NewRunWatcher().
// Zero disables the periodic log output.
func SetStatsDumpFrequency(seconds int) func(w *RunWatcher) {
	return func(w *RunWatcher) {
		w.tickerFrequency = seconds
	}
}

// NewRunWatcher creates a new RunWatcher.
// Optionally supply func SetStatsDumpFrequency() to override the default stats dump frequency.
func NewRunWatcher(log logger.Logger, options ...func(w *RunWatcher)) *RunWatcher {
	w := &RunWatcher{log: log, tickerFrequency: c.StatsCaptureFrequencySeconds}
	for _, option := range options {
		option(w)
	}
	w.mapTableStats = ordered_map.NewOrderedMap()
	return w
}

func (w *RunWatcher) RunStarted(numTables int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.startTime = time.Now()
	w.isRunning = true
	w.tablesTotal = numTables
	if w.tickerFrequency > 0 { // if stats dumping is enabled...
		w.ticker = time.NewTicker(time.Second * time.Duration(w.tickerFrequency))
		w.tickerDone = make(chan struct{})
		go func(ticker *time.Ticker, done chan struct{}) {
			w.log.Debug("stats dumper ticker started")
			for {
				select {
				case <-done:
					w.log.Debug("stats dumper ticker stopped")
					return
				case <-ticker.C:
					w.log.Info(w.GetStats().String())
				}
			}
		}(w.ticker, w.tickerDone)
	} else {
		w.log.Debug("stats dumper disabled")
	}
}

func (w *RunWatcher) TableStarted(table string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.mapTableStats.Set(table, &TableStats{Table: table, StatusText: StatusRunning, startTime: time.Now()})
}

func (w *RunWatcher) TableSucceeded(table string, rowsExported int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ts := w.getTable(table)
	ts.StatusText = StatusComplete
	ts.RowsExported = rowsExported
	ts.endTime = time.Now()
	w.tablesDone++
	w.totalRowsExported += rowsExported
}

func (w *RunWatcher) TableFailed(table string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ts := w.getTable(table)
	ts.StatusText = StatusFailed
	ts.Error = err.Error()
	ts.endTime = time.Now()
	w.tablesFailed++
}

// RunFinished stops the ticker and logs the final stats.
func (w *RunWatcher) RunFinished() {
	w.mu.Lock()
	if w.ticker != nil {
		w.ticker.Stop()
		close(w.tickerDone) // cause the goroutine to exit (we can't close ticker.C)
		w.ticker = nil
	}
	w.isRunning = false
	w.endTime = time.Now()
	w.mu.Unlock()
	w.log.Info(w.GetStats().String())
}

// getTable returns the stats for table, adding them if TableStarted was not called.
// The caller must hold the lock.
func (w *RunWatcher) getTable(table string) *TableStats {
	v, ok := w.mapTableStats.Get(table)
	if !ok {
		ts := &TableStats{Table: table, startTime: time.Now()}
		w.mapTableStats.Set(table, ts)
		return ts
	}
	return v.(*TableStats)
}

// GetStats implements interface StatsFetcher{}.
func (w *RunWatcher) GetStats() RunStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	status := StatusPending
	var elapsed time.Duration
	if w.isRunning {
		status = StatusRunning
		elapsed = time.Since(w.startTime)
	} else if !w.endTime.IsZero() {
		status = StatusComplete
		elapsed = w.endTime.Sub(w.startTime)
	}
	s := RunStats{
		StatusText:        status,
		StatusEmoji:       statusEmoji[status],
		ElapsedTimeSec:    int(elapsed.Seconds()),
		TablesTotal:       w.tablesTotal,
		TablesDone:        w.tablesDone,
		TablesFailed:      w.tablesFailed,
		TotalRowsExported: w.totalRowsExported,
		RowsPerSecondAvg:  w.totalRowsExported / getNumSecondsOrOne(elapsed),
		Tables:            make([]TableStats, 0, w.mapTableStats.Len()),
	}
	iter := w.mapTableStats.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() { // for each table seen so far...
		ts := *kv.Value.(*TableStats)
		end := ts.endTime
		if end.IsZero() {
			end = time.Now()
		}
		ts.ElapsedTimeSec = int(end.Sub(ts.startTime).Seconds())
		ts.StatusEmoji = statusEmoji[ts.StatusText]
		s.Tables = append(s.Tables, ts)
	}
	return s
}

// String will format the stats for general logging.
func (s RunStats) String() string {
	return fmt.Sprintf(
		"Stats for run %v %v "+
			"elapsedTimeSec=%v "+
			"tablesTotal=%v "+
			"tablesDone=%v "+
			"tablesFailed=%v "+
			"totalRowsExported=%v "+
			"rowsPerSecondAvg=%v",
		s.StatusText, s.StatusEmoji,
		s.ElapsedTimeSec,
		s.TablesTotal,
		s.TablesDone,
		s.TablesFailed,
		s.TotalRowsExported,
		s.RowsPerSecondAvg,
	)
}

func getNumSecondsOrOne(d time.Duration) int {
	seconds := int(d.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}
