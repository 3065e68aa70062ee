package actions

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/tablesync/logger"
	"github.com/relloyd/tablesync/stats"
	"github.com/relloyd/tablesync/tablesync"
)

const (
	RunStatusRunning   = "running"
	RunStatusComplete  = "complete"
	RunStatusFailed    = "failed"
	RunStatusCancelled = "cancelled"
)

var (
	errRunInProgress  = errors.New("a run is already in progress")
	errRunNotFound    = errors.New("run does not exist")
	errRunNotRunning  = errors.New("run already ended")
	errServerStopping = errors.New("server is shutting down")
)

// jobRunner is satisfied by tablesync.Job.
type jobRunner interface {
	Run(ctx context.Context) (*tablesync.RunReport, error)
}

// jobFactory returns a job that reports progress to watcher.
type jobFactory func(runId string, watcher tablesync.ProgressWatcher) (jobRunner, error)

func getJobFactory(cfg *TableSyncConfig) jobFactory {
	return func(runId string, watcher tablesync.ProgressWatcher) (jobRunner, error) {
		return NewTableSyncJob(cfg, runId, watcher)
	}
}

// RunInfo is the state of one run started by the web server.
type RunInfo struct {
	RunId     string               `json:"runId"`
	Status    string               `json:"runStatus"`
	StartTime time.Time            `json:"startTime"`
	EndTime   *time.Time           `json:"endTime,omitempty"`
	Error     string               `json:"error,omitempty"`
	Report    *tablesync.RunReport `json:"report,omitempty"`
}

type runEntry struct {
	info    RunInfo
	watcher *stats.RunWatcher
	cancel  context.CancelFunc
	done    chan struct{}
}

// runRegistry starts runs one at a time and keeps their results.
type runRegistry struct {
	mu        sync.RWMutex
	log       logger.Logger
	newJob    jobFactory
	statsFreq int
	runs      map[string]*runEntry
	order     []string // run ids in start order.
	active    string   // id of the run in progress.
	stopping  bool
}

func newRunRegistry(log logger.Logger, newJob jobFactory, statsDumpFrequencySeconds int) *runRegistry {
	return &runRegistry{log: log, newJob: newJob, statsFreq: statsDumpFrequencySeconds, runs: make(map[string]*runEntry)}
}

// StartRun launches a new run in the background and returns its id.
// It returns errRunInProgress if a run has not finished yet.
func (r *runRegistry) StartRun() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopping {
		return "", errServerStopping
	}
	if r.active != "" {
		return "", errRunInProgress
	}
	runId := tablesync.NewRunId()
	w := stats.NewRunWatcher(r.log.WithField("runId", runId), stats.SetStatsDumpFrequency(r.statsFreq))
	job, err := r.newJob(runId, w)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithCancel(context.Background())
	e := &runEntry{
		info:    RunInfo{RunId: runId, Status: RunStatusRunning, StartTime: time.Now().UTC()},
		watcher: w,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	r.runs[runId] = e
	r.order = append(r.order, runId)
	r.active = runId
	go r.run(ctx, e, job)
	return runId, nil
}

func (r *runRegistry) run(ctx context.Context, e *runEntry, job jobRunner) {
	defer close(e.done)
	defer e.cancel()
	report, err := job.Run(ctx)
	r.mu.Lock()
	defer r.mu.Unlock()
	end := time.Now().UTC()
	e.info.EndTime = &end
	e.info.Report = report
	switch {
	case err != nil && errors.Is(err, context.Canceled):
		e.info.Status = RunStatusCancelled
	case err != nil:
		e.info.Status = RunStatusFailed
		e.info.Error = err.Error()
	default:
		e.info.Status = RunStatusComplete
	}
	r.active = ""
	r.log.Info("Run ", e.info.RunId, " ended with status ", e.info.Status)
}

// List returns all runs in start order.
func (r *runRegistry) List() []RunInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	retval := make([]RunInfo, 0, len(r.order))
	for _, id := range r.order {
		i := r.runs[id].info
		i.Report = nil
		retval = append(retval, i)
	}
	return retval
}

func (r *runRegistry) Get(runId string) (RunInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.runs[runId]
	if !ok {
		return RunInfo{}, errRunNotFound
	}
	return e.info, nil
}

func (r *runRegistry) GetStats(runId string) (stats.RunStats, error) {
	r.mu.RLock()
	e, ok := r.runs[runId]
	r.mu.RUnlock()
	if !ok {
		return stats.RunStats{}, errRunNotFound
	}
	return e.watcher.GetStats(), nil
}

// Stop cancels the run which then ends after its current table.
func (r *runRegistry) Stop(runId string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.runs[runId]
	if !ok {
		return errRunNotFound
	}
	if e.info.Status != RunStatusRunning {
		return errRunNotRunning
	}
	e.cancel()
	return nil
}

// Shutdown refuses new runs, cancels the active run and waits up to timeout for it to end.
// It returns false if the timeout expired.
func (r *runRegistry) Shutdown(timeout time.Duration) bool {
	r.mu.Lock()
	r.stopping = true
	var done chan struct{}
	if e, ok := r.runs[r.active]; ok {
		e.cancel()
		done = e.done
	}
	r.mu.Unlock()
	if done == nil {
		return true
	}
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
