package stats

import (
	"errors"
	"testing"

	"github.com/relloyd/tablesync/logger"
)

func TestRunWatcher(t *testing.T) {
	log := logger.NewLogger("tablesync-test", "error", false)
	w := NewRunWatcher(log, SetStatsDumpFrequency(0))
	if s := w.GetStats(); s.StatusText != StatusPending {
		t.Fatalf("expected status %v before the run; got %v", StatusPending, s.StatusText)
	}
	w.RunStarted(3)
	w.TableStarted("dbo.a")
	w.TableSucceeded("dbo.a", 10)
	w.TableStarted("dbo.b")
	w.TableFailed("dbo.b", errors.New("boom"))
	w.TableStarted("dbo.c")
	s := w.GetStats()
	if s.StatusText != StatusRunning {
		t.Fatalf("expected status %v; got %v", StatusRunning, s.StatusText)
	}
	if s.TablesTotal != 3 || s.TablesDone != 1 || s.TablesFailed != 1 || s.TotalRowsExported != 10 {
		t.Fatalf("unexpected counters: %+v", s)
	}
	if len(s.Tables) != 3 {
		t.Fatalf("expected 3 tables; got %v", len(s.Tables))
	}
	expected := []string{StatusComplete, StatusFailed, StatusRunning}
	for idx, ts := range s.Tables {
		if ts.StatusText != expected[idx] {
			t.Fatalf("table %v: expected status %v; got %v", ts.Table, expected[idx], ts.StatusText)
		}
	}
	if s.Tables[1].Error != "boom" {
		t.Fatalf("expected the failure to be recorded; got %q", s.Tables[1].Error)
	}
	w.TableSucceeded("dbo.c", 5)
	w.RunFinished()
	s = w.GetStats()
	if s.StatusText != StatusComplete || s.TotalRowsExported != 15 {
		t.Fatalf("unexpected final stats: %+v", s)
	}
}

func TestRunWatcherTicker(t *testing.T) {
	log := logger.NewLogger("tablesync-test", "error", false)
	w := NewRunWatcher(log, SetStatsDumpFrequency(1))
	w.RunStarted(0)
	w.RunFinished() // must stop the ticker goroutine without blocking.
	w.RunFinished() // and be safe to call twice.
}
