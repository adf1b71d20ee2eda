package observ

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestReportSumsPhases(t *testing.T) {
	tm := NewTimer()
	tm.Record("a", 2*time.Millisecond, "")
	tm.Record("bb", 3*time.Millisecond, "slow")

	r := tm.Report()
	if len(r.Phases) != 2 || r.TotalMS != 5 {
		t.Fatalf("unexpected report %+v", r)
	}
	want := "timings:\n" +
		"  a         2.00 ms\n" +
		"  bb        3.00 ms  // slow\n" +
		"  total     5.00 ms\n"
	if got := tm.Summary(); got != want {
		t.Fatalf("Summary() =\n%s\nwant\n%s", got, want)
	}
}

func TestEmptyTimer(t *testing.T) {
	if r := NewTimer().Report(); r.Phases != nil || r.TotalMS != 0 {
		t.Fatalf("expected empty report, got %+v", r)
	}
}

func TestConcurrentRecord(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.Time("x", func() string { return "" })
		}()
	}
	wg.Wait()
	if n := len(tm.Report().Phases); n != 16 {
		t.Fatalf("recorded %d phases, want 16", n)
	}
	if !strings.HasPrefix(tm.Summary(), "timings:\n") {
		t.Fatal("summary header missing")
	}
}
