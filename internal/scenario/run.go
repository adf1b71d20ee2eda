// Package scenario runs end-to-end reflection checks, each in a fresh
// compilation, for the self-test command and the package tests.
package scenario

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"reflex/internal/diag"
	"reflex/internal/meta"
	"reflex/internal/source"
	"reflex/internal/testkit"
	"reflex/internal/trace"
)

// Options configure RunAll.
type Options struct {
	// Session is the template for every scenario session. Its Reporter is
	// replaced by the scenario's own bag.
	Session        meta.Options
	MaxDiagnostics int
	Jobs           int
	// Progress receives queued/running/finished events from RunAll.
	Progress ProgressSink
}

// Outcome is the result of one scenario.
type Outcome struct {
	Name     string
	Err      error
	Bag      *diag.Bag
	Files    *source.FileSet
	Duration time.Duration
}

// Passed reports whether the scenario met all of its expectations.
func (o *Outcome) Passed() bool { return o.Err == nil }

// Run executes sc in a fresh compilation.
func Run(sc Scenario, opts Options) (out Outcome) {
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = 32
	}
	h := newHarness(sc.Name, sc.Source, opts.Session, opts.MaxDiagnostics)
	out = Outcome{Name: sc.Name, Bag: h.Bag, Files: h.Files}

	start := time.Now()
	sp := h.Session.BeginSpan(trace.ScopeSession, "scenario:"+sc.Name)
	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("panic: %v", r)
		}
		out.Duration = time.Since(start)
		detail := "ok"
		if out.Err != nil {
			detail = out.Err.Error()
		}
		h.Session.EndSpan(sp, detail)
	}()

	sc.Run(h)
	if err := h.Err(); err != nil {
		out.Err = err
		return out
	}
	got := make([]diag.Code, 0, h.Bag.Len())
	for _, d := range h.Bag.Items() {
		got = append(got, d.Code)
	}
	if !slices.Equal(got, sc.Expect) {
		out.Err = fmt.Errorf("diagnostics %v, want %v", got, sc.Expect)
		return out
	}
	if err := testkit.CheckDiagnosticSpans(h.Bag, h.Files); err != nil {
		out.Err = err
	}
	return out
}

// RunAll executes scenarios in parallel. Each one owns its program and
// session; only the tracer is shared. Outcomes keep the input order.
func RunAll(ctx context.Context, scenarios []Scenario, opts Options) ([]Outcome, error) {
	outcomes := make([]Outcome, len(scenarios))
	if len(scenarios) == 0 {
		return outcomes, nil
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	for _, sc := range scenarios {
		emit(opts.Progress, Event{Name: sc.Name, Status: StatusQueued})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(scenarios)))
	for i, sc := range scenarios {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			emit(opts.Progress, Event{Name: sc.Name, Status: StatusRunning})
			out := Run(sc, opts)
			status := StatusPassed
			if !out.Passed() {
				status = StatusFailed
			}
			emit(opts.Progress, Event{Name: sc.Name, Status: status, Err: out.Err, Elapsed: out.Duration})
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
