// Package executor runs a job graph: it seeds a ready set with the jobs
// whose needs are empty, launches every ready job concurrently, and
// re-evaluates dependents as jobs reach terminal states. Failure cascades to
// transitive dependents as Skipped; jobs already running are never forcibly
// cancelled, so their diagnostics stay available for the report.
package executor

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sourceplane/gateci/internal/ctxlog"
	"github.com/sourceplane/gateci/internal/graph"
	"github.com/sourceplane/gateci/internal/model"
	"github.com/sourceplane/gateci/internal/provision"
)

// Executor coordinates one run of a job graph. The graph is read-only and
// shared; all mutable run state is owned by the coordinating loop, and
// worker goroutines report back over a channel.
type Executor struct {
	graph       *graph.Graph
	provisioner provision.Provisioner
	progress    io.Writer
	dryRun      bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithProgress directs human-readable progress lines to w.
func WithProgress(w io.Writer) Option {
	return func(e *Executor) { e.progress = w }
}

// WithDryRun makes the executor print step commands instead of running them.
// Every job succeeds; no context is provisioned.
func WithDryRun(dryRun bool) Option {
	return func(e *Executor) { e.dryRun = dryRun }
}

// New creates an executor for the given graph.
func New(g *graph.Graph, p provision.Provisioner, opts ...Option) *Executor {
	e := &Executor{
		graph:       g,
		provisioner: p,
		progress:    io.Discard,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// outcome is what a job goroutine reports back to the coordinating loop.
type outcome struct {
	name       string
	status     model.Status
	kind       model.FailureKind
	failedStep string
	output     string
	steps      []model.StepResult
	startedAt  time.Time
	endedAt    time.Time
}

// Execute drives the run to completion: every job ends Succeeded, Failed or
// Skipped. The run's results are populated in place; the verdict is left to
// the report package.
func (e *Executor) Execute(ctx context.Context, run *model.Run) error {
	logger := ctxlog.FromContext(ctx).With("run", run.ID)

	statuses := make(map[string]model.Status, len(run.Results))
	for _, name := range e.graph.JobNames() {
		statuses[name] = model.StatusPending
	}
	for _, name := range e.graph.Roots() {
		statuses[name] = model.StatusReady
	}

	done := make(chan outcome)
	running := 0

	for {
		// Launch everything currently ready. There is no artificial
		// concurrency cap; independent jobs run in parallel.
		for _, name := range e.graph.JobNames() {
			if statuses[name] != model.StatusReady {
				continue
			}
			job, _ := e.graph.Job(name)
			statuses[name] = model.StatusRunning
			run.Results[name].Status = model.StatusRunning
			running++

			fmt.Fprintf(e.progress, "→ Job %s (%s)\n", name, job.Environment())
			if e.dryRun {
				for _, step := range job.Steps {
					fmt.Fprintf(e.progress, "  - %s\n    %s\n", step.Name, step.Run)
				}
			}
			logger.Debug("job started", "job", name, "environment", string(job.Environment()))

			go e.runJob(ctx, job, done)
		}

		if running == 0 {
			break
		}

		out := <-done
		running--
		e.apply(run, statuses, out)
	}

	// A finite acyclic graph always drains; anything still pending here
	// would be a scheduling bug.
	for name, status := range statuses {
		if !status.IsTerminal() {
			return fmt.Errorf("job %s ended in non-terminal state %s", name, status)
		}
	}

	return nil
}

// apply records a job outcome and re-evaluates its dependents: the succeeded
// path promotes newly eligible jobs to ready, the failed path cascades
// skips.
func (e *Executor) apply(run *model.Run, statuses map[string]model.Status, out outcome) {
	statuses[out.name] = out.status

	res := run.Results[out.name]
	res.Status = out.status
	res.FailureKind = out.kind
	res.FailedStep = out.failedStep
	res.Output = out.output
	res.Steps = out.steps
	res.StartedAt = out.startedAt
	res.EndedAt = out.endedAt

	switch out.status {
	case model.StatusSucceeded:
		fmt.Fprintf(e.progress, "✓ Job %s succeeded\n", out.name)
		for _, dependent := range e.graph.Dependents(out.name) {
			if statuses[dependent] != model.StatusPending {
				continue
			}
			if e.allNeedsSucceeded(statuses, dependent) {
				statuses[dependent] = model.StatusReady
			}
		}
	case model.StatusFailed:
		if out.failedStep != "" {
			fmt.Fprintf(e.progress, "✗ Job %s failed at step %s\n", out.name, out.failedStep)
		} else {
			fmt.Fprintf(e.progress, "✗ Job %s failed (%s)\n", out.name, out.kind)
		}
		e.cascadeSkip(run, statuses, out.name)
	}
}

func (e *Executor) allNeedsSucceeded(statuses map[string]model.Status, name string) bool {
	job, _ := e.graph.Job(name)
	for _, dep := range job.Needs {
		if statuses[dep] != model.StatusSucceeded {
			return false
		}
	}
	return true
}

// cascadeSkip marks every not-yet-started transitive dependent of a failed
// job as Skipped. Dependents can only be Pending here: a job becomes Ready
// only once all its needs succeeded.
func (e *Executor) cascadeSkip(run *model.Run, statuses map[string]model.Status, name string) {
	for _, dependent := range e.graph.Dependents(name) {
		if statuses[dependent] != model.StatusPending {
			continue
		}
		statuses[dependent] = model.StatusSkipped
		run.Results[dependent].Status = model.StatusSkipped
		fmt.Fprintf(e.progress, "↷ Job %s skipped (needs %s)\n", dependent, name)
		e.cascadeSkip(run, statuses, dependent)
	}
}
