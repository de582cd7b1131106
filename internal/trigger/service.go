// Package trigger receives proposed-change events and turns each into one
// run of the pipeline. Re-triggering an identical (graph, change) combination
// returns the existing run instead of executing again.
package trigger

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sourceplane/gateci/internal/ctxlog"
	"github.com/sourceplane/gateci/internal/executor"
	"github.com/sourceplane/gateci/internal/graph"
	"github.com/sourceplane/gateci/internal/model"
	"github.com/sourceplane/gateci/internal/report"
)

// Resolver pins a symbolic change ref to a stable identifier. Implemented by
// git.RefResolver; nil means refs are used as-is.
type Resolver interface {
	Resolve(changeRef string) string
}

// entry pairs a run with its completion signal. Readers synchronize on done:
// once it is closed the run is immutable and safe to read.
type entry struct {
	run  *model.Run
	done chan struct{}
}

// Service owns the in-memory run registry and starts executions.
type Service struct {
	baseCtx  context.Context
	graph    *graph.Graph
	executor *executor.Executor
	resolver Resolver

	mu            sync.Mutex
	byID          map[string]*entry
	byFingerprint map[string]*entry
}

// NewService creates a trigger service bound to one loaded graph. baseCtx
// scopes all background executions (server shutdown cancels them).
func NewService(baseCtx context.Context, g *graph.Graph, exec *executor.Executor, resolver Resolver) *Service {
	return &Service{
		baseCtx:       baseCtx,
		graph:         g,
		executor:      exec,
		resolver:      resolver,
		byID:          make(map[string]*entry),
		byFingerprint: make(map[string]*entry),
	}
}

// OnChangeProposed starts (or deduplicates) a run for the given change ref
// and returns its ID. cached is true when an identical combination was
// already triggered, whether in flight or completed.
func (s *Service) OnChangeProposed(changeRef string) (runID string, cached bool) {
	resolved := changeRef
	if s.resolver != nil {
		resolved = s.resolver.Resolve(changeRef)
	}
	fingerprint := s.graph.Fingerprint(resolved)

	s.mu.Lock()
	if e, ok := s.byFingerprint[fingerprint]; ok {
		s.mu.Unlock()
		return e.run.ID, true
	}

	run := model.NewRun(uuid.NewString(), s.graph.Pipeline().Metadata.Name, s.graph.JobNames())
	run.ChangeRef = changeRef
	run.Fingerprint = fingerprint

	e := &entry{run: run, done: make(chan struct{})}
	s.byID[run.ID] = e
	s.byFingerprint[fingerprint] = e
	s.mu.Unlock()

	go s.execute(e)

	return run.ID, false
}

func (s *Service) execute(e *entry) {
	defer close(e.done)

	logger := ctxlog.FromContext(s.baseCtx).With("run", e.run.ID, "change", e.run.ChangeRef)
	logger.Info("run started")

	if err := s.executor.Execute(s.baseCtx, e.run); err != nil {
		logger.Error("run aborted", "error", err)
	}
	report.Finalize(e.run)

	logger.Info("run completed", "verdict", string(e.run.Verdict))
}

// Get returns the run for an ID. completed reports whether the verdict has
// been recorded; until then the run's fields must not be inspected.
func (s *Service) Get(runID string) (run *model.Run, completed bool, found bool) {
	s.mu.Lock()
	e, ok := s.byID[runID]
	s.mu.Unlock()
	if !ok {
		return nil, false, false
	}

	select {
	case <-e.done:
		return e.run, true, true
	default:
		return e.run, false, true
	}
}

// Wait blocks until the run completes or the context is cancelled.
func (s *Service) Wait(ctx context.Context, runID string) (*model.Run, error) {
	s.mu.Lock()
	e, ok := s.byID[runID]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown run: %s", runID)
	}

	select {
	case <-e.done:
		return e.run, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
