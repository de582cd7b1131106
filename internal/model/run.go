package model

import "time"

// Verdict is the single Pass/Fail reduction of a run's job outcomes.
type Verdict string

const (
	VerdictPass Verdict = "Pass"
	VerdictFail Verdict = "Fail"

	// VerdictPending is reported while the run is still executing.
	VerdictPending Verdict = "Pending"
)

// Run is one invocation of the whole pipeline. It owns its job results
// exclusively for the duration of execution; nothing is shared across
// concurrent runs. Once Verdict is recorded the run is immutable.
type Run struct {
	// ID uniquely identifies this run.
	ID string `json:"id"`

	// ChangeRef is the proposed-change identifier that triggered the run.
	ChangeRef string `json:"change_ref,omitempty"`

	// Fingerprint is the hash of (graph, resolved change ref) used for
	// trigger idempotency.
	Fingerprint string `json:"fingerprint,omitempty"`

	// Pipeline is the metadata name of the pipeline document.
	Pipeline string `json:"pipeline"`

	// Results holds the per-job outcome, keyed by job name. Every job in the
	// graph appears here once the run completes; unreached jobs are recorded
	// as Skipped, never omitted.
	Results map[string]*JobResult `json:"results"`

	// Verdict is Pass iff every job succeeded.
	Verdict Verdict `json:"verdict"`

	CreatedAt   time.Time `json:"created_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
}

// JobResult is the terminal record of one job within a run.
type JobResult struct {
	Name   string `json:"name"`
	Status Status `json:"status"`

	// FailureKind is set when Status is Failed.
	FailureKind FailureKind `json:"failure_kind,omitempty"`

	// FailedStep is the display label of the step that failed, if any.
	FailedStep string `json:"failed_step,omitempty"`

	// Output is the captured toolchain output of the job, opaque text. On
	// failure it is the diagnostic surfaced in the report.
	Output string `json:"output,omitempty"`

	// Steps records, in declared order, which steps were attempted. Steps
	// after a failure are present with Attempted=false.
	Steps []StepResult `json:"steps,omitempty"`

	StartedAt time.Time `json:"started_at,omitempty"`
	EndedAt   time.Time `json:"ended_at,omitempty"`
}

// StepResult is the outcome of a single step within a job.
type StepResult struct {
	Name      string `json:"name"`
	Attempted bool   `json:"attempted"`
	Succeeded bool   `json:"succeeded"`
}

// NewRun returns a run with every job of the given names at Pending.
func NewRun(id, pipeline string, jobNames []string) *Run {
	results := make(map[string]*JobResult, len(jobNames))
	for _, name := range jobNames {
		results[name] = &JobResult{Name: name, Status: StatusPending}
	}
	return &Run{
		ID:        id,
		Pipeline:  pipeline,
		Results:   results,
		Verdict:   VerdictPending,
		CreatedAt: time.Now(),
	}
}

// Completed reports whether the run has recorded its verdict.
func (r *Run) Completed() bool {
	return r.Verdict == VerdictPass || r.Verdict == VerdictFail
}
