package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sourceplane/gateci/internal/ctxlog"
	"github.com/sourceplane/gateci/internal/model"
	"github.com/sourceplane/gateci/internal/provision"
)

// StepError reports a toolchain command that returned non-success. The
// remaining steps of the owning job are not attempted.
type StepError struct {
	Job  string
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("job %s step %s failed: %v", e.Job, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// runJob executes a single job to a terminal state and reports the outcome.
// The execution context is released on every path once provisioned.
func (e *Executor) runJob(ctx context.Context, job model.JobSpec, done chan<- outcome) {
	logger := ctxlog.FromContext(ctx).With("job", job.Name)
	out := outcome{name: job.Name, startedAt: time.Now()}

	defer func() {
		out.endedAt = time.Now()
		done <- out
	}()

	if e.dryRun {
		out.status = model.StatusSucceeded
		for _, step := range job.Steps {
			out.steps = append(out.steps, model.StepResult{Name: step.Name, Attempted: false})
		}
		return
	}

	jobCtx := ctx
	if job.Timeout != "" {
		// The timeout string was validated at graph construction.
		d, err := time.ParseDuration(job.Timeout)
		if err == nil {
			var cancel context.CancelFunc
			jobCtx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}
	}

	ec, err := e.provisioner.Provision(jobCtx, job)
	if err != nil {
		logger.Error("provisioning failed", "error", err)
		out.status = model.StatusFailed
		out.kind = model.FailureProvision
		out.output = err.Error()
		var perr *provision.Error
		if errors.As(err, &perr) {
			out.failedStep = perr.Step
		}
		return
	}
	defer func() {
		if relErr := ec.Release(context.WithoutCancel(jobCtx)); relErr != nil {
			logger.Warn("failed to release execution context", "error", relErr)
		}
	}()

	logger.Debug("executing steps", "context", ec.Describe(), "steps", len(job.Steps))

	var combined strings.Builder
	for i, step := range job.Steps {
		text, runErr := ec.Run(jobCtx, step.Run)
		combined.WriteString(text)

		if runErr != nil {
			stepErr := &StepError{Job: job.Name, Step: step.Name, Err: runErr}
			logger.Error("step failed", "step", step.Name, "error", runErr)

			out.status = model.StatusFailed
			out.failedStep = step.Name
			out.kind = model.FailureStep
			combined.WriteString("\n" + stepErr.Error() + "\n")
			// A deadline or an external cancellation is an infrastructure
			// condition, not a genuine toolchain rejection; keep them apart
			// for triage.
			if jobCtx.Err() == context.DeadlineExceeded {
				out.kind = model.FailureTimeout
				combined.WriteString(fmt.Sprintf("job %s timed out after %s\n", job.Name, job.Timeout))
			} else if jobCtx.Err() == context.Canceled {
				out.kind = model.FailureInfra
			}
			out.output = combined.String()

			out.steps = append(out.steps, model.StepResult{Name: step.Name, Attempted: true})
			// Remaining steps are recorded but never attempted.
			for _, rest := range job.Steps[i+1:] {
				out.steps = append(out.steps, model.StepResult{Name: rest.Name})
			}
			return
		}

		out.steps = append(out.steps, model.StepResult{Name: step.Name, Attempted: true, Succeeded: true})
	}

	out.status = model.StatusSucceeded
	out.output = combined.String()
}
