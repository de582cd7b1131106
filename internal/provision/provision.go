// Package provision resolves the concrete execution context for a job: the
// bare host, or an isolated container created for that job alone. Contexts
// are exclusive to the job that provisioned them and must be released
// exactly once when the job terminates, on every exit path.
package provision

import (
	"context"
	"fmt"

	"github.com/sourceplane/gateci/internal/ctxlog"
	"github.com/sourceplane/gateci/internal/model"
)

// Error reports a failed environment setup. The job it belongs to is marked
// failed without any of its steps being attempted.
type Error struct {
	Job  string
	Step string // setup step label, if the failure came from a pre-step
	Err  error
}

func (e *Error) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("provisioning job %s: setup step %s: %v", e.Job, e.Step, e.Err)
	}
	return fmt.Sprintf("provisioning job %s: %v", e.Job, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Context is a job-scoped execution context. Run invokes one opaque command
// synchronously and reports only exit success plus the raw combined output.
type Context interface {
	// Run executes a command in the context and returns its combined
	// stdout+stderr. A non-nil error means the command did not succeed.
	Run(ctx context.Context, command string) (string, error)

	// Describe names the context for logs and diagnostics.
	Describe() string

	// Release tears the context down. It is safe to call more than once;
	// only the first call does work.
	Release(ctx context.Context) error
}

// Provisioner materializes execution contexts for jobs.
type Provisioner interface {
	Provision(ctx context.Context, job model.JobSpec) (Context, error)
}

// Local provisions contexts on the current machine: host jobs run directly
// in WorkDir, container jobs run inside a docker container created for the
// job and removed on release.
type Local struct {
	// WorkDir is the base working directory for host jobs. Empty means the
	// process working directory.
	WorkDir string

	// Env is appended to the ambient environment of host commands.
	Env []string

	// docker overrides the docker binary name, for tests.
	docker string
}

// NewLocal returns a provisioner rooted at the given working directory.
func NewLocal(workDir string) *Local {
	return &Local{WorkDir: workDir}
}

// Provision implements Provisioner. Setup pre-steps run here; a failing
// pre-step releases the context and reports a provision error.
func (p *Local) Provision(ctx context.Context, job model.JobSpec) (Context, error) {
	logger := ctxlog.FromContext(ctx).With("job", job.Name)

	var ec Context
	var err error
	switch job.Environment() {
	case model.EnvContainer:
		logger.Debug("provisioning container context", "image", job.Image)
		ec, err = newContainerContext(ctx, p.dockerBin(), job)
	default:
		logger.Debug("provisioning host context", "workdir", p.WorkDir)
		ec = newHostContext(p.WorkDir, p.Env)
	}
	if err != nil {
		return nil, &Error{Job: job.Name, Err: err}
	}

	for _, step := range job.Setup {
		logger.Debug("running setup step", "step", step.Name)
		if _, runErr := ec.Run(ctx, step.Run); runErr != nil {
			// The context is useless without its setup; tear it down before
			// reporting the failure.
			if relErr := ec.Release(ctx); relErr != nil {
				logger.Warn("failed to release context after setup failure", "error", relErr)
			}
			return nil, &Error{Job: job.Name, Step: step.Name, Err: runErr}
		}
	}

	return ec, nil
}

func (p *Local) dockerBin() string {
	if p.docker != "" {
		return p.docker
	}
	return "docker"
}
