package provision

import (
	"bytes"
	"context"
	"os"
	"os/exec"
)

// hostContext runs commands directly on the ambient host.
type hostContext struct {
	workDir string
	env     []string
}

func newHostContext(workDir string, env []string) *hostContext {
	return &hostContext{workDir: workDir, env: env}
}

func (h *hostContext) Describe() string { return "host" }

func (h *hostContext) Run(ctx context.Context, command string) (string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = h.workDir
	if len(h.env) > 0 {
		cmd.Env = append(os.Environ(), h.env...)
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	return out.String(), err
}

// Release is a no-op: the host is ambient, nothing was acquired.
func (h *hostContext) Release(ctx context.Context) error { return nil }
