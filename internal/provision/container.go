package provision

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/sourceplane/gateci/internal/model"
)

// containerContext runs commands inside a docker container created for a
// single job. The container is removed on Release.
type containerContext struct {
	docker      string
	image       string
	containerID string

	releaseOnce sync.Once
	releaseErr  error
}

// newContainerContext starts a long-lived container the job's commands exec
// into. The container does nothing on its own; it only provides the isolated
// filesystem and process namespace.
func newContainerContext(ctx context.Context, docker string, job model.JobSpec) (*containerContext, error) {
	c := &containerContext{docker: docker, image: job.Image}

	out, err := c.runDocker(ctx, "run", "--detach", "--entrypoint", "sh", job.Image, "-c", "sleep infinity")
	if err != nil {
		return nil, fmt.Errorf("failed to start container from image %s: %s: %w", job.Image, strings.TrimSpace(out), err)
	}

	c.containerID = strings.TrimSpace(out)
	if c.containerID == "" {
		return nil, fmt.Errorf("docker run returned no container id for image %s", job.Image)
	}
	return c, nil
}

func (c *containerContext) Describe() string {
	return fmt.Sprintf("container %s (%s)", shortID(c.containerID), c.image)
}

func (c *containerContext) Run(ctx context.Context, command string) (string, error) {
	return c.runDocker(ctx, "exec", c.containerID, "sh", "-c", command)
}

// Release force-removes the container. Subsequent calls return the first
// result without touching docker again.
func (c *containerContext) Release(ctx context.Context) error {
	c.releaseOnce.Do(func() {
		out, err := c.runDocker(ctx, "rm", "--force", c.containerID)
		if err != nil {
			c.releaseErr = fmt.Errorf("failed to remove container %s: %s: %w", shortID(c.containerID), strings.TrimSpace(out), err)
		}
	})
	return c.releaseErr
}

func (c *containerContext) runDocker(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, c.docker, args...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	return out.String(), err
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
