package git

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveEmptyRef(t *testing.T) {
	r := NewRefResolver(t.TempDir())
	assert.Equal(t, "", r.Resolve(""))
}

func TestResolveFallsBackOutsideRepository(t *testing.T) {
	// t.TempDir is not a git repository; the ref comes back unchanged so
	// callers can still key on it.
	r := NewRefResolver(t.TempDir())
	assert.Equal(t, "refs/heads/topic", r.Resolve("refs/heads/topic"))
}

func TestResolveCommit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	mustGit := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		if err != nil {
			t.Fatalf("git %v: %v: %s", args, err, out)
		}
	}

	mustGit("init")
	mustGit("-c", "user.email=ci@example.com", "-c", "user.name=ci", "commit", "--allow-empty", "-m", "initial")

	sha := NewRefResolver(dir).Resolve("HEAD")
	assert.Len(t, sha, 40)
	assert.NotEqual(t, "HEAD", sha)
}
