package git

import (
	"os/exec"
	"strings"
)

// RefResolver resolves change references against a local repository. The
// checkout itself is out of scope here; the resolver only pins a symbolic
// ref (branch, tag, merge-request head) to a commit SHA so that trigger
// idempotency keys on the actual proposed content.
type RefResolver struct {
	repoDir string
}

// NewRefResolver creates a resolver rooted at the given repository directory
func NewRefResolver(repoDir string) *RefResolver {
	return &RefResolver{repoDir: repoDir}
}

// Resolve returns the commit SHA for a change ref. When the ref cannot be
// resolved (no repository, unknown ref) the ref itself is returned, so a
// caller can always key on the result.
func (r *RefResolver) Resolve(changeRef string) string {
	if changeRef == "" {
		return ""
	}

	cmd := exec.Command("git", "rev-parse", "--verify", changeRef)
	cmd.Dir = r.repoDir
	output, err := cmd.Output()
	if err != nil {
		return changeRef
	}

	sha := strings.TrimSpace(string(output))
	if sha == "" {
		return changeRef
	}
	return sha
}
