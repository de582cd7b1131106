package trigger

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/sourceplane/gateci/internal/executor"
	"github.com/sourceplane/gateci/internal/graph"
	"github.com/sourceplane/gateci/internal/model"
	"github.com/sourceplane/gateci/internal/provision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticResolver maps refs to fixed SHAs for tests.
type staticResolver map[string]string

func (r staticResolver) Resolve(changeRef string) string {
	if sha, ok := r[changeRef]; ok {
		return sha
	}
	return changeRef
}

func newTestService(t *testing.T, resolver Resolver, jobs ...model.JobSpec) *Service {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("trigger tests execute sh commands")
	}

	g, err := graph.New(&model.Pipeline{
		APIVersion: "gateci.sourceplane.io/v1",
		Kind:       "Pipeline",
		Metadata:   model.Metadata{Name: "verify"},
		Jobs:       jobs,
	})
	require.NoError(t, err)

	exec := executor.New(g, provision.NewLocal(t.TempDir()))
	return NewService(context.Background(), g, exec, resolver)
}

func passingJob(name string, needs ...string) model.JobSpec {
	return model.JobSpec{Name: name, Needs: needs, Steps: []model.Step{{Name: "ok", Run: "true"}}}
}

func failingJob(name string, needs ...string) model.JobSpec {
	return model.JobSpec{Name: name, Needs: needs, Steps: []model.Step{{Name: "broken", Run: "echo diagnostics; exit 1"}}}
}

func wait(t *testing.T, svc *Service, runID string) *model.Run {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	run, err := svc.Wait(ctx, runID)
	require.NoError(t, err)
	return run
}

func TestOnChangeProposedRunsToVerdict(t *testing.T) {
	svc := newTestService(t, nil, passingJob("fmt"), passingJob("lint", "fmt"))

	runID, cached := svc.OnChangeProposed("change-1")
	assert.False(t, cached)

	run := wait(t, svc, runID)
	assert.Equal(t, model.VerdictPass, run.Verdict)
	assert.Equal(t, "change-1", run.ChangeRef)
	assert.Equal(t, model.StatusSucceeded, run.Results["lint"].Status)
}

func TestFailingRunYieldsFailVerdict(t *testing.T) {
	svc := newTestService(t, nil, failingJob("fmt"), passingJob("lint", "fmt"))

	runID, _ := svc.OnChangeProposed("change-1")
	run := wait(t, svc, runID)

	assert.Equal(t, model.VerdictFail, run.Verdict)
	assert.Equal(t, model.StatusFailed, run.Results["fmt"].Status)
	assert.Equal(t, model.StatusSkipped, run.Results["lint"].Status)
	assert.Contains(t, run.Results["fmt"].Output, "diagnostics")
}

func TestIdenticalTriggerIsCached(t *testing.T) {
	svc := newTestService(t, nil, passingJob("fmt"))

	first, cached := svc.OnChangeProposed("change-1")
	assert.False(t, cached)
	wait(t, svc, first)

	second, cached := svc.OnChangeProposed("change-1")
	assert.True(t, cached)
	assert.Equal(t, first, second)

	third, cached := svc.OnChangeProposed("change-2")
	assert.False(t, cached)
	assert.NotEqual(t, first, third)
}

func TestResolverCollapsesEquivalentRefs(t *testing.T) {
	resolver := staticResolver{
		"refs/heads/topic": "abc123",
		"topic":            "abc123",
	}
	svc := newTestService(t, resolver, passingJob("fmt"))

	first, _ := svc.OnChangeProposed("refs/heads/topic")
	wait(t, svc, first)

	// A different spelling of the same commit hits the cache.
	second, cached := svc.OnChangeProposed("topic")
	assert.True(t, cached)
	assert.Equal(t, first, second)
}

func TestGetUnknownRun(t *testing.T) {
	svc := newTestService(t, nil, passingJob("fmt"))

	_, _, found := svc.Get("nope")
	assert.False(t, found)
}

func TestWaitUnknownRun(t *testing.T) {
	svc := newTestService(t, nil, passingJob("fmt"))

	_, err := svc.Wait(context.Background(), "nope")
	assert.Error(t, err)
}
