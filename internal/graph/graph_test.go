package graph

import (
	"testing"

	"github.com/sourceplane/gateci/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func job(name string, needs ...string) model.JobSpec {
	return model.JobSpec{
		Name:  name,
		Steps: []model.Step{{Name: "step", Run: "true"}},
		Needs: needs,
	}
}

func pipeline(jobs ...model.JobSpec) *model.Pipeline {
	return &model.Pipeline{
		APIVersion: "gateci.sourceplane.io/v1",
		Kind:       "Pipeline",
		Metadata:   model.Metadata{Name: "verify"},
		Jobs:       jobs,
	}
}

func TestNewValidGraph(t *testing.T) {
	g, err := New(pipeline(
		job("fmt"),
		job("lint", "fmt"),
		job("tests", "fmt"),
		job("docs"),
	))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"fmt", "lint", "tests", "docs"}, g.JobNames())
	assert.ElementsMatch(t, []string{"fmt", "docs"}, g.Roots())
	assert.ElementsMatch(t, []string{"lint", "tests"}, g.Dependents("fmt"))
	assert.Empty(t, g.Dependents("lint"))
}

func TestNewUnknownNeedsReference(t *testing.T) {
	_, err := New(pipeline(job("lint", "fmt")))

	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "unknown job fmt")
}

func TestNewSelfReference(t *testing.T) {
	_, err := New(pipeline(job("lint", "lint")))

	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestNewCycleNamed(t *testing.T) {
	_, err := New(pipeline(
		job("a", "c"),
		job("b", "a"),
		job("c", "b"),
	))

	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "cycle detected")
	for _, name := range []string{"a", "b", "c"} {
		assert.Contains(t, err.Error(), name)
	}
}

func TestNewInvalidTimeout(t *testing.T) {
	bad := job("fmt")
	bad.Timeout = "five minutes"

	_, err := New(pipeline(bad))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timeout")
}

func TestTopologicalOrder(t *testing.T) {
	g, err := New(pipeline(
		job("deploy", "tests", "lint"),
		job("lint", "fmt"),
		job("tests", "fmt"),
		job("fmt"),
	))
	require.NoError(t, err)

	position := make(map[string]int)
	for i, name := range g.JobNames() {
		position[name] = i
	}

	assert.Less(t, position["fmt"], position["lint"])
	assert.Less(t, position["fmt"], position["tests"])
	assert.Less(t, position["lint"], position["deploy"])
	assert.Less(t, position["tests"], position["deploy"])
}

func TestFingerprint(t *testing.T) {
	g1, err := New(pipeline(job("fmt"), job("lint", "fmt")))
	require.NoError(t, err)

	// Same graph content, different document order.
	g2, err := New(pipeline(job("lint", "fmt"), job("fmt")))
	require.NoError(t, err)

	assert.Equal(t, g1.Fingerprint("abc123"), g2.Fingerprint("abc123"))
	assert.NotEqual(t, g1.Fingerprint("abc123"), g1.Fingerprint("def456"))

	g3, err := New(pipeline(job("fmt")))
	require.NoError(t, err)
	assert.NotEqual(t, g1.Fingerprint("abc123"), g3.Fingerprint("abc123"))
}
