package report

import (
	"testing"

	"github.com/sourceplane/gateci/internal/graph"
	"github.com/sourceplane/gateci/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewDAG(t *testing.T) {
	g, err := graph.New(&model.Pipeline{
		APIVersion: "v1",
		Kind:       "Pipeline",
		Jobs: []model.JobSpec{
			{Name: "fmt", Steps: []model.Step{{Name: "s", Run: "true"}}},
			{Name: "lint", Needs: []string{"fmt"}, Steps: []model.Step{{Name: "s", Run: "true"}}},
			{Name: "doc-links", Image: "rust:latest", Steps: []model.Step{{Name: "s", Run: "true"}}},
		},
	})
	require.NoError(t, err)

	viewer := NewGraphViewer(g)
	out := viewer.ViewDAG()

	assert.Contains(t, out, "fmt [host]")
	assert.Contains(t, out, "needs: fmt")
	assert.Contains(t, out, "doc-links [container:rust:latest]")

	deps := viewer.ViewDependencies()
	assert.Contains(t, deps, "fmt → lint")
}
