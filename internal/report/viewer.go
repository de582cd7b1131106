package report

import (
	"fmt"
	"strings"

	"github.com/sourceplane/gateci/internal/graph"
)

// GraphViewer provides human-readable visualization of a job graph
type GraphViewer struct {
	graph *graph.Graph
}

// NewGraphViewer creates a new graph viewer
func NewGraphViewer(g *graph.Graph) *GraphViewer {
	return &GraphViewer{graph: g}
}

// ViewDAG returns a tree view of the graph in execution order: each job with
// its environment, step count and gating edges.
func (gv *GraphViewer) ViewDAG() string {
	names := gv.graph.JobNames()
	if len(names) == 0 {
		return "No jobs in pipeline"
	}

	var sb strings.Builder
	for i, name := range names {
		job, _ := gv.graph.Job(name)

		prefix := "├─ "
		if i == len(names)-1 {
			prefix = "└─ "
		}

		env := string(job.Environment())
		if job.Image != "" {
			env = fmt.Sprintf("container:%s", job.Image)
		}
		sb.WriteString(fmt.Sprintf("%s%s [%s] (%d steps)\n", prefix, name, env, len(job.Steps)))

		if len(job.Needs) > 0 {
			childPrefix := "│    "
			if i == len(names)-1 {
				childPrefix = "     "
			}
			sb.WriteString(fmt.Sprintf("%sneeds: %s\n", childPrefix, strings.Join(job.Needs, ", ")))
		}
	}

	return sb.String()
}

// ViewDependencies lists, for each job, the jobs gated on it.
func (gv *GraphViewer) ViewDependencies() string {
	var sb strings.Builder
	for _, name := range gv.graph.JobNames() {
		dependents := gv.graph.Dependents(name)
		if len(dependents) == 0 {
			sb.WriteString(fmt.Sprintf("%s → (gate only)\n", name))
			continue
		}
		sb.WriteString(fmt.Sprintf("%s → %s\n", name, strings.Join(dependents, ", ")))
	}
	return sb.String()
}
