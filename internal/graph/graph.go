package graph

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sourceplane/gateci/internal/model"
)

// ConfigError reports a malformed job graph: an unresolved needs reference
// or a dependency cycle. No execution happens after one of these.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string { return e.msg }

func configErrorf(format string, args ...interface{}) *ConfigError {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

// Graph is the immutable dependency graph of a pipeline. It is read-only
// after New returns and safe to share across concurrently executing jobs.
type Graph struct {
	pipeline *model.Pipeline
	jobs     map[string]model.JobSpec

	// dependents is the reverse edge index: job name -> jobs that need it.
	dependents map[string][]string

	// order is a topological ordering of all job names, used for
	// deterministic reporting.
	order []string
}

// New validates the pipeline's needs references and acyclicity and returns
// the immutable graph consumed by the executor.
func New(pipeline *model.Pipeline) (*Graph, error) {
	g := &Graph{
		pipeline:   pipeline,
		jobs:       make(map[string]model.JobSpec, len(pipeline.Jobs)),
		dependents: make(map[string][]string, len(pipeline.Jobs)),
	}

	for _, job := range pipeline.Jobs {
		g.jobs[job.Name] = job
	}

	// Every needs reference must resolve to a declared job.
	for _, job := range pipeline.Jobs {
		if job.Timeout != "" {
			if _, err := time.ParseDuration(job.Timeout); err != nil {
				return nil, configErrorf("job %s has invalid timeout %q", job.Name, job.Timeout)
			}
		}
		for _, dep := range job.Needs {
			if _, ok := g.jobs[dep]; !ok {
				return nil, configErrorf("job %s needs unknown job %s", job.Name, dep)
			}
			if dep == job.Name {
				return nil, configErrorf("job %s needs itself", job.Name)
			}
			g.dependents[dep] = append(g.dependents[dep], job.Name)
		}
	}

	if cycle := g.findCycle(); cycle != nil {
		return nil, configErrorf("cycle detected in job dependencies: %s", strings.Join(cycle, " -> "))
	}

	order, err := g.topologicalSort()
	if err != nil {
		return nil, err
	}
	g.order = order

	return g, nil
}

// Pipeline returns the pipeline document this graph was built from.
func (g *Graph) Pipeline() *model.Pipeline { return g.pipeline }

// Job returns the spec for a declared job.
func (g *Graph) Job(name string) (model.JobSpec, bool) {
	job, ok := g.jobs[name]
	return job, ok
}

// JobNames returns all job names in topological order.
func (g *Graph) JobNames() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Dependents returns the jobs that name the given job in their needs.
func (g *Graph) Dependents(name string) []string {
	return g.dependents[name]
}

// Roots returns the jobs with an empty needs set, the initial ready set.
func (g *Graph) Roots() []string {
	var roots []string
	for _, name := range g.order {
		if len(g.jobs[name].Needs) == 0 {
			roots = append(roots, name)
		}
	}
	return roots
}

// findCycle performs DFS cycle detection and, when a cycle exists, returns
// its members in traversal order (closed: first element repeated last).
func (g *Graph) findCycle() []string {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var stack []string

	var dfs func(name string) []string
	dfs = func(name string) []string {
		visited[name] = true
		onStack[name] = true
		stack = append(stack, name)

		for _, dep := range g.jobs[name].Needs {
			if !visited[dep] {
				if cycle := dfs(dep); cycle != nil {
					return cycle
				}
			} else if onStack[dep] {
				// Slice the current stack from the first occurrence of dep
				// to name the cycle.
				for i, n := range stack {
					if n == dep {
						cycle := append([]string{}, stack[i:]...)
						return append(cycle, dep)
					}
				}
			}
		}

		onStack[name] = false
		stack = stack[:len(stack)-1]
		return nil
	}

	// Deterministic traversal order keeps the named cycle stable.
	names := make([]string, 0, len(g.jobs))
	for name := range g.jobs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !visited[name] {
			if cycle := dfs(name); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// topologicalSort orders jobs with Kahn's algorithm. Ties are broken by name
// so the ordering is deterministic.
func (g *Graph) topologicalSort() ([]string, error) {
	inDegree := make(map[string]int, len(g.jobs))
	for name, job := range g.jobs {
		inDegree[name] = len(job.Needs)
	}

	queue := make([]string, 0)
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	sorted := make([]string, 0, len(g.jobs))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		sorted = append(sorted, current)

		for _, dependent := range g.dependents[current] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
		sort.Strings(queue)
	}

	if len(sorted) != len(g.jobs) {
		return nil, configErrorf("failed to topologically sort: possible cycle detected")
	}

	return sorted, nil
}
