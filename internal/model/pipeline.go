package model

// Pipeline is the top-level declarative document describing a verification
// job graph (k8s-style framing)
type Pipeline struct {
	APIVersion string    `yaml:"apiVersion" json:"apiVersion"`
	Kind       string    `yaml:"kind" json:"kind"`
	Metadata   Metadata  `yaml:"metadata" json:"metadata"`
	Jobs       []JobSpec `yaml:"jobs" json:"jobs"`
}

// Metadata holds standard object metadata
type Metadata struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// JobSpec defines one verification job: its execution environment, ordered
// steps and gating dependencies
type JobSpec struct {
	Name string `yaml:"name" json:"name"`

	// Image names a container base image. Empty means the job runs on the
	// bare host. The environment set is closed: host or container, nothing
	// else.
	Image string `yaml:"image,omitempty" json:"image,omitempty"`

	// Setup are provision-time pre-steps (toolchain install, auxiliary tool
	// setup). A setup failure fails the job before any step is attempted.
	Setup []Step `yaml:"setup,omitempty" json:"setup,omitempty"`

	// Steps run strictly in declared order; the first failure aborts the rest.
	Steps []Step `yaml:"steps" json:"steps"`

	// Needs lists jobs that must succeed before this job becomes eligible.
	Needs []string `yaml:"needs,omitempty" json:"needs,omitempty"`

	// Timeout is an optional per-job deadline (Go duration string, e.g. "30m").
	Timeout string `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// Step is a single command within a job
type Step struct {
	Name string `yaml:"name" json:"name"`
	Run  string `yaml:"run" json:"run"`
}

// Environment is the closed execution-environment variant of a job.
type Environment string

const (
	EnvHost      Environment = "host"
	EnvContainer Environment = "container"
)

// Environment reports which of the two execution environments the job requires.
func (j JobSpec) Environment() Environment {
	if j.Image != "" {
		return EnvContainer
	}
	return EnvHost
}
