package report

import (
	"encoding/json"
	"testing"

	"github.com/sourceplane/gateci/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runWith(statuses map[string]model.Status) *model.Run {
	run := model.NewRun("run-1", "verify", nil)
	for name, status := range statuses {
		run.Results[name] = &model.JobResult{Name: name, Status: status}
	}
	return run
}

func TestAggregate(t *testing.T) {
	cases := []struct {
		Name   string
		Given  map[string]model.Status
		Expect model.Verdict
	}{
		{"AllSucceeded", map[string]model.Status{
			"fmt": model.StatusSucceeded, "lint": model.StatusSucceeded,
		}, model.VerdictPass},
		{"OneFailed", map[string]model.Status{
			"fmt": model.StatusSucceeded, "tests": model.StatusFailed,
		}, model.VerdictFail},
		{"SkippedIsNotSilentSuccess", map[string]model.Status{
			"fmt": model.StatusFailed, "lint": model.StatusSkipped,
		}, model.VerdictFail},
		{"OnlySkipped", map[string]model.Status{
			"lint": model.StatusSkipped,
		}, model.VerdictFail},
		{"EmptyGraph", map[string]model.Status{}, model.VerdictPass},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			assert.Equal(t, c.Expect, Aggregate(runWith(c.Given)))
		})
	}
}

func TestFinalizeRecordsVerdict(t *testing.T) {
	run := runWith(map[string]model.Status{"fmt": model.StatusSucceeded})
	assert.False(t, run.Completed())

	Finalize(run)

	assert.Equal(t, model.VerdictPass, run.Verdict)
	assert.True(t, run.Completed())
	assert.False(t, run.CompletedAt.IsZero())
}

func TestRenderListsEveryJob(t *testing.T) {
	run := runWith(map[string]model.Status{
		"fmt":   model.StatusSucceeded,
		"tests": model.StatusFailed,
		"lint":  model.StatusSkipped,
	})
	run.Results["tests"].FailedStep = "run tests"
	run.Results["tests"].FailureKind = model.FailureStep
	run.Results["tests"].Output = "assertion failed: expected 3, got 4"
	Finalize(run)

	out := Render(run, []string{"fmt", "tests", "lint"})

	assert.Contains(t, out, "Verdict: Fail")
	assert.Contains(t, out, "fmt")
	assert.Contains(t, out, "tests")
	assert.Contains(t, out, "lint")
	assert.Contains(t, out, "Skipped")
	assert.Contains(t, out, "failed step: run tests")
	assert.Contains(t, out, "assertion failed: expected 3, got 4")
}

func TestRenderJSON(t *testing.T) {
	run := runWith(map[string]model.Status{"fmt": model.StatusSucceeded})
	Finalize(run)

	data, err := RenderJSON(run)
	require.NoError(t, err)

	var decoded model.Run
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, model.VerdictPass, decoded.Verdict)
	assert.Contains(t, decoded.Results, "fmt")
}
