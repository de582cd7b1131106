// Package report reduces a run's job outcomes to the single verdict consumed
// by the external review gate, and renders the per-job diagnostics.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sourceplane/gateci/internal/model"
)

// Aggregate computes the verdict: Pass iff every job reached Succeeded. Any
// Failed or Skipped job yields Fail.
func Aggregate(run *model.Run) model.Verdict {
	for _, res := range run.Results {
		if res.Status != model.StatusSucceeded {
			return model.VerdictFail
		}
	}
	return model.VerdictPass
}

// Finalize records the verdict on the run. After this the run is immutable.
func Finalize(run *model.Run) {
	run.Verdict = Aggregate(run)
	run.CompletedAt = time.Now()
}

// Render produces the human-readable per-job report. Jobs appear in the
// given order (topological); every job is listed, Skipped included.
func Render(run *model.Run, order []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run %s", run.ID)
	if run.ChangeRef != "" {
		fmt.Fprintf(&b, " (change %s)", run.ChangeRef)
	}
	fmt.Fprintf(&b, "\nVerdict: %s\n\n", run.Verdict)

	for _, name := range order {
		res, ok := run.Results[name]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "  %-12s %s\n", res.Status, name)
		if res.Status == model.StatusFailed {
			if res.FailedStep != "" {
				fmt.Fprintf(&b, "    failed step: %s\n", res.FailedStep)
			}
			if res.FailureKind != model.FailureNone && res.FailureKind != model.FailureStep {
				fmt.Fprintf(&b, "    failure: %s\n", res.FailureKind)
			}
			if res.Output != "" {
				for _, line := range strings.Split(strings.TrimRight(res.Output, "\n"), "\n") {
					fmt.Fprintf(&b, "    | %s\n", line)
				}
			}
		}
	}

	return b.String()
}

// RenderJSON produces the structured result for machine consumers.
func RenderJSON(run *model.Run) ([]byte, error) {
	return json.MarshalIndent(run, "", "  ")
}
