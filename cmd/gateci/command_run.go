package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sourceplane/gateci/internal/ctxlog"
	"github.com/sourceplane/gateci/internal/executor"
	"github.com/sourceplane/gateci/internal/graph"
	"github.com/sourceplane/gateci/internal/loader"
	"github.com/sourceplane/gateci/internal/model"
	"github.com/sourceplane/gateci/internal/provision"
	"github.com/sourceplane/gateci/internal/report"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the pipeline once and print the verdict",
	Long:  "Execute all jobs of the pipeline with gating order and maximal parallelism, then print the per-job report. Exits non-zero when the verdict is Fail.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd)
	},
}

func registerRunCommand(root *cobra.Command) {
	root.AddCommand(runCmd)

	runCmd.Flags().StringVar(&changeRef, "change", "", "Change reference this run verifies (recorded in the report)")
	runCmd.Flags().StringVar(&workDir, "workdir", ".", "Working directory for host jobs")
	runCmd.Flags().BoolVarP(&execute, "execute", "x", false, "Actually execute commands (default is dry-run)")
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
}

func runPipeline(cmd *cobra.Command) error {
	g, err := loadGraph()
	if err != nil {
		return err
	}

	dryRun := !execute
	if dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "□ Dry-run mode enabled. Use --execute to run commands.")
	}

	exec := executor.New(g, provision.NewLocal(workDir),
		executor.WithProgress(cmd.OutOrStdout()),
		executor.WithDryRun(dryRun),
	)

	run := model.NewRun(uuid.NewString(), g.Pipeline().Metadata.Name, g.JobNames())
	run.ChangeRef = changeRef
	run.Fingerprint = g.Fingerprint(changeRef)

	ctx := ctxlog.WithLogger(cmd.Context(), newLogger())
	if err := exec.Execute(ctx, run); err != nil {
		return err
	}
	report.Finalize(run)

	if jsonOutput {
		data, err := report.RenderJSON(run)
		if err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "\n"+report.Render(run, g.JobNames()))
	}

	if run.Verdict != model.VerdictPass {
		// The surrounding review gate keys off the exit status.
		os.Exit(1)
	}
	return nil
}

func loadGraph() (*graph.Graph, error) {
	pipeline, err := loader.Load(pipelineFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pipeline: %w", err)
	}

	g, err := graph.New(pipeline)
	if err != nil {
		return nil, fmt.Errorf("invalid job graph: %w", err)
	}
	return g, nil
}
