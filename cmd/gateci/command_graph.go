package main

import (
	"fmt"

	"github.com/sourceplane/gateci/internal/report"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Show the job graph",
	Long:  "Show the pipeline's jobs in execution order with their environments and gating edges.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showGraph(cmd)
	},
}

func registerGraphCommand(root *cobra.Command) {
	root.AddCommand(graphCmd)

	graphCmd.Flags().StringVarP(&viewMode, "view", "v", "dag", "View (dag/dependencies)")
}

func showGraph(cmd *cobra.Command) error {
	g, err := loadGraph()
	if err != nil {
		return err
	}

	viewer := report.NewGraphViewer(g)
	switch viewMode {
	case "dependencies":
		fmt.Fprint(cmd.OutOrStdout(), viewer.ViewDependencies())
	default:
		fmt.Fprint(cmd.OutOrStdout(), viewer.ViewDAG())
	}
	return nil
}
