package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the pipeline YAML and its job graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		return validatePipeline(cmd)
	},
}

func registerValidateCommand(root *cobra.Command) {
	root.AddCommand(validateCmd)
}

func validatePipeline(cmd *cobra.Command) error {
	fmt.Fprintln(cmd.OutOrStdout(), "□ Validating pipeline...")
	g, err := loadGraph()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Pipeline is valid (%d jobs)\n", len(g.JobNames()))
	return nil
}
