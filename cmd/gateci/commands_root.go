package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	pipelineFile string
	workDir      string
	changeRef    string
	execute      bool
	jsonOutput   bool
	serveAddr    string
	viewMode     string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "gateci",
	Short: "Verification gate: job graph → verdict",
	Long:  "gateci executes a declarative verification job graph (fmt, lint, tests, docs) with gating order and reduces all outcomes to a single pass/fail gate for change review",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&pipelineFile, "pipeline", "p", "pipeline.yaml", "Pipeline file path")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")

	registerRunCommand(rootCmd)
	registerValidateCommand(rootCmd)
	registerGraphCommand(rootCmd)
	registerServeCommand(rootCmd)
}

// newLogger builds the structured logger carried through context. Progress
// output for humans goes through the command writers instead.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
