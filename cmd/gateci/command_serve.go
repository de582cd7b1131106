package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/sourceplane/gateci/internal/ctxlog"
	"github.com/sourceplane/gateci/internal/executor"
	"github.com/sourceplane/gateci/internal/git"
	"github.com/sourceplane/gateci/internal/provision"
	"github.com/sourceplane/gateci/internal/trigger"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the trigger interface over HTTP",
	Long:  "Listen for proposed-change events and run the pipeline for each; the review gate polls the verdict endpoint.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd)
	},
}

func registerServeCommand(root *cobra.Command) {
	root.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&workDir, "workdir", ".", "Working directory for host jobs (also the repository for change-ref resolution)")
}

func serve(cmd *cobra.Command) error {
	g, err := loadGraph()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = ctxlog.WithLogger(ctx, newLogger())

	exec := executor.New(g, provision.NewLocal(workDir))
	svc := trigger.NewService(ctx, g, exec, git.NewRefResolver(workDir))

	server := &http.Server{Addr: serveAddr, Handler: svc.Handler()}
	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "□ Serving pipeline %q on %s\n", g.Pipeline().Metadata.Name, serveAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
