// Package main implements the waypoint server CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/viant/waypoint"
	"github.com/viant/waypoint/tracing"
	transport "github.com/viant/waypoint/transport/http"
	"go.uber.org/zap"
)

var (
	// configURL locates the YAML configuration
	configURL string
	// workflowURL overrides workflow.url
	workflowURL string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "waypoint",
	Short: "Checkpointed workflow session server",
	Long: `waypoint drives human-in-the-loop workflow sessions to configured
checkpoints and serves their state over HTTP.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configURL, "config", "c", "", "configuration URL (any afs location)")
	rootCmd.PersistentFlags().StringVarP(&workflowURL, "workflow", "w", "", "workflow URL, overrides workflow.url")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server.

Examples:
  waypoint serve -c config.yaml
  WAYPOINT_HTTP_ADDR=:9090 waypoint serve -c config.yaml -w assistant.yaml`,
	RunE: runServe,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load configuration and workflow, then report checkpoints",
	RunE:  runValidate,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func newService(ctx context.Context) (*waypoint.Service, error) {
	cfg, err := waypoint.LoadConfig(ctx, configURL, nil)
	if err != nil {
		return nil, err
	}
	if cfg.Tracing.Enabled {
		if err = tracing.Init("waypoint", version, cfg.Tracing.Output); err != nil {
			return nil, fmt.Errorf("failed to init tracing: %w", err)
		}
	}
	options := []waypoint.Option{waypoint.WithConfig(cfg)}
	if workflowURL != "" {
		options = append(options, waypoint.WithWorkflowURL(workflowURL))
	}
	return waypoint.New(ctx, options...)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := newService(ctx)
	if err != nil {
		return err
	}
	defer srv.Close()

	server, err := transport.NewServer(srv, srv.Registry(), srv.Logger(), srv.Config().HTTP.Addr)
	if err != nil {
		return err
	}
	errs := make(chan error, 1)
	go func() {
		errs <- server.Start()
	}()

	select {
	case err = <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = server.Shutdown(shutdownCtx); err != nil {
		srv.Logger().Warn("shutdown failed", zap.Error(err))
		return err
	}
	return nil
}

func runValidate(cmd *cobra.Command, _ []string) error {
	srv, err := newService(cmd.Context())
	if err != nil {
		return err
	}
	defer srv.Close()
	workflow := srv.Workflow()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "workflow: %s (%d actions, entrypoint %s)\n", workflow.Name, len(workflow.Actions), workflow.Entrypoint)
	fmt.Fprintf(out, "pauseBefore: %v\n", srv.Checkpoints().PauseBefore)
	fmt.Fprintf(out, "pauseAfter: %v\n", srv.Checkpoints().PauseAfter)
	fmt.Fprintf(out, "capacity: %d\n", srv.Config().Session.Capacity)
	return nil
}
