package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/reqline/packages/core/runner"
	"github.com/abdul-hamid-achik/reqline/packages/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the reqline pipeline over HTTP",
	Long: `Start an HTTP server that executes reqline statements.

Endpoints:
  POST /         {"reqline": "..."} -> request report
  POST /parse    {"reqline": "..."} -> parsed request, nothing is sent
  GET  /healthz  liveness probe

Malformed input returns 400 with {"error": true, "message": "..."}.
Outbound failures return the configured executionFailureStatus (default 502).

Examples:
  reqline serve
  reqline serve --listen :9000`,
	RunE: serveCommand,
}

var (
	serveListenFlag  string
	serveClientFlags clientFlags
)

func init() {
	serveCmd.Flags().StringVarP(&serveListenFlag, "listen", "l", "", "Listen address (overrides config)")
	serveClientFlags.register(serveCmd)
}

func serveCommand(cmd *cobra.Command, args []string) error {
	addr := appConfig.Listen
	if serveListenFlag != "" {
		addr = serveListenFlag
	}

	var recorder runner.Recorder
	store, err := openHistory()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		recorder = store
	}

	cfg, err := serveClientFlags.runnerConfig(recorder)
	if err != nil {
		return &exitError{code: ExitUsageError, err: err}
	}

	srv := server.NewServer(runner.NewRunner(cfg),
		server.WithAddr(addr),
		server.WithLogger(logger),
		server.WithExecutionFailureStatus(appConfig.ExecutionFailureStatus),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.StartWithContext(ctx)
}
