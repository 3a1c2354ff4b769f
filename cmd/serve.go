package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/danielolaszy/opsintel/internal/config"
	"github.com/danielolaszy/opsintel/internal/logging"
	"github.com/danielolaszy/opsintel/internal/server"
	"github.com/danielolaszy/opsintel/internal/store"
	"github.com/spf13/cobra"
)

// serveCmd serves stored runs as a JSON data feed.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored run reports over HTTP",
	Long: `Serve stored run reports as JSON for dashboards.

Endpoints:
  GET  /healthz            liveness probe
  GET  /api/runs           stored runs, newest first
  GET  /api/runs/latest    the newest report
  GET  /api/runs/{key}     a report by key
  POST /api/analyze        analyze the request body

The server stops gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		addr := cfg.HTTP.Addr
		if cmd.Flags().Changed("addr") {
			if addr, err = cmd.Flags().GetString("addr"); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		s, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
		}
		defer s.Close()

		logger := logging.GetLogger()
		handler := server.NewRouter(server.NewServer(s, logger), logger)
		return server.Serve(ctx, addr, handler, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides HTTP_ADDR)")
}
