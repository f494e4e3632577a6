package main

import (
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/gridlock/core/cmd/api/middleware"
	"github.com/gridlock/core/internal/handlers"
	"github.com/gridlock/core/internal/recovery"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the deadlock-analysis HTTP API",
	Long: `Starts an HTTP server exposing:

  GET  /health   service health
  GET  /samples  bundled sample datasets
  POST /analyze  deadlock detection (and optional recovery) on a
                 posted system state document`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		addr := cfg.ServerAddr()
		if serveAddr != "" {
			addr = serveAddr
		}

		engine := &recovery.Engine{MaxSubsets: cfg.Engine.MaxSubsets}

		mux := http.NewServeMux()
		mux.HandleFunc("/health", handlers.HealthHandler)
		mux.HandleFunc("/samples", handlers.SamplesHandler)
		mux.Handle("/analyze", handlers.AnalyzeHandler(engine))

		slog.Info("server starting", "addr", addr)
		return http.ListenAndServe(addr, middleware.Cors(cfg.Server.CORSOrigin, mux))
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
