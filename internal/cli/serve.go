package cli

import (
	"interviewprep/internal/backend"
	"interviewprep/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the browser front end",
	Long: `Start an HTTP server that renders the interview-prep wizard and the code
analysis panel as HTML pages. Each browser gets its own session.

Available endpoints:
- GET  /: Interview Questions tab
- GET  /code: Code Analysis tab
- GET  /state: Session state as JSON
- POST /analyze: Select and analyze a CV (multipart, field "file")
- POST /generate: Generate questions for the analyzed CV
- POST /upload: Legacy single-step generation
- POST /code: Analyze the code buffer
- GET  /health: Health check endpoint
- GET  /stats: Server statistics and rate limiting info

Requests sent with "Accept: application/json" get the session state as JSON
instead of a redirect.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	// Flags override config
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Server.Port = port
	}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}

	om, shutdown, err := startObservability(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer shutdown()

	srv, err := server.NewServer(cfg, server.ConfigFrom(cfg, Version), backend.NewClient(cfg.Backend, logger, om), om, logger)
	if err != nil {
		return err
	}
	return srv.Start(cmd.Context(), cmd.OutOrStdout())
}
