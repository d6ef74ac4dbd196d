package main

import (
	"github.com/artpar/formgate/bootstrap"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the formgate HTTP server",
	Long: `Start the formgate server.

The server will:
  - Load configuration from formgate.yaml (or --config)
  - Or load configuration from FORMGATE_* environment variables
  - Open the SQLite database and apply migrations
  - Serve the admin and public JSON APIs

Environment variables (for Docker deployments):
  FORMGATE_DATABASE_DSN     - Database path (default: formgate.db)
  FORMGATE_SERVER_PORT      - Server port (default: 8080)
  FORMGATE_ADMIN_TOKEN      - Admin API token (empty disables admin API)
  FORMGATE_LOG_LEVEL        - Log level: debug, info, warn, error

Examples:
  formgate serve
  formgate serve --config /etc/formgate/config.yaml

  # Docker (env vars only):
  FORMGATE_ADMIN_TOKEN=some-long-secret formgate serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := bootstrap.New(cfgFile)
	if err != nil {
		return err
	}
	return a.Run()
}
