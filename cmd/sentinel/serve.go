package main

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/aretw0/sentinel/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the chat and terminal widgets as a JSON API with Server-Sent Events,
Prometheus metrics and an OpenAPI document at /openapi.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd, cli.StoreMemory)
		if err != nil {
			return err
		}
		defer app.Close()

		addr := app.Settings.Addr()
		if cmd.Flags().Changed("port") {
			port, _ := cmd.Flags().GetInt("port")
			addr = fmt.Sprintf(":%d", port)
		}
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", addr, err)
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		return cli.Serve(sigCtx, app, ln)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (env SENTINEL_PORT)")
}
