package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/sentinel/internal/cli"
	"github.com/aretw0/sentinel/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:   "sentinel",
	Short: "Sentinel is a keyword chat assistant with a simulated terminal",
	Long: `Sentinel answers chat messages from a keyword table and runs a small
simulated terminal. Both widgets keep per-session transcripts and can be served
over a local TTY, HTTP, MCP or Telegram.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("tables", "", "YAML or JSON file overriding the built-in tables (env SENTINEL_TABLES)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("env-file", ".env", "Dotenv file to read before the environment")
}

// loadApp reads settings and wires an App with the persistent flags applied.
func loadApp(cmd *cobra.Command, store cli.StoreKind) (*cli.App, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	tables, _ := cmd.Flags().GetString("tables")
	debug, _ := cmd.Flags().GetBool("debug")

	settings, err := config.LoadSettings(envFile)
	if err != nil {
		return nil, err
	}
	return cli.Build(settings, cli.Options{
		Tables: tables,
		Debug:  debug,
		Store:  store,
	})
}
