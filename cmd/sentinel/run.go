package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/sentinel/internal/cli"
	"github.com/aretw0/sentinel/pkg/runner"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with Sentinel in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWidget(cmd, runner.ModeChat)
	},
}

var termCmd = &cobra.Command{
	Use:   "term",
	Short: "Open the simulated terminal",
	Long:  `Starts the simulated shell. Type 'help' for the command list, 'exit' to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWidget(cmd, runner.ModeTerminal)
	},
}

func runWidget(cmd *cobra.Command, mode runner.Mode) error {
	opts := cli.RunOptions{Mode: mode}
	opts.SessionID, _ = cmd.Flags().GetString("session")
	opts.JSON, _ = cmd.Flags().GetBool("json")
	opts.Headless, _ = cmd.Flags().GetBool("headless")
	opts.Fresh, _ = cmd.Flags().GetBool("fresh")
	opts.NoDelay, _ = cmd.Flags().GetBool("no-delay")

	// Named sessions are kept on disk so they can be resumed.
	store := cli.StoreMemory
	if opts.SessionID != "" {
		store = cli.StoreFile
	}
	app, err := loadApp(cmd, store)
	if err != nil {
		return err
	}
	defer app.Close()

	sigCtx := cli.NewSignalContext(cmd.Context())
	defer sigCtx.Cancel()

	err = cli.RunInteractive(sigCtx, app, opts)
	if sigCtx.Signal() != nil {
		app.Logger.Info("interrupted", "signal", sigCtx.Signal().String())
		return nil
	}
	return err
}

func init() {
	for _, c := range []*cobra.Command{chatCmd, termCmd} {
		c.Flags().StringP("session", "s", "", "Session ID; named sessions are persisted and resumed")
		c.Flags().Bool("json", false, "Speak JSON Lines on stdin/stdout")
		c.Flags().Bool("headless", false, "Do not replay the transcript or print the banner")
		c.Flags().Bool("fresh", false, "Reset the session before starting")
		c.Flags().Bool("no-delay", false, "Show chat replies without the typing pause")
		rootCmd.AddCommand(c)
	}
	rootCmd.RunE = chatCmd.RunE
	rootCmd.Flags().AddFlagSet(chatCmd.Flags())
}
