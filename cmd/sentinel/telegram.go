package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/sentinel/internal/cli"
	"github.com/aretw0/sentinel/pkg/adapters/telegram"
)

var telegramCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Run Sentinel as a Telegram bot",
	Long: `Long-polls the Telegram Bot API using TELEGRAM_BOT_TOKEN. Each chat is a session:
messages starting with '$' go to the terminal, /reset clears the session and
everything else is answered by the chat.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd, cli.StoreMemory)
		if err != nil {
			return err
		}
		defer app.Close()

		if app.Settings.TelegramBotToken == "" {
			return fmt.Errorf("%w: set TELEGRAM_BOT_TOKEN", cli.ErrMissingToken)
		}
		bot, err := telegram.New(app.Settings.TelegramBotToken, app.Console, telegram.WithLogger(app.Logger))
		if err != nil {
			return err
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		stopSweeper, err := cli.StartSweeper(app)
		if err != nil {
			return err
		}
		defer stopSweeper()

		if err := bot.Start(sigCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(telegramCmd)
}
