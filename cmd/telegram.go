package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/P-Jays/crypto-telegram-bot/core/config"
	"github.com/P-Jays/crypto-telegram-bot/ui/telegram"
)

var telegramCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Run the Telegram bot with long polling",
	Run:   telegramServer,
}

func init() {
	rootCmd.AddCommand(telegramCmd)
}

func telegramServer(_ *cobra.Command, _ []string) {
	cfg := config.Global

	if cfg.Telegram.BotToken == "" {
		logrus.Fatalln("TELEGRAM_BOT_TOKEN is required for the telegram command")
	}

	bot, err := telegram.NewBot(cfg, tokenUsecase, settingsSvc)
	if err != nil {
		logrus.Fatalf("[TELEGRAM] Failed to initialize bot: %v", err)
	}
	telegramBot = bot

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[TELEGRAM] Termination signal received, stopping bot...")
		cancel()
	}()

	bot.Run(ctx)
}
