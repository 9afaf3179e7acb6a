package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stock-scan/config"
	telegram "stock-scan/internal/api"
	"stock-scan/internal/container"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal("failed to load config", err)
	}
	logger := cfg.NewLogger()

	if cfg.TelegramToken == "" {
		logger.Error("TELEGRAM_TOKEN is required")
		os.Exit(1)
	}

	// Собираем сервисы приложения
	appContainer := container.New(cfg, logger)

	// Создаём бота
	bot, err := telegram.NewBot(cfg.TelegramToken, appContainer.Sessions, logger)
	if err != nil {
		logger.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("bot is running", "endpoint", cfg.DetectEndpoint, "timeout", cfg.DetectTimeout)
	if err := bot.Run(ctx); err != nil {
		logger.Error("bot error", "error", err)
		os.Exit(1)
	}
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
