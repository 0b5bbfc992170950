package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/trendlotto/invest/internal/alertbot"
	"github.com/trendlotto/invest/internal/clients/naver"
	"github.com/trendlotto/invest/pkg/logger"
)

func main() {
	configPath := flag.String("config", "alert_config.json", "path to the watcher config file")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	log := logger.New(logger.Config{Level: *logLevel, Pretty: true})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting Trend-Lotto alert bot")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bot := alertbot.New(*configPath, naver.NewClient(log), log)
	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("Alert bot exited with error")
		os.Exit(1)
	}

	log.Info().Msg("Alert bot stopped")
}
