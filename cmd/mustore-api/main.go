package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/mustore/internal/app"
	"github.com/vladislavdragonenkov/mustore/internal/version"
)

// setupLogger настраивает формат и уровень логирования.
func setupLogger() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
	if level, err := log.ParseLevel(os.Getenv("MUSTORE_LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}
}

func main() {
	// .env удобен при локальной разработке; в продакшене его просто нет.
	_ = godotenv.Load()
	setupLogger()

	cfg, err := app.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("некорректная конфигурация")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"http_addr": cfg.HTTPAddr,
		"ops_addr":  cfg.OpsAddr,
		"version":   version.String(),
	}).Info("запускаем MuStore API")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("MuStore API остановлен")
}
