package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ordergateway/internal/app"
	"github.com/vladislavdragonenkov/ordergateway/internal/config"
	"github.com/vladislavdragonenkov/ordergateway/internal/version"
)

const envConfigPath = "GATEWAY_CONFIG"

// setupLogger настраивает формат и уровень логирования по конфигурации.
func setupLogger(cfg config.LogConfig) error {
	if strings.EqualFold(cfg.Format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.SetLevel(log.InfoLevel)
		return err
	}
	log.SetLevel(level)
	return nil
}

func main() {
	cfg, err := config.Load(os.Getenv(envConfigPath))
	if err != nil {
		log.WithError(err).Fatal("не удалось загрузить конфигурацию")
	}
	if err := setupLogger(cfg.Log); err != nil {
		log.WithError(err).Warn("unknown log level, falling back to info")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"version":      version.Current().String(),
		"http_addr":    cfg.HTTP.Addr,
		"grpc_addr":    cfg.GRPC.Addr,
		"metrics_addr": cfg.Metrics.Addr,
		"mock":         cfg.MockExternal.Enabled,
	}).Info("запускаем order-gateway")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("order-gateway остановлен")
}
