// Команда mock-external запускает имитатор внешней системы заказов отдельным процессом.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ordergateway/internal/external/mockserver"
)

const (
	envAddr      = "GATEWAY_MOCK_ADDR"
	envSlowDelay = "GATEWAY_MOCK_SLOW_DELAY"
	defaultAddr  = ":8089"
)

// readSettings читает адрес и задержку /orders/slow из окружения.
func readSettings(lookup func(string) (string, bool)) (string, time.Duration) {
	addr := defaultAddr
	if v, ok := lookup(envAddr); ok && v != "" {
		addr = v
	}
	delay := mockserver.DefaultSlowDelay
	if v, ok := lookup(envSlowDelay); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			delay = d
		} else {
			log.WithField("value", v).Warn("invalid slow delay, using default")
		}
	}
	return addr, delay
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	addr, delay := readSettings(os.LookupEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           mockserver.New(mockserver.Config{SlowDelay: delay}).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", addr).Infof("mock external system listening, base path %s", mockserver.BasePath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("mock external system failed")
	}
	log.Info("mock external system stopped")
}
