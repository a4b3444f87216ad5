// Package app собирает процесс шлюза: REST, gRPC и HTTP-метрики поверх сервиса интеграции.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	promgrpc "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/vladislavdragonenkov/ordergateway/internal/config"
	grpcsvc "github.com/vladislavdragonenkov/ordergateway/internal/transport/grpc"
	"github.com/vladislavdragonenkov/ordergateway/internal/transport/rest"
)

const gracefulStopTimeout = 5 * time.Second

// Listeners позволяют передать заранее открытые сокеты (в тестах: на случайных портах).
// Пустое поле означает net.Listen по адресу из конфигурации.
type Listeners struct {
	HTTP    net.Listener
	GRPC    net.Listener
	Metrics net.Listener
}

func Run(ctx context.Context, cfg *config.Config) error {
	return RunWithListeners(ctx, cfg, Listeners{})
}

// RunWithListeners запускает все серверы и блокируется до отмены ctx или ошибки сервера.
// При отмене ctx возвращает ctx.Err().
func RunWithListeners(ctx context.Context, cfg *config.Config, lis Listeners) error {
	logger := log.WithField("component", "app")

	if err := openListeners(cfg, &lis); err != nil {
		return err
	}

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		closeListeners(lis)
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulStopTimeout)
		defer cancel()
		deps.Close(shutdownCtx)
	}()

	grpcMetrics := promgrpc.NewServerMetrics()
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor()))
	if err := prometheus.Register(grpcMetrics); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok2 := are.ExistingCollector.(*promgrpc.ServerMetrics); ok2 {
				grpcMetrics = existing
			}
		} else {
			logger.WithError(err).Warn("failed to register grpc metrics")
		}
	}

	grpcsvc.RegisterOrderIntegrationServer(grpcServer, grpcsvc.NewServer(
		deps.Service,
		cfg.External.DefaultEndpoint,
		logger.WithField("layer", "grpc"),
	))
	grpcMetrics.InitializeMetrics(grpcServer)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(grpcsvc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	registrars := []rest.Registrar{
		rest.NewHandler(deps.Service, cfg.External.DefaultEndpoint, logger.WithField("layer", "rest")),
	}
	if deps.Mock != nil {
		registrars = append(registrars, deps.Mock)
		logger.Info("mock external system mounted on the api server")
	}
	router := rest.NewRouter(rest.RouterConfig{
		ServiceName:    cfg.Service.Name,
		TracerProvider: deps.Tracing.TracerProvider(),
		Logger:         logger.WithField("layer", "http"),
	}, registrars...)

	apiSrv := &http.Server{
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	metricsSrv := newMetricsServer(deps.Health)

	errCh := make(chan error, 3)
	serveHTTP(apiSrv, lis.HTTP, "api", logger, errCh)
	serveHTTP(metricsSrv, lis.Metrics, "metrics", logger, errCh)
	go func() {
		logger.Infof("gRPC сервер слушает %s", lis.GRPC.Addr())
		if err := grpcServer.Serve(lis.GRPC); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем серверы")
		runErr = ctx.Err()
	case runErr = <-errCh:
		logger.WithError(runErr).Error("server failed, shutting down")
	}

	healthServer.Shutdown()
	stopGRPC(grpcServer, logger)
	shutdownHTTP(apiSrv, cfg.HTTP.ShutdownTimeout, logger)
	shutdownHTTP(metricsSrv, gracefulStopTimeout, logger)
	return runErr
}

func openListeners(cfg *config.Config, lis *Listeners) error {
	var err error
	if lis.HTTP == nil {
		if lis.HTTP, err = net.Listen("tcp", cfg.HTTP.Addr); err != nil {
			return fmt.Errorf("listen http %s: %w", cfg.HTTP.Addr, err)
		}
	}
	if lis.GRPC == nil {
		if lis.GRPC, err = net.Listen("tcp", cfg.GRPC.Addr); err != nil {
			closeListeners(*lis)
			return fmt.Errorf("listen grpc %s: %w", cfg.GRPC.Addr, err)
		}
	}
	if lis.Metrics == nil {
		if lis.Metrics, err = net.Listen("tcp", cfg.Metrics.Addr); err != nil {
			closeListeners(*lis)
			return fmt.Errorf("listen metrics %s: %w", cfg.Metrics.Addr, err)
		}
	}
	return nil
}

func closeListeners(lis Listeners) {
	for _, l := range []net.Listener{lis.HTTP, lis.GRPC, lis.Metrics} {
		if l != nil {
			_ = l.Close()
		}
	}
}

// stopGRPC ждёт завершения активных вызовов, но не дольше gracefulStopTimeout.
func stopGRPC(server *grpc.Server, logger *log.Entry) {
	stoppedCh := make(chan struct{})
	go func() {
		server.GracefulStop()
		close(stoppedCh)
	}()
	select {
	case <-stoppedCh:
	case <-time.After(gracefulStopTimeout):
		logger.Warn("graceful stop превысил таймаут, принудительно останавливаем")
		server.Stop()
	}
}
