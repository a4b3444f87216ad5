package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ordergateway/internal/clock"
	"github.com/vladislavdragonenkov/ordergateway/internal/config"
	"github.com/vladislavdragonenkov/ordergateway/internal/domain"
	"github.com/vladislavdragonenkov/ordergateway/internal/external/httpclient"
	"github.com/vladislavdragonenkov/ordergateway/internal/external/mockserver"
	"github.com/vladislavdragonenkov/ordergateway/internal/external/wire"
	healthcheck "github.com/vladislavdragonenkov/ordergateway/internal/health"
	"github.com/vladislavdragonenkov/ordergateway/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/ordergateway/internal/metrics"
	"github.com/vladislavdragonenkov/ordergateway/internal/observability"
	"github.com/vladislavdragonenkov/ordergateway/internal/service/integration"
	"github.com/vladislavdragonenkov/ordergateway/internal/storage/memory"
	"github.com/vladislavdragonenkov/ordergateway/internal/version"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Repo     domain.OrderRepository
	Client   domain.ExternalSystemClient
	Producer *kafka.Producer
	Metrics  *metrics.IntegrationMetrics
	Tracing  *observability.Tracing
	Service  integration.Service
	Health   *healthcheck.Handler
	// Mock: встроенный имитатор внешней системы; nil, если выключен.
	Mock   *mockserver.Server
	Logger *log.Entry
}

// NewDependencies создаёт и связывает компоненты шлюза по конфигурации.
// Недоступная Kafka не мешает запуску: события просто не публикуются.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	tracing, err := observability.SetupTracing(ctx, observability.TracingConfig{
		Enabled:        cfg.Tracing.Enabled,
		Endpoint:       cfg.Tracing.Endpoint,
		Insecure:       cfg.Tracing.Insecure,
		SamplingRatio:  cfg.Tracing.SamplingRatio,
		ServiceName:    cfg.Service.Name,
		ServiceVersion: version.GetVersion(),
	}, logger.WithField("layer", "tracing"))
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}

	deps := &Dependencies{
		Repo:    memory.NewOrderRepository(),
		Metrics: metrics.NewIntegrationMetrics(),
		Tracing: tracing,
		Health:  healthcheck.NewHandler(version.GetVersion()),
		Logger:  logger,
	}

	translator := wire.NewTranslator(wire.WithLocation(cfg.ExternalLocation()))
	deps.Client = httpclient.New(
		httpclient.WithTimeout(cfg.External.Timeout),
		httpclient.WithTranslator(translator),
		httpclient.WithLogger(logger.WithField("layer", "external")),
	)

	opts := []integration.Option{
		integration.WithLogger(logger.WithField("layer", "integration")),
		integration.WithMetrics(deps.Metrics),
		integration.WithTracerProvider(tracing.TracerProvider()),
	}

	producer, _ := initKafkaProducer(cfg.Kafka, logger)
	if producer != nil {
		deps.Producer = producer
		opts = append(opts, integration.WithEventPublisher(producer, cfg.Kafka.Topic))
		deps.Health.Register(healthcheck.NewChecker("kafka", false, func(context.Context) error {
			return producer.Check()
		}))
	}

	deps.Health.Register(healthcheck.NewChecker("storage", true, func(context.Context) error {
		deps.Repo.Count()
		return nil
	}))

	if cfg.MockExternal.Enabled {
		deps.Mock = mockserver.New(mockserver.Config{
			SlowDelay: cfg.MockExternal.SlowDelay,
			Clock:     clock.NewSystem(),
			Logger:    logger.WithField("layer", "mock-external"),
		})
	}

	deps.Service = integration.NewService(deps.Repo, deps.Client, opts...)
	return deps, nil
}

// Close освобождает внешние ресурсы: producer и экспортёр трейсов.
func (d *Dependencies) Close(ctx context.Context) {
	closeKafka(d.Producer, d.Logger)
	if d.Tracing != nil {
		if err := d.Tracing.Shutdown(ctx); err != nil {
			d.Logger.WithError(err).Warn("failed to shutdown tracing")
		}
	}
}
