package integration

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vladislavdragonenkov/ordergateway/internal/domain"
	"github.com/vladislavdragonenkov/ordergateway/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/ordergateway/internal/metrics"
)

const tracerName = "github.com/vladislavdragonenkov/ordergateway/internal/service/integration"

// Service описывает импорт и экспорт заказов между хранилищем и внешней системой.
type Service interface {
	// ImportFromExternal забирает заказы, отбрасывает невалидные и сохраняет остальные.
	ImportFromExternal(ctx context.Context, endpoint string) (domain.ImportResult, error)
	// ExportOneToExternal отправляет один сохранённый заказ.
	ExportOneToExternal(ctx context.Context, endpoint, orderID string) (bool, error)
	// ExportManyToExternal отправляет найденные заказы одним пакетом; ненайденные пропускаются.
	ExportManyToExternal(ctx context.Context, endpoint string, orderIDs []string) (bool, error)
	ListAll() []domain.Order
	GetByID(orderID string) (domain.Order, error)
	ListByStatus(status domain.OrderStatus) []domain.Order
}

// service не хранит состояния между вызовами; всё состояние живёт в хранилище.
type service struct {
	orders    domain.OrderRepository
	client    domain.ExternalSystemClient
	logger    *log.Entry
	metrics   *metrics.IntegrationMetrics
	tracer    trace.Tracer
	publisher domain.EventPublisher
	topic     string
}

// Option настраивает сервис интеграции.
type Option func(*service)

// WithLogger задаёт логгер сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics включает запись Prometheus-метрик.
func WithMetrics(m *metrics.IntegrationMetrics) Option {
	return func(s *service) {
		s.metrics = m
	}
}

// WithTracerProvider подменяет глобальный TracerProvider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *service) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithEventPublisher включает публикацию событий интеграции в topic.
func WithEventPublisher(publisher domain.EventPublisher, topic string) Option {
	return func(s *service) {
		s.publisher = publisher
		if topic != "" {
			s.topic = topic
		}
	}
}

// NewService создаёт сервис интеграции поверх хранилища и клиента внешней системы.
func NewService(orders domain.OrderRepository, client domain.ExternalSystemClient, opts ...Option) Service {
	s := &service{
		orders: orders,
		client: client,
		logger: log.WithField("component", "integration"),
		tracer: otel.GetTracerProvider().Tracer(tracerName),
		topic:  kafka.TopicIntegrationEvents,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) ImportFromExternal(ctx context.Context, endpoint string) (domain.ImportResult, error) {
	ctx, span := s.tracer.Start(ctx, "integration.import", trace.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("system_type", s.client.SystemType()),
	))
	defer span.End()
	start := time.Now()
	defer func() { s.metrics.RecordDuration("import", time.Since(start)) }()

	logger := s.logger.WithField("endpoint", endpoint)

	fetched, err := s.client.FetchOrders(ctx, endpoint)
	if err != nil {
		err = s.classify("import", "fetch orders from external system", err)
		s.metrics.RecordImport(resultFor(err), 0)
		failSpan(span, err)
		logger.WithError(err).Error("import failed")
		return domain.ImportResult{}, err
	}

	result := domain.ImportResult{
		Fetched:  len(fetched.Orders) + len(fetched.Rejected),
		Imported: make([]domain.Order, 0, len(fetched.Orders)),
	}

	for _, rejected := range fetched.Rejected {
		reason := "rejected by translation"
		if rejected.Err != nil {
			reason = rejected.Err.Error()
		}
		s.skip(&result, rejected.OrderID, domain.SkipStageTranslate, reason)
	}

	for i := range fetched.Orders {
		order := fetched.Orders[i]
		if err := order.Validate(); err != nil {
			logger.WithError(err).WithField("order_id", order.OrderID).Warn("skipping invalid order")
			s.skip(&result, order.OrderID, domain.SkipStageValidate, err.Error())
			continue
		}
		saved, err := s.orders.Save(&order)
		if err != nil {
			logger.WithError(err).WithField("order_id", order.OrderID).Error("failed to persist order")
			s.skip(&result, order.OrderID, domain.SkipStagePersist, err.Error())
			continue
		}
		result.Imported = append(result.Imported, *saved)
	}

	s.metrics.RecordImport(metrics.ResultSuccess, len(result.Imported))
	s.metrics.SetStoredOrders(s.orders.Count())
	span.SetAttributes(
		attribute.Int("orders.fetched", result.Fetched),
		attribute.Int("orders.count", len(result.Imported)),
		attribute.Int("orders.skipped", len(result.Skipped)),
	)

	event := kafka.NewIntegrationEvent(kafka.EventTypeOrdersImported, s.client.SystemType(), endpoint, orderIDs(result.Imported))
	event.Skipped = len(result.Skipped)
	event.Accepted = true
	s.publish(event)

	logger.WithFields(log.Fields{
		"fetched":  result.Fetched,
		"imported": len(result.Imported),
		"skipped":  len(result.Skipped),
	}).Info("import completed")
	return result, nil
}

func (s *service) ExportOneToExternal(ctx context.Context, endpoint, orderID string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "integration.export_one", trace.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("order_id", orderID),
	))
	defer span.End()
	start := time.Now()
	defer func() { s.metrics.RecordDuration("export_one", time.Since(start)) }()

	order, ok := s.orders.FindByID(orderID)
	if !ok {
		err := &domain.OrderNotFoundError{OrderID: orderID}
		s.metrics.RecordExport(metrics.ExportModeOne, metrics.ResultNotFound)
		failSpan(span, err)
		return false, err
	}

	accepted, err := s.client.SendOrder(ctx, endpoint, order)
	return s.finishExport(span, metrics.ExportModeOne, endpoint, []domain.Order{order}, accepted, err)
}

func (s *service) ExportManyToExternal(ctx context.Context, endpoint string, orderIDs []string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "integration.export_many", trace.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.Int("orders.requested", len(orderIDs)),
	))
	defer span.End()
	start := time.Now()
	defer func() { s.metrics.RecordDuration("export_many", time.Since(start)) }()

	resolved := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		if order, ok := s.orders.FindByID(id); ok {
			resolved = append(resolved, order)
		}
	}
	if len(resolved) == 0 {
		err := &domain.IntegrationError{Op: "export", Message: "no valid orders found for export"}
		s.metrics.RecordExport(metrics.ExportModeMany, metrics.ResultNoValidOrders)
		failSpan(span, err)
		return false, err
	}
	if missing := len(orderIDs) - len(resolved); missing > 0 {
		s.logger.WithFields(log.Fields{
			"endpoint":  endpoint,
			"requested": len(orderIDs),
			"missing":   missing,
		}).Debug("unknown order ids dropped from export")
	}

	accepted, err := s.client.SendOrders(ctx, endpoint, resolved)
	return s.finishExport(span, metrics.ExportModeMany, endpoint, resolved, accepted, err)
}

func (s *service) ListAll() []domain.Order {
	return s.orders.FindAll()
}

func (s *service) GetByID(orderID string) (domain.Order, error) {
	order, ok := s.orders.FindByID(orderID)
	if !ok {
		return domain.Order{}, &domain.OrderNotFoundError{OrderID: orderID}
	}
	return order, nil
}

func (s *service) ListByStatus(status domain.OrderStatus) []domain.Order {
	return s.orders.FindByStatus(status)
}

func (s *service) finishExport(span trace.Span, mode, endpoint string, orders []domain.Order, accepted bool, err error) (bool, error) {
	span.SetAttributes(attribute.Int("orders.count", len(orders)))
	logger := s.logger.WithFields(log.Fields{
		"endpoint": endpoint,
		"mode":     mode,
		"orders":   len(orders),
	})

	if err != nil {
		err = s.classify("export", "send orders to external system", err)
		s.metrics.RecordExport(mode, resultFor(err))
		failSpan(span, err)
		logger.WithError(err).Error("export failed")

		event := kafka.NewIntegrationEvent(kafka.EventTypeOrdersExportFailed, s.client.SystemType(), endpoint, orderIDs(orders))
		event.Error = err.Error()
		s.publish(event)
		return false, err
	}

	result, eventType := metrics.ResultSuccess, kafka.EventTypeOrdersExported
	if !accepted {
		result, eventType = metrics.ResultDeclined, kafka.EventTypeOrdersExportFailed
	}
	s.metrics.RecordExport(mode, result)
	span.SetAttributes(attribute.Bool("export.accepted", accepted))

	event := kafka.NewIntegrationEvent(eventType, s.client.SystemType(), endpoint, orderIDs(orders))
	event.Accepted = accepted
	s.publish(event)

	logger.WithField("accepted", accepted).Info("export completed")
	return accepted, nil
}

// classify оставляет ошибки внешней системы как есть, остальные оборачивает в IntegrationError.
func (s *service) classify(op, msg string, err error) error {
	if extErr, ok := domain.AsExternalSystemError(err); ok {
		s.metrics.RecordExternalError(string(extErr.Kind))
		return err
	}
	if errors.Is(err, domain.ErrIntegration) {
		return err
	}
	return &domain.IntegrationError{Op: op, Message: msg, Err: err}
}

func (s *service) skip(result *domain.ImportResult, orderID string, stage domain.SkipStage, reason string) {
	result.Skipped = append(result.Skipped, domain.SkippedRecord{
		OrderID: orderID,
		Stage:   stage,
		Reason:  reason,
	})
	s.metrics.RecordSkipped(string(stage))
}

// publish отправляет событие, если настроен publisher. Ошибка публикации не влияет на результат.
func (s *service) publish(event *kafka.IntegrationEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(s.topic, event.Key(), event); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"event_type": event.EventType,
			"event_id":   event.EventID,
		}).Warn("failed to publish integration event")
	}
}

func resultFor(err error) string {
	if errors.Is(err, domain.ErrExternalSystem) {
		return metrics.ResultExternalError
	}
	return metrics.ResultFailed
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func orderIDs(orders []domain.Order) []string {
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.OrderID)
	}
	return ids
}
