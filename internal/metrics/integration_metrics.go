package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Метки результатов операций.
const (
	ResultSuccess       = "success"
	ResultDeclined      = "declined"
	ResultNotFound      = "not_found"
	ResultNoValidOrders = "no_valid_orders"
	ResultExternalError = "external_error"
	ResultFailed        = "failed"
)

// Метки режима экспорта.
const (
	ExportModeOne  = "one"
	ExportModeMany = "many"
)

// IntegrationMetrics содержит метрики импорта и экспорта заказов.
// Методы безопасны для nil-получателя: без метрик запись просто пропускается.
type IntegrationMetrics struct {
	imports        *prometheus.CounterVec
	importedOrders prometheus.Counter
	skippedRecords *prometheus.CounterVec
	exports        *prometheus.CounterVec
	externalErrors *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	storedOrders   prometheus.Gauge
}

// NewIntegrationMetrics регистрирует метрики в DefaultRegisterer.
func NewIntegrationMetrics() *IntegrationMetrics {
	return NewIntegrationMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewIntegrationMetricsWithRegisterer регистрирует метрики в переданном реестре.
// Повторная регистрация возвращает уже существующие коллекторы.
func NewIntegrationMetricsWithRegisterer(registerer prometheus.Registerer) *IntegrationMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &IntegrationMetrics{
		imports: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_imports_total",
			Help: "Total number of import runs by result",
		}, []string{"result"})),
		importedOrders: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gateway_imported_orders_total",
			Help: "Total number of orders validated and persisted by imports",
		})),
		skippedRecords: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_skipped_records_total",
			Help: "Total number of external records skipped during import by stage",
		}, []string{"stage"})),
		exports: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_exports_total",
			Help: "Total number of export calls by mode and result",
		}, []string{"mode", "result"})),
		externalErrors: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_external_errors_total",
			Help: "Total number of external system errors by kind",
		}, []string{"kind"})),
		duration: register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gateway_operation_duration_seconds",
			Help:    "Duration of integration operations in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"})),
		storedOrders: register(registerer, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gateway_stored_orders",
			Help: "Number of orders currently held in the order store",
		})),
	}
}

func register[T prometheus.Collector](registerer prometheus.Registerer, collector T) T {
	if err := registerer.Register(collector); err != nil {
		var alreadyRegistered prometheus.AlreadyRegisteredError
		if errors.As(err, &alreadyRegistered) {
			existing, ok := alreadyRegistered.ExistingCollector.(T)
			if !ok {
				panic(fmt.Sprintf("collector already registered with unexpected type %T", alreadyRegistered.ExistingCollector))
			}
			return existing
		}
		panic(fmt.Sprintf("register collector: %v", err))
	}
	return collector
}

// RecordImport фиксирует итог одного импорта.
func (m *IntegrationMetrics) RecordImport(result string, imported int) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(result).Inc()
	m.importedOrders.Add(float64(imported))
}

// RecordSkipped увеличивает счётчик отброшенных записей на этапе stage.
func (m *IntegrationMetrics) RecordSkipped(stage string) {
	if m == nil {
		return
	}
	m.skippedRecords.WithLabelValues(stage).Inc()
}

// RecordExport фиксирует итог экспорта.
func (m *IntegrationMetrics) RecordExport(mode, result string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(mode, result).Inc()
}

// RecordExternalError увеличивает счётчик ошибок внешней системы по виду.
func (m *IntegrationMetrics) RecordExternalError(kind string) {
	if m == nil {
		return
	}
	m.externalErrors.WithLabelValues(kind).Inc()
}

// RecordDuration записывает длительность операции.
func (m *IntegrationMetrics) RecordDuration(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(operation).Observe(d.Seconds())
}

// SetStoredOrders обновляет gauge размера хранилища.
func (m *IntegrationMetrics) SetStoredOrders(n int) {
	if m == nil {
		return
	}
	m.storedOrders.Set(float64(n))
}
