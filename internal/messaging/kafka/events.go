package kafka

import (
	"time"

	"github.com/google/uuid"
)

// EventType определяет тип события интеграции
type EventType string

const (
	EventTypeOrdersImported     EventType = "orders.imported"
	EventTypeOrdersExported     EventType = "orders.exported"
	EventTypeOrdersExportFailed EventType = "orders.export_failed"
)

// TopicIntegrationEvents: топик по умолчанию
const TopicIntegrationEvents = "ordergateway.integration.events"

// Заголовки сообщений
const (
	HeaderEventID   = "x-event-id"
	HeaderEventType = "x-event-type"
)

// IntegrationEvent описывает завершённый импорт или экспорт
type IntegrationEvent struct {
	EventID    string    `json:"event_id"`
	EventType  EventType `json:"event_type"`
	SystemType string    `json:"system_type"`
	Endpoint   string    `json:"endpoint"`
	OrderIDs   []string  `json:"order_ids"`
	Skipped    int       `json:"skipped,omitempty"`
	Accepted   bool      `json:"accepted"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewIntegrationEvent создает событие с новым идентификатором
func NewIntegrationEvent(eventType EventType, systemType, endpoint string, orderIDs []string) *IntegrationEvent {
	return &IntegrationEvent{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		SystemType: systemType,
		Endpoint:   endpoint,
		OrderIDs:   orderIDs,
		Timestamp:  time.Now().UTC(),
	}
}

// Key возвращает ключ партиционирования: эндпоинт внешней системы
func (e *IntegrationEvent) Key() string {
	return e.Endpoint
}
