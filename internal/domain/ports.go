package domain

import "context"

// ExternalSystemClient описывает обмен заказами с внешней системой.
// Каждый вызов выполняет не более одной сетевой попытки.
type ExternalSystemClient interface {
	// FetchOrders забирает заказы с endpoint и переводит их во внутреннее представление.
	FetchOrders(ctx context.Context, endpoint string) (FetchResult, error)
	// SendOrder отправляет один заказ; эквивалентен SendOrders с одним элементом.
	SendOrder(ctx context.Context, endpoint string, order Order) (bool, error)
	// SendOrders отправляет пакет заказов одним запросом и возвращает флаг success из ответа.
	SendOrders(ctx context.Context, endpoint string, orders []Order) (bool, error)
	// SystemType возвращает метку варианта клиента, например "HTTP".
	SystemType() string
}

// EventPublisher публикует события интеграции во внешнюю шину.
type EventPublisher interface {
	PublishEvent(topic, key string, event interface{}) error
}

// RejectedRecord: запись из внешней системы, которую не удалось перевести в Order.
type RejectedRecord struct {
	OrderID string
	Err     error
}

// FetchResult: результат выборки: переведённые заказы и отвергнутые записи.
type FetchResult struct {
	Orders   []Order
	Rejected []RejectedRecord
}

// SkipStage указывает, на каком этапе импорта запись была отброшена.
type SkipStage string

const (
	SkipStageTranslate SkipStage = "translate"
	SkipStageValidate  SkipStage = "validate"
	SkipStagePersist   SkipStage = "persist"
)

// SkippedRecord описывает запись, не попавшую в хранилище при импорте.
type SkippedRecord struct {
	OrderID string
	Stage   SkipStage
	Reason  string
}

// ImportResult: итог импорта.
type ImportResult struct {
	// Fetched: сколько записей вернула внешняя система.
	Fetched int
	// Imported: заказы, прошедшие валидацию и сохранённые.
	Imported []Order
	// Skipped: отброшенные записи с причиной.
	Skipped []SkippedRecord
}
