package wire

import (
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/ordergateway/internal/clock"
	"github.com/vladislavdragonenkov/ordergateway/internal/domain"
)

// Translator переводит записи внешней системы в Order и обратно.
type Translator struct {
	clock    clock.Clock
	location *time.Location
}

// Option настраивает Translator.
type Option func(*Translator)

// WithClock подменяет источник времени (для processedAt и подстановки даты).
func WithClock(c clock.Clock) Option {
	return func(t *Translator) {
		if c != nil {
			t.clock = c
		}
	}
}

// WithLocation задаёт часовой пояс, в котором внешняя система пишет даты.
func WithLocation(loc *time.Location) Option {
	return func(t *Translator) {
		if loc != nil {
			t.location = loc
		}
	}
}

// NewTranslator создаёт транслятор с системными часами и UTC по умолчанию.
func NewTranslator(opts ...Option) *Translator {
	t := &Translator{
		clock:    clock.NewSystem(),
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ToOrder переводит входящую запись в Order.
// Неизвестный статус: ошибка; дата, которую не удалось разобрать, заменяется текущим временем.
func (t *Translator) ToOrder(rec InboundRecord) (domain.Order, error) {
	status, err := domain.ParseOrderStatus(rec.Status)
	if err != nil {
		return domain.Order{}, fmt.Errorf("record %q: %w", rec.OrderID, err)
	}

	return domain.Order{
		OrderID:      rec.OrderID,
		CustomerName: rec.CustomerName,
		OrderDate:    t.parseDate(rec.OrderDate),
		Status:       status,
		Description:  rec.Description,
	}, nil
}

// ToOutbound переводит Order в исходящую запись с отметкой processedAt.
func (t *Translator) ToOutbound(order domain.Order) OutboundRecord {
	return t.toOutbound(order, t.formatDate(t.clock.Now()))
}

// ToOutboundBatch переводит пакет заказов с общей отметкой processedAt.
func (t *Translator) ToOutboundBatch(orders []domain.Order) []OutboundRecord {
	processedAt := t.formatDate(t.clock.Now())
	records := make([]OutboundRecord, 0, len(orders))
	for _, order := range orders {
		records = append(records, t.toOutbound(order, processedAt))
	}
	return records
}

// ToInbound отбрасывает processedAt и возвращает запись во входящем формате.
func ToInbound(rec OutboundRecord) InboundRecord {
	return InboundRecord{
		OrderID:      rec.OrderID,
		CustomerName: rec.CustomerName,
		OrderDate:    rec.OrderDate,
		Status:       rec.Status,
		Description:  rec.Description,
	}
}

func (t *Translator) toOutbound(order domain.Order, processedAt string) OutboundRecord {
	return OutboundRecord{
		OrderID:      order.OrderID,
		CustomerName: order.CustomerName,
		OrderDate:    t.formatDate(order.OrderDate),
		Status:       string(order.Status),
		Description:  order.Description,
		ProcessedAt:  processedAt,
	}
}

func (t *Translator) parseDate(raw string) time.Time {
	parsed, err := time.ParseInLocation(DateLayout, raw, t.location)
	if err != nil {
		return t.clock.Now().In(t.location)
	}
	return parsed
}

func (t *Translator) formatDate(ts time.Time) string {
	return ts.In(t.location).Format(DateLayout)
}
