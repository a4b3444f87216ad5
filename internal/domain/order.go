package domain

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// OrderStatus описывает состояние заказа, общее для шлюза и внешней системы.
type OrderStatus string

const (
	// OrderStatusProcessing: заказ принят и обрабатывается.
	OrderStatusProcessing OrderStatus = "PROCESSING"
	// OrderStatusShipping: заказ передан в доставку.
	OrderStatusShipping OrderStatus = "SHIPPING"
	// OrderStatusCompleted: заказ доставлен.
	OrderStatusCompleted OrderStatus = "COMPLETED"
	// OrderStatusCancelled: заказ отменён.
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

var statusLabels = map[OrderStatus]string{
	OrderStatusProcessing: "Processing",
	OrderStatusShipping:   "Shipping",
	OrderStatusCompleted:  "Completed",
	OrderStatusCancelled:  "Cancelled",
}

// OrderStatuses возвращает все известные статусы в каноническом порядке.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusProcessing,
		OrderStatusShipping,
		OrderStatusCompleted,
		OrderStatusCancelled,
	}
}

// ParseOrderStatus сопоставляет строку со статусом без учёта регистра.
// Пробелы не обрезаются: " shipping" не является валидным статусом.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(raw))
	if _, ok := statusLabels[status]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	return status, nil
}

// Valid сообщает, является ли значение одним из известных статусов.
func (s OrderStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label возвращает человекочитаемое название статуса.
func (s OrderStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Order: заказ в том виде, в котором шлюз хранит и отдаёт его наружу.
type Order struct {
	OrderID      string      `validate:"notblank"`
	CustomerName string      `validate:"notblank"`
	OrderDate    time.Time
	Status       OrderStatus `validate:"required,oneof=PROCESSING SHIPPING COMPLETED CANCELLED"`
	Description  string
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func orderValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		// notblank отсутствует в стандартном наборе правил.
		if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
			panic(fmt.Sprintf("register notblank validation: %v", err))
		}
		validate = v
	})
	return validate
}

// Validate проверяет инварианты заказа перед сохранением.
// Возвращает *ValidationError со списком нарушений либо nil.
func (o *Order) Validate() error {
	var violations []string

	if err := orderValidator().Struct(o); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		for _, fe := range verrs {
			violations = append(violations, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
		}
	}
	if o.OrderDate.IsZero() {
		violations = append(violations, "OrderDate is required")
	}

	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{OrderID: o.OrderID, Violations: violations}
}
