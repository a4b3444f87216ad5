package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument: некорректный аргумент при обращении к хранилищу.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")
	// ErrValidation: заказ нарушает обязательные инварианты.
	ErrValidation = errors.New("order validation failed")
	// ErrUnknownStatus: статус из внешней системы не совпал ни с одним известным.
	ErrUnknownStatus = errors.New("unknown order status")
	// ErrIntegration: ошибка оркестрации импорта/экспорта.
	ErrIntegration = errors.New("integration failed")
	// ErrExternalSystem: ошибка при обращении к внешней системе.
	ErrExternalSystem = errors.New("external system error")
)

// ExternalErrorKind классифицирует сбой при общении с внешней системой.
type ExternalErrorKind string

const (
	// ExternalNetworkError: сбой транспорта или таймаут, ответа нет.
	ExternalNetworkError ExternalErrorKind = "network"
	// ExternalClientError: внешняя система ответила статусом 4xx.
	ExternalClientError ExternalErrorKind = "client"
	// ExternalProtocolError: любой другой статус, кроме 200.
	ExternalProtocolError ExternalErrorKind = "protocol"
	// ExternalParseError: тело ответа или запись не удалось разобрать.
	ExternalParseError ExternalErrorKind = "parse"
)

// ExternalSystemError описывает ошибку конкретной внешней системы.
type ExternalSystemError struct {
	SystemType string
	Kind       ExternalErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *ExternalSystemError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "external system %s: %s error", e.SystemType, e.Kind)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ExternalSystemError) Unwrap() error { return e.Err }

func (e *ExternalSystemError) Is(target error) bool { return target == ErrExternalSystem }

// OrderNotFoundError несёт идентификатор отсутствующего заказа.
type OrderNotFoundError struct {
	OrderID string
}

func (e *OrderNotFoundError) Error() string {
	return fmt.Sprintf("order %q not found", e.OrderID)
}

func (e *OrderNotFoundError) Is(target error) bool { return target == ErrOrderNotFound }

// IntegrationError оборачивает сбой оркестрации, не относящийся к внешней системе.
type IntegrationError struct {
	Op      string
	Message string
	Err     error
}

func (e *IntegrationError) Error() string {
	msg := e.Op + ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *IntegrationError) Unwrap() error { return e.Err }

func (e *IntegrationError) Is(target error) bool { return target == ErrIntegration }

// ValidationError перечисляет нарушения инвариантов одного заказа.
type ValidationError struct {
	OrderID    string
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("order %q is invalid: %s", e.OrderID, strings.Join(e.Violations, "; "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// AsExternalSystemError достаёт ExternalSystemError из цепочки ошибок.
func AsExternalSystemError(err error) (*ExternalSystemError, bool) {
	var extErr *ExternalSystemError
	if errors.As(err, &extErr) {
		return extErr, true
	}
	return nil, false
}
