// Package wire описывает формат обмена с внешней системой и перевод
// между ним и внутренней моделью заказа.
package wire

import "encoding/json"

// DateLayout: формат дат во внешней системе (yyyy-MM-dd HH:mm:ss).
const DateLayout = "2006-01-02 15:04:05"

// InboundRecord: заказ в том виде, в котором его отдаёт внешняя система.
type InboundRecord struct {
	OrderID      string `json:"orderId"`
	CustomerName string `json:"customerName"`
	OrderDate    string `json:"orderDate"`
	Status       string `json:"status"`
	Description  string `json:"description,omitempty"`
}

// OutboundRecord: заказ, отправляемый во внешнюю систему.
// ProcessedAt выставляется при каждом переводе и нигде не хранится.
type OutboundRecord struct {
	OrderID      string `json:"orderId"`
	CustomerName string `json:"customerName"`
	OrderDate    string `json:"orderDate"`
	Status       string `json:"status"`
	Description  string `json:"description,omitempty"`
	ProcessedAt  string `json:"processedAt"`
}

// Envelope: ответ внешней системы на отправку заказов.
// Решение об успехе принимается только по полю Success.
type Envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}
