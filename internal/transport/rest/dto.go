package rest

import (
	"time"

	"github.com/vladislavdragonenkov/ordergateway/internal/domain"
)

// ImportRequest: тело POST /api/orders/import.
type ImportRequest struct {
	Endpoint string `json:"endpoint" binding:"omitempty,url"`
}

// ExportRequest: тело POST /api/orders/export/:orderId.
type ExportRequest struct {
	Endpoint string `json:"endpoint" binding:"omitempty,url"`
}

// ExportManyRequest: тело POST /api/orders/export.
type ExportManyRequest struct {
	Endpoint string   `json:"endpoint" binding:"omitempty,url"`
	OrderIDs []string `json:"orderIds" binding:"required"`
}

type OrderDTO struct {
	OrderID      string    `json:"orderId"`
	CustomerName string    `json:"customerName"`
	OrderDate    time.Time `json:"orderDate"`
	Status       string    `json:"status"`
	StatusLabel  string    `json:"statusLabel"`
	Description  string    `json:"description,omitempty"`
}

type SkippedDTO struct {
	OrderID string `json:"orderId"`
	Stage   string `json:"stage"`
	Reason  string `json:"reason"`
}

type ImportResponse struct {
	Fetched  int          `json:"fetched"`
	Imported []OrderDTO   `json:"imported"`
	Skipped  []SkippedDTO `json:"skipped,omitempty"`
}

type ExportResponse struct {
	Accepted bool `json:"accepted"`
}

func toOrderDTO(o domain.Order) OrderDTO {
	return OrderDTO{
		OrderID:      o.OrderID,
		CustomerName: o.CustomerName,
		OrderDate:    o.OrderDate,
		Status:       string(o.Status),
		StatusLabel:  o.Status.Label(),
		Description:  o.Description,
	}
}

func toOrderDTOs(orders []domain.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderDTO(o))
	}
	return out
}

func toImportResponse(r domain.ImportResult) ImportResponse {
	resp := ImportResponse{Fetched: r.Fetched, Imported: toOrderDTOs(r.Imported)}
	for _, s := range r.Skipped {
		resp.Skipped = append(resp.Skipped, SkippedDTO{OrderID: s.OrderID, Stage: string(s.Stage), Reason: s.Reason})
	}
	return resp
}
