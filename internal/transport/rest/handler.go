package rest

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ordergateway/internal/domain"
	"github.com/vladislavdragonenkov/ordergateway/internal/service/integration"
)

// Handler публикует операции сервиса интеграции под /api/orders.
type Handler struct {
	svc             integration.Service
	defaultEndpoint string
	logger          *log.Entry
}

// NewHandler создаёт REST-обработчик. defaultEndpoint используется, если в запросе endpoint пуст.
func NewHandler(svc integration.Service, defaultEndpoint string, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.WithField("component", "rest")
	}
	return &Handler{svc: svc, defaultEndpoint: defaultEndpoint, logger: logger}
}

// Register монтирует маршруты.
func (h *Handler) Register(r gin.IRouter) {
	g := r.Group("/api/orders")
	g.POST("/import", h.importOrders)
	g.POST("/export/:orderId", h.exportOne)
	g.POST("/export", h.exportMany)
	g.GET("", h.listAll)
	g.GET("/:orderId", h.getByID)
	g.GET("/status/:status", h.listByStatus)
}

func (h *Handler) importOrders(c *gin.Context) {
	var req ImportRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, bindError(err))
		return
	}
	endpoint, err := h.endpoint(req.Endpoint)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.svc.ImportFromExternal(c.Request.Context(), endpoint)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, fmt.Sprintf("Successfully imported %d orders", len(result.Imported)), toImportResponse(result))
}

func (h *Handler) exportOne(c *gin.Context) {
	var req ExportRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, bindError(err))
		return
	}
	endpoint, err := h.endpoint(req.Endpoint)
	if err != nil {
		respondError(c, err)
		return
	}

	orderID := c.Param("orderId")
	accepted, err := h.svc.ExportOneToExternal(c.Request.Context(), endpoint, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondExport(c, accepted, fmt.Sprintf("Order %s", orderID))
}

func (h *Handler) exportMany(c *gin.Context) {
	var req ExportManyRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, bindError(err))
		return
	}
	endpoint, err := h.endpoint(req.Endpoint)
	if err != nil {
		respondError(c, err)
		return
	}

	accepted, err := h.svc.ExportManyToExternal(c.Request.Context(), endpoint, req.OrderIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondExport(c, accepted, "Orders")
}

func (h *Handler) listAll(c *gin.Context) {
	orders := h.svc.ListAll()
	ok(c, fmt.Sprintf("Found %d orders", len(orders)), toOrderDTOs(orders))
}

func (h *Handler) getByID(c *gin.Context) {
	order, err := h.svc.GetByID(c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Order found", toOrderDTO(order))
}

func (h *Handler) listByStatus(c *gin.Context) {
	status, err := domain.ParseOrderStatus(c.Param("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	orders := h.svc.ListByStatus(status)
	ok(c, fmt.Sprintf("Found %d orders with status %s", len(orders), status), toOrderDTOs(orders))
}

// respondExport: отказ внешней системы: это не ошибка запроса, поэтому 200 с success=false.
func (h *Handler) respondExport(c *gin.Context, accepted bool, subject string) {
	if accepted {
		ok(c, subject+" exported successfully", ExportResponse{Accepted: true})
		return
	}
	respond(c, http.StatusOK, false, subject+" rejected by external system", ExportResponse{Accepted: false})
}

func (h *Handler) endpoint(requested string) (string, error) {
	if requested != "" {
		return requested, nil
	}
	if h.defaultEndpoint != "" {
		return h.defaultEndpoint, nil
	}
	return "", errors.Join(errBadRequest, errors.New("endpoint is required"))
}

// bindJSON разбирает тело запроса; пустое тело допустимо и проверяется как нулевая структура.
func bindJSON(c *gin.Context, obj interface{}) error {
	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		return binding.Validator.ValidateStruct(obj)
	}
	return err
}
