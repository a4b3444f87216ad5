// Package mockserver: имитация внешней системы заказов для локальной разработки и тестов.
package mockserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ordergateway/internal/clock"
	"github.com/vladislavdragonenkov/ordergateway/internal/external/wire"
)

// BasePath: префикс всех маршрутов имитатора.
const BasePath = "/external-system"

// DefaultSlowDelay: задержка ответа /orders/slow.
const DefaultSlowDelay = 5 * time.Second

// Config задаёт поведение имитатора.
type Config struct {
	SlowDelay time.Duration
	Clock     clock.Clock
	Logger    *log.Entry
}

// Server отдаёт заранее подготовленные ответы и запоминает полученные пакеты.
type Server struct {
	slowDelay time.Duration
	clock     clock.Clock
	logger    *log.Entry

	mu       sync.Mutex
	received [][]wire.OutboundRecord
}

// New создаёт имитатор; пустые поля Config заменяются значениями по умолчанию.
func New(cfg Config) *Server {
	if cfg.SlowDelay <= 0 {
		cfg.SlowDelay = DefaultSlowDelay
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.NewSystem()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.WithField("component", "mock-external")
	}
	return &Server{
		slowDelay: cfg.SlowDelay,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
	}
}

// Register монтирует маршруты имитатора под BasePath.
func (s *Server) Register(r gin.IRouter) {
	g := r.Group(BasePath)
	g.GET("/orders", s.fetchOrders)
	g.POST("/orders", s.receiveOrders(http.StatusOK, true))
	g.GET("/orders/error", s.fetchError)
	g.GET("/orders/slow", s.fetchSlow)
	g.GET("/orders/invalid", s.fetchInvalid)
	g.GET("/orders/empty", s.fetchEmpty)
	g.POST("/orders/partial-fail", s.receiveOrders(http.StatusMultiStatus, false))
	g.POST("/orders/declined", s.receiveOrders(http.StatusOK, false))
}

// Handler возвращает самостоятельный gin-движок с маршрутами имитатора.
func (s *Server) Handler() http.Handler {
	engine := gin.New()
	engine.Use(gin.Recovery())
	s.Register(engine)
	return engine
}

// Received возвращает копию всех принятых пакетов в порядке поступления.
func (s *Server) Received() [][]wire.OutboundRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([][]wire.OutboundRecord, len(s.received))
	for i, batch := range s.received {
		out[i] = append([]wire.OutboundRecord(nil), batch...)
	}
	return out
}

// SampleOrders: три записи, которые отдаёт GET /orders.
func SampleOrders() []wire.InboundRecord {
	return []wire.InboundRecord{
		{OrderID: "EXT-ORDER-001", CustomerName: "John Smith", OrderDate: "2024-01-15 10:30:00", Status: "PROCESSING", Description: "Electronics order"},
		{OrderID: "EXT-ORDER-002", CustomerName: "Jane Doe", OrderDate: "2024-01-15 11:45:00", Status: "SHIPPING", Description: "Books order"},
		{OrderID: "EXT-ORDER-003", CustomerName: "Bob Johnson", OrderDate: "2024-01-15 14:20:00", Status: "COMPLETED", Description: "Clothing order"},
	}
}

func (s *Server) fetchOrders(c *gin.Context) {
	c.JSON(http.StatusOK, SampleOrders())
}

func (s *Server) fetchError(c *gin.Context) {
	c.String(http.StatusInternalServerError, "Internal server error")
}

// fetchSlow отвечает после задержки; отмена запроса прерывает ожидание.
func (s *Server) fetchSlow(c *gin.Context) {
	timer := time.NewTimer(s.slowDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
		c.JSON(http.StatusOK, SampleOrders())
	case <-c.Request.Context().Done():
		s.logger.Debug("slow request cancelled by client")
	}
}

func (s *Server) fetchInvalid(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"invalid": "json format"})
}

func (s *Server) fetchEmpty(c *gin.Context) {
	c.JSON(http.StatusOK, []wire.InboundRecord{})
}

func (s *Server) receiveOrders(status int, success bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var batch []wire.OutboundRecord
		if err := c.ShouldBindJSON(&batch); err != nil {
			c.JSON(http.StatusBadRequest, s.envelope(false, "malformed order batch: "+err.Error(), nil))
			return
		}

		s.mu.Lock()
		s.received = append(s.received, batch)
		s.mu.Unlock()

		s.logger.WithFields(log.Fields{
			"path":   c.FullPath(),
			"orders": len(batch),
		}).Info("mock external system received orders")

		msg := fmt.Sprintf("Received %d orders", len(batch))
		if !success {
			msg = fmt.Sprintf("Rejected %d orders", len(batch))
		}
		c.JSON(status, s.envelope(success, msg, map[string]int{"received": len(batch)}))
	}
}

func (s *Server) envelope(success bool, msg string, data interface{}) wire.Envelope {
	env := wire.Envelope{
		Success:   success,
		Message:   msg,
		Timestamp: s.clock.Now().Format(time.RFC3339),
	}
	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			env.Data = raw
		}
	}
	return env
}
