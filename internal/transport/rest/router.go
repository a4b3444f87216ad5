package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
)

// Registrar монтирует дополнительные маршруты (например, имитатор внешней системы).
type Registrar interface {
	Register(r gin.IRouter)
}

// RouterConfig: параметры сборки gin-движка.
type RouterConfig struct {
	ServiceName    string
	TracerProvider trace.TracerProvider
	Logger         *log.Entry
}

// NewRouter собирает движок: recovery, request id, трассировка, логирование и маршруты.
func NewRouter(cfg RouterConfig, registrars ...Registrar) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = log.WithField("component", "rest")
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "order-gateway"
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), RequestID())

	var otelOpts []otelgin.Option
	if cfg.TracerProvider != nil {
		otelOpts = append(otelOpts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}
	engine.Use(otelgin.Middleware(cfg.ServiceName, otelOpts...))
	engine.Use(Logger(cfg.Logger))

	for _, r := range registrars {
		r.Register(engine)
	}

	engine.NoRoute(func(c *gin.Context) {
		respond(c, http.StatusNotFound, false, "Route not found", nil)
	})
	return engine
}
