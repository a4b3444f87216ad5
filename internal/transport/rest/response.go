package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/vladislavdragonenkov/ordergateway/internal/domain"
)

// Envelope: единый формат всех ответов REST API.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// errBadRequest помечает ошибки разбора запроса.
var errBadRequest = errors.New("bad request")

func respond(c *gin.Context, status int, success bool, message string, data interface{}) {
	c.JSON(status, Envelope{Success: success, Message: message, Data: data})
}

func ok(c *gin.Context, message string, data interface{}) {
	respond(c, http.StatusOK, true, message, data)
}

// respondError переводит ошибку в HTTP-статус:
// не найден: 404, внешняя система: 502, валидация: 400, остальное: 500.
func respondError(c *gin.Context, err error) {
	status, message := classify(err)
	_ = c.Error(err)
	respond(c, status, false, message, nil)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrExternalSystem):
		return http.StatusBadGateway, "External system error: " + err.Error()
	case errors.Is(err, errBadRequest),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrUnknownStatus),
		errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrIntegration):
		return http.StatusInternalServerError, "Integration error: " + err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// bindError описывает ошибку разбора тела, перечисляя поля, не прошедшие проверку.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Join(errBadRequest, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field()+" failed on "+fe.Tag())
	}
	return errors.Join(errBadRequest, errors.New("validation failed: "+strings.Join(fields, ", ")))
}
