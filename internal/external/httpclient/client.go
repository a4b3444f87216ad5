// Package httpclient реализует обмен заказами с внешней системой по HTTP+JSON.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/vladislavdragonenkov/ordergateway/internal/domain"
	"github.com/vladislavdragonenkov/ordergateway/internal/external/wire"
	"github.com/vladislavdragonenkov/ordergateway/internal/version"
)

// SystemType: метка этого варианта клиента во всех ошибках и логах.
const SystemType = "HTTP"

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 10 << 20
	snippetBytes   = 256
)

// Client: HTTP-клиент внешней системы. Одна сетевая попытка на вызов, без повторов.
type Client struct {
	http       *http.Client
	translator *wire.Translator
	logger     *log.Entry
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет http.Client (например, в тестах или для кастомного транспорта).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout задаёт общий таймаут одного запроса.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithTranslator подменяет транслятор записей.
func WithTranslator(t *wire.Translator) Option {
	return func(c *Client) {
		if t != nil {
			c.translator = t
		}
	}
}

// WithLogger задаёт логгер клиента.
func WithLogger(logger *log.Entry) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New создаёт клиента с трассируемым транспортом и таймаутом по умолчанию.
func New(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		translator: wire.NewTranslator(),
		logger:     log.WithField("component", "external-http-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SystemType() string { return SystemType }

// FetchOrders забирает заказы и переводит каждую запись отдельно.
// Запись с неизвестным статусом попадает в Rejected и не прерывает пакет.
func (c *Client) FetchOrders(ctx context.Context, endpoint string) (domain.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.FetchResult{}, c.newError(domain.ExternalNetworkError, 0, "build fetch request", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return domain.FetchResult{}, err
	}

	var records []wire.InboundRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return domain.FetchResult{}, c.newError(domain.ExternalParseError, http.StatusOK, "decode order list", err)
	}

	result := domain.FetchResult{Orders: make([]domain.Order, 0, len(records))}
	for _, rec := range records {
		order, err := c.translator.ToOrder(rec)
		if err != nil {
			c.logger.WithError(err).WithFields(log.Fields{
				"order_id": rec.OrderID,
				"status":   rec.Status,
			}).Warn("rejecting external record")
			result.Rejected = append(result.Rejected, domain.RejectedRecord{
				OrderID: rec.OrderID,
				Err:     c.newError(domain.ExternalParseError, 0, "translate record", err),
			})
			continue
		}
		result.Orders = append(result.Orders, order)
	}

	c.logger.WithFields(log.Fields{
		"endpoint": endpoint,
		"fetched":  len(records),
		"rejected": len(result.Rejected),
	}).Debug("orders fetched")
	return result, nil
}

func (c *Client) SendOrder(ctx context.Context, endpoint string, order domain.Order) (bool, error) {
	return c.SendOrders(ctx, endpoint, []domain.Order{order})
}

// SendOrders отправляет пакет одним POST и возвращает поле success из ответа.
// Пустое тело или null при статусе 200 означает false.
func (c *Client) SendOrders(ctx context.Context, endpoint string, orders []domain.Order) (bool, error) {
	payload, err := json.Marshal(c.translator.ToOutboundBatch(orders))
	if err != nil {
		return false, c.newError(domain.ExternalParseError, 0, "encode orders", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return false, c.newError(domain.ExternalNetworkError, 0, "build send request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return false, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		c.logger.WithField("endpoint", endpoint).Warn("external system returned empty envelope")
		return false, nil
	}

	var envelope wire.Envelope
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return false, c.newError(domain.ExternalParseError, http.StatusOK, "decode response envelope", err)
	}

	c.logger.WithFields(log.Fields{
		"endpoint": endpoint,
		"orders":   len(orders),
		"success":  envelope.Success,
	}).Debug("orders sent")
	return envelope.Success, nil
}

// do выполняет запрос и возвращает тело ответа со статусом 200.
// Остальные исходы переводятся в ExternalSystemError.
func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("User-Agent", version.UserAgent())
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.newError(domain.ExternalNetworkError, 0, req.Method+" "+req.URL.Redacted(), err)
	}
	defer resp.Body.Close()

	// Статус важнее тела: обрыв при чтении ответа с ошибкой не превращает его в сетевую ошибку.
	if kind, failed := classifyStatus(resp.StatusCode); failed {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, snippetBytes+1))
		return nil, c.newError(kind, resp.StatusCode, "unexpected status: "+snippet(body), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, c.newError(domain.ExternalNetworkError, resp.StatusCode, "read response body", err)
	}
	if len(body) > maxBodyBytes {
		return nil, c.newError(domain.ExternalParseError, resp.StatusCode, fmt.Sprintf("response body exceeds %d bytes", maxBodyBytes), nil)
	}
	return body, nil
}

// classifyStatus: 200: успех, 4xx: ошибка клиента, всё остальное (включая 207): ошибка протокола.
func classifyStatus(code int) (domain.ExternalErrorKind, bool) {
	switch {
	case code == http.StatusOK:
		return "", false
	case code >= http.StatusBadRequest && code < http.StatusInternalServerError:
		return domain.ExternalClientError, true
	default:
		return domain.ExternalProtocolError, true
	}
}

func (c *Client) newError(kind domain.ExternalErrorKind, status int, msg string, cause error) error {
	return &domain.ExternalSystemError{
		SystemType: SystemType,
		Kind:       kind,
		StatusCode: status,
		Message:    msg,
		Err:        cause,
	}
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > snippetBytes {
		s = s[:snippetBytes] + "..."
	}
	if s == "" {
		return "<empty body>"
	}
	return s
}

var _ domain.ExternalSystemClient = (*Client)(nil)
