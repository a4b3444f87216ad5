// Package mockclient: конфигурируемая заглушка ExternalSystemClient для тестов.
package mockclient

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/ordergateway/internal/domain"
)

// SystemType: метка заглушки.
const SystemType = "MOCK"

// Client возвращает заранее настроенные результаты и считает вызовы.
type Client struct {
	mu sync.Mutex

	FetchResult domain.FetchResult
	FetchErr    error
	SendResult  bool
	SendErr     error

	FetchCalls int
	SendCalls  int
	// Sent хранит каждый отправленный пакет в порядке вызовов.
	Sent      [][]domain.Order
	Endpoints []string
}

// New возвращает заглушку с успешной отправкой и пустой выборкой.
func New() *Client {
	return &Client{SendResult: true}
}

func (c *Client) FetchOrders(_ context.Context, endpoint string) (domain.FetchResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.FetchCalls++
	c.Endpoints = append(c.Endpoints, endpoint)
	if c.FetchErr != nil {
		return domain.FetchResult{}, c.FetchErr
	}
	res := domain.FetchResult{
		Orders:   append([]domain.Order(nil), c.FetchResult.Orders...),
		Rejected: append([]domain.RejectedRecord(nil), c.FetchResult.Rejected...),
	}
	return res, nil
}

func (c *Client) SendOrder(ctx context.Context, endpoint string, order domain.Order) (bool, error) {
	return c.SendOrders(ctx, endpoint, []domain.Order{order})
}

func (c *Client) SendOrders(_ context.Context, endpoint string, orders []domain.Order) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.SendCalls++
	c.Endpoints = append(c.Endpoints, endpoint)
	c.Sent = append(c.Sent, append([]domain.Order(nil), orders...))
	return c.SendResult, c.SendErr
}

func (c *Client) SystemType() string { return SystemType }

// Calls возвращает счётчики вызовов под блокировкой.
func (c *Client) Calls() (fetch, send int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.FetchCalls, c.SendCalls
}

var _ domain.ExternalSystemClient = (*Client)(nil)
