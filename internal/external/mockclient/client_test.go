package mockclient

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/ordergateway/internal/domain"
)

func TestMockClient(t *testing.T) {
	mock := New()
	mock.FetchResult = domain.FetchResult{Orders: []domain.Order{{OrderID: "A"}}}

	res, err := mock.FetchOrders(context.Background(), "http://ext/orders")
	if err != nil {
		t.Fatalf("unexpected fetch error: %v", err)
	}
	if len(res.Orders) != 1 || res.Orders[0].OrderID != "A" {
		t.Fatalf("unexpected fetch result: %+v", res)
	}

	ok, err := mock.SendOrder(context.Background(), "http://ext/orders", domain.Order{OrderID: "A"})
	if err != nil || !ok {
		t.Fatalf("expected successful send, got %v %v", ok, err)
	}

	mock.FetchErr = errors.New("fetch failed")
	mock.SendResult = false
	mock.SendErr = errors.New("send failed")

	if _, err := mock.FetchOrders(context.Background(), "x"); err == nil {
		t.Fatal("expected fetch error")
	}
	if ok, err := mock.SendOrders(context.Background(), "x", nil); err == nil || ok {
		t.Fatal("expected send error")
	}

	fetch, send := mock.Calls()
	if fetch != 2 || send != 2 {
		t.Fatalf("unexpected call counters: fetch=%d send=%d", fetch, send)
	}
	if len(mock.Sent) != 2 || mock.Sent[0][0].OrderID != "A" {
		t.Fatalf("unexpected sent batches: %+v", mock.Sent)
	}
	if mock.SystemType() != SystemType {
		t.Fatalf("unexpected system type %s", mock.SystemType())
	}
}
