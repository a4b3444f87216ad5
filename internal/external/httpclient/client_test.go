package httpclient_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/ordergateway/internal/clock"
	"github.com/vladislavdragonenkov/ordergateway/internal/domain"
	"github.com/vladislavdragonenkov/ordergateway/internal/external/httpclient"
	"github.com/vladislavdragonenkov/ordergateway/internal/external/mockserver"
	"github.com/vladislavdragonenkov/ordergateway/internal/external/wire"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

func newClient(opts ...httpclient.Option) *httpclient.Client {
	base := []httpclient.Option{
		httpclient.WithTranslator(wire.NewTranslator(wire.WithClock(clock.NewManual(now)))),
		httpclient.WithTimeout(2 * time.Second),
	}
	return httpclient.New(append(base, opts...)...)
}

func startMock(t *testing.T, delay time.Duration) (*mockserver.Server, string) {
	t.Helper()
	mock := mockserver.New(mockserver.Config{SlowDelay: delay})
	srv := httptest.NewServer(mock.Handler())
	t.Cleanup(srv.Close)
	return mock, srv.URL + mockserver.BasePath
}

func startRaw(t *testing.T, status int, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func requireKind(t *testing.T, err error, kind domain.ExternalErrorKind, status int) {
	t.Helper()
	require.Error(t, err)
	extErr, ok := domain.AsExternalSystemError(err)
	require.True(t, ok, "expected ExternalSystemError, got %T: %v", err, err)
	assert.Equal(t, kind, extErr.Kind)
	assert.Equal(t, status, extErr.StatusCode)
	assert.Equal(t, httpclient.SystemType, extErr.SystemType)
}

func TestFetchOrders_Success(t *testing.T) {
	_, base := startMock(t, time.Second)
	client := newClient()

	result, err := client.FetchOrders(context.Background(), base+"/orders")
	require.NoError(t, err)
	require.Len(t, result.Orders, 3)
	assert.Empty(t, result.Rejected)

	first := result.Orders[0]
	assert.Equal(t, "EXT-ORDER-001", first.OrderID)
	assert.Equal(t, domain.OrderStatusProcessing, first.Status)
	assert.True(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC).Equal(first.OrderDate))
	assert.Equal(t, "HTTP", client.SystemType())
}

func TestFetchOrders_Empty(t *testing.T) {
	_, base := startMock(t, time.Second)

	result, err := newClient().FetchOrders(context.Background(), base+"/orders/empty")
	require.NoError(t, err)
	assert.Empty(t, result.Orders)
}

func TestFetchOrders_ErrorClassification(t *testing.T) {
	_, base := startMock(t, time.Second)
	client := newClient()

	t.Run("server error is protocol error", func(t *testing.T) {
		_, err := client.FetchOrders(context.Background(), base+"/orders/error")
		requireKind(t, err, domain.ExternalProtocolError, http.StatusInternalServerError)
		assert.Contains(t, err.Error(), "Internal server error")
	})

	t.Run("object instead of list is parse error", func(t *testing.T) {
		_, err := client.FetchOrders(context.Background(), base+"/orders/invalid")
		requireKind(t, err, domain.ExternalParseError, http.StatusOK)
	})

	t.Run("unknown route is client error", func(t *testing.T) {
		_, err := client.FetchOrders(context.Background(), base+"/missing")
		requireKind(t, err, domain.ExternalClientError, http.StatusNotFound)
	})

	t.Run("multi-status is protocol error", func(t *testing.T) {
		_, err := client.FetchOrders(context.Background(), startRaw(t, http.StatusMultiStatus, `[]`))
		requireKind(t, err, domain.ExternalProtocolError, http.StatusMultiStatus)
	})

	t.Run("connection refused is network error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := client.FetchOrders(context.Background(), url)
		requireKind(t, err, domain.ExternalNetworkError, 0)
	})
}

func TestFetchOrders_TruncatedErrorBodyKeepsStatusKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Error("response writer does not support hijacking")
			return
		}
		conn, buf, err := hj.Hijack()
		if err != nil {
			t.Errorf("hijack failed: %v", err)
			return
		}
		_, _ = buf.WriteString("HTTP/1.1 500 Internal Server Error\r\nContent-Type: text/plain\r\nContent-Length: 100\r\n\r\nboom")
		_ = buf.Flush()
		_ = conn.Close()
	}))
	t.Cleanup(srv.Close)

	_, err := newClient().FetchOrders(context.Background(), srv.URL)
	requireKind(t, err, domain.ExternalProtocolError, http.StatusInternalServerError)
	assert.Contains(t, err.Error(), "boom")
}

func TestFetchOrders_Timeout(t *testing.T) {
	_, base := startMock(t, 2*time.Second)
	client := newClient(httpclient.WithTimeout(100 * time.Millisecond))

	start := time.Now()
	_, err := client.FetchOrders(context.Background(), base+"/orders/slow")
	requireKind(t, err, domain.ExternalNetworkError, 0)
	assert.Less(t, time.Since(start), time.Second)
}

func TestFetchOrders_ContextCancelled(t *testing.T) {
	_, base := startMock(t, 2*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newClient().FetchOrders(ctx, base+"/orders/slow")
	requireKind(t, err, domain.ExternalNetworkError, 0)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestFetchOrders_UnknownStatusRejectsOnlyThatRecord(t *testing.T) {
	url := startRaw(t, http.StatusOK, `[
		{"orderId":"A","customerName":"Alice","orderDate":"2024-01-15 10:00:00","status":"shipping"},
		{"orderId":"B","customerName":"Bob","orderDate":"2024-01-15 10:00:00","status":"TELEPORTED"},
		{"orderId":"C","customerName":"Carol","orderDate":"not a date","status":"COMPLETED"}
	]`)

	result, err := newClient().FetchOrders(context.Background(), url)
	require.NoError(t, err)

	require.Len(t, result.Orders, 2)
	assert.Equal(t, domain.OrderStatusShipping, result.Orders[0].Status)
	assert.True(t, now.Equal(result.Orders[1].OrderDate), "unparseable date must fall back to now")

	require.Len(t, result.Rejected, 1)
	assert.Equal(t, "B", result.Rejected[0].OrderID)
	assert.ErrorIs(t, result.Rejected[0].Err, domain.ErrUnknownStatus)
	requireKind(t, result.Rejected[0].Err, domain.ExternalParseError, 0)
}

func TestSendOrders(t *testing.T) {
	mock, base := startMock(t, time.Second)
	client := newClient()
	orders := []domain.Order{
		{OrderID: "A", CustomerName: "Alice", OrderDate: now, Status: domain.OrderStatusProcessing},
		{OrderID: "B", CustomerName: "Bob", OrderDate: now, Status: domain.OrderStatusShipping},
	}

	ok, err := client.SendOrders(context.Background(), base+"/orders", orders)
	require.NoError(t, err)
	assert.True(t, ok)

	received := mock.Received()
	require.Len(t, received, 1)
	require.Len(t, received[0], 2)
	assert.Equal(t, "B", received[0][1].OrderID)
	assert.Equal(t, "SHIPPING", received[0][1].Status)
	assert.Equal(t, "2024-03-01 12:00:00", received[0][1].ProcessedAt)

	ok, err = client.SendOrder(context.Background(), base+"/orders", orders[0])
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, mock.Received(), 2)
}

func TestSendOrders_Outcomes(t *testing.T) {
	_, base := startMock(t, time.Second)
	client := newClient()
	order := domain.Order{OrderID: "A", CustomerName: "Alice", OrderDate: now, Status: domain.OrderStatusCompleted}

	t.Run("declined envelope with 200", func(t *testing.T) {
		ok, err := client.SendOrder(context.Background(), base+"/orders/declined", order)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("partial failure with 207", func(t *testing.T) {
		ok, err := client.SendOrder(context.Background(), base+"/orders/partial-fail", order)
		requireKind(t, err, domain.ExternalProtocolError, http.StatusMultiStatus)
		assert.False(t, ok)
	})

	t.Run("empty body", func(t *testing.T) {
		ok, err := client.SendOrder(context.Background(), startRaw(t, http.StatusOK, ""), order)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("null body", func(t *testing.T) {
		ok, err := client.SendOrder(context.Background(), startRaw(t, http.StatusOK, "null"), order)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("bad request", func(t *testing.T) {
		_, err := client.SendOrder(context.Background(), startRaw(t, http.StatusBadRequest, `{"success":false}`), order)
		requireKind(t, err, domain.ExternalClientError, http.StatusBadRequest)
	})

	t.Run("garbage body", func(t *testing.T) {
		_, err := client.SendOrder(context.Background(), startRaw(t, http.StatusOK, "<html>"), order)
		requireKind(t, err, domain.ExternalParseError, http.StatusOK)
	})
}

func TestFetchOrders_BodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "["+strings.Repeat(" ", 10<<20)+"]")
	}))
	t.Cleanup(srv.Close)

	_, err := newClient().FetchOrders(context.Background(), srv.URL)
	requireKind(t, err, domain.ExternalParseError, http.StatusOK)
}
