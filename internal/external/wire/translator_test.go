package wire_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/ordergateway/internal/clock"
	"github.com/vladislavdragonenkov/ordergateway/internal/domain"
	"github.com/vladislavdragonenkov/ordergateway/internal/external/wire"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTranslator(opts ...wire.Option) *wire.Translator {
	return wire.NewTranslator(append([]wire.Option{wire.WithClock(clock.NewManual(fixedNow))}, opts...)...)
}

func TestToOrder(t *testing.T) {
	tr := newTranslator()

	tests := []struct {
		name       string
		rec        wire.InboundRecord
		wantStatus domain.OrderStatus
		wantDate   time.Time
		wantErr    bool
	}{
		{
			name:       "canonical record",
			rec:        wire.InboundRecord{OrderID: "EXT-1", CustomerName: "Alice", OrderDate: "2024-01-15 10:30:00", Status: "PROCESSING"},
			wantStatus: domain.OrderStatusProcessing,
			wantDate:   time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:       "lowercase status",
			rec:        wire.InboundRecord{OrderID: "EXT-2", CustomerName: "Bob", OrderDate: "2024-01-15 10:30:00", Status: "shipping"},
			wantStatus: domain.OrderStatusShipping,
			wantDate:   time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:       "unparseable date falls back to now",
			rec:        wire.InboundRecord{OrderID: "EXT-3", CustomerName: "Carol", OrderDate: "15/01/2024", Status: "COMPLETED"},
			wantStatus: domain.OrderStatusCompleted,
			wantDate:   fixedNow,
		},
		{
			name:    "unknown status",
			rec:     wire.InboundRecord{OrderID: "EXT-4", CustomerName: "Dan", OrderDate: "2024-01-15 10:30:00", Status: "LOST"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := tr.ToOrder(tt.rec)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrUnknownStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.rec.OrderID, order.OrderID)
			assert.Equal(t, tt.rec.CustomerName, order.CustomerName)
			assert.Equal(t, tt.wantStatus, order.Status)
			assert.True(t, tt.wantDate.Equal(order.OrderDate), "date %s != %s", order.OrderDate, tt.wantDate)
		})
	}
}

func TestToOutbound(t *testing.T) {
	tr := newTranslator()
	order := domain.Order{
		OrderID:      "EXT-1",
		CustomerName: "Alice",
		OrderDate:    time.Date(2024, 1, 15, 10, 30, 45, 123, time.UTC),
		Status:       domain.OrderStatusCancelled,
		Description:  "gift",
	}

	rec := tr.ToOutbound(order)

	assert.Equal(t, "EXT-1", rec.OrderID)
	assert.Equal(t, "2024-01-15 10:30:45", rec.OrderDate)
	assert.Equal(t, "CANCELLED", rec.Status)
	assert.Equal(t, "gift", rec.Description)
	assert.Equal(t, "2024-03-01 12:00:00", rec.ProcessedAt)

	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"orderId":"EXT-1","customerName":"Alice","orderDate":"2024-01-15 10:30:45","status":"CANCELLED","description":"gift","processedAt":"2024-03-01 12:00:00"}`, string(raw))
}

func TestToOutboundBatchSharesProcessedAt(t *testing.T) {
	c := clock.NewManual(fixedNow)
	tr := wire.NewTranslator(wire.WithClock(c))

	records := tr.ToOutboundBatch([]domain.Order{
		{OrderID: "A", CustomerName: "a", OrderDate: fixedNow, Status: domain.OrderStatusProcessing},
		{OrderID: "B", CustomerName: "b", OrderDate: fixedNow, Status: domain.OrderStatusShipping},
	})
	require.Len(t, records, 2)
	assert.Equal(t, records[0].ProcessedAt, records[1].ProcessedAt)

	c.Advance(time.Hour)
	assert.Equal(t, "2024-03-01 13:00:00", tr.ToOutbound(domain.Order{OrderDate: fixedNow}).ProcessedAt)
}

func TestRoundTrip(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*3600)

	for _, loc := range []*time.Location{time.UTC, moscow} {
		t.Run(loc.String(), func(t *testing.T) {
			tr := newTranslator(wire.WithLocation(loc))
			for _, status := range domain.OrderStatuses() {
				original := domain.Order{
					OrderID:      "RT-" + string(status),
					CustomerName: "Round Trip",
					OrderDate:    time.Date(2024, 2, 29, 23, 59, 58, 999999, time.UTC),
					Status:       status,
					Description:  "leap day",
				}

				back, err := tr.ToOrder(wire.ToInbound(tr.ToOutbound(original)))
				require.NoError(t, err)

				assert.Equal(t, original.OrderID, back.OrderID)
				assert.Equal(t, original.CustomerName, back.CustomerName)
				assert.Equal(t, original.Status, back.Status)
				assert.Equal(t, original.Description, back.Description)
				assert.True(t, original.OrderDate.Truncate(time.Second).Equal(back.OrderDate))
			}
		})
	}
}
