package integration

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/vladislavdragonenkov/ordergateway/internal/clock"
	"github.com/vladislavdragonenkov/ordergateway/internal/domain"
	"github.com/vladislavdragonenkov/ordergateway/internal/external/httpclient"
	"github.com/vladislavdragonenkov/ordergateway/internal/external/mockserver"
	"github.com/vladislavdragonenkov/ordergateway/internal/external/wire"
	"github.com/vladislavdragonenkov/ordergateway/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/ordergateway/internal/service/integration"
	"github.com/vladislavdragonenkov/ordergateway/internal/storage/memory"
)

// OrderLifecycleTestSuite прогоняет импорт и экспорт через настоящий HTTP-клиент,
// имитатор внешней системы и Kafka producer поверх sarama mocks.
type OrderLifecycleTestSuite struct {
	suite.Suite
	server   *httptest.Server
	mock     *mockserver.Server
	kafka    *mocks.SyncProducer
	producer *kafka.Producer
	repo     domain.OrderRepository
	service  integration.Service
	clock    *clock.Manual
	base     string
}

func (suite *OrderLifecycleTestSuite) SetupTest() {
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel)
	logger := baseLogger.WithField("component", "integration-test")

	suite.clock = clock.NewManual(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	suite.mock = mockserver.New(mockserver.Config{SlowDelay: time.Second, Clock: suite.clock, Logger: logger})
	suite.server = httptest.NewServer(suite.mock.Handler())
	suite.base = suite.server.URL + mockserver.BasePath

	suite.kafka = mocks.NewSyncProducer(suite.T(), nil)
	suite.producer = kafka.NewProducerFromSync(suite.kafka, logger)

	client := httpclient.New(
		httpclient.WithTimeout(300*time.Millisecond),
		httpclient.WithTranslator(wire.NewTranslator(wire.WithClock(suite.clock))),
		httpclient.WithLogger(logger),
	)

	suite.repo = memory.NewOrderRepository()
	suite.service = integration.NewService(
		suite.repo,
		client,
		integration.WithLogger(logger),
		integration.WithEventPublisher(suite.producer, kafka.TopicIntegrationEvents),
	)
}

func (suite *OrderLifecycleTestSuite) TearDownTest() {
	suite.server.Close()
	require.NoError(suite.T(), suite.producer.Close())
}

func (suite *OrderLifecycleTestSuite) expectEvent(eventType kafka.EventType, check func(kafka.IntegrationEvent) error) {
	suite.kafka.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		raw, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var event kafka.IntegrationEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			return err
		}
		if event.EventType != eventType {
			return errors.New("unexpected event type " + string(event.EventType))
		}
		if check != nil {
			return check(event)
		}
		return nil
	})
}

func (suite *OrderLifecycleTestSuite) TestImportThenExport() {
	ctx := context.Background()

	suite.expectEvent(kafka.EventTypeOrdersImported, func(e kafka.IntegrationEvent) error {
		if len(e.OrderIDs) != 3 || !e.Accepted {
			return errors.New("imported event must list three accepted orders")
		}
		return nil
	})
	result, err := suite.service.ImportFromExternal(ctx, suite.base+"/orders")
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 3, result.Fetched)
	require.Len(suite.T(), result.Imported, 3)
	require.Empty(suite.T(), result.Skipped)

	stored, err := suite.service.GetByID("EXT-ORDER-001")
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), stored.OrderDate)
	require.Len(suite.T(), suite.service.ListByStatus(domain.OrderStatusShipping), 1)

	suite.expectEvent(kafka.EventTypeOrdersExported, func(e kafka.IntegrationEvent) error {
		if len(e.OrderIDs) != 3 || e.OrderIDs[0] != "EXT-ORDER-003" {
			return errors.New("exported event must keep request order")
		}
		return nil
	})
	accepted, err := suite.service.ExportManyToExternal(ctx, suite.base+"/orders",
		[]string{"EXT-ORDER-003", "UNKNOWN", "EXT-ORDER-001", "EXT-ORDER-003"})
	require.NoError(suite.T(), err)
	require.True(suite.T(), accepted)

	received := suite.mock.Received()
	require.Len(suite.T(), received, 1)
	require.Len(suite.T(), received[0], 3)
	require.Equal(suite.T(), "EXT-ORDER-003", received[0][0].OrderID)
	require.Equal(suite.T(), "2024-01-15 14:20:00", received[0][0].OrderDate)
	require.Equal(suite.T(), "2024-03-01 09:00:00", received[0][0].ProcessedAt)
}

func (suite *OrderLifecycleTestSuite) TestExportRejectedByExternalSystem() {
	ctx := context.Background()
	order := domain.Order{
		OrderID:      "LOCAL-1",
		CustomerName: "Alice",
		OrderDate:    time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC),
		Status:       domain.OrderStatusProcessing,
	}
	_, err := suite.repo.Save(&order)
	require.NoError(suite.T(), err)

	suite.expectEvent(kafka.EventTypeOrdersExportFailed, func(e kafka.IntegrationEvent) error {
		if e.Accepted || e.Error != "" {
			return errors.New("declined export must not carry an error")
		}
		return nil
	})
	accepted, err := suite.service.ExportOneToExternal(ctx, suite.base+"/orders/declined", "LOCAL-1")
	require.NoError(suite.T(), err)
	require.False(suite.T(), accepted)

	suite.expectEvent(kafka.EventTypeOrdersExportFailed, func(e kafka.IntegrationEvent) error {
		if e.Error == "" {
			return errors.New("failed export must carry the error")
		}
		return nil
	})
	accepted, err = suite.service.ExportOneToExternal(ctx, suite.base+"/orders/partial-fail", "LOCAL-1")
	require.False(suite.T(), accepted)
	extErr, ok := domain.AsExternalSystemError(err)
	require.True(suite.T(), ok)
	require.Equal(suite.T(), domain.ExternalProtocolError, extErr.Kind)
	require.Equal(suite.T(), 207, extErr.StatusCode)
}

func (suite *OrderLifecycleTestSuite) TestImportFailuresLeaveStoreUntouched() {
	ctx := context.Background()

	cases := []struct {
		path string
		kind domain.ExternalErrorKind
	}{
		{path: "/orders/error", kind: domain.ExternalProtocolError},
		{path: "/orders/invalid", kind: domain.ExternalParseError},
		{path: "/orders/slow", kind: domain.ExternalNetworkError},
		{path: "/missing", kind: domain.ExternalClientError},
	}
	for _, tc := range cases {
		_, err := suite.service.ImportFromExternal(ctx, suite.base+tc.path)
		extErr, ok := domain.AsExternalSystemError(err)
		require.True(suite.T(), ok, tc.path)
		require.Equal(suite.T(), tc.kind, extErr.Kind, tc.path)
	}
	require.Empty(suite.T(), suite.service.ListAll())
}

func (suite *OrderLifecycleTestSuite) TestImportEmpty() {
	suite.expectEvent(kafka.EventTypeOrdersImported, nil)

	result, err := suite.service.ImportFromExternal(context.Background(), suite.base+"/orders/empty")
	require.NoError(suite.T(), err)
	require.Zero(suite.T(), result.Fetched)
	require.Empty(suite.T(), result.Imported)
}

func TestOrderLifecycleTestSuite(t *testing.T) {
	suite.Run(t, new(OrderLifecycleTestSuite))
}
