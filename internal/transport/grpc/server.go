package grpcsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/vladislavdragonenkov/ordergateway/internal/domain"
	"github.com/vladislavdragonenkov/ordergateway/internal/service/integration"
)

// Server реализует gRPC API поверх сервиса интеграции.
type Server struct {
	svc             integration.Service
	defaultEndpoint string
	logger          *log.Entry
}

// NewServer создаёт gRPC-обработчик. defaultEndpoint подставляется, если запрос его не указал.
func NewServer(svc integration.Service, defaultEndpoint string, logger *log.Entry) *Server {
	if logger == nil {
		logger = log.WithField("component", "grpc")
	}
	return &Server{svc: svc, defaultEndpoint: defaultEndpoint, logger: logger}
}

func (s *Server) ImportOrders(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	endpoint, err := s.endpoint(req)
	if err != nil {
		return nil, err
	}

	result, err := s.svc.ImportFromExternal(ctx, endpoint)
	if err != nil {
		return nil, s.toStatus(err)
	}

	skipped := make([]interface{}, 0, len(result.Skipped))
	for _, sk := range result.Skipped {
		skipped = append(skipped, map[string]interface{}{
			"orderId": sk.OrderID,
			"stage":   string(sk.Stage),
			"reason":  sk.Reason,
		})
	}
	return newStruct(map[string]interface{}{
		"fetched":  result.Fetched,
		"imported": ordersValue(result.Imported),
		"skipped":  skipped,
	})
}

func (s *Server) ExportOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	endpoint, err := s.endpoint(req)
	if err != nil {
		return nil, err
	}
	orderID := stringField(req, "orderId")
	if orderID == "" {
		return nil, status.Error(codes.InvalidArgument, "orderId is required")
	}

	accepted, err := s.svc.ExportOneToExternal(ctx, endpoint, orderID)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return newStruct(map[string]interface{}{"accepted": accepted})
}

func (s *Server) ExportOrders(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	endpoint, err := s.endpoint(req)
	if err != nil {
		return nil, err
	}
	list := req.GetFields()["orderIds"].GetListValue()
	if list == nil {
		return nil, status.Error(codes.InvalidArgument, "orderIds is required")
	}
	ids := make([]string, 0, len(list.GetValues()))
	for _, v := range list.GetValues() {
		ids = append(ids, v.GetStringValue())
	}

	accepted, err := s.svc.ExportManyToExternal(ctx, endpoint, ids)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return newStruct(map[string]interface{}{"accepted": accepted})
}

func (s *Server) ListOrders(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return newStruct(map[string]interface{}{"orders": ordersValue(s.svc.ListAll())})
}

func (s *Server) GetOrder(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	orderID := stringField(req, "orderId")
	if orderID == "" {
		return nil, status.Error(codes.InvalidArgument, "orderId is required")
	}
	order, err := s.svc.GetByID(orderID)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return newStruct(map[string]interface{}{"order": orderValue(order)})
}

func (s *Server) ListOrdersByStatus(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	st, err := domain.ParseOrderStatus(stringField(req, "status"))
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return newStruct(map[string]interface{}{"orders": ordersValue(s.svc.ListByStatus(st))})
}

func (s *Server) endpoint(req *structpb.Struct) (string, error) {
	if endpoint := stringField(req, "endpoint"); endpoint != "" {
		return endpoint, nil
	}
	if s.defaultEndpoint != "" {
		return s.defaultEndpoint, nil
	}
	return "", status.Error(codes.InvalidArgument, "endpoint is required")
}

// toStatus переводит доменные ошибки в gRPC-коды.
func (s *Server) toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrExternalSystem):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrUnknownStatus), errors.Is(err, domain.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrIntegration):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		s.logger.WithError(err).Error("unexpected error in grpc handler")
		return status.Error(codes.Internal, "internal error")
	}
}

func stringField(req *structpb.Struct, name string) string {
	return req.GetFields()[name].GetStringValue()
}

func orderValue(o domain.Order) map[string]interface{} {
	return map[string]interface{}{
		"orderId":      o.OrderID,
		"customerName": o.CustomerName,
		"orderDate":    o.OrderDate.UTC().Format(time.RFC3339),
		"status":       string(o.Status),
		"statusLabel":  o.Status.Label(),
		"description":  o.Description,
	}
}

func ordersValue(orders []domain.Order) []interface{} {
	out := make([]interface{}, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderValue(o))
	}
	return out
}

func newStruct(fields map[string]interface{}) (*structpb.Struct, error) {
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	return st, nil
}

var _ OrderIntegrationServer = (*Server)(nil)
