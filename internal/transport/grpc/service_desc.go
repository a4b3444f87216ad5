package grpcsvc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName: полное имя gRPC-сервиса.
const ServiceName = "ordergateway.v1.OrderIntegration"

const (
	MethodImportOrders       = "ImportOrders"
	MethodExportOrder        = "ExportOrder"
	MethodExportOrders       = "ExportOrders"
	MethodListOrders         = "ListOrders"
	MethodGetOrder           = "GetOrder"
	MethodListOrdersByStatus = "ListOrdersByStatus"
)

// OrderIntegrationServer: серверная сторона сервиса. Сообщения передаются как
// google.protobuf.Struct, поэтому сгенерированный код не нужен.
type OrderIntegrationServer interface {
	ImportOrders(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ExportOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ExportOrders(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListOrders(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListOrdersByStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(srv OrderIntegrationServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call unaryCall) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(OrderIntegrationServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(OrderIntegrationServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc описывает сервис для grpc.Server.RegisterService.
// Файла .proto нет, поэтому Metadata пуст и сервер не регистрирует reflection.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OrderIntegrationServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodImportOrders, OrderIntegrationServer.ImportOrders),
		unary(MethodExportOrder, OrderIntegrationServer.ExportOrder),
		unary(MethodExportOrders, OrderIntegrationServer.ExportOrders),
		unary(MethodListOrders, OrderIntegrationServer.ListOrders),
		unary(MethodGetOrder, OrderIntegrationServer.GetOrder),
		unary(MethodListOrdersByStatus, OrderIntegrationServer.ListOrdersByStatus),
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterOrderIntegrationServer регистрирует реализацию на сервере.
func RegisterOrderIntegrationServer(s grpc.ServiceRegistrar, srv OrderIntegrationServer) {
	s.RegisterService(&ServiceDesc, srv)
}
