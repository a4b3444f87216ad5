package grpcsvc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client: типизированная обёртка над соединением для вызова OrderIntegration.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) ImportOrders(ctx context.Context, endpoint string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodImportOrders, map[string]interface{}{"endpoint": endpoint}, opts...)
}

func (c *Client) ExportOrder(ctx context.Context, endpoint, orderID string, opts ...grpc.CallOption) (bool, error) {
	resp, err := c.invoke(ctx, MethodExportOrder, map[string]interface{}{
		"endpoint": endpoint,
		"orderId":  orderID,
	}, opts...)
	if err != nil {
		return false, err
	}
	return resp.GetFields()["accepted"].GetBoolValue(), nil
}

func (c *Client) ExportOrders(ctx context.Context, endpoint string, orderIDs []string, opts ...grpc.CallOption) (bool, error) {
	ids := make([]interface{}, 0, len(orderIDs))
	for _, id := range orderIDs {
		ids = append(ids, id)
	}
	resp, err := c.invoke(ctx, MethodExportOrders, map[string]interface{}{
		"endpoint": endpoint,
		"orderIds": ids,
	}, opts...)
	if err != nil {
		return false, err
	}
	return resp.GetFields()["accepted"].GetBoolValue(), nil
}

func (c *Client) ListOrders(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodListOrders, map[string]interface{}{}, opts...)
}

func (c *Client) GetOrder(ctx context.Context, orderID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGetOrder, map[string]interface{}{"orderId": orderID}, opts...)
}

func (c *Client) ListOrdersByStatus(ctx context.Context, status string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodListOrdersByStatus, map[string]interface{}{"status": status}, opts...)
}

func (c *Client) invoke(ctx context.Context, method string, fields map[string]interface{}, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
