package grpctransport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/corray333/storefront-order/internal/service/models/actor"
	"github.com/corray333/storefront-order/internal/service/models/order"
	"github.com/corray333/storefront-order/internal/service/services/ordersvc"
	"github.com/corray333/storefront-order/pkg/http/middleware/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// OrderAdminServiceName is the fully qualified gRPC service name.
const OrderAdminServiceName = "storefront.order.v1.OrderAdmin"

// OrderAdminServer is the admin API. Orders travel as google.protobuf.Struct
// with the same field names as the JSON API.
type OrderAdminServer interface {
	ListOrders(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetOrder(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	ConfirmOrder(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	CancelOrder(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	PayOrder(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
}

// OrderAdmin_ServiceDesc describes OrderAdminServer for grpc.Server.RegisterService.
//
//goland:noinspection GoSnakeCaseUsage
var OrderAdmin_ServiceDesc = grpc.ServiceDesc{
	ServiceName: OrderAdminServiceName,
	HandlerType: (*OrderAdminServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListOrders", Handler: unaryHandler("ListOrders", newStruct, OrderAdminServer.ListOrders)},
		{MethodName: "GetOrder", Handler: unaryHandler("GetOrder", newStringValue, OrderAdminServer.GetOrder)},
		{MethodName: "ConfirmOrder", Handler: unaryHandler("ConfirmOrder", newStringValue, OrderAdminServer.ConfirmOrder)},
		{MethodName: "CancelOrder", Handler: unaryHandler("CancelOrder", newStringValue, OrderAdminServer.CancelOrder)},
		{MethodName: "PayOrder", Handler: unaryHandler("PayOrder", newStringValue, OrderAdminServer.PayOrder)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storefront/order/v1/order_admin.proto",
}

// RegisterOrderAdminServer registers srv on s.
func RegisterOrderAdminServer(s grpc.ServiceRegistrar, srv OrderAdminServer) {
	s.RegisterService(&OrderAdmin_ServiceDesc, srv)
}

func newStruct() *structpb.Struct { return &structpb.Struct{} }

func newStringValue() *wrapperspb.StringValue { return &wrapperspb.StringValue{} }

func unaryHandler[Req proto.Message](
	method string,
	newReq func() Req,
	call func(OrderAdminServer, context.Context, Req) (*structpb.Struct, error),
) grpc.MethodHandler {
	fullMethod := "/" + OrderAdminServiceName + "/" + method

	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}

		if interceptor == nil {
			return call(srv.(OrderAdminServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(OrderAdminServer), ctx, req.(Req))
		}

		return interceptor(ctx, in, info, handler)
	}
}

// service is an interface for the service layer.
type service interface {
	ListAllOrders(ctx context.Context, a actor.Actor, page ordersvc.Page) ([]order.Order, error)
	GetOrderDetails(ctx context.Context, a actor.Actor, id string) (order.Details, error)
	Confirm(ctx context.Context, a actor.Actor, id string) (order.Order, error)
	Cancel(ctx context.Context, a actor.Actor, id string) (order.Order, error)
	PayAsAdmin(ctx context.Context, a actor.Actor, id string) (order.Order, error)
}

// OrderAdminService implements OrderAdminServer on top of the order service.
type OrderAdminService struct {
	service service
}

// NewOrderAdminService creates a new OrderAdminService.
func NewOrderAdminService(service service) *OrderAdminService {
	return &OrderAdminService{service: service}
}

// ListOrders accepts optional numeric "limit" and "offset" fields.
func (s *OrderAdminService) ListOrders(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	page := ordersvc.Page{}
	if req != nil {
		fields := req.GetFields()
		page.Limit = int(fields["limit"].GetNumberValue())
		page.Offset = int(fields["offset"].GetNumberValue())
	}

	orders, err := s.service.ListAllOrders(ctx, a, page)
	if err != nil {
		return nil, toStatus(err)
	}

	return toStruct(map[string]any{"orders": orders})
}

// GetOrder returns the order with its items and the customer email.
func (s *OrderAdminService) GetOrder(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	a, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	details, err := s.service.GetOrderDetails(ctx, a, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}

	return toStruct(details)
}

// ConfirmOrder confirms the order.
func (s *OrderAdminService) ConfirmOrder(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	return s.transition(ctx, req, s.service.Confirm)
}

// CancelOrder cancels the order.
func (s *OrderAdminService) CancelOrder(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	return s.transition(ctx, req, s.service.Cancel)
}

// PayOrder records the payment on behalf of the customer.
func (s *OrderAdminService) PayOrder(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	return s.transition(ctx, req, s.service.PayAsAdmin)
}

func (s *OrderAdminService) transition(
	ctx context.Context,
	req *wrapperspb.StringValue,
	fn func(context.Context, actor.Actor, string) (order.Order, error),
) (*structpb.Struct, error) {
	a, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	o, err := fn(ctx, a, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}

	return toStruct(map[string]any{"order": o})
}

func actorFromContext(ctx context.Context) (actor.Actor, error) {
	a, ok := auth.ActorFromContext(ctx)
	if !ok {
		return actor.Actor{}, status.Error(codes.Unauthenticated, "unauthenticated")
	}

	return a, nil
}

// toStruct converts v through its JSON form so the payload matches the REST API.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("failed to encode response: %v", err))
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("failed to encode response: %v", err))
	}

	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("failed to encode response: %v", err))
	}

	return out, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, ordersvc.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ordersvc.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ordersvc.ErrConflict):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, ordersvc.ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}
