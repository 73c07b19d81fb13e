package wire

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	PaymentGatewayServiceName = "fulfillment.gateway.v1.PaymentGateway"

	PaymentGatewaySubmitMethod = "/" + PaymentGatewayServiceName + "/Submit"
	PaymentGatewayCancelMethod = "/" + PaymentGatewayServiceName + "/Cancel"
)

// PaymentGatewayServer is implemented by the payment gateway simulator.
type PaymentGatewayServer interface {
	Submit(ctx context.Context, req *OrderMessage) (*PaymentResponse, error)
	Cancel(ctx context.Context, req *OrderMessage) error
}

func RegisterPaymentGatewayServer(s grpc.ServiceRegistrar, srv PaymentGatewayServer) {
	s.RegisterService(&paymentGatewayServiceDesc, srv)
}

var paymentGatewayServiceDesc = grpc.ServiceDesc{
	ServiceName: PaymentGatewayServiceName,
	HandlerType: (*PaymentGatewayServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Submit", Handler: paymentGatewaySubmitHandler},
		{MethodName: "Cancel", Handler: paymentGatewayCancelHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fulfillment/gateway/v1/gateway.proto",
}

func paymentGatewaySubmitHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	call := func(ctx context.Context, req any) (any, error) {
		msg, err := orderMessageFromStruct(req.(*structpb.Struct))
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		resp, err := srv.(PaymentGatewayServer).Submit(ctx, msg)
		if err != nil {
			return nil, err
		}
		return resp.toStruct()
	}
	if interceptor == nil {
		return call(ctx, in)
	}
	return interceptor(ctx, in, &grpc.UnaryServerInfo{Server: srv, FullMethod: PaymentGatewaySubmitMethod}, call)
}

func paymentGatewayCancelHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	call := func(ctx context.Context, req any) (any, error) {
		msg, err := orderMessageFromStruct(req.(*structpb.Struct))
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		if err := srv.(PaymentGatewayServer).Cancel(ctx, msg); err != nil {
			return nil, err
		}
		return &structpb.Struct{}, nil
	}
	if interceptor == nil {
		return call(ctx, in)
	}
	return interceptor(ctx, in, &grpc.UnaryServerInfo{Server: srv, FullMethod: PaymentGatewayCancelMethod}, call)
}

// PaymentGatewayClient is the client side of PaymentGatewayServer.
type PaymentGatewayClient struct {
	cc grpc.ClientConnInterface
}

func NewPaymentGatewayClient(cc grpc.ClientConnInterface) *PaymentGatewayClient {
	return &PaymentGatewayClient{cc: cc}
}

func (c *PaymentGatewayClient) Submit(ctx context.Context, req *OrderMessage, opts ...grpc.CallOption) (*PaymentResponse, error) {
	in, err := req.toStruct()
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, PaymentGatewaySubmitMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return paymentResponseFromStruct(out)
}

func (c *PaymentGatewayClient) Cancel(ctx context.Context, req *OrderMessage, opts ...grpc.CallOption) error {
	in, err := req.toStruct()
	if err != nil {
		return err
	}
	return c.cc.Invoke(ctx, PaymentGatewayCancelMethod, in, new(structpb.Struct), opts...)
}
