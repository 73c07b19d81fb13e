package wire

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	NotifierServiceName  = "fulfillment.notification.v1.Notifier"
	NotifierNotifyMethod = "/" + NotifierServiceName + "/Notify"
)

type NotifierServer interface {
	Notify(ctx context.Context, req *OrderMessage) error
}

func RegisterNotifierServer(s grpc.ServiceRegistrar, srv NotifierServer) {
	s.RegisterService(&notifierServiceDesc, srv)
}

var notifierServiceDesc = grpc.ServiceDesc{
	ServiceName: NotifierServiceName,
	HandlerType: (*NotifierServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Notify", Handler: notifierNotifyHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fulfillment/notification/v1/notifier.proto",
}

func notifierNotifyHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	call := func(ctx context.Context, req any) (any, error) {
		msg, err := orderMessageFromStruct(req.(*structpb.Struct))
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		if err := srv.(NotifierServer).Notify(ctx, msg); err != nil {
			return nil, err
		}
		return &structpb.Struct{}, nil
	}
	if interceptor == nil {
		return call(ctx, in)
	}
	return interceptor(ctx, in, &grpc.UnaryServerInfo{Server: srv, FullMethod: NotifierNotifyMethod}, call)
}

type NotifierClient struct {
	cc grpc.ClientConnInterface
}

func NewNotifierClient(cc grpc.ClientConnInterface) *NotifierClient {
	return &NotifierClient{cc: cc}
}

func (c *NotifierClient) Notify(ctx context.Context, req *OrderMessage, opts ...grpc.CallOption) error {
	in, err := req.toStruct()
	if err != nil {
		return err
	}
	return c.cc.Invoke(ctx, NotifierNotifyMethod, in, new(structpb.Struct), opts...)
}
