package interceptors

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/interceptors/constants"
)

// WithRequestMetadata stores the request id and idempotency key in ctx.
// Empty values are skipped.
func WithRequestMetadata(ctx context.Context, requestID, idempotencyKey string) context.Context {
	if requestID != "" {
		ctx = context.WithValue(ctx, constants.ContextKeyRequestID, requestID)
	}
	if idempotencyKey != "" {
		ctx = context.WithValue(ctx, constants.ContextKeyIdempotencyKey, idempotencyKey)
	}
	return ctx
}

func RequestIDFromContext(ctx context.Context) string {
	return GetMetadataValue(ctx, constants.HeaderXRequestId)
}

func IdempotencyKeyFromContext(ctx context.Context) string {
	return GetMetadataValue(ctx, constants.HeaderXIdempotencyKey)
}

// GetMetadataValue looks key up in the typed context values first, then in
// incoming and outgoing gRPC metadata.
func GetMetadataValue(ctx context.Context, key string) string {
	if v, ok := ctx.Value(contextKeyFor(key)).(string); ok && v != "" {
		return v
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(key); len(vals) > 0 {
			return vals[0]
		}
	}
	if md, ok := metadata.FromOutgoingContext(ctx); ok {
		if vals := md.Get(key); len(vals) > 0 {
			return vals[0]
		}
	}
	return ""
}

// PropagateMetadataClientInterceptor copies the request id and idempotency
// key from ctx into the outgoing metadata of every unary call.
func PropagateMetadataClientInterceptor() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply any,
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		out, _ := metadata.FromOutgoingContext(ctx)
		for _, key := range constants.PropagatedHeaders {
			if len(out.Get(key)) > 0 {
				continue
			}
			if v := GetMetadataValue(ctx, key); v != "" {
				ctx = metadata.AppendToOutgoingContext(ctx, key, v)
			}
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

func contextKeyFor(header string) any {
	switch header {
	case constants.HeaderXRequestId:
		return constants.ContextKeyRequestID
	case constants.HeaderXIdempotencyKey:
		return constants.ContextKeyIdempotencyKey
	}
	return header
}
