package interceptors

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/interceptors/constants"
)

// TraceServerInterceptor lifts the request id and idempotency key out of the
// incoming metadata into the context and logs every call with its outcome.
func TraceServerInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		var requestID, idempotencyKey string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(constants.HeaderXRequestId); len(ids) > 0 {
				requestID = ids[0]
			}
			if ids := md.Get(constants.HeaderXIdempotencyKey); len(ids) > 0 {
				idempotencyKey = ids[0]
			}
		}
		ctx = WithRequestMetadata(ctx, requestID, idempotencyKey)

		resp, err := handler(ctx, req)

		attrs := []any{
			"method", info.FullMethod,
			"request_id", requestID,
			"idempotency_key", idempotencyKey,
			"code", status.Code(err).String(),
		}
		if err != nil {
			logger.WarnContext(ctx, "grpc call failed", append(attrs, "error", err)...)
		} else {
			logger.InfoContext(ctx, "grpc call", attrs...)
		}
		return resp, err
	}
}
