// Package constants names the request-scoped headers the services pass
// along from HTTP into gRPC metadata.
package constants

type contextKey string

const (
	HeaderXRequestId      = "x-request-id"
	HeaderXIdempotencyKey = "x-idempotency-key"

	ContextKeyRequestID      contextKey = HeaderXRequestId
	ContextKeyIdempotencyKey contextKey = HeaderXIdempotencyKey
)

// PropagatedHeaders are copied onto every outgoing gRPC call.
var PropagatedHeaders = []string{HeaderXRequestId, HeaderXIdempotencyKey}
