package server

import (
	"context"
	"sync"

	"google.golang.org/grpc"
)

// SerializeInterceptor returns a gRPC unary server interceptor that runs
// Telemetry methods one at a time under mu. Other services pass through.
func SerializeInterceptor(mu *sync.Mutex) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !isTelemetryMethod(info.FullMethod) {
			return handler(ctx, req)
		}
		mu.Lock()
		defer mu.Unlock()
		return handler(ctx, req)
	}
}

func isTelemetryMethod(fullMethod string) bool {
	switch fullMethod {
	case TelemetryGetCategoryMethod, TelemetryGetSummaryMethod, TelemetryRefreshMethod:
		return true
	}
	return false
}
