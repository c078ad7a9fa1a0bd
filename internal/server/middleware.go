package server

import (
	"context"
	"sync"

	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/transport"
)

// OperationHeader echoes the operation that served an HTTP request.
const OperationHeader = "X-Sysinfo-Operation"

// Serialize returns a Kratos middleware that runs handlers one at a time
// under mu. Swagger UI is registered via HandlePrefix and never reaches
// this chain.
func Serialize(mu *sync.Mutex) middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req any) (any, error) {
			if tr, ok := transport.FromServerContext(ctx); ok {
				tr.ReplyHeader().Set(OperationHeader, tr.Operation())
			}

			mu.Lock()
			defer mu.Unlock()
			return handler(ctx, req)
		}
	}
}
