// Package kit provides the transport-agnostic endpoint layer shared by
// the HTTP and MCP surfaces: an Endpoint function shape, composable
// middleware, and a helper that mounts an Endpoint as an MCP tool.
package kit

import (
	"context"
	"log/slog"
	"time"
)

// Endpoint is a transport-agnostic operation: typed request in, typed
// response out. Transports decode their wire format into the request
// before calling it.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint with cross-cutting behaviour.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares so the first one listed is outermost.
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}

// Logging returns a Middleware that records each call's duration and
// outcome at debug level, errors at warn.
func Logging(logger *slog.Logger, name string) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Endpoint) Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			if err != nil {
				logger.Warn("endpoint failed", "endpoint", name, "duration", time.Since(start), "error", err)
				return resp, err
			}
			logger.Debug("endpoint ok", "endpoint", name, "duration", time.Since(start))
			return resp, nil
		}
	}
}
