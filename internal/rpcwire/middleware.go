package rpcwire

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Handler dispatches one request Envelope to a response Envelope. It is
// the RPC analogue of http.Handler: Op and Payload stand in for method
// and body, and the returned Envelope is written back to the caller
// instead of passed to a ResponseWriter.
type Handler func(ctx context.Context, req Envelope) Envelope

// Middleware wraps a Handler with cross-cutting behavior, same shape as
// the teacher's http.Handler middleware.
type Middleware func(Handler) Handler

// Chain applies middlewares in order: the first middleware in the list
// wraps all others, so it sees the request first and the response last.
func Chain(handler Handler, middlewares ...Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

type contextKey string

const requestIDKey contextKey = "request_id"

// RequestID attaches a fresh UUID to every call's context, for
// correlating log lines across a single request's handling.
func RequestID() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req Envelope) Envelope {
			ctx = context.WithValue(ctx, requestIDKey, uuid.New().String())
			return next(ctx, req)
		}
	}
}

// GetRequestID extracts the request ID RequestID attached to ctx, or ""
// if none is present.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// Logging logs one line at the start and end of every call.
func Logging(logger zerolog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req Envelope) Envelope {
			start := time.Now()
			requestID := GetRequestID(ctx)

			logger.Info().
				Str("request_id", requestID).
				Str("op", string(req.Op)).
				Msg("call started")

			resp := next(ctx, req)

			ev := logger.Info()
			if resp.Err != nil {
				ev = logger.Warn().Str("error_code", string(resp.Err.Code))
			}
			ev.Str("request_id", requestID).
				Str("op", string(req.Op)).
				Dur("duration", time.Since(start)).
				Msg("call completed")

			return resp
		}
	}
}

// Recovery turns a panicking handler into an INTERNAL error response
// instead of taking down the connection's goroutine.
func Recovery(logger zerolog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req Envelope) (resp Envelope) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error().
						Interface("panic", r).
						Bytes("stack", debug.Stack()).
						Msg("panic recovered")
					resp = errEnvelope(ErrCodeInternal, "internal error")
				}
			}()
			return next(ctx, req)
		}
	}
}

// Metrics tracks in-flight calls and records success/failure and latency
// for VerifyAuthentication, the one operation the spec calls out for a
// latency histogram.
func Metrics(m metricsRecorder) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req Envelope) Envelope {
			start := time.Now()
			m.IncActive()
			defer m.DecActive()

			resp := next(ctx, req)

			if req.Op == OpVerifyAuthentication {
				m.ObserveVerify(resp.Err == nil, time.Since(start))
			}
			return resp
		}
	}
}

// metricsRecorder is the subset of *metrics.Metrics the Metrics
// middleware needs, kept narrow so rpcwire doesn't depend on the
// concrete Prometheus collector types.
type metricsRecorder interface {
	IncActive()
	DecActive()
	ObserveVerify(success bool, took time.Duration)
}
