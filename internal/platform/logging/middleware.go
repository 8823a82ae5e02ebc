package logging

import (
	"cmp"
	"context"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RequestLogger derives a per-request logger from base, tagged with the
// request ID and, when a traceparent header and project ID are present, the
// Cloud Trace fields. A nil base falls back to the process-wide logger.
func RequestLogger(base *zap.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = Logger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := withRequestScope(r.Context(), base, r.Header.Get(traceparentHeader), chimiddleware.GetReqID(r.Context()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// withRequestScope stores the correlation ID (trace resource, else request
// ID) and the enriched logger in ctx.
func withRequestScope(ctx context.Context, base *zap.Logger, header, reqID string) context.Context {
	projectID := resolveProjectID()
	ctx = contextWithTraceID(ctx, cmp.Or(traceResource(header, projectID), reqID))
	return WithLogger(ctx, requestLogger(base, header, projectID, reqID))
}

// AccessLogger writes one "request completed" record per request once the
// downstream handler has returned.
func AccessLogger() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			LoggerFromContext(r.Context()).Info("request completed", accessFields(r, ww, time.Since(start))...)
		})
	}
}

func accessFields(r *http.Request, ww chimiddleware.WrapResponseWriter, elapsed time.Duration) []zap.Field {
	return []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", ww.Status()),
		zap.Int("bytes", ww.BytesWritten()),
		zap.Duration("duration", elapsed),
	}
}
