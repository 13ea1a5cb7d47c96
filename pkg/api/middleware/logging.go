package middleware

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/marmos91/filebank/internal/logger"
	"github.com/marmos91/filebank/internal/telemetry"
)

// RequestContext opens the server span of a request and attaches a
// LogContext carrying the request ID, method, path, client IP and trace IDs.
// Must run after chi's RequestID and RealIP middleware.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := r.RemoteAddr
		if host, _, err := net.SplitHostPort(clientIP); err == nil {
			clientIP = host
		}

		ctx, span := telemetry.StartHTTPSpan(r.Context(), r.Method, clientIP)
		defer span.End()

		lc := logger.NewLogContext(clientIP)
		lc.RequestID = middleware.GetReqID(ctx)
		lc.Method = r.Method
		lc.Path = r.URL.Path
		lc = lc.WithTrace(telemetry.TraceID(ctx), telemetry.SpanID(ctx))
		ctx = logger.WithContext(ctx, lc)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		attrs := []any{
			logger.KeyStatus, status,
			"bytes", ww.BytesWritten(),
			logger.KeyDurationMs, lc.DurationMs(),
		}
		if rctx := chi.RouteContext(ctx); rctx != nil {
			telemetry.SetAttributes(ctx, telemetry.HTTPRoute(rctx.RoutePattern()))
		}
		telemetry.SetAttributes(ctx, telemetry.HTTPStatus(status))
		logger.InfoCtx(ctx, "API request completed", attrs...)
	})
}
