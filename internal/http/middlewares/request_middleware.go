package middlewares

import (
	"log/slog"
	"strings"
	"time"

	"github.com/geocoder89/userapi/internal/requestctx"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-Id"
	requestIDLen    = 10
)

func newRequestID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:requestIDLen]
}

// RequestID reuses the caller's X-Request-Id or mints a short one, echoes it
// on the response and puts it in the request context.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := strings.TrimSpace(ctx.GetHeader(RequestIDHeader))
		if id == "" {
			id = newRequestID()
		}

		ctx.Writer.Header().Set(RequestIDHeader, id)
		ctx.Request = ctx.Request.WithContext(requestctx.WithRequestID(ctx.Request.Context(), id))

		ctx.Next()
	}
}

// RequestLogger derives a per-request logger, logs the request on entry and
// again once the response status is known.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		reqCtx := ctx.Request.Context()

		reqID, _ := requestctx.RequestIDFrom(reqCtx)
		scoped := log.With(
			"request_id", reqID,
			"method", ctx.Request.Method,
			"path", ctx.Request.URL.Path,
		)

		reqCtx = requestctx.WithLogger(reqCtx, scoped)
		ctx.Request = ctx.Request.WithContext(reqCtx)

		scoped.InfoContext(reqCtx, "incoming request")

		ctx.Next()

		scoped.InfoContext(reqCtx, "request completed",
			"status", ctx.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}
