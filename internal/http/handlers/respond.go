package handlers

import (
	"net/http"

	"github.com/geocoder89/userapi/internal/requestctx"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
	Details   any    `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	if id, ok := requestctx.RequestIDFrom(ctx.Request.Context()); ok {
		return id
	}

	// fallback header, e.g. when the handler is mounted without the middleware
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details any) {
	ctx.AbortWithStatusJSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details any) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

// RespondInternal logs err through the request logger and hides it from the client.
func RespondInternal(ctx *gin.Context, message string, err error) {
	requestctx.Logger(ctx.Request.Context()).ErrorContext(ctx.Request.Context(), message, "err", err)

	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}
