package requestctx_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/geocoder89/userapi/internal/requestctx"
	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	_, ok := requestctx.RequestIDFrom(context.Background())
	assert.False(t, ok)

	_, ok = requestctx.RequestIDFrom(requestctx.WithRequestID(context.Background(), ""))
	assert.False(t, ok)

	id, ok := requestctx.RequestIDFrom(requestctx.WithRequestID(context.Background(), "abc123"))
	assert.True(t, ok)
	assert.Equal(t, "abc123", id)
}

func TestLogger(t *testing.T) {
	assert.Same(t, slog.Default(), requestctx.Logger(context.Background()))

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil)).With("request_id", "abc123")

	ctx := requestctx.WithLogger(context.Background(), log)
	requestctx.Logger(ctx).Info("hello")

	assert.Contains(t, buf.String(), "request_id=abc123")
}
