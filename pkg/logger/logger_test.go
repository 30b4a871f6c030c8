package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	appctx "salesledger/internal/core/context"
	"salesledger/internal/core/id"
)

func TestFromContext_AddsCallerAndTrace(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewFromZap(zap.New(core))

	orgID := id.New()
	ctx := WithLogger(context.Background(), l)
	ctx = appctx.WithCaller(ctx, &appctx.Caller{OrganizationID: orgID, UserID: "u-1"})
	ctx = appctx.WithTrace(ctx, &appctx.TraceContext{TraceID: "t-1", RequestID: "r-1"})

	Info(ctx, "invoice created", "number", "INV-1")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "u-1", fields["user_id"])
	assert.Equal(t, orgID.String(), fields["organization_id"])
	assert.Equal(t, "t-1", fields["trace_id"])
	assert.Equal(t, "INV-1", fields["number"])
}

func TestNew_FallsBackToInfoOnBadLevel(t *testing.T) {
	l, err := New(Config{Level: "loud", OutputPaths: []string{"stdout"}})
	require.NoError(t, err)
	assert.True(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))
}
