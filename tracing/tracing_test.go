package tracing

import (
	"context"
	"testing"

	"github.com/ordishs/gocore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitcoin-sv/minerid-node/ulogger"
)

func TestStartTracingReturnsSpanAndDeferFn(t *testing.T) {
	ctx, span, deferFn := StartTracing(context.Background(), "TestOp")
	require.NotNil(t, ctx)
	require.NotNil(t, span)
	require.NotNil(t, deferFn)

	assert.NotPanics(t, func() { deferFn() })
}

func TestStartTracingWithParentStatDoesNotPanic(t *testing.T) {
	parent := gocore.NewStat("tracing_test_parent")

	_, _, deferFn := StartTracing(context.Background(), "ChildOp", WithParentStat(parent))
	assert.NotPanics(t, func() { deferFn() })
}

func TestStartTracingWithHistogramDoesNotPanic(t *testing.T) {
	h := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "tracing_test_histogram",
		Help: "test",
	})

	_, _, deferFn := StartTracing(context.Background(), "HistOp", WithHistogram(h))
	assert.NotPanics(t, func() { deferFn() })
}

func TestStartTracingWithLogMessageDoesNotPanic(t *testing.T) {
	logger := ulogger.New("tracing_test", "info")

	_, _, deferFn := StartTracing(context.Background(), "LogOp", WithLogMessage(logger, "tracing op %s", "started"))
	assert.NotPanics(t, func() { deferFn() })
}

func TestStartTracingWithAttribute(t *testing.T) {
	_, span, deferFn := StartTracing(context.Background(), "AttrOp", WithAttribute("key", "value"))
	defer deferFn()
	assert.NotNil(t, span)
}
