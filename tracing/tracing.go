// Package tracing wraps go.opentelemetry.io/otel's span API with the
// stat/histogram/log-message options the rest of this module's call sites
// expect, grounded on services/rpc/handlers.go's
// tracing.StartTracing(ctx, name, tracing.WithParentStat(...),
// tracing.WithHistogram(...), tracing.WithLogMessage(...)) call shape.
package tracing

import (
	"context"
	"time"

	"github.com/ordishs/gocore"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bitcoin-sv/minerid-node/ulogger"
)

var tracer = otel.Tracer("minerid-node")

type options struct {
	parentStat *gocore.Stat
	histogram  prometheus.Histogram
	logger     ulogger.Logger
	logFormat  string
	logArgs    []interface{}
	attrs      []attribute.KeyValue
}

type Option func(*options)

// WithParentStat nests the span's timing under an existing gocore.Stat tree,
// mirroring the teacher's per-service RPCStat/ServiceStat roots.
func WithParentStat(stat *gocore.Stat) Option {
	return func(o *options) { o.parentStat = stat }
}

// WithHistogram additionally observes the span's duration (in seconds) into
// a Prometheus histogram, matching handlers.go's per-handler histograms.
func WithHistogram(h prometheus.Histogram) Option {
	return func(o *options) { o.histogram = h }
}

// WithLogMessage logs format (Debugf-style) when the span starts.
func WithLogMessage(logger ulogger.Logger, format string, args ...interface{}) Option {
	return func(o *options) {
		o.logger = logger
		o.logFormat = format
		o.logArgs = args
	}
}

func WithAttribute(key, value string) Option {
	return func(o *options) { o.attrs = append(o.attrs, attribute.String(key, value)) }
}

// StartTracing opens a span named name, returning the derived context, the
// span, and a deferFn the caller must defer to close out the stat/histogram/
// span together. Grounded on the teacher's three-return StartTracing shape.
func StartTracing(ctx context.Context, name string, opts ...Option) (context.Context, trace.Span, func()) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger != nil && o.logFormat != "" {
		o.logger.Debugf(o.logFormat, o.logArgs...)
	}

	var stat *gocore.Stat
	if o.parentStat != nil {
		stat = o.parentStat.NewStat(name)
	}

	spanCtx, span := tracer.Start(ctx, name, trace.WithAttributes(o.attrs...))
	start := time.Now()

	return spanCtx, span, func() {
		span.End()
		if stat != nil {
			stat.AddTime(start)
		}
		if o.histogram != nil {
			o.histogram.Observe(time.Since(start).Seconds())
		}
	}
}
