// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package topinput

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("aleutian.ladr.topinput")
	meter  = otel.Meter("aleutian.ladr.topinput")
)

var (
	streamLatency  metric.Float64Histogram
	streamsTotal   metric.Int64Counter
	directiveTotal metric.Int64Counter
	unknownTargets metric.Int64Counter
	listItems      metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		streamLatency, err = meter.Float64Histogram(
			"ladr_topinput_stream_duration_seconds",
			metric.WithDescription("Time to interpret one input stream"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		streamsTotal, err = meter.Int64Counter(
			"ladr_topinput_streams_total",
			metric.WithDescription("Total number of input streams interpreted"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		directiveTotal, err = meter.Int64Counter(
			"ladr_topinput_directives_total",
			metric.WithDescription("Total number of directives processed"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		unknownTargets, err = meter.Int64Counter(
			"ladr_topinput_unknown_targets_total",
			metric.WithDescription("Total number of set/clear/assign of unknown options"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		listItems, err = meter.Int64Counter(
			"ladr_topinput_list_items_total",
			metric.WithDescription("Total number of formulas and terms collected into lists"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordStream(ctx context.Context, stream string, duration time.Duration, success bool) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("stream", stream),
		attribute.Bool("success", success),
	)
	streamLatency.Record(ctx, duration.Seconds(), attrs)
	streamsTotal.Add(ctx, 1, attrs)
}

func recordDirective(ctx context.Context, directive, outcome string) {
	if err := initMetrics(); err != nil {
		return
	}
	directiveTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("directive", directive),
		attribute.String("outcome", outcome),
	))
}

func recordUnknownTarget(ctx context.Context, kind string) {
	if err := initMetrics(); err != nil {
		return
	}
	unknownTargets.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func recordListItems(ctx context.Context, kind string, n int) {
	if err := initMetrics(); err != nil {
		return
	}
	listItems.Add(ctx, int64(n), metric.WithAttributes(attribute.String("kind", kind)))
}

// startReadSpan creates a span for one input stream. The caller must call
// span.End().
func startReadSpan(ctx context.Context, stream string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Interpreter.Read",
		trace.WithAttributes(attribute.String("ladr.stream", stream)),
	)
}

func setReadSpanResult(span trace.Span, applied int, err error) {
	span.SetAttributes(attribute.Int("ladr.directives_applied", applied))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
