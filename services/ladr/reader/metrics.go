// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package reader

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("aleutian.ladr.reader")

var (
	readLatency metric.Float64Histogram
	termsRead   metric.Int64Counter
	readErrors  metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		readLatency, err = meter.Float64Histogram(
			"ladr_reader_term_duration_seconds",
			metric.WithDescription("Time to read one top-level term"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		termsRead, err = meter.Int64Counter(
			"ladr_reader_terms_total",
			metric.WithDescription("Total number of top-level terms read"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		readErrors, err = meter.Int64Counter(
			"ladr_reader_errors_total",
			metric.WithDescription("Total number of malformed terms"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordRead records metrics for one Next call that produced a term or
// an error. End of stream is not recorded.
func recordRead(ctx context.Context, stream string, duration time.Duration, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("stream", stream))
	readLatency.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("stream", stream), attribute.Bool("success", success)),
	)
	if success {
		termsRead.Add(ctx, 1, attrs)
	} else {
		readErrors.Add(ctx, 1, attrs)
	}
}
