// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("OTEL_TRACES_EXPORTER", "")
	t.Setenv("OTEL_METRICS_EXPORTER", "")
	cfg := DefaultConfig()
	assert.Equal(t, "ladr", cfg.ServiceName)
	assert.Equal(t, ExporterNone, cfg.TraceExporter)
	assert.Equal(t, ExporterNone, cfg.MetricExporter)
	assert.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
}

func TestDefaultConfig_Env(t *testing.T) {
	t.Setenv("OTEL_TRACES_EXPORTER", "stdout")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")
	cfg := DefaultConfig()
	assert.Equal(t, "stdout", cfg.TraceExporter)
	assert.Equal(t, "collector:4317", cfg.OTLPEndpoint)
}

func TestInit_NilContext(t *testing.T) {
	//nolint:staticcheck // nil context is the case under test
	_, err := Init(nil, Config{})
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestInit_None(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{TraceExporter: ExporterNone})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_UnknownExporter(t *testing.T) {
	_, err := Init(context.Background(), Config{TraceExporter: "jaeger-thrift"})
	assert.ErrorIs(t, err, ErrUnknownExporter)

	_, err = Init(context.Background(), Config{MetricExporter: "statsd"})
	assert.ErrorIs(t, err, ErrUnknownExporter)
}

func TestInit_Stdout(t *testing.T) {
	prevT, prevM := otel.GetTracerProvider(), otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevT)
		otel.SetMeterProvider(prevM)
	})

	shutdown, err := Init(context.Background(), Config{TraceExporter: ExporterStdout, MetricExporter: ExporterStdout})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_PrometheusHandler(t *testing.T) {
	prev := otel.GetMeterProvider()
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	shutdown, err := Init(context.Background(), Config{MetricExporter: ExporterPrometheus})
	require.NoError(t, err)
	defer shutdown(context.Background())

	counter, err := otel.Meter("test").Int64Counter("ladr_test_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	h := MetricsHandler()
	require.NotNil(t, h)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ladr_test_total")

	// A second Init gets a fresh registry instead of a duplicate
	// registration error.
	shutdown2, err := Init(context.Background(), Config{MetricExporter: ExporterPrometheus})
	require.NoError(t, err)
	assert.NoError(t, shutdown2(context.Background()))
}

func TestServeMetrics_NoHandler(t *testing.T) {
	metricsHandlerMu.Lock()
	saved := metricsHandler
	metricsHandler = nil
	metricsHandlerMu.Unlock()
	t.Cleanup(func() {
		metricsHandlerMu.Lock()
		metricsHandler = saved
		metricsHandlerMu.Unlock()
	})

	err := ServeMetrics(context.Background(), "127.0.0.1:0", nil)
	assert.ErrorIs(t, err, ErrNoMetricsHandler)
}

func TestServeMetrics_StopsOnCancel(t *testing.T) {
	metricsHandlerMu.Lock()
	saved := metricsHandler
	metricsHandler = http.NotFoundHandler()
	metricsHandlerMu.Unlock()
	t.Cleanup(func() {
		metricsHandlerMu.Lock()
		metricsHandler = saved
		metricsHandlerMu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ServeMetrics(ctx, "127.0.0.1:0", slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	assert.NoError(t, err)
}

func TestRecordError(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	_, span := tp.Tracer("test").Start(context.Background(), "op")
	RecordError(span, errors.New("boom"))
	RecordError(span, nil)
	RecordError(nil, errors.New("ignored"))
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "boom", ended[0].Status().Description)
	require.Len(t, ended[0].Events(), 1)
}

func TestLoggerWithTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	t.Run("no span", func(t *testing.T) {
		buf.Reset()
		LoggerWithTrace(context.Background(), logger).Info("msg")
		assert.NotContains(t, buf.String(), "trace_id")
		assert.Empty(t, TraceID(context.Background()))
	})

	t.Run("span", func(t *testing.T) {
		buf.Reset()
		tp := sdktrace.NewTracerProvider()
		ctx, span := tp.Tracer("test").Start(context.Background(), "op")
		defer span.End()

		LoggerWithTrace(ctx, logger).Info("msg")
		assert.Contains(t, buf.String(), `"trace_id":"`+TraceID(ctx)+`"`)
		assert.Contains(t, buf.String(), "span_id")
		assert.Len(t, TraceID(ctx), 32)
	})
}
