package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/invoicing/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func TestProviders_Disabled(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()
	cfg := telemetry.Config{ServiceName: "test-service", SamplingRatio: 1.0}

	tp, err := telemetry.NewTracerProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{ServiceName: "test-service"}, logger)
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := telemetry.NewLoggerProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.False(t, lp.Core(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestNewInvoiceMetrics_NilMeter(t *testing.T) {
	m, err := telemetry.NewInvoiceMetrics(nil)
	require.Error(t, err)
	assert.Nil(t, m)
	assert.True(t, errors.Is(err, telemetry.ErrMeterNil))
}

func TestInvoiceMetrics_NilReceiver(t *testing.T) {
	var m *telemetry.InvoiceMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordInvoiceCreated(ctx, decimal.NewFromInt(10), "USD")
		m.RecordInvoicesImported(ctx, 3)
		m.RecordAttachmentStored(ctx, 5)
		m.RecordLogoUpload(ctx, "bytes")
		m.RecordPdfDownload(ctx, "stream")
		m.RecordUpstreamEmpty(ctx, "CreateInvoice")
	})
}

func TestInvoiceMetrics_Noop(t *testing.T) {
	m, err := telemetry.NewInvoiceMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		m.RecordInvoiceCreated(context.Background(), decimal.RequireFromString("12.50"), "USD")
	})
}

func TestInvoiceMetrics_Recorded(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	m, err := telemetry.NewInvoiceMetrics(provider.Meter("test"))
	require.NoError(t, err)

	m.RecordInvoiceCreated(ctx, decimal.RequireFromString("25.50"), "USD")
	m.RecordInvoiceCreated(ctx, decimal.RequireFromString("4.50"), "USD")
	m.RecordLogoUpload(ctx, "stream")
	m.RecordInvoicesImported(ctx, 7)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	sums := map[string]int64{}
	var amount float64
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			switch data := md.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					sums[md.Name] += dp.Value
				}
			case metricdata.Sum[float64]:
				for _, dp := range data.DataPoints {
					amount += dp.Value
				}
			}
		}
	}

	assert.Equal(t, int64(2), sums["invoicing_invoices_created_total"])
	assert.Equal(t, int64(1), sums["invoicing_logo_uploads_total"])
	assert.Equal(t, int64(7), sums["invoicing_invoices_imported_total"])
	assert.InDelta(t, 30.0, amount, 0.0001)
}

func TestStartServiceSpan(t *testing.T) {
	ctx, span := telemetry.StartServiceSpan(context.Background(), "billing", "create_invoice",
		telemetry.SpanAttrLineCount, 2,
		telemetry.SpanAttrCustomerID, "abc",
	)
	defer span.End()

	assert.NotNil(t, ctx)
	telemetry.SetAttributes(span, telemetry.SpanAttrInvoiceID, "x", 42, "ignored")
	telemetry.RecordError(span, errors.New("boom"))
	telemetry.RecordError(nil, errors.New("boom"))
}
