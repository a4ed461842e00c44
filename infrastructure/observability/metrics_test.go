package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"wagering/config"
	"wagering/events"
	"wagering/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestProvider(t *testing.T) (*MetricsProvider, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := NewMetricsProviderWithReader(config.NewTestConfig(), reader)
	require.NoError(t, mp.Initialize(context.Background()))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumInt64(t *testing.T, m metricdata.Metrics, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)

	want := attribute.NewSet(attrs...)
	var total int64
	for _, dp := range sum.DataPoints {
		if len(attrs) == 0 || dp.Attributes.Equals(&want) {
			total += dp.Value
		}
	}
	return total
}

func TestMetricsProvider_DisabledIsNoop(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = false
	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.Initialize(context.Background()))

	assert.NotPanics(t, func() {
		mp.RecordWagerPlaced(context.Background(), "slots")
		mp.ObserveQuery(context.Background(), "accounts", time.Millisecond, nil)
		mp.RecordNATSPublish(events.EventTypeWagerPlaced, nil)
	})
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestMetricsProvider_UnknownExporter(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	cfg.OTelExporterType = "carrier-pigeon"
	mp := NewMetricsProvider(cfg)
	assert.Error(t, mp.Initialize(context.Background()))
}

func TestMetricsProvider_WagerCounters(t *testing.T) {
	mp, reader := newTestProvider(t)
	ctx := context.Background()

	mp.RecordWagerPlaced(ctx, "slots")
	mp.RecordWagerPlaced(ctx, "slots")
	mp.RecordWagerPlaced(ctx, "dice")
	mp.RecordWagerSettled(ctx, "slots", "won", true, 1500)
	mp.RecordWagerSettled(ctx, "dice", "lost", false, 0)

	metrics := collect(t, reader)
	assert.Equal(t, int64(2), sumInt64(t, metrics[WagersPlacedTotal], attribute.String(LabelVariant, "slots")))
	assert.Equal(t, int64(3), sumInt64(t, metrics[WagersPlacedTotal]))
	assert.Equal(t, int64(2), sumInt64(t, metrics[WagersSettledTotal]))
	assert.Equal(t, int64(1500), sumInt64(t, metrics[PayoutsTotal]))
}

func TestMetricsProvider_ObserveQuery(t *testing.T) {
	mp, reader := newTestProvider(t)
	ctx := context.Background()

	mp.ObserveQuery(ctx, "accounts", 2*time.Millisecond, nil)
	mp.ObserveQuery(ctx, "accounts", 3*time.Millisecond, errors.New("boom"))
	mp.ObserveQuery(ctx, "wagers", time.Millisecond, nil)

	metrics := collect(t, reader)
	queries := metrics[DatabaseQueriesTotal]
	assert.Equal(t, int64(3), sumInt64(t, queries))
	assert.Equal(t, int64(1), sumInt64(t, queries,
		attribute.String(LabelOutcome, OutcomeError),
		attribute.String(LabelTable, "accounts"),
	))

	hist, ok := metrics[DatabaseQueryDuration].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)
}

func TestMetricsProvider_RegisterTracksSessions(t *testing.T) {
	mp, reader := newTestProvider(t)
	bus := events.NewBus()
	mp.Register(bus)
	ctx := context.Background()

	bus.Emit(ctx, events.SessionOpenedEvent{UserID: 1, Variant: models.VariantCrash})
	bus.Emit(ctx, events.SessionOpenedEvent{UserID: 2, Variant: models.VariantCrash})
	bus.Emit(ctx, events.SessionClosedEvent{UserID: 1, Variant: models.VariantCrash})
	bus.Emit(ctx, events.BalanceChangeEvent{UserID: 1, TransactionType: models.TransactionTypeStake})

	require.Eventually(t, func() bool {
		metrics := collect(t, reader)
		sessions, ok := metrics[SessionsActive]
		if !ok {
			return false
		}
		balance, ok := metrics[BalanceTransactionsTotal]
		if !ok {
			return false
		}
		return sumInt64(t, sessions) == 1 && sumInt64(t, balance) == 1
	}, time.Second, 10*time.Millisecond)
}
