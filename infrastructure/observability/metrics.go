package observability

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"wagering/config"
	"wagering/events"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// MetricsProvider manages OpenTelemetry metrics for the wagering engine
type MetricsProvider struct {
	config        *config.Config
	reader        sdkmetric.Reader
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	enabled       bool
	mu            sync.RWMutex

	// Metric instruments
	wagersPlacedCounter          metric.Int64Counter
	wagersSettledCounter         metric.Int64Counter
	payoutsCounter               metric.Int64Counter
	sessionsActiveGauge          metric.Int64UpDownCounter
	balanceTransactionsCounter   metric.Int64Counter
	levelUpsCounter              metric.Int64Counter
	natsMessagesPublishedCounter metric.Int64Counter
	databaseQueriesCounter       metric.Int64Counter
	databaseQueryDurationHist    metric.Float64Histogram
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// NewMetricsProviderWithReader creates a provider that reports to the given reader
// instead of a configured exporter
func NewMetricsProviderWithReader(cfg *config.Config, reader sdkmetric.Reader) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
		reader: reader,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Debug("Metrics provider already initialized")
		return nil
	}

	reader := mp.reader
	if reader == nil {
		if !mp.config.OTelEnabled {
			log.Info("OpenTelemetry metrics disabled")
			mp.initialized = true
			return nil
		}

		exporter, err := mp.newExporter(ctx)
		if err != nil {
			return err
		}
		if exporter == nil {
			mp.initialized = true
			return nil
		}
		reader = sdkmetric.NewPeriodicReader(
			exporter,
			sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
		)
	}

	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			attribute.String("service.name", mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	if mp.reader == nil {
		otel.SetMeterProvider(mp.meterProvider)
	}
	mp.meter = mp.meterProvider.Meter("wagering")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	mp.enabled = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

// newExporter returns nil when export is switched off
func (mp *MetricsProvider) newExporter(ctx context.Context) (sdkmetric.Exporter, error) {
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")
		return exporter, nil

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")
		return exporter, nil

	case "none", "":
		log.Info("Metrics export disabled (exporter_type='none')")
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}
}

func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.wagersPlacedCounter, err = mp.meter.Int64Counter(
		WagersPlacedTotal,
		metric.WithDescription("Total number of stakes debited"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create wagers placed counter: %w", err)
	}

	mp.wagersSettledCounter, err = mp.meter.Int64Counter(
		WagersSettledTotal,
		metric.WithDescription("Total number of wagers reaching a terminal status"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create wagers settled counter: %w", err)
	}

	mp.payoutsCounter, err = mp.meter.Int64Counter(
		PayoutsTotal,
		metric.WithDescription("Total amount credited back to players"),
		metric.WithUnit("{coin}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create payouts counter: %w", err)
	}

	// UpDownCounter for gauge-like behavior
	mp.sessionsActiveGauge, err = mp.meter.Int64UpDownCounter(
		SessionsActive,
		metric.WithDescription("Current number of open blackjack and crash sessions"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create sessions active gauge: %w", err)
	}

	mp.balanceTransactionsCounter, err = mp.meter.Int64Counter(
		BalanceTransactionsTotal,
		metric.WithDescription("Total number of balance transactions"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create balance transactions counter: %w", err)
	}

	mp.levelUpsCounter, err = mp.meter.Int64Counter(
		LevelUpsTotal,
		metric.WithDescription("Total number of level changes"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create level ups counter: %w", err)
	}

	mp.natsMessagesPublishedCounter, err = mp.meter.Int64Counter(
		NATSMessagesPublishedTotal,
		metric.WithDescription("Total number of events forwarded to NATS"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create NATS messages published counter: %w", err)
	}

	mp.databaseQueriesCounter, err = mp.meter.Int64Counter(
		DatabaseQueriesTotal,
		metric.WithDescription("Total number of database queries"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create database queries counter: %w", err)
	}

	mp.databaseQueryDurationHist, err = mp.meter.Float64Histogram(
		DatabaseQueryDuration,
		metric.WithDescription("Duration of database queries in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create database query duration histogram: %w", err)
	}

	return nil
}

// Shutdown flushes and stops the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// Register subscribes the provider to the engine events it counts
func (mp *MetricsProvider) Register(bus *events.Bus) {
	bus.Subscribe(events.EventTypeWagerPlaced, func(ctx context.Context, e events.Event) {
		if placed, ok := e.(events.WagerPlacedEvent); ok {
			mp.RecordWagerPlaced(ctx, string(placed.Variant))
		}
	})
	bus.Subscribe(events.EventTypeWagerSettled, func(ctx context.Context, e events.Event) {
		if settled, ok := e.(events.WagerSettledEvent); ok {
			mp.RecordWagerSettled(ctx, string(settled.Variant), string(settled.Status), settled.Premium, settled.Win)
		}
	})
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, e events.Event) {
		if change, ok := e.(events.BalanceChangeEvent); ok {
			mp.RecordBalanceTransaction(ctx, string(change.TransactionType))
		}
	})
	bus.Subscribe(events.EventTypeLevelUp, func(ctx context.Context, e events.Event) {
		mp.RecordLevelUp(ctx)
	})
	bus.Subscribe(events.EventTypeSessionOpened, func(ctx context.Context, e events.Event) {
		if opened, ok := e.(events.SessionOpenedEvent); ok {
			mp.UpdateActiveSessions(ctx, string(opened.Variant), 1)
		}
	})
	bus.Subscribe(events.EventTypeSessionClosed, func(ctx context.Context, e events.Event) {
		if closed, ok := e.(events.SessionClosedEvent); ok {
			mp.UpdateActiveSessions(ctx, string(closed.Variant), -1)
		}
	})
}

// RecordWagerPlaced counts a debited stake
func (mp *MetricsProvider) RecordWagerPlaced(ctx context.Context, variant string) {
	if !mp.isEnabled() {
		return
	}
	mp.wagersPlacedCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String(LabelVariant, variant)),
	)
}

// RecordWagerSettled counts a settled wager and the amount paid out for it
func (mp *MetricsProvider) RecordWagerSettled(ctx context.Context, variant, status string, premium bool, win int64) {
	if !mp.isEnabled() {
		return
	}
	mp.wagersSettledCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String(LabelVariant, variant),
			attribute.String(LabelStatus, status),
			attribute.String(LabelPremium, strconv.FormatBool(premium)),
		),
	)
	if win > 0 {
		mp.payoutsCounter.Add(ctx, win,
			metric.WithAttributes(attribute.String(LabelVariant, variant)),
		)
	}
}

// UpdateActiveSessions moves the open session gauge by delta
func (mp *MetricsProvider) UpdateActiveSessions(ctx context.Context, variant string, delta int64) {
	if !mp.isEnabled() {
		return
	}
	mp.sessionsActiveGauge.Add(ctx, delta,
		metric.WithAttributes(attribute.String(LabelVariant, variant)),
	)
}

// RecordBalanceTransaction counts a ledger movement
func (mp *MetricsProvider) RecordBalanceTransaction(ctx context.Context, transactionType string) {
	if !mp.isEnabled() {
		return
	}
	mp.balanceTransactionsCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String(LabelTransactionType, transactionType)),
	)
}

func (mp *MetricsProvider) RecordLevelUp(ctx context.Context) {
	if !mp.isEnabled() {
		return
	}
	mp.levelUpsCounter.Add(ctx, 1)
}

// RecordNATSPublish counts a forwarding attempt. Matches NATSEventForwarder.OnPublish.
func (mp *MetricsProvider) RecordNATSPublish(eventType events.EventType, err error) {
	if !mp.isEnabled() {
		return
	}
	mp.natsMessagesPublishedCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelEventType, string(eventType)),
			attribute.String(LabelOutcome, outcome(err)),
		),
	)
}

// ObserveQuery records one repository statement
func (mp *MetricsProvider) ObserveQuery(ctx context.Context, table string, duration time.Duration, err error) {
	if !mp.isEnabled() {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(LabelTable, table),
		attribute.String(LabelOutcome, outcome(err)),
	)
	mp.databaseQueriesCounter.Add(ctx, 1, attrs)
	mp.databaseQueryDurationHist.Record(ctx, duration.Seconds(), attrs)
}

func (mp *MetricsProvider) isEnabled() bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.enabled
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}
