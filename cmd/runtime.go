package cmd

import (
	"context"
	"fmt"

	"wagering/config"
	"wagering/database"
	"wagering/events"
	"wagering/game"
	"wagering/infrastructure"
	"wagering/infrastructure/observability"
	"wagering/repository"
	"wagering/repository/memory"
	"wagering/service"

	log "github.com/sirupsen/logrus"
)

// Runtime holds the wired engine and everything that has to be closed with it
type Runtime struct {
	Config   *config.Config
	Bus      *events.Bus
	Accounts service.AccountService
	Wagers   service.WagerService
	Janitor  *service.SessionJanitor
	Recent   infrastructure.RecentPlayers
	Metrics  *observability.MetricsProvider

	closers []func(ctx context.Context)
}

// NewRuntime connects storage and infrastructure and builds the services.
// Optional infrastructure (NATS, Redis, metrics export) degrades to a warning.
func NewRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	rt := &Runtime{Config: cfg}

	log.Info("Initializing event bus...")
	rt.Bus = events.NewBus()

	log.Info("Initializing metrics...")
	rt.Metrics = observability.NewMetricsProvider(cfg)
	if err := rt.Metrics.Initialize(ctx); err != nil {
		log.WithError(err).Warn("Metrics unavailable, continuing without export")
	}
	rt.Metrics.Register(rt.Bus)
	rt.onClose(func(ctx context.Context) {
		if err := rt.Metrics.Shutdown(ctx); err != nil {
			log.WithError(err).Error("Error shutting down metrics provider")
		}
	})

	uowFactory, err := rt.openStorage(ctx)
	if err != nil {
		rt.Close(ctx)
		return nil, err
	}

	rt.connectNATS(ctx)
	rt.connectRecentPlayers(ctx)

	log.Info("Initializing services...")
	locks := service.NewUserLocks()
	sessions := service.NewSessionRegistry()
	clock := service.SystemClock()
	rt.Wagers = service.NewWagerService(uowFactory, cfg, sessions, locks, game.NewSource(), clock)
	rt.Accounts = service.NewAccountService(uowFactory, cfg, locks)
	rt.Janitor = service.NewSessionJanitor(rt.Wagers, clock, cfg.SessionTTL, cfg.JanitorInterval)
	log.Info("Services initialized successfully")

	return rt, nil
}

func (rt *Runtime) openStorage(ctx context.Context) (service.UnitOfWorkFactory, error) {
	switch rt.Config.StorageDriver {
	case config.StorageDriverMemory:
		log.Warn("Using in-memory storage, balances are lost on exit")
		return memory.NewStore(rt.Bus), nil

	case config.StorageDriverPostgres:
		log.Info("Connecting to database...")
		db, err := database.NewConnection(ctx, rt.Config.GetDatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		rt.onClose(func(context.Context) {
			log.Info("Closing database connection...")
			db.Close()
		})
		log.Info("Database connection established successfully")
		return repository.NewUnitOfWorkFactory(db, rt.Bus, rt.Metrics), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", rt.Config.StorageDriver)
	}
}

func (rt *Runtime) connectNATS(ctx context.Context) {
	if rt.Config.NATSServers == "" {
		log.Info("NATS_SERVERS not set, event forwarding disabled")
		return
	}

	log.WithField("servers", rt.Config.NATSServers).Info("Connecting to NATS...")
	client := infrastructure.NewNATSClient(rt.Config.NATSServers)
	if err := client.Connect(ctx); err != nil {
		log.WithError(err).Warn("NATS unavailable, event forwarding disabled")
		return
	}
	rt.onClose(func(context.Context) { client.Close() })

	forwarder := infrastructure.NewNATSEventForwarder(client, rt.Config.OTelServiceName)
	forwarder.OnPublish(rt.Metrics.RecordNATSPublish)
	forwarder.Register(rt.Bus)
}

func (rt *Runtime) connectRecentPlayers(ctx context.Context) {
	rt.Recent = infrastructure.NewMemoryRecentPlayers()

	if rt.Config.RedisAddr != "" {
		log.WithField("addr", rt.Config.RedisAddr).Info("Connecting to Redis...")
		recent, err := infrastructure.NewRedisRecentPlayers(ctx, rt.Config.RedisAddr, rt.Config.RedisPassword, rt.Config.RedisDB)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, keeping recent players in memory")
		} else {
			rt.Recent = recent
			rt.onClose(func(context.Context) { recent.Close() })
		}
	}

	infrastructure.RegisterRecentPlayers(rt.Bus, rt.Recent)
}

func (rt *Runtime) onClose(fn func(ctx context.Context)) {
	rt.closers = append(rt.closers, fn)
}

// Close releases resources in reverse order of acquisition
func (rt *Runtime) Close(ctx context.Context) {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i](ctx)
	}
	rt.closers = nil
}
