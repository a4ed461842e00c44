package cmd

import (
	"context"
	"time"

	"wagering/config"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the engine, blocking until ctx is cancelled
func Run(ctx context.Context) error {
	cfg := config.Get()
	ConfigureLogging(cfg)
	log.Info("Starting wagering engine...")

	rt, err := NewRuntime(ctx, cfg)
	if err != nil {
		return err
	}

	// The first sweep also abandons wagers left open by processes that went away
	janitorCtx, stopJanitor := context.WithCancel(ctx)
	janitorDone := make(chan struct{})
	go func() {
		defer close(janitorDone)
		rt.Janitor.Run(janitorCtx)
	}()

	log.WithFields(log.Fields{
		"environment": cfg.Environment,
		"storage":     cfg.StorageDriver,
	}).Info("Wagering engine is running")
	<-ctx.Done()

	log.Info("Shutting down wagering engine...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stopJanitor()
	select {
	case <-janitorDone:
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout exceeded waiting for session janitor")
	}

	rt.Close(shutdownCtx)
	log.Info("Shutdown completed")
	return nil
}
