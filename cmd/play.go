package cmd

import (
	"context"
	"os"

	"wagering/cmd/shell"
	"wagering/config"
	"wagering/locale"

	log "github.com/sirupsen/logrus"
)

// RunShell starts an in-process engine and plays it interactively as userID
func RunShell(ctx context.Context, userID int64) error {
	cfg := config.Get()
	ConfigureLogging(cfg)
	// Keep routine startup lines out of the way of the prompt
	if log.GetLevel() == log.InfoLevel {
		log.SetLevel(log.WarnLevel)
	}

	rt, err := NewRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close(context.Background())

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go rt.Janitor.Run(janitorCtx)

	sh := shell.New(shell.Options{
		Wagers:   rt.Wagers,
		Accounts: rt.Accounts,
		Recent:   rt.Recent,
		Locale:   locale.New(cfg.Locale),
		UserID:   userID,
		In:       os.Stdin,
		Out:      os.Stdout,
	})
	return sh.Run(ctx)
}
