package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"wagering/cmd"
	"wagering/database"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// defaultShellUser is the player the shell uses when no id is given
const defaultShellUser int64 = 1

func main() {
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(); err != nil {
			log.Fatal("Migration error: ", err)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if len(os.Args) > 1 && os.Args[1] == "shell" {
		userID := defaultShellUser
		if len(os.Args) > 2 {
			parsed, err := strconv.ParseInt(os.Args[2], 10, 64)
			if err != nil {
				log.Fatalf("Invalid user id %q", os.Args[2])
			}
			userID = parsed
		}
		if err := cmd.RunShell(ctx, userID); err != nil {
			log.Fatal("Shell error: ", err)
		}
		return
	}

	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error: ", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: wagering migrate [up|down|status] [args...]")
	}

	// Migrations read DATABASE_URL directly, so pick up a local .env too
	_ = godotenv.Load()

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}
