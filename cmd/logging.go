package cmd

import (
	"os"

	"wagering/config"

	log "github.com/sirupsen/logrus"
)

// ConfigureLogging applies the configured level and format to the global logger
func ConfigureLogging(cfg *config.Config) {
	log.SetOutput(os.Stderr)

	switch cfg.LogFormat {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, falling back to info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
