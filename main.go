package main

import (
	"log"
	"os"

	"github.com/parallelpaths/game-companion/app"
	"github.com/parallelpaths/game-companion/config"
	"github.com/parallelpaths/game-companion/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Fatal error loading config: %v", err)
	}

	logger := logging.NewLogger(&cfg.Log)

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to start")
	}

	if err := a.Run(); err != nil {
		logger.WithError(err).Error("Session failed")
		os.Exit(1)
	}
}
