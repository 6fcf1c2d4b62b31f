package main

import (
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/smartleave/leave-composer/internal"
	"github.com/smartleave/leave-composer/internal/config"
)

func main() {
	// load values from .env into the system
	if err := godotenv.Load(); err != nil {
		log.Print("No .env file found")
	}

	cfg, err := config.NewApplicationConfig()
	if err != nil {
		log.Fatalf("failed to start application: %v", err)
	}

	if level, err := log.ParseLevel(cfg.LogLevel()); err == nil {
		log.SetLevel(level)
	}

	server, err := internal.SetupServer(cfg)
	if err != nil {
		log.Fatalf("failed to start application: %v", err)
	}
	server.Start("", cfg.ServerPort())
}
