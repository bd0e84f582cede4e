package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/luqq/sonarqube/internal/indexd/server"
	"github.com/luqq/sonarqube/pkg/config"
	"github.com/luqq/sonarqube/pkg/logger"
)

func main() {
	cfg, err := config.Load("indexd")
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Config{
		Level:     cfg.Logger.Level,
		Format:    cfg.Logger.Format,
		AddCaller: cfg.Logger.AddCaller,
	})

	srv, err := server.New(cfg, log)
	if err != nil {
		log.Fatal("Failed to create server", "error", err)
	}

	go func() {
		log.Info("Starting index service", "port", cfg.Server.Port)
		if err := srv.Start(); err != nil {
			log.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down index service...")

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Index service exited")
}
