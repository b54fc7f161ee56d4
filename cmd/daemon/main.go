package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/thenoetrevino/tablero/internal/app"
	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/daemon"
	"github.com/thenoetrevino/tablero/internal/logging"
)

func main() {
	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	logger, closer, err := logging.Init(cfg.Logging)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize logging")
	}
	defer func() { _ = closer.Close() }()

	a, err := app.FromConfig(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Error("failed to initialize application")
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.WithError(err).Error("error closing storage")
		}
	}()

	server := daemon.NewServer(a, cfg.Server)

	logger.WithFields(log.Fields{
		"addr":    cfg.Server.ListenAddr,
		"storage": cfg.Storage.Backend,
		"pid":     os.Getpid(),
	}).Info("tablero daemon starting")

	// Start the daemon (blocks until shutdown)
	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Error("daemon error")
		os.Exit(1)
	}

	logger.Info("tablero daemon shutting down gracefully")
}
