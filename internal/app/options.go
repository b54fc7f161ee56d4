package app

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/thenoetrevino/tablero/internal/store"
	"github.com/thenoetrevino/tablero/internal/types"
)

// Option is a functional option for configuring App initialization
type Option func(*appConfig)

// appConfig holds the configuration for App initialization
type appConfig struct {
	persister store.Persister
	ids       types.IDGenerator
	clock     func() time.Time
	logger    *log.Logger
	closers   []func() error
}

// WithPersister makes the store write every commit through to p
func WithPersister(p store.Persister) Option {
	return func(cfg *appConfig) {
		cfg.persister = p
	}
}

// WithIDGenerator sets the generator shared by the store and services
func WithIDGenerator(g types.IDGenerator) Option {
	return func(cfg *appConfig) {
		cfg.ids = g
	}
}

// WithClock overrides the store clock
func WithClock(now func() time.Time) Option {
	return func(cfg *appConfig) {
		cfg.clock = now
	}
}

// WithLogger sets the logger for the application
func WithLogger(logger *log.Logger) Option {
	return func(cfg *appConfig) {
		cfg.logger = logger
	}
}

// WithCloser registers a cleanup run by App.Close, in reverse order
func WithCloser(fn func() error) Option {
	return func(cfg *appConfig) {
		cfg.closers = append(cfg.closers, fn)
	}
}
