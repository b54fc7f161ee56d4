// Package app wires the board store, broadcast router and mutation
// services into one container
package app

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/database"
	"github.com/thenoetrevino/tablero/internal/redisstore"
	"github.com/thenoetrevino/tablero/internal/rooms"
	alertservice "github.com/thenoetrevino/tablero/internal/services/alert"
	boardservice "github.com/thenoetrevino/tablero/internal/services/board"
	cardservice "github.com/thenoetrevino/tablero/internal/services/card"
	listservice "github.com/thenoetrevino/tablero/internal/services/list"
	memberservice "github.com/thenoetrevino/tablero/internal/services/member"
	subtaskservice "github.com/thenoetrevino/tablero/internal/services/subtask"
	"github.com/thenoetrevino/tablero/internal/store"
	"github.com/thenoetrevino/tablero/internal/types"
)

// App holds all application services and provides dependency injection.
// This is the main application container that manages service lifecycles.
type App struct {
	Store  *store.Store
	Router *rooms.Router
	Logger *log.Logger

	// Service layer (business logic)
	BoardService   boardservice.Service
	ListService    listservice.Service
	CardService    cardservice.Service
	SubtaskService subtaskservice.Service
	MemberService  memberservice.Service
	AlertService   alertservice.Service

	closers []func() error
}

// New creates a new App with all services initialized. Every service
// publishes committed snapshots to the router.
func New(opts ...Option) *App {
	cfg := &appConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.ids == nil {
		cfg.ids = types.NewUUIDGenerator()
	}
	if cfg.logger == nil {
		cfg.logger = log.StandardLogger()
	}

	storeOpts := []store.Option{
		store.WithIDGenerator(cfg.ids),
		store.WithLogger(cfg.logger),
	}
	if cfg.persister != nil {
		storeOpts = append(storeOpts, store.WithPersister(cfg.persister))
	}
	if cfg.clock != nil {
		storeOpts = append(storeOpts, store.WithClock(cfg.clock))
	}
	st := store.New(storeOpts...)
	router := rooms.NewRouter(cfg.logger)

	return &App{
		Store:          st,
		Router:         router,
		Logger:         cfg.logger,
		BoardService:   boardservice.NewService(st, router),
		ListService:    listservice.NewService(st, cfg.ids, router),
		CardService:    cardservice.NewService(st, cfg.ids, router),
		SubtaskService: subtaskservice.NewService(st, cfg.ids, router),
		MemberService:  memberservice.NewService(st, cfg.ids, router),
		AlertService:   alertservice.NewService(st, cfg.ids, router),
		closers:        cfg.closers,
	}
}

// FromConfig opens the configured storage backend, builds the App, loads
// boards when preloading is enabled and seeds the default board
func FromConfig(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	opts := []Option{
		WithIDGenerator(types.NewGenerator(cfg.IDs.Format)),
		WithLogger(logger),
	}

	switch cfg.Storage.Backend {
	case config.StorageSQLite:
		db, err := database.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithPersister(database.NewBoardRepository(db)), WithCloser(db.Close))
	case config.StorageRedis:
		p, err := redisstore.Dial(ctx, cfg.Storage.RedisURL, cfg.Storage.KeyPrefix)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithPersister(p), WithCloser(p.Close))
	case config.StorageMemory:
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	a := New(opts...)
	if cfg.Storage.Preload {
		if _, err := a.Store.Preload(ctx); err != nil {
			_ = a.Close()
			return nil, err
		}
	}
	if err := a.Seed(ctx, cfg.Seed); err != nil {
		_ = a.Close()
		return nil, err
	}

	logger.WithFields(log.Fields{
		"storage": cfg.Storage.Backend,
		"ids":     cfg.IDs.Format,
	}).Info("application initialized")
	return a, nil
}

// Seed creates the configured default board when no board exists yet
func (a *App) Seed(ctx context.Context, seed config.SeedConfig) error {
	if seed.BoardName == "" {
		return nil
	}
	existing, err := a.BoardService.ListBoards(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	b, err := a.BoardService.CreateBoard(ctx, boardservice.CreateBoardRequest{Name: seed.BoardName, Lists: seed.Lists})
	if err != nil {
		return fmt.Errorf("failed to seed board: %w", err)
	}
	a.Logger.WithField("board_id", b.ID).Info("seeded default board")
	return nil
}

// Close releases storage resources
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
