// Package server initializes and runs the filehub server: it opens the
// configured record store, constructs the identity manager from it, and
// starts the HTTP endpoint. The manager's lifecycle is owned here and the
// instance is passed down explicitly; there are no package-level singletons.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/filehub/internal/logging"
	"github.com/dmitrijs2005/filehub/internal/server/config"
	"github.com/dmitrijs2005/filehub/internal/server/identity"
	"github.com/dmitrijs2005/filehub/internal/server/store"
	"github.com/dmitrijs2005/filehub/internal/server/web"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	manager    *identity.Manager
	web        *web.Server
	closeStore func(context.Context) error
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	manager, err := identity.NewManager(ctx, st, identity.Options{
		AdminCredential: cfg.AdminCredential,
		Verifier:        identity.Argon2Verifier{},
		Logger:          logger,
	})
	if err != nil {
		_ = closeStore(ctx)
		return nil, fmt.Errorf("identity init error: %w", err)
	}

	ws := web.NewServer(cfg.EndpointAddr, manager, logger)

	return &App{
		config:     cfg,
		logger:     logger,
		manager:    manager,
		web:        ws,
		closeStore: closeStore,
	}, nil
}

// openStore builds the record store selected by the configuration and
// returns it together with its close function.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	switch cfg.StoreDriver {
	case "memory":
		return store.NewMemoryStore(), noop, nil

	case "postgres":
		s, err := store.NewPostgresStore(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, func(context.Context) error { return s.Close() }, nil

	case "bolt":
		s, err := store.NewBoltStore(cfg.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return s, func(context.Context) error { return s.Close() }, nil

	case "mongo":
		s, err := store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// Manager exposes the identity manager to embedding processes.
func (app *App) Manager() *identity.Manager {
	return app.manager
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "store", app.config.StoreDriver)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.web.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.closeStore(context.Background()); err != nil {
		app.logger.Error(ctx, "closing store failed", "error", err)
	}
}
