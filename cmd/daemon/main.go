package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/genricoloni/dancedeck/internal/catalog"
	"github.com/genricoloni/dancedeck/internal/config"
	"github.com/genricoloni/dancedeck/internal/console"
	"github.com/genricoloni/dancedeck/internal/domain"
	"github.com/genricoloni/dancedeck/internal/engine"
	"github.com/genricoloni/dancedeck/internal/fetcher"
	"github.com/genricoloni/dancedeck/internal/loader"
	"github.com/genricoloni/dancedeck/internal/renderer"
	"github.com/genricoloni/dancedeck/internal/state"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// AppOptions is the dependency graph of the daemon
var AppOptions = fx.Options(
	// Logger configuration
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log}
	}),

	// Provide dependencies
	fx.Provide(
		newLogger,
		fx.Annotate(
			config.NewAppConfig,
			fx.As(new(domain.Config)),
		),
		state.NewStore,
		fx.Annotate(
			fetcher.NewHTTPFetcher,
			fx.As(new(domain.Fetcher)),
		),
		renderer.New,
		loadCatalog,
		newConsole,
		engine.NewDeck,
	),
	loader.Module(),

	// Lifecycle hooks
	fx.Invoke(registerHooks),
)

func main() {
	app := fx.New(AppOptions)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Start the application
	if err := app.Start(ctx); err != nil {
		panic(err)
	}

	// Wait for interrupt signal
	<-ctx.Done()

	// Stop the application gracefully
	if err := app.Stop(context.Background()); err != nil {
		panic(err)
	}
}

// newLogger creates a new zap logger instance
func newLogger() (*zap.Logger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return logger, nil
}

// loadCatalog reads the dance collection from the configured catalog file
func loadCatalog(logger *zap.Logger, cfg domain.Config) ([]domain.DanceItem, error) {
	items, pinned, err := catalog.LoadAndPin(cfg.GetCatalogPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if pinned > 0 {
		logger.Info("Generated ids written to catalog", zap.Int("count", pinned))
	}
	logger.Info("Catalog loaded",
		zap.String("path", cfg.GetCatalogPath()),
		zap.Int("dances", len(items)))
	return items, nil
}

// newConsole reads intents from stdin for the lifetime of the app
func newConsole(lc fx.Lifecycle, logger *zap.Logger) domain.IntentSource {
	c := console.NewConsole(logger)
	lc.Append(fx.Hook{
		OnStart: c.Start,
		OnStop:  c.Stop,
	})
	return c
}

// registerHooks sets up application lifecycle hooks
func registerHooks(lc fx.Lifecycle, logger *zap.Logger, deck *engine.Deck, store *state.Store) {
	watchCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go watchState(watchCtx, logger, store)
			if err := deck.Start(ctx); err != nil {
				return err
			}
			logger.Info("DanceDeck Daemon Started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down")
			defer cancel()
			return deck.Stop(ctx)
		},
	})
}

// watchState logs every change of the shared playback state
func watchState(ctx context.Context, logger *zap.Logger, store *state.Store) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-store.Events():
			logger.Info("Playback state changed",
				zap.String("selected", string(snap.SelectedID)),
				zap.String("playing", string(snap.PlayingID)),
				zap.Uint64("activation", snap.Activation))
		}
	}
}
