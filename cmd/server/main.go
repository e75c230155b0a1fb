package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DoyleJ11/impostor/internal/catalog"
	"github.com/DoyleJ11/impostor/internal/config"
	"github.com/DoyleJ11/impostor/internal/engine"
	"github.com/DoyleJ11/impostor/internal/httpapi"
	"github.com/DoyleJ11/impostor/internal/hub"
	"github.com/DoyleJ11/impostor/internal/logger"
	"github.com/DoyleJ11/impostor/internal/persist"
	"github.com/DoyleJ11/impostor/internal/random"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg := &config.Config{}
	cobra.CheckErr(config.NewCommand(cfg, run).Execute())
}

func run(parent context.Context, cfg *config.Config) error {
	logger.InitLogger(cfg.LogLevel, cfg.LogFormat)
	log := zap.L()
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.Load(cfg.WordsDir)
	if err != nil {
		return fmt.Errorf("load word lists: %w", err)
	}

	store, err := persist.Open(ctx, cfg.Store())
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	writer := persist.NewWriter(store, log)

	h := hub.NewHub(ctx, hub.Options{
		Store: store,
		Save: func(code string, s engine.State) {
			writer.Save(persist.KeyFor(code), s)
		},
		Seed:   random.Seed,
		Logger: log,
	})

	// Build the router *with* the hub injected
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           httpapi.SetupRoutes(h, cat, httpapi.RouteOptions{OriginPatterns: cfg.AllowedOrigins}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.StoreDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)

		// Sessions stop before the writer flushes what they queued.
		h.Shutdown()
		writer.Close()
		if cerr := store.Close(); cerr != nil {
			log.Warn("close store", zap.Error(cerr))
		}
		return err
	})

	return g.Wait()
}
