package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Harshitk-cp/sahai/internal/api"
	"github.com/Harshitk-cp/sahai/internal/bootstrap"
	"github.com/Harshitk-cp/sahai/internal/buildconfig"
	"github.com/Harshitk-cp/sahai/internal/config"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := config.Load(); err != nil {
		panic(err)
	}

	logger, err := bootstrap.NewLogger(config.LogLevel())
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

func run(logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting sahai",
		zap.String("version", buildconfig.Version()),
		zap.String("commit", buildconfig.Commit()))

	pool, err := bootstrap.Connect(ctx, logger)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	engine, err := bootstrap.New(ctx, pool, bootstrap.NewGenerator(ctx, logger), logger)
	if err != nil {
		return err
	}

	app := api.NewApp(engine, pool, api.OptionsFromConfig(), logger)

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		engine.Sweeper.Start()
		app.Start()
		<-gctx.Done()

		logger.Info("shutting down server")
		engine.Sweeper.Stop()
		app.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
