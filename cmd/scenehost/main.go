// Package main is the scene host: it owns a scene graph and serves it to
// callers over a websocket boundary.
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

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/scenelink/internal/config"
	"github.com/Faultbox/scenelink/internal/engine/graph"
	"github.com/Faultbox/scenelink/internal/logger"
	"github.com/Faultbox/scenelink/pkg/boundary"
	"github.com/Faultbox/scenelink/pkg/remote"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := initLogger(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== scenelink host ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("host error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("host stopped normally")
}

func initLogger(cfg config.LoggingConfig) error {
	var file logger.FileConfig
	if cfg.LogFile != "" {
		file = logger.DefaultFileConfig(cfg.LogFile)
		file.JSON = cfg.JSON
	}
	return logger.InitWithFileConfig(cfg.Level, file, true)
}

func run(ctx context.Context, cfg *config.Config) error {
	scene := graph.New(graph.WithLogger(logger.Named("graph")))
	engine := boundary.Trace(scene, logger.Named("boundary"))
	srv := remote.NewServer(engine, remote.WithServerLogger(logger.Named("remote")))

	mux := http.NewServeMux()
	mux.Handle("/ws", srv)
	httpSrv := &http.Server{
		Addr:              cfg.Host.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx)
	})
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Host.Listen))
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving %s: %w", cfg.Host.Listen, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	logger.Info("engine summary",
		zap.Int("nodes", scene.Len()),
		zap.Uint64("frames", scene.Frame()),
	)
	return err
}
