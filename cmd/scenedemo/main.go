// Package main is the scene demo: it builds a small scene behind a boundary,
// animates it, and picks against it every frame the way a pointer-driven
// editor would.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/scenelink/internal/config"
	"github.com/Faultbox/scenelink/internal/engine/graph"
	"github.com/Faultbox/scenelink/internal/logger"
	"github.com/Faultbox/scenelink/pkg/boundary"
	"github.com/Faultbox/scenelink/pkg/loop"
	"github.com/Faultbox/scenelink/pkg/remote"
)

// localHost selects an in-process engine instead of a websocket connection.
const localHost = "local"

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

	logger.Info("=== scenelink demo ===")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, closeEngine, err := connect(ctx, cfg.Host)
	if err != nil {
		logger.Error("failed to reach engine", zap.Error(err))
		os.Exit(1)
	}
	defer closeEngine()

	counter := boundary.NewCounter(boundary.Trace(engine, logger.Named("boundary")))
	d, err := newDemo(counter, cfg)
	if err != nil {
		logger.Error("failed to build scene", zap.Error(err))
		os.Exit(1)
	}

	l := loop.New(loop.Config{FPS: cfg.Loop.FPS, Frames: cfg.Loop.Frames},
		d.scene, d.camera, d.tick,
		loop.WithLogger(logger.Named("loop")),
	)
	if err := l.Run(ctx); err != nil {
		logger.Error("loop error", zap.Error(err))
		os.Exit(1)
	}

	fields := []zap.Field{zap.Uint64("frames", l.Frame()), zap.Int("total", counter.Total())}
	for _, op := range counter.Ops() {
		fields = append(fields, zap.Int(string(op), counter.Count(op)))
	}
	logger.Info("crossings", fields...)
}

func initLogger(cfg config.LoggingConfig) error {
	var file logger.FileConfig
	if cfg.LogFile != "" {
		file = logger.DefaultFileConfig(cfg.LogFile)
		file.JSON = cfg.JSON
	}
	return logger.InitWithFileConfig(cfg.Level, file, true)
}

// connect returns the engine named by cfg.Address and a func to release it.
func connect(ctx context.Context, cfg config.HostConfig) (boundary.Boundary, func(), error) {
	if cfg.Address == localHost {
		logger.Info("using in-process engine")
		return graph.New(graph.WithLogger(logger.Named("graph"))), func() {}, nil
	}

	client, err := remote.Dial(ctx, cfg.Address, cfg.CallTimeout.Std())
	if err != nil {
		return nil, nil, err
	}
	logger.Info("connected", zap.String("host", cfg.Address))
	return client, func() {
		if err := client.Close(); err != nil {
			logger.Warn("closing connection", zap.Error(err))
		}
	}, nil
}
