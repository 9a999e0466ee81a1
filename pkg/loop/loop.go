// Package loop drives per-frame work: a tick callback followed by one render
// crossing, on the calling goroutine. Nothing here runs concurrently with the
// tick, so tick code may touch handles freely.
package loop

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/scenelink/pkg/node"
)

// TickFunc runs once per frame with the seconds elapsed since the last one.
type TickFunc func(dt float32) error

// Config holds loop pacing.
type Config struct {
	FPS    int // 0 runs frames back to back
	Frames int // 0 runs until the context is done
}

// Loop renders scene through cam after every tick.
type Loop struct {
	config Config
	scene  node.Handle
	camera node.Camera
	tick   TickFunc

	log   *zap.Logger
	now   func() time.Time
	frame uint64
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger used for the fps report.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loop) {
		if log != nil {
			l.log = log
		}
	}
}

// WithClock replaces time.Now when measuring frame time.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) {
		if now != nil {
			l.now = now
		}
	}
}

// New creates a loop. tick may be nil.
func New(cfg Config, scene node.Handle, cam node.Camera, tick TickFunc, opts ...Option) *Loop {
	l := &Loop{
		config: cfg,
		scene:  scene,
		camera: cam,
		tick:   tick,
		log:    zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Frame returns the engine's number for the last rendered frame.
func (l *Loop) Frame() uint64 {
	return l.frame
}

// Step runs one frame: tick, then render.
func (l *Loop) Step(dt float32) error {
	if l.tick != nil {
		if err := l.tick(dt); err != nil {
			return fmt.Errorf("update error: %w", err)
		}
	}

	frame, err := node.Render(l.scene, l.camera)
	if err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	l.frame = frame
	return nil
}

// Run steps frames until ctx is done, the frame limit is reached, or a frame
// fails.
func (l *Loop) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if l.config.FPS > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(l.config.FPS))
		defer ticker.Stop()
		tick = ticker.C
	}

	l.log.Info("starting loop",
		zap.Int("fps", l.config.FPS),
		zap.Int("frames", l.config.Frames),
	)

	lastTime := l.now()
	fpsTimer := lastTime
	frameCount := 0

	for n := 0; l.config.Frames == 0 || n < l.config.Frames; n++ {
		if ctx.Err() != nil {
			return nil
		}
		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		}

		now := l.now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if err := l.Step(float32(dt)); err != nil {
			return err
		}

		frameCount++
		if now.Sub(fpsTimer) >= time.Second {
			l.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Uint64("frame", l.frame),
			)
			frameCount = 0
			fpsTimer = now
		}
	}
	return nil
}
