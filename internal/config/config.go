// Package config handles scenelink configuration loading and management.
package config

import (
	"fmt"
	"time"

	"github.com/Faultbox/scenelink/pkg/layers"
	"github.com/Faultbox/scenelink/pkg/math"
	"github.com/Faultbox/scenelink/pkg/viewport"
)

// Config holds all settings for the host and demo binaries.
type Config struct {
	Viewport ViewportConfig `yaml:"viewport" toml:"viewport"`
	Camera   CameraConfig   `yaml:"camera" toml:"camera"`
	Raycast  RaycastConfig  `yaml:"raycast" toml:"raycast"`
	Host     HostConfig     `yaml:"host" toml:"host"`
	Loop     LoopConfig     `yaml:"loop" toml:"loop"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

// ViewportConfig is the drawing surface size in pixels.
type ViewportConfig struct {
	Width  int `yaml:"width" toml:"width"`
	Height int `yaml:"height" toml:"height"`
}

// Size returns the viewport as a viewport.Size.
func (v ViewportConfig) Size() viewport.Size {
	return viewport.Size{Width: float32(v.Width), Height: float32(v.Height)}
}

// CameraConfig describes the demo's perspective camera.
type CameraConfig struct {
	Fov      float32    `yaml:"fov" toml:"fov"` // vertical, degrees
	Near     float32    `yaml:"near" toml:"near"`
	Far      float32    `yaml:"far" toml:"far"`
	Position [3]float32 `yaml:"position" toml:"position"`
	Target   [3]float32 `yaml:"target" toml:"target"`
}

// Eye returns Position as a vector.
func (c CameraConfig) Eye() math.Vec3 {
	return math.Vec3{X: c.Position[0], Y: c.Position[1], Z: c.Position[2]}
}

// LookAt returns Target as a vector.
func (c CameraConfig) LookAt() math.Vec3 {
	return math.Vec3{X: c.Target[0], Y: c.Target[1], Z: c.Target[2]}
}

// RaycastConfig holds picking defaults.
type RaycastConfig struct {
	Near   float32 `yaml:"near" toml:"near"`
	Far    float32 `yaml:"far" toml:"far"`
	Layers []int   `yaml:"layers" toml:"layers"`
}

// Mask returns the configured layers as a mask.
func (r RaycastConfig) Mask() (layers.Mask, error) {
	return layers.Of(r.Layers...)
}

// HostConfig holds the websocket transport settings.
type HostConfig struct {
	Listen      string   `yaml:"listen" toml:"listen"`   // host: address to serve on
	Address     string   `yaml:"address" toml:"address"` // demo: ws:// URL of the host
	CallTimeout Duration `yaml:"call_timeout" toml:"call_timeout"`
}

// LoopConfig holds frame pacing.
type LoopConfig struct {
	FPS    int `yaml:"fps" toml:"fps"`
	Frames int `yaml:"frames" toml:"frames"` // 0 runs until interrupted
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
	JSON    bool   `yaml:"json" toml:"json"`
}

// Duration is a time.Duration written as text ("5s", "250ms") in both YAML
// and TOML files.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Viewport: ViewportConfig{
			Width:  1280,
			Height: 720,
		},
		Camera: CameraConfig{
			Fov:      50,
			Near:     0.1,
			Far:      1000,
			Position: [3]float32{0, 5, 10},
			Target:   [3]float32{0, 0, 0},
		},
		Raycast: RaycastConfig{
			Near:   0,
			Far:    1000,
			Layers: []int{0},
		},
		Host: HostConfig{
			Listen:      "127.0.0.1:7420",
			Address:     "ws://127.0.0.1:7420/ws",
			CallTimeout: Duration(5 * time.Second),
		},
		Loop: LoopConfig{
			FPS:    60,
			Frames: 0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("viewport %dx%d: %w", c.Viewport.Width, c.Viewport.Height, viewport.ErrDegenerateViewport)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("camera clip range %v..%v is empty", c.Camera.Near, c.Camera.Far)
	}
	if c.Raycast.Far < c.Raycast.Near {
		return fmt.Errorf("raycast range %v..%v is empty", c.Raycast.Near, c.Raycast.Far)
	}
	if _, err := c.Raycast.Mask(); err != nil {
		return fmt.Errorf("raycast layers: %w", err)
	}
	if c.Loop.FPS < 0 || c.Loop.Frames < 0 {
		return fmt.Errorf("loop fps and frames must not be negative")
	}
	return nil
}
