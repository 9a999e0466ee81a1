// Package viewport maps between pixel coordinates and normalized device
// coordinates. PixelToNDC is the only place that knows the Y flip; every
// pixel-driven query goes through it.
package viewport

import (
	"errors"
	"fmt"

	"github.com/Faultbox/scenelink/pkg/math"
)

// ErrDegenerateViewport is returned when a viewport has zero width or height.
var ErrDegenerateViewport = errors.New("degenerate viewport")

// Size is a viewport size in pixels.
type Size struct {
	Width  float32
	Height float32
}

// Aspect returns width / height.
func (s Size) Aspect() float32 {
	return s.Width / s.Height
}

func (s Size) check() error {
	if s.Width == 0 || s.Height == 0 {
		return fmt.Errorf("%w: %vx%v", ErrDegenerateViewport, s.Width, s.Height)
	}
	return nil
}

// PixelToNDC converts a pixel coordinate (origin top-left, Y down) to NDC
// (origin at the center, Y up). Pixels outside the viewport map outside
// [-1, 1]; that is not an error.
func PixelToNDC(px, py, width, height float32) (math.Vec2, error) {
	return Size{width, height}.PixelToNDC(px, py)
}

// PixelToNDC converts a pixel coordinate within s to NDC.
func (s Size) PixelToNDC(px, py float32) (math.Vec2, error) {
	if err := s.check(); err != nil {
		return math.Vec2{}, err
	}
	return math.Vec2{
		X: (px/s.Width)*2 - 1,
		Y: -(py/s.Height)*2 + 1,
	}, nil
}

// NDCToPixel is the inverse of PixelToNDC.
func (s Size) NDCToPixel(ndc math.Vec2) (math.Vec2, error) {
	if err := s.check(); err != nil {
		return math.Vec2{}, err
	}
	return math.Vec2{
		X: (ndc.X + 1) / 2 * s.Width,
		Y: (-ndc.Y + 1) / 2 * s.Height,
	}, nil
}
