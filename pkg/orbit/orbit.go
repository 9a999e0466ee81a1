// Package orbit steers a camera node around a center point.
package orbit

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/scenelink/pkg/math"
	"github.com/Faultbox/scenelink/pkg/node"
)

// Controller holds an orbit in spherical coordinates around Center. It only
// touches the engine in Apply.
type Controller struct {
	Center   math.Vec3
	Distance float32
	Pitch    float32 // radians above the horizon
	Yaw      float32 // radians around +Y, 0 looks down -Z

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32
}

// New returns a controller at distance looking at center from slightly above.
func New(center math.Vec3, distance float32) *Controller {
	return &Controller{
		Center:          center,
		Distance:        distance,
		Pitch:           0.5,
		MinDistance:     distance / 10,
		MaxDistance:     distance * 10,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the eye position in world space.
func (c *Controller) Position() math.Vec3 {
	horiz := c.Distance * math32.Cos(c.Pitch)
	return c.Center.Add(math.Vec3{
		X: horiz * math32.Sin(c.Yaw),
		Y: c.Distance * math32.Sin(c.Pitch),
		Z: horiz * math32.Cos(c.Yaw),
	})
}

// LookFrom places the eye at eye, keeping Center. Limits are not applied.
func (c *Controller) LookFrom(eye math.Vec3) {
	off := eye.Sub(c.Center)
	c.Distance = off.Length()
	if c.Distance == 0 {
		return
	}
	c.Pitch = math32.Asin(off.Y / c.Distance)
	c.Yaw = math32.Atan2(off.X, off.Z)
}

// Rotation returns the orientation that points the camera at Center.
func (c *Controller) Rotation() math.Quat {
	return math.LookRotation(c.Center.Sub(c.Position()))
}

// Drag turns the orbit by a pointer delta in pixels.
func (c *Controller) Drag(dx, dy float32) {
	c.Yaw -= dx * c.DragSensitivity
	c.Pitch = clamp(c.Pitch+dy*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// Zoom moves toward (positive delta) or away from Center.
func (c *Controller) Zoom(delta float32) {
	c.Distance = clamp(c.Distance-delta*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// Pan slides Center on the ground plane relative to the current yaw.
func (c *Controller) Pan(forward, right, up float32) {
	speed := c.Distance * 0.01
	sin, cos := math32.Sincos(c.Yaw)
	c.Center.X += (-sin*forward + cos*right) * speed
	c.Center.Z += (-cos*forward - sin*right) * speed
	c.Center.Y += up * speed
}

// Fit centers the orbit on a box and backs off far enough to frame it.
func (c *Controller) Fit(min, max math.Vec3) {
	c.Center = min.Add(max).Scale(0.5)
	size := math32.Max(max.X-min.X, max.Z-min.Z)
	c.Distance = clamp(size*1.5, c.MinDistance, c.MaxDistance)
}

// Apply writes the eye pose to cam in one crossing. Scale is reset to 1.
func (c *Controller) Apply(cam node.Camera) error {
	p := c.Position()
	q := c.Rotation()
	return cam.SetTransform(p.X, p.Y, p.Z, 1, 1, 1, q.X, q.Y, q.Z, q.W)
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
