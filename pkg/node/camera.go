package node

import (
	"fmt"

	"github.com/Faultbox/scenelink/pkg/boundary"
	"github.com/Faultbox/scenelink/pkg/math"
	"github.com/Faultbox/scenelink/pkg/viewport"
)

// Camera is a Handle whose node can project and unproject.
type Camera struct {
	Handle
}

// AsCamera returns h as a Camera when its kind allows it.
func AsCamera(h Handle) (Camera, bool) {
	if !h.Kind().IsCamera() {
		return Camera{}, false
	}
	return Camera{Handle: h}, true
}

// Projection holds camera projection parameters. Perspective cameras use
// Fov (vertical, degrees) and Aspect; orthographic cameras use Left, Right,
// Top and Bottom. Near, Far and Zoom apply to both.
type Projection struct {
	Fov    float32
	Aspect float32

	Left, Right, Top, Bottom float32

	Near float32
	Far  float32
	Zoom float32
}

func (p Projection) args(kind boundary.Kind) []float32 {
	if kind == boundary.KindOrthographicCamera {
		return []float32{p.Left, p.Right, p.Top, p.Bottom, p.Near, p.Far, p.Zoom}
	}
	return []float32{p.Fov, p.Aspect, p.Near, p.Far, p.Zoom}
}

func projectionFrom(kind boundary.Kind, f []float32) (Projection, error) {
	switch {
	case kind == boundary.KindPerspectiveCamera && len(f) == 5:
		return Projection{Fov: f[0], Aspect: f[1], Near: f[2], Far: f[3], Zoom: f[4]}, nil
	case kind == boundary.KindOrthographicCamera && len(f) == 7:
		return Projection{Left: f[0], Right: f[1], Top: f[2], Bottom: f[3], Near: f[4], Far: f[5], Zoom: f[6]}, nil
	case !kind.IsCamera():
		return Projection{}, fmt.Errorf("%w: %s", boundary.ErrNotCamera, kind)
	}
	return Projection{}, fmt.Errorf("%w: %s projection with %d values", boundary.ErrBadCall, kind, len(f))
}

// Projection reads the camera's projection parameters.
func (c Camera) Projection() (Projection, error) {
	reply, err := c.cross(boundary.Call{Op: boundary.OpGetProjection})
	if err != nil {
		return Projection{}, err
	}
	return projectionFrom(c.Kind(), reply.Floats)
}

// SetProjection replaces the projection parameters; the engine rebuilds the
// projection matrix in the same crossing.
func (c Camera) SetProjection(p Projection) error {
	return c.exec(boundary.Call{Op: boundary.OpSetProjection, Args: p.args(c.Kind())})
}

// Unproject returns the world-space ray through the camera's near plane at
// ndc: its origin and unit direction.
func (c Camera) Unproject(ndc math.Vec2) (origin, direction math.Vec3, err error) {
	reply, err := c.cross(boundary.Call{Op: boundary.OpUnproject, Args: []float32{ndc.X, ndc.Y}})
	if err != nil {
		return math.Vec3{}, math.Vec3{}, err
	}
	f := reply.Floats
	if len(f) != 6 {
		return math.Vec3{}, math.Vec3{}, fmt.Errorf("%w: unproject returned %d values", boundary.ErrBadCall, len(f))
	}
	return math.Vec3{X: f[0], Y: f[1], Z: f[2]}, math.Vec3{X: f[3], Y: f[4], Z: f[5]}, nil
}

// ProjectNDC returns the NDC position of h's world origin as seen by cam.
func (h Handle) ProjectNDC(cam Camera) (math.Vec2, error) {
	if cam.IsZero() {
		return math.Vec2{}, boundary.Dangling(0)
	}
	reply, err := h.cross(boundary.Call{Op: boundary.OpProject, Target: cam.ID()})
	if err != nil {
		return math.Vec2{}, err
	}
	if len(reply.Floats) < boundary.ProjectLen {
		return math.Vec2{}, fmt.Errorf("%w: project returned %d values", boundary.ErrBadCall, len(reply.Floats))
	}
	return math.Vec2{X: reply.Floats[0], Y: reply.Floats[1]}, nil
}

// ScreenPosition returns the pixel position of h's world origin as seen by
// cam in a viewport of the given size.
func (h Handle) ScreenPosition(cam Camera, vp viewport.Size) (math.Vec2, error) {
	ndc, err := h.ProjectNDC(cam)
	if err != nil {
		return math.Vec2{}, err
	}
	return vp.NDCToPixel(ndc)
}

// Render asks the engine to draw scene through cam and returns the frame
// number it produced.
func Render(scene Handle, cam Camera) (uint64, error) {
	if cam.IsZero() {
		return 0, boundary.Dangling(0)
	}
	reply, err := scene.cross(boundary.Call{Op: boundary.OpRender, Target: cam.ID()})
	if err != nil {
		return 0, err
	}
	return reply.Frame, nil
}
