package graph

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/scenelink/pkg/boundary"
	"github.com/Faultbox/scenelink/pkg/math"
)

// projection is a camera's projection state. Perspective cameras use fov
// (degrees) and aspect; orthographic cameras use the frustum sides.
type projection struct {
	kind boundary.Kind

	fov, aspect              float32
	left, right, top, bottom float32
	near, far, zoom          float32

	matrix math.Mat4
}

func parseProjection(kind boundary.Kind, args []float32) (*projection, error) {
	p := &projection{kind: kind}
	switch kind {
	case boundary.KindPerspectiveCamera:
		if len(args) != 5 {
			return nil, fmt.Errorf("%w: perspective projection wants 5 values, got %d", boundary.ErrBadCall, len(args))
		}
		p.fov, p.aspect, p.near, p.far, p.zoom = args[0], args[1], args[2], args[3], args[4]
		if p.aspect == 0 || p.near <= 0 {
			return nil, fmt.Errorf("%w: perspective needs aspect != 0 and near > 0", boundary.ErrBadCall)
		}
	case boundary.KindOrthographicCamera:
		if len(args) != 7 {
			return nil, fmt.Errorf("%w: orthographic projection wants 7 values, got %d", boundary.ErrBadCall, len(args))
		}
		p.left, p.right, p.top, p.bottom = args[0], args[1], args[2], args[3]
		p.near, p.far, p.zoom = args[4], args[5], args[6]
		if p.left == p.right || p.top == p.bottom {
			return nil, fmt.Errorf("%w: empty orthographic frustum", boundary.ErrBadCall)
		}
	default:
		return nil, fmt.Errorf("%w: %s", boundary.ErrNotCamera, kind)
	}
	if p.zoom == 0 || p.far == p.near {
		return nil, fmt.Errorf("%w: zoom must be non-zero and far != near", boundary.ErrBadCall)
	}
	p.update()
	return p, nil
}

func (p *projection) args() []float32 {
	if p.kind == boundary.KindOrthographicCamera {
		return []float32{p.left, p.right, p.top, p.bottom, p.near, p.far, p.zoom}
	}
	return []float32{p.fov, p.aspect, p.near, p.far, p.zoom}
}

// update rebuilds the projection matrix from the parameters.
func (p *projection) update() {
	if p.kind == boundary.KindOrthographicCamera {
		dx := (p.right - p.left) / (2 * p.zoom)
		dy := (p.top - p.bottom) / (2 * p.zoom)
		cx := (p.right + p.left) / 2
		cy := (p.top + p.bottom) / 2
		p.matrix = math.Ortho(cx-dx, cx+dx, cy-dy, cy+dy, p.near, p.far)
		return
	}
	half := p.fov * math32.Pi / 360
	fovY := 2 * math32.Atan(math32.Tan(half)/p.zoom)
	p.matrix = math.Perspective(fovY, p.aspect, p.near, p.far)
}

// viewProjection returns projection * view for a camera whose world matrix
// is world.
func (p *projection) viewProjection(world math.Mat4) math.Mat4 {
	return p.matrix.Mul(world.Inverse())
}
