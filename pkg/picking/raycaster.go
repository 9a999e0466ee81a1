package picking

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/chewxy/math32"

	"github.com/Faultbox/scenelink/pkg/boundary"
	"github.com/Faultbox/scenelink/pkg/layers"
	"github.com/Faultbox/scenelink/pkg/math"
	"github.com/Faultbox/scenelink/pkg/node"
	"github.com/Faultbox/scenelink/pkg/viewport"
)

// ErrNoIntersection is returned by the plane queries when the ray is parallel
// to the plane or meets it behind the origin. It is an expected outcome.
var ErrNoIntersection = errors.New("no intersection")

// Hit is one intersection, nearest first within a result.
type Hit struct {
	Node     node.Handle
	Distance float32
	Point    math.Vec3
}

// Raycaster holds a ray and the search parameters applied to object queries.
// It keeps no reference to the camera it was built from; rebuild it after the
// camera moves.
type Raycaster struct {
	Ray    Ray
	Near   float32
	Far    float32
	Layers layers.Mask
}

// NewRaycaster returns a raycaster with an unbounded range and the default
// layer mask.
func NewRaycaster() *Raycaster {
	return &Raycaster{
		Ray:    Ray{Direction: math.Vec3{Z: -1}},
		Near:   0,
		Far:    math32.MaxFloat32,
		Layers: layers.Default,
	}
}

// Set points the ray from origin along direction. direction is normalized.
func (rc *Raycaster) Set(origin, direction math.Vec3) {
	rc.Ray = Ray{Origin: origin, Direction: direction.Normalize()}
}

// SetFromCameraAndNDC rebuilds the ray so it leaves cam's near plane at ndc.
func (rc *Raycaster) SetFromCameraAndNDC(cam node.Camera, ndc math.Vec2) error {
	origin, dir, err := cam.Unproject(ndc)
	if err != nil {
		return fmt.Errorf("unprojecting through %s: %w", cam, err)
	}
	rc.Set(origin, dir)
	return nil
}

// SetFromCameraAndPixel is SetFromCameraAndNDC for a pixel position in a
// viewport of size vp.
func (rc *Raycaster) SetFromCameraAndPixel(cam node.Camera, px, py float32, vp viewport.Size) error {
	ndc, err := vp.PixelToNDC(px, py)
	if err != nil {
		return err
	}
	return rc.SetFromCameraAndNDC(cam, ndc)
}

// IntersectObjects tests the ray against nodes, and their descendants when
// recursive is set, in one crossing. Nodes outside the raycaster's layers are
// skipped. Hits come back sorted by distance; equal distances keep the
// engine's traversal order. The result reuses target's backing array.
// All nodes must live behind the same boundary; mixing boundaries fails
// with boundary.ErrBadCall before anything crosses.
func (rc *Raycaster) IntersectObjects(nodes []node.Handle, recursive bool, target []Hit) ([]Hit, error) {
	target = target[:0]
	if len(nodes) == 0 {
		return target, nil
	}

	b := nodes[0].Boundary()
	if b == nil {
		return target, boundary.Dangling(nodes[0].ID())
	}
	ids := make([]boundary.NodeID, len(nodes))
	for i, n := range nodes {
		if n.IsZero() {
			return target, boundary.Dangling(0)
		}
		if !boundary.Same(n.Boundary(), b) {
			return target, fmt.Errorf("%w: %s lives behind a different boundary than %s", boundary.ErrBadCall, n, nodes[0])
		}
		ids[i] = n.ID()
	}
	reply, err := b.Cross(boundary.Call{
		Op:    boundary.OpIntersect,
		Nodes: ids,
		Args:  rc.args(),
		Mask:  rc.Layers,
		Flag:  recursive,
	})
	if err != nil {
		return target, err
	}

	for _, h := range reply.Hits {
		target = append(target, Hit{
			Node:     node.Wrap(b, h.Node),
			Distance: h.Distance,
			Point:    h.Point,
		})
	}
	slices.SortStableFunc(target, func(x, y Hit) int {
		return cmp.Compare(x.Distance, y.Distance)
	})
	return target, nil
}

// IntersectObject is IntersectObjects for a single node.
func (rc *Raycaster) IntersectObject(n node.Handle, recursive bool, target []Hit) ([]Hit, error) {
	return rc.IntersectObjects([]node.Handle{n}, recursive, target)
}

func (rc *Raycaster) args() []float32 {
	o, d := rc.Ray.Origin, rc.Ray.Direction
	return []float32{o.X, o.Y, o.Z, d.X, d.Y, d.Z, rc.Near, rc.Far}
}

// IntersectPlane returns the point where the ray meets p. It runs locally and
// never crosses the boundary.
func (rc *Raycaster) IntersectPlane(p Plane) (math.Vec3, error) {
	t, ok := rc.Ray.IntersectPlane(p)
	if !ok {
		return math.Vec3{}, ErrNoIntersection
	}
	return rc.Ray.At(t), nil
}

// IntersectGroundPlane returns the point where the ray meets Y = 0.
func (rc *Raycaster) IntersectGroundPlane() (math.Vec3, error) {
	return rc.IntersectPlane(GroundPlane)
}

// Objects returns the hit nodes in hit order.
func Objects(hits []Hit) []node.Handle {
	out := make([]node.Handle, len(hits))
	for i, h := range hits {
		out[i] = h.Node
	}
	return out
}
