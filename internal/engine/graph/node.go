package graph

import (
	"github.com/Faultbox/scenelink/pkg/boundary"
	"github.com/Faultbox/scenelink/pkg/layers"
	"github.com/Faultbox/scenelink/pkg/math"
	"github.com/Faultbox/scenelink/pkg/picking"
)

type shapeKind int

const (
	shapeNone shapeKind = iota
	shapeBox
	shapeSphere
)

// shape is a mesh's hit bounds in local space, centered on the origin.
type shape struct {
	kind   shapeKind
	half   math.Vec3 // box half extents
	radius float32
}

// entry is one slot of the node arena.
type entry struct {
	info     boundary.NodeInfo
	parent   boundary.NodeID
	children []boundary.NodeID

	position   math.Vec3
	scale      math.Vec3
	quaternion math.Quat // raw, as written; normalized only when composing
	layers     layers.Mask

	matrix      math.Mat4
	matrixWorld math.Mat4
	matrixDirty bool
	worldDirty  bool

	userData map[string]string
	shape    shape
	camera   *projection
}

func newEntry(info boundary.NodeInfo) *entry {
	return &entry{
		info:        info,
		scale:       math.Vec3{X: 1, Y: 1, Z: 1},
		quaternion:  math.QuatIdentity(),
		layers:      layers.Default,
		matrix:      math.Identity(),
		matrixWorld: math.Identity(),
	}
}

func (e *entry) pose() []float32 {
	return []float32{
		e.position.X, e.position.Y, e.position.Z,
		e.scale.X, e.scale.Y, e.scale.Z,
		e.quaternion.X, e.quaternion.Y, e.quaternion.Z, e.quaternion.W,
	}
}

// localMatrix recomposes the local matrix when the pose changed.
func (e *entry) localMatrix() math.Mat4 {
	if e.matrixDirty {
		e.matrix = math.Compose(e.position, e.quaternion, e.scale)
		e.matrixDirty = false
	}
	return e.matrix
}

// hitTest intersects ray with the entry's bounds. The ray is taken into local
// space so rotated and scaled nodes are tested exactly.
func (e *entry) hitTest(ray picking.Ray, world math.Mat4) (math.Vec3, bool) {
	if e.shape.kind == shapeNone {
		return math.Vec3{}, false
	}
	inv, ok := world.Invert()
	if !ok {
		return math.Vec3{}, false
	}
	local := ray.Transform(inv)

	var t float32
	var hit bool
	switch e.shape.kind {
	case shapeBox:
		t, hit = local.IntersectAABB(picking.AABB{Min: e.shape.half.Scale(-1), Max: e.shape.half})
	case shapeSphere:
		t, hit = local.IntersectSphere(math.Vec3{}, e.shape.radius)
	}
	if !hit {
		return math.Vec3{}, false
	}
	return ray.At(t), true
}
