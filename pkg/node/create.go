package node

import (
	"fmt"

	"github.com/Faultbox/scenelink/pkg/boundary"
)

// Mesh bound shapes understood by the engine.
const (
	ShapeBox    = "box"
	ShapeSphere = "sphere"
)

func create(b boundary.Boundary, call boundary.Call) (Handle, error) {
	call.Op = boundary.OpCreate
	reply, err := b.Cross(call)
	if err != nil {
		return Handle{}, fmt.Errorf("creating %s: %w", call.Kind, err)
	}
	if reply.Info == nil {
		return Handle{}, fmt.Errorf("creating %s: %w: no node in reply", call.Kind, boundary.ErrBadCall)
	}
	return Wrap(b, *reply.Info), nil
}

// NewObject creates a bare transform node.
func NewObject(b boundary.Boundary) (Handle, error) {
	return create(b, boundary.Call{Kind: boundary.KindObject})
}

// NewGroup creates a grouping node.
func NewGroup(b boundary.Boundary) (Handle, error) {
	return create(b, boundary.Call{Kind: boundary.KindGroup})
}

// NewScene creates a scene root.
func NewScene(b boundary.Boundary) (Handle, error) {
	return create(b, boundary.Call{Kind: boundary.KindScene})
}

// NewBox creates a mesh whose hit bounds are a box of the given size centered
// on the node origin.
func NewBox(b boundary.Boundary, width, height, depth float32) (Handle, error) {
	return create(b, boundary.Call{
		Kind: boundary.KindMesh,
		Key:  ShapeBox,
		Args: []float32{width, height, depth},
	})
}

// NewSphere creates a mesh whose hit bounds are a sphere around the node
// origin.
func NewSphere(b boundary.Boundary, radius float32) (Handle, error) {
	return create(b, boundary.Call{
		Kind: boundary.KindMesh,
		Key:  ShapeSphere,
		Args: []float32{radius},
	})
}

// NewPerspectiveCamera creates a perspective camera. fov is the vertical field
// of view in degrees.
func NewPerspectiveCamera(b boundary.Boundary, fov, aspect, near, far float32) (Camera, error) {
	p := Projection{Fov: fov, Aspect: aspect, Near: near, Far: far, Zoom: 1}
	h, err := create(b, boundary.Call{
		Kind: boundary.KindPerspectiveCamera,
		Args: p.args(boundary.KindPerspectiveCamera),
	})
	if err != nil {
		return Camera{}, err
	}
	return Camera{Handle: h}, nil
}

// NewOrthographicCamera creates an orthographic camera with the given frustum.
func NewOrthographicCamera(b boundary.Boundary, left, right, top, bottom, near, far float32) (Camera, error) {
	p := Projection{Left: left, Right: right, Top: top, Bottom: bottom, Near: near, Far: far, Zoom: 1}
	h, err := create(b, boundary.Call{
		Kind: boundary.KindOrthographicCamera,
		Args: p.args(boundary.KindOrthographicCamera),
	})
	if err != nil {
		return Camera{}, err
	}
	return Camera{Handle: h}, nil
}

// Destroy asks the engine to destroy the node and its subtree. This is the
// engine's decision to make, not the handle's: afterwards h and every other
// handle to those nodes is dangling.
func Destroy(h Handle) error {
	return h.exec(boundary.Call{Op: boundary.OpDestroy})
}
