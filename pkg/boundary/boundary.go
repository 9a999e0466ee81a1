// Package boundary defines the single call surface between caller code and the
// scene-graph engine that owns the nodes. Every Cross is one boundary
// crossing; the packages above it exist to keep the number of crossings low.
package boundary

import (
	"reflect"

	"github.com/Faultbox/scenelink/pkg/layers"
	"github.com/Faultbox/scenelink/pkg/math"
)

// Boundary is implemented by the engine side (in-process or remote).
// Implementations are not safe for concurrent use unless stated otherwise;
// the engine assumes a single owner issuing calls.
type Boundary interface {
	Cross(call Call) (Reply, error)
}

// Func adapts a function to Boundary.
type Func func(call Call) (Reply, error)

// Cross calls f.
func (f Func) Cross(call Call) (Reply, error) {
	return f(call)
}

// Same reports whether a and b are the same boundary. Values of types that
// cannot be compared with == (such as Func) match on type and pointer.
func Same(a, b Boundary) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Func, reflect.Map, reflect.Slice:
		return va.Pointer() == vb.Pointer()
	}
	return false
}

// NodeID is the engine-assigned node identity, stable for the node's lifetime.
// Zero is never a valid node.
type NodeID uint32

// Kind is the node capability set chosen at creation.
type Kind string

const (
	KindObject             Kind = "object"
	KindGroup              Kind = "group"
	KindScene              Kind = "scene"
	KindMesh               Kind = "mesh"
	KindPerspectiveCamera  Kind = "perspective_camera"
	KindOrthographicCamera Kind = "orthographic_camera"
)

// IsCamera reports whether nodes of this kind can be unprojected through.
func (k Kind) IsCamera() bool {
	return k == KindPerspectiveCamera || k == KindOrthographicCamera
}

// Op names a boundary operation.
type Op string

const (
	OpCreate            Op = "create"
	OpDestroy           Op = "destroy"
	OpInfo              Op = "info"
	OpSetPosition       Op = "set_position"
	OpSetScale          Op = "set_scale"
	OpSetQuaternion     Op = "set_quaternion"
	OpSetTransform      Op = "set_transform"
	OpSetRotation       Op = "set_rotation"
	OpAddPosition       Op = "add_position"
	OpLerpPosition      Op = "lerp_position"
	OpGetPose           Op = "get_pose"
	OpSetLayers         Op = "set_layers"
	OpGetLayers         Op = "get_layers"
	OpAdd               Op = "add"
	OpRemove            Op = "remove"
	OpRemoveFromParent  Op = "remove_from_parent"
	OpReparent          Op = "reparent"
	OpChildren          Op = "children"
	OpUpdateMatrix      Op = "update_matrix"
	OpUpdateMatrixWorld Op = "update_matrix_world"
	OpSetUserData       Op = "set_user_data"
	OpGetUserData       Op = "get_user_data"
	OpSetProjection     Op = "set_projection"
	OpGetProjection     Op = "get_projection"
	OpUnproject         Op = "unproject"
	OpProject           Op = "project"
	OpIntersect         Op = "intersect"
	OpRender            Op = "render"
)

// Argument counts for the fixed-size float payloads.
const (
	PoseLen    = 10 // x y z sx sy sz qx qy qz qw
	RayLen     = 8  // ox oy oz dx dy dz near far
	ProjectLen = 2  // ndc x y
)

// Call is one boundary crossing. Which fields are meaningful depends on Op;
// the layout is flat so it can be serialised as-is.
type Call struct {
	Op     Op          `json:"op"`
	Node   NodeID      `json:"node,omitempty"`
	Target NodeID      `json:"target,omitempty"`
	Nodes  []NodeID    `json:"nodes,omitempty"`
	Args   []float32   `json:"args,omitempty"`
	Mask   layers.Mask `json:"mask,omitempty"`
	Flag   bool        `json:"flag,omitempty"`
	Kind   Kind        `json:"kind,omitempty"`
	Key    string      `json:"key,omitempty"`
	Value  string      `json:"value,omitempty"`
}

// NodeInfo identifies a node on the caller side.
type NodeInfo struct {
	ID   NodeID `json:"id"`
	UUID string `json:"uuid"`
	Kind Kind   `json:"kind"`
}

// Hit is one intersection reported by the engine, in traversal order.
type Hit struct {
	Node     NodeInfo  `json:"node"`
	Distance float32   `json:"distance"`
	Point    math.Vec3 `json:"point"`
}

// Reply carries the result of a Call.
type Reply struct {
	Info   *NodeInfo   `json:"info,omitempty"`
	Nodes  []NodeInfo  `json:"nodes,omitempty"`
	Floats []float32   `json:"floats,omitempty"`
	Hits   []Hit       `json:"hits,omitempty"`
	Mask   layers.Mask `json:"mask,omitempty"`
	Value  string      `json:"value,omitempty"`
	Found  bool        `json:"found,omitempty"`
	Frame  uint64      `json:"frame,omitempty"`
}
