package node

import (
	"fmt"

	"github.com/Faultbox/scenelink/pkg/boundary"
	"github.com/Faultbox/scenelink/pkg/math"
)

// Pose is a node's local translation, scale and orientation.
type Pose struct {
	Position   math.Vec3
	Scale      math.Vec3
	Quaternion math.Quat
}

// IdentityPose is the pose of a freshly created node.
func IdentityPose() Pose {
	return Pose{Scale: math.Vec3{X: 1, Y: 1, Z: 1}, Quaternion: math.QuatIdentity()}
}

func (p Pose) args() []float32 {
	return []float32{
		p.Position.X, p.Position.Y, p.Position.Z,
		p.Scale.X, p.Scale.Y, p.Scale.Z,
		p.Quaternion.X, p.Quaternion.Y, p.Quaternion.Z, p.Quaternion.W,
	}
}

func poseFrom(f []float32) (Pose, error) {
	if len(f) != boundary.PoseLen {
		return Pose{}, fmt.Errorf("%w: pose has %d values", boundary.ErrBadCall, len(f))
	}
	return Pose{
		Position:   math.Vec3{X: f[0], Y: f[1], Z: f[2]},
		Scale:      math.Vec3{X: f[3], Y: f[4], Z: f[5]},
		Quaternion: math.Quat{X: f[6], Y: f[7], Z: f[8], W: f[9]},
	}, nil
}

// SetPosition overwrites the translation.
func (h Handle) SetPosition(x, y, z float32) error {
	return h.exec(boundary.Call{Op: boundary.OpSetPosition, Args: []float32{x, y, z}})
}

// SetScale overwrites the scale.
func (h Handle) SetScale(x, y, z float32) error {
	return h.exec(boundary.Call{Op: boundary.OpSetScale, Args: []float32{x, y, z}})
}

// SetQuaternion overwrites the orientation with raw components. The engine
// normalizes when it composes the matrix; nothing is normalized here.
func (h Handle) SetQuaternion(x, y, z, w float32) error {
	return h.exec(boundary.Call{Op: boundary.OpSetQuaternion, Args: []float32{x, y, z, w}})
}

// SetRotation overwrites the orientation with Euler angles in radians,
// applied in XYZ order. The engine stores the equivalent quaternion.
func (h Handle) SetRotation(x, y, z float32) error {
	return h.exec(boundary.Call{Op: boundary.OpSetRotation, Args: []float32{x, y, z}})
}

// SetTransform overwrites translation, scale and orientation in one crossing.
func (h Handle) SetTransform(x, y, z, sx, sy, sz, qx, qy, qz, qw float32) error {
	return h.exec(boundary.Call{
		Op:   boundary.OpSetTransform,
		Args: []float32{x, y, z, sx, sy, sz, qx, qy, qz, qw},
	})
}

// SetPose is SetTransform taking a Pose.
func (h Handle) SetPose(p Pose) error {
	return h.exec(boundary.Call{Op: boundary.OpSetTransform, Args: p.args()})
}

// AddPosition adds a delta to the translation inside the engine, without
// reading the current value back first.
func (h Handle) AddPosition(dx, dy, dz float32) error {
	return h.exec(boundary.Call{Op: boundary.OpAddPosition, Args: []float32{dx, dy, dz}})
}

// LerpPosition moves the translation toward (tx, ty, tz) by alpha inside the
// engine.
func (h Handle) LerpPosition(tx, ty, tz, alpha float32) error {
	return h.exec(boundary.Call{Op: boundary.OpLerpPosition, Args: []float32{tx, ty, tz, alpha}})
}

// Pose reads the node's local pose back from the engine.
func (h Handle) Pose() (Pose, error) {
	reply, err := h.cross(boundary.Call{Op: boundary.OpGetPose})
	if err != nil {
		return Pose{}, err
	}
	return poseFrom(reply.Floats)
}

// Position reads the node's local translation.
func (h Handle) Position() (math.Vec3, error) {
	p, err := h.Pose()
	return p.Position, err
}
