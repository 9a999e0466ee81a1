package graph

import (
	"fmt"

	"github.com/Faultbox/scenelink/pkg/boundary"
	"github.com/Faultbox/scenelink/pkg/math"
)

var poseArgs = map[boundary.Op]int{
	boundary.OpSetPosition:   3,
	boundary.OpSetScale:      3,
	boundary.OpSetQuaternion: 4,
	boundary.OpSetTransform:  boundary.PoseLen,
	boundary.OpSetRotation:   3,
	boundary.OpAddPosition:   3,
	boundary.OpLerpPosition:  4,
}

func mathVec(a []float32) math.Vec3 {
	return math.Vec3{X: a[0], Y: a[1], Z: a[2]}
}

// writePose applies one of the transform writes. Values are stored as given;
// nothing is range-checked or normalized.
func (g *Graph) writePose(call boundary.Call) error {
	e, err := g.get(call.Node)
	if err != nil {
		return err
	}
	a := call.Args
	if want := poseArgs[call.Op]; len(a) != want {
		return fmt.Errorf("%w: %s wants %d values, got %d", boundary.ErrBadCall, call.Op, want, len(a))
	}

	switch call.Op {
	case boundary.OpSetPosition:
		e.position = mathVec(a)
	case boundary.OpSetScale:
		e.scale = mathVec(a)
	case boundary.OpSetQuaternion:
		e.quaternion = math.Quat{X: a[0], Y: a[1], Z: a[2], W: a[3]}
	case boundary.OpSetTransform:
		e.position = mathVec(a[0:3])
		e.scale = mathVec(a[3:6])
		e.quaternion = math.Quat{X: a[6], Y: a[7], Z: a[8], W: a[9]}
	case boundary.OpSetRotation:
		e.quaternion = math.QuatFromEuler(a[0], a[1], a[2])
	case boundary.OpAddPosition:
		e.position = e.position.Add(mathVec(a))
	case boundary.OpLerpPosition:
		e.position = e.position.Lerp(mathVec(a), a[3])
	}
	g.touch(e)
	return nil
}

// touch marks the local matrix stale along with every world matrix below it.
func (g *Graph) touch(e *entry) {
	e.matrixDirty = true
	g.markWorldDirty(e)
}

// markWorldDirty relies on a dirty node always having dirty descendants, so
// it can stop at the first node that is already dirty.
func (g *Graph) markWorldDirty(e *entry) {
	if e.worldDirty {
		return
	}
	e.worldDirty = true
	for _, cid := range e.children {
		g.markWorldDirty(g.nodes[cid])
	}
}

// world returns the entry's world matrix, recomputing stale ancestors first.
func (g *Graph) world(e *entry) math.Mat4 {
	if e.worldDirty || e.matrixDirty {
		local := e.localMatrix()
		if e.parent != 0 {
			e.matrixWorld = g.world(g.nodes[e.parent]).Mul(local)
		} else {
			e.matrixWorld = local
		}
		e.worldDirty = false
	}
	return e.matrixWorld
}

// updateWorld refreshes e and its subtree. force recomputes clean matrices too.
func (g *Graph) updateWorld(e *entry, force bool) {
	if force {
		e.worldDirty = true
	}
	g.world(e)
	for _, cid := range e.children {
		g.updateWorld(g.nodes[cid], force)
	}
}
