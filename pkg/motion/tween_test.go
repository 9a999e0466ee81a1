package motion_test

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/gween/ease"

	"github.com/Faultbox/scenelink/internal/engine/graph"
	"github.com/Faultbox/scenelink/pkg/boundary"
	"github.com/Faultbox/scenelink/pkg/math"
	"github.com/Faultbox/scenelink/pkg/motion"
	"github.com/Faultbox/scenelink/pkg/node"
)

func TestMoveReachesTarget(t *testing.T) {
	b := boundary.NewCounter(graph.New())
	h, err := node.NewObject(b)
	require.NoError(t, err)

	tw := motion.Move(h, math.Vec3{}, math.Vec3{X: 10, Y: -4, Z: 2}, 1, ease.Linear)

	b.Reset()
	require.NoError(t, tw.Update(0.5))
	assert.Equal(t, 1, b.Count(boundary.OpSetPosition), "one write per update")
	assert.False(t, tw.Done)

	p, err := h.Position()
	require.NoError(t, err)
	assert.InDelta(t, 5, p.X, 0.01)
	assert.InDelta(t, -2, p.Y, 0.01)

	require.NoError(t, tw.Update(0.5))
	assert.True(t, tw.Done)
	p, err = h.Position()
	require.NoError(t, err)
	assert.InDelta(t, 10, p.X, 0.01)
	assert.InDelta(t, 2, p.Z, 0.01)

	// Finished tweens stop writing.
	b.Reset()
	require.NoError(t, tw.Update(0.5))
	assert.Zero(t, b.Total())
}

func TestMoveToStartsFromCurrentPosition(t *testing.T) {
	b := graph.New()
	h, err := node.NewObject(b)
	require.NoError(t, err)
	require.NoError(t, h.SetPosition(4, 0, 0))

	tw, err := motion.MoveTo(h, math.Vec3{X: 8}, 2, nil)
	require.NoError(t, err)
	assert.True(t, tw.Target().Equal(h))

	require.NoError(t, tw.Update(1))
	p, err := h.Position()
	require.NoError(t, err)
	assert.InDelta(t, 6, p.X, 0.01)
}

func TestTweenStopsOnDestroyedNode(t *testing.T) {
	b := graph.New()
	h, err := node.NewObject(b)
	require.NoError(t, err)
	tw := motion.Move(h, math.Vec3{}, math.Vec3{X: 1}, 1, ease.OutQuad)

	require.NoError(t, node.Destroy(h))
	err = tw.Update(0.1)
	assert.ErrorIs(t, err, boundary.ErrDanglingHandle)
	assert.True(t, tw.Done)
	assert.ErrorIs(t, tw.Err, boundary.ErrDanglingHandle)

	_, err = motion.MoveTo(h, math.Vec3{}, 1, nil)
	assert.ErrorIs(t, err, boundary.ErrDanglingHandle)
}

func TestGroup(t *testing.T) {
	b := graph.New()
	short, err := node.NewObject(b)
	require.NoError(t, err)
	long, err := node.NewObject(b)
	require.NoError(t, err)
	doomed, err := node.NewObject(b)
	require.NoError(t, err)

	var g motion.Group
	g.Add(
		motion.Move(short, math.Vec3{}, math.Vec3{X: 1}, 0.5, ease.Linear),
		motion.Move(long, math.Vec3{}, math.Vec3{X: 1}, 2, ease.Linear),
		motion.Move(doomed, math.Vec3{}, math.Vec3{X: 1}, 2, ease.Linear),
	)
	require.NoError(t, node.Destroy(doomed))

	require.NoError(t, g.Update(0.5))
	assert.Equal(t, 1, g.Len())

	require.NoError(t, g.Update(1.5))
	assert.Zero(t, g.Len())

	p, err := long.Position()
	require.NoError(t, err)
	assert.InDelta(t, 1, p.X, 0.01)
}

func TestRotateSlerpsOrientation(t *testing.T) {
	b := boundary.NewCounter(graph.New())
	h, err := node.NewObject(b)
	require.NoError(t, err)

	quarter := math.QuatFromEuler(0, math32.Pi/2, 0)
	tr, err := motion.RotateTo(h, quarter, 1, nil)
	require.NoError(t, err)
	assert.True(t, tr.Target().Equal(h))

	b.Reset()
	require.NoError(t, tr.Update(0.5))
	assert.Equal(t, 1, b.Count(boundary.OpSetQuaternion), "one write per update")
	assert.Equal(t, 1, b.Total())

	// Halfway through a quarter turn is an eighth turn.
	p, err := h.Pose()
	require.NoError(t, err)
	eighth := math.QuatFromEuler(0, math32.Pi/4, 0)
	assert.InDelta(t, eighth.Y, p.Quaternion.Y, 0.001)
	assert.InDelta(t, eighth.W, p.Quaternion.W, 0.001)

	require.NoError(t, tr.Update(0.5))
	assert.True(t, tr.Finished())
	p, err = h.Pose()
	require.NoError(t, err)
	assert.InDelta(t, quarter.Y, p.Quaternion.Y, 0.001)
	assert.InDelta(t, quarter.W, p.Quaternion.W, 0.001)

	require.NoError(t, node.Destroy(h))
	_, err = motion.RotateTo(h, quarter, 1, nil)
	assert.ErrorIs(t, err, boundary.ErrDanglingHandle)
}

func TestGroupMixesMovesAndTurns(t *testing.T) {
	b := graph.New()
	h, err := node.NewObject(b)
	require.NoError(t, err)

	var g motion.Group
	g.Add(
		motion.Move(h, math.Vec3{}, math.Vec3{Y: 2}, 1, ease.Linear),
		motion.Rotate(h, math.QuatIdentity(), math.QuatFromEuler(math32.Pi/2, 0, 0), 2, ease.InOutQuad),
	)
	require.NoError(t, g.Update(1))
	assert.Equal(t, 1, g.Len())
	require.NoError(t, g.Update(1))
	assert.Zero(t, g.Len())

	p, err := h.Pose()
	require.NoError(t, err)
	assert.InDelta(t, 2, p.Position.Y, 0.01)
	assert.InDelta(t, math32.Sin(math32.Pi/4), p.Quaternion.X, 0.001)
}
