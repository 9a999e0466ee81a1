package graph

import (
	"fmt"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/scenelink/pkg/boundary"
	"github.com/Faultbox/scenelink/pkg/layers"
	"github.com/Faultbox/scenelink/pkg/math"
)

const tol = 1e-4

func newTestGraph() *Graph {
	n := 0
	return New(WithUUIDs(func() string {
		n++
		return fmt.Sprintf("uuid-%d", n)
	}))
}

func mustCross(t *testing.T, g *Graph, call boundary.Call) boundary.Reply {
	t.Helper()
	reply, err := g.Cross(call)
	require.NoError(t, err, "op %s", call.Op)
	return reply
}

func mustCreate(t *testing.T, g *Graph, call boundary.Call) boundary.NodeID {
	t.Helper()
	call.Op = boundary.OpCreate
	reply := mustCross(t, g, call)
	require.NotNil(t, reply.Info)
	return reply.Info.ID
}

func newBox(t *testing.T, g *Graph, x, y, z float32) boundary.NodeID {
	t.Helper()
	id := mustCreate(t, g, boundary.Call{Kind: boundary.KindMesh, Key: "box", Args: []float32{1, 1, 1}})
	mustCross(t, g, boundary.Call{Op: boundary.OpSetPosition, Node: id, Args: []float32{x, y, z}})
	return id
}

// rayDown is a ray from (x, y, 10) toward -Z with an unbounded range.
func rayDown(x, y float32) []float32 {
	return []float32{x, y, 10, 0, 0, -1, 0, math32.MaxFloat32}
}

func TestCreate(t *testing.T) {
	g := newTestGraph()

	a := mustCross(t, g, boundary.Call{Op: boundary.OpCreate, Kind: boundary.KindGroup})
	b := mustCross(t, g, boundary.Call{Op: boundary.OpCreate, Kind: boundary.KindScene})

	assert.Equal(t, boundary.NodeInfo{ID: 1, UUID: "uuid-1", Kind: boundary.KindGroup}, *a.Info)
	assert.Equal(t, boundary.NodeInfo{ID: 2, UUID: "uuid-2", Kind: boundary.KindScene}, *b.Info)
	assert.Equal(t, 2, g.Len())

	info := mustCross(t, g, boundary.Call{Op: boundary.OpInfo, Node: 2})
	assert.Equal(t, *b.Info, *info.Info)
}

func TestCreateRejectsBadArguments(t *testing.T) {
	tests := []struct {
		name string
		call boundary.Call
	}{
		{"unknown kind", boundary.Call{Kind: "light"}},
		{"unknown shape", boundary.Call{Kind: boundary.KindMesh, Key: "torus"}},
		{"short box", boundary.Call{Kind: boundary.KindMesh, Key: "box", Args: []float32{1, 1}}},
		{"short perspective", boundary.Call{Kind: boundary.KindPerspectiveCamera, Args: []float32{50, 1, 0.1}}},
		{"zero aspect", boundary.Call{Kind: boundary.KindPerspectiveCamera, Args: []float32{50, 0, 0.1, 100, 1}}},
		{"flat ortho", boundary.Call{Kind: boundary.KindOrthographicCamera, Args: []float32{1, 1, 1, -1, 0.1, 100, 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGraph()
			tt.call.Op = boundary.OpCreate
			_, err := g.Cross(tt.call)
			assert.ErrorIs(t, err, boundary.ErrBadCall)
			assert.Zero(t, g.Len())
		})
	}
}

func TestSetTransformRoundTrip(t *testing.T) {
	g := newTestGraph()
	id := mustCreate(t, g, boundary.Call{Kind: boundary.KindObject})

	// Quaternion components are stored raw, even when not unit length.
	pose := []float32{1, 2, 3, 4, 5, 6, 0, 2, 0, 2}
	mustCross(t, g, boundary.Call{Op: boundary.OpSetTransform, Node: id, Args: pose})

	reply := mustCross(t, g, boundary.Call{Op: boundary.OpGetPose, Node: id})
	assert.Equal(t, pose, reply.Floats)
}

func TestPoseWrites(t *testing.T) {
	g := newTestGraph()
	id := mustCreate(t, g, boundary.Call{Kind: boundary.KindObject})

	mustCross(t, g, boundary.Call{Op: boundary.OpAddPosition, Node: id, Args: []float32{1, 0, 0}})
	mustCross(t, g, boundary.Call{Op: boundary.OpAddPosition, Node: id, Args: []float32{1, 0, 0}})
	mustCross(t, g, boundary.Call{Op: boundary.OpSetScale, Node: id, Args: []float32{2, 2, 2}})
	mustCross(t, g, boundary.Call{Op: boundary.OpSetQuaternion, Node: id, Args: []float32{0, 0, 0, 1}})

	reply := mustCross(t, g, boundary.Call{Op: boundary.OpGetPose, Node: id})
	assert.Equal(t, []float32{2, 0, 0, 2, 2, 2, 0, 0, 0, 1}, reply.Floats)

	mustCross(t, g, boundary.Call{Op: boundary.OpLerpPosition, Node: id, Args: []float32{4, 8, -4, 0.5}})
	reply = mustCross(t, g, boundary.Call{Op: boundary.OpGetPose, Node: id})
	assert.Equal(t, []float32{3, 4, -2}, reply.Floats[:3])
}

func TestSetRotation(t *testing.T) {
	g := newTestGraph()
	id := mustCreate(t, g, boundary.Call{Kind: boundary.KindMesh, Key: "box", Args: []float32{1, 1, 1}})

	mustCross(t, g, boundary.Call{Op: boundary.OpSetRotation, Node: id, Args: []float32{0, math32.Pi / 2, 0}})
	reply := mustCross(t, g, boundary.Call{Op: boundary.OpGetPose, Node: id})
	want := math.QuatFromEuler(0, math32.Pi/2, 0)
	assert.Equal(t, []float32{want.X, want.Y, want.Z, want.W}, reply.Floats[6:])

	// The world matrix follows: local +X now points along world -Z.
	e, err := g.get(id)
	require.NoError(t, err)
	got := g.world(e).TransformDirection(math.Vec3{X: 1})
	assert.True(t, got.ApproxEqual(math.Vec3{Z: -1}, 1e-5), "got %v", got)

	_, err = g.Cross(boundary.Call{Op: boundary.OpSetRotation, Node: id, Args: []float32{1, 2}})
	assert.ErrorIs(t, err, boundary.ErrBadCall)
}

func TestPoseWriteArgumentCount(t *testing.T) {
	g := newTestGraph()
	id := mustCreate(t, g, boundary.Call{Kind: boundary.KindObject})

	_, err := g.Cross(boundary.Call{Op: boundary.OpSetTransform, Node: id, Args: []float32{1, 2, 3}})
	assert.ErrorIs(t, err, boundary.ErrBadCall)

	reply := mustCross(t, g, boundary.Call{Op: boundary.OpGetPose, Node: id})
	assert.Equal(t, []float32{0, 0, 0, 1, 1, 1, 0, 0, 0, 1}, reply.Floats)
}

func TestDestroyDanglesSubtree(t *testing.T) {
	g := newTestGraph()
	parent := mustCreate(t, g, boundary.Call{Kind: boundary.KindGroup})
	child := mustCreate(t, g, boundary.Call{Kind: boundary.KindObject})
	other := mustCreate(t, g, boundary.Call{Kind: boundary.KindObject})
	mustCross(t, g, boundary.Call{Op: boundary.OpAdd, Node: parent, Nodes: []boundary.NodeID{child}})

	require.NoError(t, g.Destroy(parent))
	assert.Equal(t, 1, g.Len())

	for _, id := range []boundary.NodeID{parent, child} {
		_, err := g.Cross(boundary.Call{Op: boundary.OpSetPosition, Node: id, Args: []float32{1, 0, 0}})
		assert.ErrorIs(t, err, boundary.ErrDanglingHandle)
	}
	assert.ErrorIs(t, g.Destroy(parent), boundary.ErrDanglingHandle)

	// Ids are not reused.
	next := mustCreate(t, g, boundary.Call{Kind: boundary.KindObject})
	assert.Greater(t, next, other)

	_, err := g.Cross(boundary.Call{Op: boundary.OpGetPose, Node: 0})
	assert.ErrorIs(t, err, boundary.ErrDanglingHandle)
	_, err = g.Cross(boundary.Call{Op: boundary.OpGetPose, Node: 99})
	assert.ErrorIs(t, err, boundary.ErrDanglingHandle)
}

func TestHierarchy(t *testing.T) {
	g := newTestGraph()
	a := mustCreate(t, g, boundary.Call{Kind: boundary.KindGroup})
	b := mustCreate(t, g, boundary.Call{Kind: boundary.KindGroup})
	c := mustCreate(t, g, boundary.Call{Kind: boundary.KindObject})
	d := mustCreate(t, g, boundary.Call{Kind: boundary.KindObject})

	mustCross(t, g, boundary.Call{Op: boundary.OpAdd, Node: a, Nodes: []boundary.NodeID{b, c}})
	mustCross(t, g, boundary.Call{Op: boundary.OpAdd, Node: b, Nodes: []boundary.NodeID{d}})

	childIDs := func(id boundary.NodeID) []boundary.NodeID {
		reply := mustCross(t, g, boundary.Call{Op: boundary.OpChildren, Node: id})
		out := []boundary.NodeID{}
		for _, n := range reply.Nodes {
			out = append(out, n.ID)
		}
		return out
	}
	assert.Equal(t, []boundary.NodeID{b, c}, childIDs(a))

	// Reparenting moves c from a to b.
	mustCross(t, g, boundary.Call{Op: boundary.OpReparent, Node: c, Target: b})
	assert.Equal(t, []boundary.NodeID{b}, childIDs(a))
	assert.Equal(t, []boundary.NodeID{d, c}, childIDs(b))

	// A node cannot go under itself or its own descendant.
	_, err := g.Cross(boundary.Call{Op: boundary.OpAdd, Node: d, Nodes: []boundary.NodeID{a}})
	assert.ErrorIs(t, err, boundary.ErrHierarchy)
	_, err = g.Cross(boundary.Call{Op: boundary.OpAdd, Node: a, Nodes: []boundary.NodeID{a}})
	assert.ErrorIs(t, err, boundary.ErrHierarchy)

	// Removing a node that is not a child is a no-op.
	mustCross(t, g, boundary.Call{Op: boundary.OpRemove, Node: a, Nodes: []boundary.NodeID{d}})
	assert.Equal(t, []boundary.NodeID{d, c}, childIDs(b))

	mustCross(t, g, boundary.Call{Op: boundary.OpRemove, Node: b, Nodes: []boundary.NodeID{d}})
	mustCross(t, g, boundary.Call{Op: boundary.OpRemoveFromParent, Node: c})
	assert.Empty(t, childIDs(b))
}

func TestAddValidatesBeforeChanging(t *testing.T) {
	g := newTestGraph()
	parent := mustCreate(t, g, boundary.Call{Kind: boundary.KindGroup})
	child := mustCreate(t, g, boundary.Call{Kind: boundary.KindObject})

	_, err := g.Cross(boundary.Call{Op: boundary.OpAdd, Node: parent, Nodes: []boundary.NodeID{child, 42}})
	assert.ErrorIs(t, err, boundary.ErrDanglingHandle)

	reply := mustCross(t, g, boundary.Call{Op: boundary.OpChildren, Node: parent})
	assert.Empty(t, reply.Nodes)
}

func TestIntersectTraversalOrder(t *testing.T) {
	g := newTestGraph()
	far := newBox(t, g, 0, 0, -5)
	near := newBox(t, g, 0, 0, 5)
	mid := newBox(t, g, 0, 0, 0)

	reply := mustCross(t, g, boundary.Call{
		Op:    boundary.OpIntersect,
		Nodes: []boundary.NodeID{far, near, mid},
		Args:  rayDown(0, 0),
		Mask:  layers.Default,
	})
	require.Len(t, reply.Hits, 3)

	// Hits come back in visiting order, unsorted.
	assert.Equal(t, far, reply.Hits[0].Node.ID)
	assert.InDelta(t, 14.5, reply.Hits[0].Distance, tol)
	assert.Equal(t, near, reply.Hits[1].Node.ID)
	assert.InDelta(t, 4.5, reply.Hits[1].Distance, tol)
	assert.InDelta(t, 5.5, reply.Hits[1].Point.Z, tol)
	assert.Equal(t, mid, reply.Hits[2].Node.ID)
}

func TestIntersectFilters(t *testing.T) {
	g := newTestGraph()
	a := newBox(t, g, 0, 0, 0)
	b := newBox(t, g, 0, 0, -5)
	miss := newBox(t, g, 10, 0, 0)

	var five layers.Mask
	require.NoError(t, five.Set(5))
	mustCross(t, g, boundary.Call{Op: boundary.OpSetLayers, Node: b, Mask: five})
	got := mustCross(t, g, boundary.Call{Op: boundary.OpGetLayers, Node: b})
	assert.Equal(t, five, got.Mask)

	ids := []boundary.NodeID{a, b, miss}
	reply := mustCross(t, g, boundary.Call{Op: boundary.OpIntersect, Nodes: ids, Args: rayDown(0, 0), Mask: layers.Default})
	require.Len(t, reply.Hits, 1)
	assert.Equal(t, a, reply.Hits[0].Node.ID)

	reply = mustCross(t, g, boundary.Call{Op: boundary.OpIntersect, Nodes: ids, Args: rayDown(0, 0), Mask: layers.All})
	assert.Len(t, reply.Hits, 2)

	// Far cuts off the second box.
	args := rayDown(0, 0)
	args[7] = 12
	reply = mustCross(t, g, boundary.Call{Op: boundary.OpIntersect, Nodes: ids, Args: args, Mask: layers.All})
	require.Len(t, reply.Hits, 1)
	assert.Equal(t, a, reply.Hits[0].Node.ID)

	_, err := g.Cross(boundary.Call{Op: boundary.OpIntersect, Nodes: ids, Args: args[:6]})
	assert.ErrorIs(t, err, boundary.ErrBadCall)
	_, err = g.Cross(boundary.Call{Op: boundary.OpIntersect, Nodes: []boundary.NodeID{a, 77}, Args: args})
	assert.ErrorIs(t, err, boundary.ErrDanglingHandle)
}

func TestIntersectRecursiveFollowsParent(t *testing.T) {
	g := newTestGraph()
	group := mustCreate(t, g, boundary.Call{Kind: boundary.KindGroup})
	child := newBox(t, g, 0, 0, 0)
	mustCross(t, g, boundary.Call{Op: boundary.OpAdd, Node: group, Nodes: []boundary.NodeID{child}})
	mustCross(t, g, boundary.Call{Op: boundary.OpSetPosition, Node: group, Args: []float32{5, 0, 0}})

	call := boundary.Call{Op: boundary.OpIntersect, Nodes: []boundary.NodeID{group}, Args: rayDown(5, 0), Mask: layers.Default}

	reply := mustCross(t, g, call)
	assert.Empty(t, reply.Hits, "children are skipped unless recursive")

	call.Flag = true
	reply = mustCross(t, g, call)
	require.Len(t, reply.Hits, 1)
	assert.Equal(t, child, reply.Hits[0].Node.ID)
	assert.InDelta(t, 5, reply.Hits[0].Point.X, tol)

	// Moving the parent moves the child's world matrix with it.
	mustCross(t, g, boundary.Call{Op: boundary.OpSetPosition, Node: group, Args: []float32{0, 0, 0}})
	reply = mustCross(t, g, call)
	assert.Empty(t, reply.Hits)
}

func TestIntersectRotatedAndScaledBounds(t *testing.T) {
	g := newTestGraph()
	id := mustCreate(t, g, boundary.Call{Kind: boundary.KindMesh, Key: "box", Args: []float32{4, 1, 1}})
	s := math32.Sin(math32.Pi / 4)
	mustCross(t, g, boundary.Call{Op: boundary.OpSetQuaternion, Node: id, Args: []float32{0, s, 0, s}})

	// Rotated a quarter turn about Y the long side lies along Z.
	call := boundary.Call{Op: boundary.OpIntersect, Nodes: []boundary.NodeID{id}, Args: rayDown(0, 0), Mask: layers.Default}
	reply := mustCross(t, g, call)
	require.Len(t, reply.Hits, 1)
	assert.InDelta(t, 8, reply.Hits[0].Distance, tol)

	sphere := mustCreate(t, g, boundary.Call{Kind: boundary.KindMesh, Key: "sphere", Args: []float32{1}})
	mustCross(t, g, boundary.Call{Op: boundary.OpSetScale, Node: sphere, Args: []float32{3, 3, 3}})
	mustCross(t, g, boundary.Call{Op: boundary.OpSetPosition, Node: sphere, Args: []float32{20, 0, 0}})
	call.Nodes = []boundary.NodeID{sphere}
	call.Args = rayDown(20, 0)
	reply = mustCross(t, g, call)
	require.Len(t, reply.Hits, 1)
	assert.InDelta(t, 7, reply.Hits[0].Distance, tol)
}

func TestUpdateMatrixWorld(t *testing.T) {
	g := newTestGraph()
	parent := mustCreate(t, g, boundary.Call{Kind: boundary.KindGroup})
	child := mustCreate(t, g, boundary.Call{Kind: boundary.KindObject})
	mustCross(t, g, boundary.Call{Op: boundary.OpAdd, Node: parent, Nodes: []boundary.NodeID{child}})
	mustCross(t, g, boundary.Call{Op: boundary.OpSetPosition, Node: parent, Args: []float32{1, 2, 3}})
	mustCross(t, g, boundary.Call{Op: boundary.OpSetPosition, Node: child, Args: []float32{1, 0, 0}})

	mustCross(t, g, boundary.Call{Op: boundary.OpUpdateMatrix, Node: child})
	mustCross(t, g, boundary.Call{Op: boundary.OpUpdateMatrixWorld, Node: parent, Flag: true})

	e := g.nodes[child]
	assert.False(t, e.worldDirty)
	assert.False(t, e.matrixDirty)
	p := e.matrixWorld.Position()
	assert.InDelta(t, 2, p.X, tol)
	assert.InDelta(t, 2, p.Y, tol)
	assert.InDelta(t, 3, p.Z, tol)
}

func TestCameraOps(t *testing.T) {
	g := newTestGraph()
	cam := mustCreate(t, g, boundary.Call{Kind: boundary.KindPerspectiveCamera, Args: []float32{60, 1, 0.5, 100, 1}})

	reply := mustCross(t, g, boundary.Call{Op: boundary.OpUnproject, Node: cam, Args: []float32{0, 0}})
	require.Len(t, reply.Floats, 6)
	assert.InDeltaSlice(t, []float32{0, 0, -0.5, 0, 0, -1}, reply.Floats, tol)

	target := newBox(t, g, 0, 0, -10)
	reply = mustCross(t, g, boundary.Call{Op: boundary.OpProject, Node: target, Target: cam})
	require.Len(t, reply.Floats, 3)
	assert.InDelta(t, 0, reply.Floats[0], tol)
	assert.InDelta(t, 0, reply.Floats[1], tol)

	mustCross(t, g, boundary.Call{Op: boundary.OpSetProjection, Node: cam, Args: []float32{90, 2, 1, 50, 1}})
	reply = mustCross(t, g, boundary.Call{Op: boundary.OpGetProjection, Node: cam})
	assert.Equal(t, []float32{90, 2, 1, 50, 1}, reply.Floats)

	_, err := g.Cross(boundary.Call{Op: boundary.OpUnproject, Node: target, Args: []float32{0, 0}})
	assert.ErrorIs(t, err, boundary.ErrNotCamera)
	_, err = g.Cross(boundary.Call{Op: boundary.OpProject, Node: cam, Target: target})
	assert.ErrorIs(t, err, boundary.ErrNotCamera)
}

func TestOrthographicUnproject(t *testing.T) {
	g := newTestGraph()
	cam := mustCreate(t, g, boundary.Call{Kind: boundary.KindOrthographicCamera, Args: []float32{-4, 4, 2, -2, 0.1, 100, 1}})
	mustCross(t, g, boundary.Call{Op: boundary.OpSetPosition, Node: cam, Args: []float32{0, 0, 10}})

	reply := mustCross(t, g, boundary.Call{Op: boundary.OpUnproject, Node: cam, Args: []float32{1, -1}})
	assert.InDeltaSlice(t, []float32{4, -2, 9.9, 0, 0, -1}, reply.Floats, tol)
}

func TestUserData(t *testing.T) {
	g := newTestGraph()
	id := mustCreate(t, g, boundary.Call{Kind: boundary.KindObject})

	reply := mustCross(t, g, boundary.Call{Op: boundary.OpGetUserData, Node: id, Key: "name"})
	assert.False(t, reply.Found)

	mustCross(t, g, boundary.Call{Op: boundary.OpSetUserData, Node: id, Key: "name", Value: "crate"})
	reply = mustCross(t, g, boundary.Call{Op: boundary.OpGetUserData, Node: id, Key: "name"})
	assert.True(t, reply.Found)
	assert.Equal(t, "crate", reply.Value)
}

func TestRender(t *testing.T) {
	g := newTestGraph()
	scene := mustCreate(t, g, boundary.Call{Kind: boundary.KindScene})
	cam := mustCreate(t, g, boundary.Call{Kind: boundary.KindPerspectiveCamera, Args: []float32{60, 1, 0.1, 100, 1}})

	for want := uint64(1); want <= 3; want++ {
		reply := mustCross(t, g, boundary.Call{Op: boundary.OpRender, Node: scene, Target: cam})
		assert.Equal(t, want, reply.Frame)
	}
	assert.Equal(t, uint64(3), g.Frame())

	_, err := g.Cross(boundary.Call{Op: boundary.OpRender, Node: scene, Target: scene})
	assert.ErrorIs(t, err, boundary.ErrNotCamera)
}

func TestUnknownOp(t *testing.T) {
	_, err := newTestGraph().Cross(boundary.Call{Op: "explode"})
	assert.ErrorIs(t, err, boundary.ErrUnknownOp)
}

func TestLifecycleLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	g := New(WithLogger(zap.New(core)))

	id := mustCreate(t, g, boundary.Call{Kind: boundary.KindObject})
	require.NoError(t, g.Destroy(id))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "created node", entries[0].Message)
	assert.Equal(t, "destroyed node", entries[1].Message)
}
