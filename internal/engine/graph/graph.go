// Package graph is the engine side of the boundary: an in-process scene graph
// that owns every node, composes matrices, and answers ray queries.
//
// Nodes live in an arena indexed by id. Ids are handed out in order and never
// reused, so a stale id can only ever resolve to nothing; every call checks
// its ids on arrival and reports boundary.ErrDanglingHandle for dead ones.
//
// A Graph is not safe for concurrent use. Callers that share one across
// goroutines must serialise their calls (remote.Server does this with a
// single owner goroutine).
package graph

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/scenelink/pkg/boundary"
)

// Graph is an in-process scene-graph engine implementing boundary.Boundary.
type Graph struct {
	nodes []*entry // index 0 is never used
	live  int
	frame uint64

	log     *zap.Logger
	newUUID func() string
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the logger used for node lifecycle events.
func WithLogger(log *zap.Logger) Option {
	return func(g *Graph) {
		if log != nil {
			g.log = log
		}
	}
}

// WithUUIDs replaces the uuid generator.
func WithUUIDs(gen func() string) Option {
	return func(g *Graph) {
		if gen != nil {
			g.newUUID = gen
		}
	}
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		nodes:   []*entry{nil},
		log:     zap.NewNop(),
		newUUID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Len returns the number of live nodes.
func (g *Graph) Len() int {
	return g.live
}

// Frame returns the number of frames rendered so far.
func (g *Graph) Frame() uint64 {
	return g.frame
}

// get resolves id or reports it dangling.
func (g *Graph) get(id boundary.NodeID) (*entry, error) {
	if id == 0 || int(id) >= len(g.nodes) || g.nodes[id] == nil {
		return nil, boundary.Dangling(id)
	}
	return g.nodes[id], nil
}

func (g *Graph) getAll(ids []boundary.NodeID) ([]*entry, error) {
	out := make([]*entry, len(ids))
	for i, id := range ids {
		e, err := g.get(id)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func (g *Graph) alloc(kind boundary.Kind) *entry {
	id := boundary.NodeID(len(g.nodes))
	e := newEntry(boundary.NodeInfo{ID: id, UUID: g.newUUID(), Kind: kind})
	g.nodes = append(g.nodes, e)
	g.live++
	return e
}

// Destroy removes a node and its whole subtree from the graph. Handles to any
// of them dangle from now on.
func (g *Graph) Destroy(id boundary.NodeID) error {
	e, err := g.get(id)
	if err != nil {
		return err
	}
	g.detach(e)
	n := g.free(e)
	g.log.Debug("destroyed node",
		zap.Uint32("id", uint32(id)),
		zap.Int("subtree", n),
	)
	return nil
}

func (g *Graph) free(e *entry) int {
	n := 1
	for _, cid := range e.children {
		if c := g.nodes[cid]; c != nil {
			n += g.free(c)
		}
	}
	g.nodes[e.info.ID] = nil
	g.live--
	return n
}

// Cross executes one boundary call.
func (g *Graph) Cross(call boundary.Call) (boundary.Reply, error) {
	switch call.Op {
	case boundary.OpCreate:
		return g.create(call)
	case boundary.OpDestroy:
		return boundary.Reply{}, g.Destroy(call.Node)
	case boundary.OpInfo:
		e, err := g.get(call.Node)
		if err != nil {
			return boundary.Reply{}, err
		}
		info := e.info
		return boundary.Reply{Info: &info}, nil

	case boundary.OpSetPosition, boundary.OpSetScale, boundary.OpSetQuaternion,
		boundary.OpSetTransform, boundary.OpSetRotation, boundary.OpAddPosition, boundary.OpLerpPosition:
		return boundary.Reply{}, g.writePose(call)
	case boundary.OpGetPose:
		e, err := g.get(call.Node)
		if err != nil {
			return boundary.Reply{}, err
		}
		return boundary.Reply{Floats: e.pose()}, nil

	case boundary.OpSetLayers:
		e, err := g.get(call.Node)
		if err != nil {
			return boundary.Reply{}, err
		}
		e.layers = call.Mask
		return boundary.Reply{}, nil
	case boundary.OpGetLayers:
		e, err := g.get(call.Node)
		if err != nil {
			return boundary.Reply{}, err
		}
		return boundary.Reply{Mask: e.layers}, nil

	case boundary.OpAdd:
		return boundary.Reply{}, g.add(call.Node, call.Nodes)
	case boundary.OpRemove:
		return boundary.Reply{}, g.remove(call.Node, call.Nodes)
	case boundary.OpRemoveFromParent:
		e, err := g.get(call.Node)
		if err != nil {
			return boundary.Reply{}, err
		}
		g.detach(e)
		return boundary.Reply{}, nil
	case boundary.OpReparent:
		return boundary.Reply{}, g.add(call.Target, []boundary.NodeID{call.Node})
	case boundary.OpChildren:
		return g.children(call.Node)
	case boundary.OpUpdateMatrix:
		e, err := g.get(call.Node)
		if err != nil {
			return boundary.Reply{}, err
		}
		e.localMatrix()
		return boundary.Reply{}, nil
	case boundary.OpUpdateMatrixWorld:
		e, err := g.get(call.Node)
		if err != nil {
			return boundary.Reply{}, err
		}
		g.updateWorld(e, call.Flag)
		return boundary.Reply{}, nil

	case boundary.OpSetUserData:
		e, err := g.get(call.Node)
		if err != nil {
			return boundary.Reply{}, err
		}
		if e.userData == nil {
			e.userData = make(map[string]string)
		}
		e.userData[call.Key] = call.Value
		return boundary.Reply{}, nil
	case boundary.OpGetUserData:
		e, err := g.get(call.Node)
		if err != nil {
			return boundary.Reply{}, err
		}
		v, ok := e.userData[call.Key]
		return boundary.Reply{Value: v, Found: ok}, nil

	case boundary.OpSetProjection, boundary.OpGetProjection, boundary.OpUnproject, boundary.OpProject:
		return g.cameraOp(call)
	case boundary.OpIntersect:
		return g.intersect(call)
	case boundary.OpRender:
		return g.render(call.Node, call.Target)
	}
	return boundary.Reply{}, fmt.Errorf("%w: %q", boundary.ErrUnknownOp, call.Op)
}

func (g *Graph) create(call boundary.Call) (boundary.Reply, error) {
	var (
		sh   shape
		proj *projection
		err  error
	)
	switch call.Kind {
	case boundary.KindObject, boundary.KindGroup, boundary.KindScene:
	case boundary.KindMesh:
		if sh, err = parseShape(call.Key, call.Args); err != nil {
			return boundary.Reply{}, err
		}
	case boundary.KindPerspectiveCamera, boundary.KindOrthographicCamera:
		if proj, err = parseProjection(call.Kind, call.Args); err != nil {
			return boundary.Reply{}, err
		}
	default:
		return boundary.Reply{}, fmt.Errorf("%w: unknown kind %q", boundary.ErrBadCall, call.Kind)
	}

	e := g.alloc(call.Kind)
	e.shape = sh
	e.camera = proj
	g.log.Debug("created node",
		zap.Uint32("id", uint32(e.info.ID)),
		zap.String("kind", string(e.info.Kind)),
		zap.String("uuid", e.info.UUID),
	)
	info := e.info
	return boundary.Reply{Info: &info}, nil
}

func parseShape(name string, args []float32) (shape, error) {
	switch name {
	case "box":
		if len(args) != 3 {
			return shape{}, fmt.Errorf("%w: box wants 3 values, got %d", boundary.ErrBadCall, len(args))
		}
		return shape{kind: shapeBox, half: mathVec(args).Scale(0.5)}, nil
	case "sphere":
		if len(args) != 1 {
			return shape{}, fmt.Errorf("%w: sphere wants 1 value, got %d", boundary.ErrBadCall, len(args))
		}
		return shape{kind: shapeSphere, radius: args[0]}, nil
	case "":
		return shape{}, nil
	}
	return shape{}, fmt.Errorf("%w: unknown shape %q", boundary.ErrBadCall, name)
}
