package graph

import (
	"fmt"

	"github.com/Faultbox/scenelink/pkg/boundary"
	"github.com/Faultbox/scenelink/pkg/layers"
	"github.com/Faultbox/scenelink/pkg/math"
	"github.com/Faultbox/scenelink/pkg/picking"
)

// camera resolves id to a live camera entry.
func (g *Graph) camera(id boundary.NodeID) (*entry, error) {
	e, err := g.get(id)
	if err != nil {
		return nil, err
	}
	if e.camera == nil {
		return nil, fmt.Errorf("%w: node %d is a %s", boundary.ErrNotCamera, id, e.info.Kind)
	}
	return e, nil
}

func (g *Graph) cameraOp(call boundary.Call) (boundary.Reply, error) {
	if call.Op == boundary.OpProject {
		return g.project(call.Node, call.Target)
	}

	e, err := g.camera(call.Node)
	if err != nil {
		return boundary.Reply{}, err
	}
	switch call.Op {
	case boundary.OpGetProjection:
		return boundary.Reply{Floats: e.camera.args()}, nil
	case boundary.OpSetProjection:
		p, err := parseProjection(e.info.Kind, call.Args)
		if err != nil {
			return boundary.Reply{}, err
		}
		e.camera = p
		return boundary.Reply{}, nil
	}

	// unproject
	if len(call.Args) != 2 {
		return boundary.Reply{}, fmt.Errorf("%w: unproject wants 2 values, got %d", boundary.ErrBadCall, len(call.Args))
	}
	inv, ok := e.camera.viewProjection(g.world(e)).Invert()
	if !ok {
		return boundary.Reply{}, fmt.Errorf("%w: camera %d has a singular view-projection", boundary.ErrBadCall, call.Node)
	}
	ray := picking.FromInverseViewProjection(math.Vec2{X: call.Args[0], Y: call.Args[1]}, inv)
	o, d := ray.Origin, ray.Direction
	return boundary.Reply{Floats: []float32{o.X, o.Y, o.Z, d.X, d.Y, d.Z}}, nil
}

// project maps the world origin of node id into camID's NDC as [x y z].
func (g *Graph) project(id, camID boundary.NodeID) (boundary.Reply, error) {
	e, err := g.get(id)
	if err != nil {
		return boundary.Reply{}, err
	}
	cam, err := g.camera(camID)
	if err != nil {
		return boundary.Reply{}, err
	}
	vp := cam.camera.viewProjection(g.world(cam))
	ndc := vp.TransformPoint(g.world(e).Position().Array())
	return boundary.Reply{Floats: ndc[:]}, nil
}

// intersect walks the listed nodes in order, depth first into children when
// the call's flag is set, and returns hits in visiting order. Sorting is left
// to the caller.
func (g *Graph) intersect(call boundary.Call) (boundary.Reply, error) {
	if len(call.Args) != boundary.RayLen {
		return boundary.Reply{}, fmt.Errorf("%w: intersect wants %d values, got %d", boundary.ErrBadCall, boundary.RayLen, len(call.Args))
	}
	roots, err := g.getAll(call.Nodes)
	if err != nil {
		return boundary.Reply{}, err
	}

	a := call.Args
	q := query{
		ray:       picking.Ray{Origin: mathVec(a[0:3]), Direction: mathVec(a[3:6])},
		near:      a[6],
		far:       a[7],
		recursive: call.Flag,
		mask:      call.Mask,
	}
	for _, r := range roots {
		g.collect(r, &q)
	}
	return boundary.Reply{Hits: q.hits}, nil
}

type query struct {
	ray       picking.Ray
	near, far float32
	recursive bool
	mask      layers.Mask
	hits      []boundary.Hit
}

func (g *Graph) collect(e *entry, q *query) {
	if e.layers.Test(q.mask) {
		if p, ok := e.hitTest(q.ray, g.world(e)); ok {
			if d := q.ray.Origin.Distance(p); d >= q.near && d <= q.far {
				q.hits = append(q.hits, boundary.Hit{Node: e.info, Distance: d, Point: p})
			}
		}
	}
	if !q.recursive {
		return
	}
	for _, cid := range e.children {
		g.collect(g.nodes[cid], q)
	}
}

// render brings the scene's matrices up to date and counts a frame. Drawing
// itself is left to whatever presents the frame.
func (g *Graph) render(sceneID, camID boundary.NodeID) (boundary.Reply, error) {
	s, err := g.get(sceneID)
	if err != nil {
		return boundary.Reply{}, err
	}
	cam, err := g.camera(camID)
	if err != nil {
		return boundary.Reply{}, err
	}
	g.updateWorld(s, false)
	g.world(cam)
	g.frame++
	return boundary.Reply{Frame: g.frame}, nil
}
