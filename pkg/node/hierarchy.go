package node

import "github.com/Faultbox/scenelink/pkg/boundary"

// Add attaches children to h, in order. A child that already has a parent is
// detached from it first. All children travel in one crossing.
func (h Handle) Add(children ...Handle) error {
	if len(children) == 0 {
		return nil
	}
	nodes, err := ids(children)
	if err != nil {
		return err
	}
	return h.exec(boundary.Call{Op: boundary.OpAdd, Nodes: nodes})
}

// Remove detaches the given children from h. Nodes that are not children of
// h are ignored, matching the engine's remove semantics.
func (h Handle) Remove(children ...Handle) error {
	if len(children) == 0 {
		return nil
	}
	nodes, err := ids(children)
	if err != nil {
		return err
	}
	return h.exec(boundary.Call{Op: boundary.OpRemove, Nodes: nodes})
}

// RemoveFromParent detaches h from its parent, if any.
func (h Handle) RemoveFromParent() error {
	return h.exec(boundary.Call{Op: boundary.OpRemoveFromParent})
}

// Reparent detaches h and attaches it under parent. Both steps happen inside
// the engine in a single crossing.
func (h Handle) Reparent(parent Handle) error {
	if parent.IsZero() {
		return boundary.Dangling(0)
	}
	return h.exec(boundary.Call{Op: boundary.OpReparent, Target: parent.ID()})
}

// Children returns h's direct children in order.
func (h Handle) Children() ([]Handle, error) {
	reply, err := h.cross(boundary.Call{Op: boundary.OpChildren})
	if err != nil {
		return nil, err
	}
	return wrapAll(h.b, reply.Nodes), nil
}

// UpdateMatrix recomposes h's local matrix from its pose.
func (h Handle) UpdateMatrix() error {
	return h.exec(boundary.Call{Op: boundary.OpUpdateMatrix})
}

// UpdateMatrixWorld recomputes world matrices for h and its descendants.
// With force set, clean matrices are recomputed too.
func (h Handle) UpdateMatrixWorld(force bool) error {
	return h.exec(boundary.Call{Op: boundary.OpUpdateMatrixWorld, Flag: force})
}
