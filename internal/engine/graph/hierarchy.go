package graph

import (
	"fmt"
	"slices"

	"github.com/Faultbox/scenelink/pkg/boundary"
)

// add attaches children under parent in order, detaching each from its
// previous parent. Nothing changes unless every id is live and no child is
// the parent or one of its ancestors.
func (g *Graph) add(parentID boundary.NodeID, childIDs []boundary.NodeID) error {
	p, err := g.get(parentID)
	if err != nil {
		return err
	}
	children, err := g.getAll(childIDs)
	if err != nil {
		return err
	}
	for _, c := range children {
		if c == p || g.isAncestor(c, p) {
			return fmt.Errorf("%w: node %d cannot be placed under node %d", boundary.ErrHierarchy, c.info.ID, p.info.ID)
		}
	}

	for _, c := range children {
		g.detach(c)
		c.parent = p.info.ID
		p.children = append(p.children, c.info.ID)
		g.markWorldDirty(c)
	}
	return nil
}

// remove detaches the listed nodes that are children of parent.
func (g *Graph) remove(parentID boundary.NodeID, childIDs []boundary.NodeID) error {
	p, err := g.get(parentID)
	if err != nil {
		return err
	}
	children, err := g.getAll(childIDs)
	if err != nil {
		return err
	}
	for _, c := range children {
		if c.parent == p.info.ID {
			g.detach(c)
		}
	}
	return nil
}

// detach unlinks e from its parent, if any.
func (g *Graph) detach(e *entry) {
	if e.parent == 0 {
		return
	}
	if p := g.nodes[e.parent]; p != nil {
		id := e.info.ID
		p.children = slices.DeleteFunc(p.children, func(c boundary.NodeID) bool { return c == id })
	}
	e.parent = 0
	g.markWorldDirty(e)
}

// isAncestor reports whether a is a proper ancestor of n.
func (g *Graph) isAncestor(a, n *entry) bool {
	for id := n.parent; id != 0; id = g.nodes[id].parent {
		if id == a.info.ID {
			return true
		}
	}
	return false
}

func (g *Graph) children(id boundary.NodeID) (boundary.Reply, error) {
	e, err := g.get(id)
	if err != nil {
		return boundary.Reply{}, err
	}
	nodes := make([]boundary.NodeInfo, len(e.children))
	for i, cid := range e.children {
		nodes[i] = g.nodes[cid].info
	}
	return boundary.Reply{Nodes: nodes}, nil
}
