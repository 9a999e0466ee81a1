// Package node is the caller-side view of engine-owned scene nodes.
//
// A Handle is a non-owning reference: it carries the node's id and uuid and
// the boundary to reach it. Dropping a Handle never touches the node, and the
// engine destroying a node leaves every Handle to it dangling; calls through a
// dangling Handle fail with boundary.ErrDanglingHandle.
//
// Every method is exactly one boundary crossing.
package node

import (
	"fmt"

	"github.com/Faultbox/scenelink/pkg/boundary"
	"github.com/Faultbox/scenelink/pkg/layers"
)

// Handle refers to a node owned by the engine behind a Boundary.
// Handles are values; copies alias the same node.
type Handle struct {
	b    boundary.Boundary
	info boundary.NodeInfo
}

// Wrap builds a Handle from node info reported by the engine.
func Wrap(b boundary.Boundary, info boundary.NodeInfo) Handle {
	return Handle{b: b, info: info}
}

// Lookup asks the engine for the node with the given id.
func Lookup(b boundary.Boundary, id boundary.NodeID) (Handle, error) {
	reply, err := b.Cross(boundary.Call{Op: boundary.OpInfo, Node: id})
	if err != nil {
		return Handle{}, err
	}
	if reply.Info == nil {
		return Handle{}, fmt.Errorf("%w: info reply without node", boundary.ErrBadCall)
	}
	return Wrap(b, *reply.Info), nil
}

// ID returns the engine id.
func (h Handle) ID() boundary.NodeID { return h.info.ID }

// UUID returns the globally unique identifier.
func (h Handle) UUID() string { return h.info.UUID }

// Kind returns the node kind fixed at creation.
func (h Handle) Kind() boundary.Kind { return h.info.Kind }

// Info returns the identity triple.
func (h Handle) Info() boundary.NodeInfo { return h.info }

// Boundary returns the boundary the handle crosses.
func (h Handle) Boundary() boundary.Boundary { return h.b }

// IsZero reports whether h refers to nothing.
func (h Handle) IsZero() bool { return h.info.ID == 0 }

// Equal reports whether h and other refer to the same node.
func (h Handle) Equal(other Handle) bool {
	return h.info.ID == other.info.ID && h.info.UUID == other.info.UUID
}

func (h Handle) String() string {
	return fmt.Sprintf("%s#%d", h.info.Kind, h.info.ID)
}

func (h Handle) cross(call boundary.Call) (boundary.Reply, error) {
	if h.b == nil || h.IsZero() {
		return boundary.Reply{}, boundary.Dangling(h.info.ID)
	}
	call.Node = h.info.ID
	return h.b.Cross(call)
}

func (h Handle) exec(call boundary.Call) error {
	_, err := h.cross(call)
	return err
}

// Layers returns the node's layer mask.
func (h Handle) Layers() (layers.Mask, error) {
	reply, err := h.cross(boundary.Call{Op: boundary.OpGetLayers})
	if err != nil {
		return 0, err
	}
	return reply.Mask, nil
}

// SetLayers replaces the node's layer mask.
func (h Handle) SetLayers(m layers.Mask) error {
	return h.exec(boundary.Call{Op: boundary.OpSetLayers, Mask: m})
}

// SetUserData stores a string value under key on the node.
func (h Handle) SetUserData(key, value string) error {
	return h.exec(boundary.Call{Op: boundary.OpSetUserData, Key: key, Value: value})
}

// UserData returns the value stored under key and whether it was present.
func (h Handle) UserData(key string) (string, bool, error) {
	reply, err := h.cross(boundary.Call{Op: boundary.OpGetUserData, Key: key})
	if err != nil {
		return "", false, err
	}
	return reply.Value, reply.Found, nil
}

// ids rejects zero handles up front so the engine never sees id 0.
func ids(hs []Handle) ([]boundary.NodeID, error) {
	out := make([]boundary.NodeID, len(hs))
	for i, c := range hs {
		if c.IsZero() {
			return nil, boundary.Dangling(0)
		}
		out[i] = c.ID()
	}
	return out, nil
}

func wrapAll(b boundary.Boundary, infos []boundary.NodeInfo) []Handle {
	out := make([]Handle, len(infos))
	for i, info := range infos {
		out[i] = Wrap(b, info)
	}
	return out
}
