// Package motion animates node positions and orientations over time. Tweens
// run on the caller's side and push one write per update, so a moving node
// costs exactly one crossing a frame.
//
// There is no global animation manager; callers drive Update themselves,
// typically from a loop.Loop tick.
package motion

import (
	"errors"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"go.uber.org/multierr"

	"github.com/Faultbox/scenelink/pkg/boundary"
	"github.com/Faultbox/scenelink/pkg/math"
	"github.com/Faultbox/scenelink/pkg/node"
)

// Animation is anything a Group can drive.
type Animation interface {
	Update(dt float32) error
	Finished() bool
}

// Tween eases a node's position from one point to another. If the node goes
// away mid-flight the tween stops and Err records why.
type Tween struct {
	target node.Handle
	axes   [3]*gween.Tween
	Done   bool
	Err    error
}

// Move creates a tween of h's position from -> to over duration seconds.
func Move(h node.Handle, from, to math.Vec3, duration float32, fn ease.TweenFunc) *Tween {
	if fn == nil {
		fn = ease.Linear
	}
	return &Tween{
		target: h,
		axes: [3]*gween.Tween{
			gween.New(from.X, to.X, duration, fn),
			gween.New(from.Y, to.Y, duration, fn),
			gween.New(from.Z, to.Z, duration, fn),
		},
	}
}

// MoveTo reads h's current position (one crossing) and tweens it to to.
func MoveTo(h node.Handle, to math.Vec3, duration float32, fn ease.TweenFunc) (*Tween, error) {
	from, err := h.Position()
	if err != nil {
		return nil, err
	}
	return Move(h, from, to, duration, fn), nil
}

// Target returns the node being moved.
func (tw *Tween) Target() node.Handle {
	return tw.target
}

// Finished reports whether the tween has stopped.
func (tw *Tween) Finished() bool {
	return tw.Done
}

// Update advances the tween by dt seconds and writes the new position. A
// finished tween does nothing.
func (tw *Tween) Update(dt float32) error {
	if tw.Done {
		return nil
	}

	var p [3]float32
	finished := true
	for i, a := range tw.axes {
		v, done := a.Update(dt)
		p[i] = v
		finished = finished && done
	}

	if err := tw.target.SetPosition(p[0], p[1], p[2]); err != nil {
		tw.Done = true
		tw.Err = err
		return err
	}
	tw.Done = finished
	return nil
}

// Turn eases a node's orientation along the shorter arc between two
// rotations.
type Turn struct {
	target   node.Handle
	from, to math.Quat
	progress *gween.Tween
	Done     bool
	Err      error
}

// Rotate creates a turn of h's orientation from -> to over duration seconds.
func Rotate(h node.Handle, from, to math.Quat, duration float32, fn ease.TweenFunc) *Turn {
	if fn == nil {
		fn = ease.Linear
	}
	return &Turn{
		target:   h,
		from:     from.Normalize(),
		to:       to.Normalize(),
		progress: gween.New(0, 1, duration, fn),
	}
}

// RotateTo reads h's current orientation (one crossing) and turns it to to.
func RotateTo(h node.Handle, to math.Quat, duration float32, fn ease.TweenFunc) (*Turn, error) {
	p, err := h.Pose()
	if err != nil {
		return nil, err
	}
	return Rotate(h, p.Quaternion, to, duration, fn), nil
}

// Target returns the node being turned.
func (tr *Turn) Target() node.Handle {
	return tr.target
}

// Finished reports whether the turn has stopped.
func (tr *Turn) Finished() bool {
	return tr.Done
}

// Update advances the turn by dt seconds and writes the new orientation.
func (tr *Turn) Update(dt float32) error {
	if tr.Done {
		return nil
	}

	t, finished := tr.progress.Update(dt)
	q := tr.from.Slerp(tr.to, t)
	if err := tr.target.SetQuaternion(q.X, q.Y, q.Z, q.W); err != nil {
		tr.Done = true
		tr.Err = err
		return err
	}
	tr.Done = finished
	return nil
}

// Group runs a set of animations together and drops them as they finish.
type Group struct {
	running []Animation
}

// Add schedules animations on the group.
func (g *Group) Add(anims ...Animation) {
	g.running = append(g.running, anims...)
}

// Len returns the number of animations still running.
func (g *Group) Len() int {
	return len(g.running)
}

// Update advances every running animation. Animations whose node was
// destroyed stop quietly; any other failure is returned, combined across
// animations.
func (g *Group) Update(dt float32) error {
	var errs error
	live := g.running[:0]
	for _, a := range g.running {
		err := a.Update(dt)
		if err != nil && !errors.Is(err, boundary.ErrDanglingHandle) {
			errs = multierr.Append(errs, err)
		}
		if !a.Finished() {
			live = append(live, a)
		}
	}
	clear(g.running[len(live):])
	g.running = live
	return errs
}
