package main

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"

	"github.com/Faultbox/scenelink/internal/config"
	"github.com/Faultbox/scenelink/internal/logger"
	"github.com/Faultbox/scenelink/pkg/boundary"
	"github.com/Faultbox/scenelink/pkg/layers"
	"github.com/Faultbox/scenelink/pkg/math"
	"github.com/Faultbox/scenelink/pkg/motion"
	"github.com/Faultbox/scenelink/pkg/node"
	"github.com/Faultbox/scenelink/pkg/orbit"
	"github.com/Faultbox/scenelink/pkg/picking"
	"github.com/Faultbox/scenelink/pkg/viewport"
)

const (
	gridSize    = 3
	gridSpacing = 2
	decorLayer  = 5
	orbitSpeed  = 40 // pointer pixels per second
)

type demo struct {
	scene  node.Handle
	camera node.Camera
	grid   node.Handle
	boxes  []node.Handle
	mover  node.Handle

	orbit   *orbit.Controller
	vp      viewport.Size
	rc      *picking.Raycaster
	hits    []picking.Hit
	tweens  motion.Group
	spins   motion.Group
	spin    float32
	elapsed float32
	hovered node.Handle
	log     *zap.Logger
}

func newDemo(b boundary.Boundary, cfg *config.Config) (*demo, error) {
	d := &demo{
		vp:  cfg.Viewport.Size(),
		rc:  picking.NewRaycaster(),
		log: logger.Named("demo"),
	}

	var err error
	if d.scene, err = node.NewScene(b); err != nil {
		return nil, err
	}
	if d.camera, err = node.NewPerspectiveCamera(b, cfg.Camera.Fov, d.vp.Aspect(), cfg.Camera.Near, cfg.Camera.Far); err != nil {
		return nil, err
	}
	d.orbit = orbit.New(cfg.Camera.LookAt(), 1)
	d.orbit.LookFrom(cfg.Camera.Eye())
	if err := d.orbit.Apply(d.camera); err != nil {
		return nil, err
	}

	if d.grid, err = node.NewGroup(b); err != nil {
		return nil, err
	}
	if err := d.scene.Add(d.camera.Handle, d.grid); err != nil {
		return nil, err
	}

	offset := float32(gridSize-1) * gridSpacing / 2
	for i := 0; i < gridSize*gridSize; i++ {
		box, err := node.NewBox(b, 1, 1, 1)
		if err != nil {
			return nil, err
		}
		x := float32(i%gridSize)*gridSpacing - offset
		z := float32(i/gridSize)*gridSpacing - offset
		if err := box.SetPosition(x, 0.5, z); err != nil {
			return nil, err
		}
		// Stagger the boxes so no two face the same way.
		if err := box.SetRotation(0, float32(i)*math32.Pi/18, 0); err != nil {
			return nil, err
		}
		if err := box.SetUserData("name", fmt.Sprintf("box-%d", i)); err != nil {
			return nil, err
		}
		d.boxes = append(d.boxes, box)
	}
	if err := d.grid.Add(d.boxes...); err != nil {
		return nil, err
	}

	// The center box is decoration: visible to nothing the pointer asks for.
	var decor layers.Mask
	if err := decor.Set(decorLayer); err != nil {
		return nil, err
	}
	if err := d.boxes[len(d.boxes)/2].SetLayers(decor); err != nil {
		return nil, err
	}

	if d.mover, err = node.NewSphere(b, 0.5); err != nil {
		return nil, err
	}
	if err := d.scene.Add(d.mover); err != nil {
		return nil, err
	}
	if err := d.mover.SetPosition(-offset-gridSpacing, 0.5, 0); err != nil {
		return nil, err
	}

	mask, err := cfg.Raycast.Mask()
	if err != nil {
		return nil, err
	}
	d.rc.Near, d.rc.Far, d.rc.Layers = cfg.Raycast.Near, cfg.Raycast.Far, mask

	d.log.Info("scene built",
		zap.Stringer("scene", d.scene),
		zap.Stringer("camera", d.camera),
		zap.Int("boxes", len(d.boxes)),
	)
	return d, nil
}

// tick runs once per frame before the render crossing.
func (d *demo) tick(dt float32) error {
	d.elapsed += dt

	if d.tweens.Len() == 0 {
		from, err := d.mover.Position()
		if err != nil {
			return err
		}
		to := math.Vec3{X: -from.X, Y: from.Y, Z: from.Z}
		d.tweens.Add(motion.Move(d.mover, from, to, 2, ease.InOutQuad))
	}
	if err := d.tweens.Update(dt); err != nil {
		return err
	}

	// The first box turns a quarter at a time.
	if d.spins.Len() == 0 {
		from := math.QuatFromEuler(0, d.spin, 0)
		d.spin += math32.Pi / 2
		to := math.QuatFromEuler(0, d.spin, 0)
		d.spins.Add(motion.Rotate(d.boxes[0], from, to, 1, ease.OutCubic))
	}
	if err := d.spins.Update(dt); err != nil {
		return err
	}

	d.orbit.Drag(orbitSpeed*dt, 0)
	if err := d.orbit.Apply(d.camera); err != nil {
		return err
	}

	// A pointer sweeping the viewport in a circle.
	px := d.vp.Width/2 + d.vp.Width/3*math32.Cos(d.elapsed)
	py := d.vp.Height/2 + d.vp.Height/3*math32.Sin(d.elapsed)
	return d.pick(px, py)
}

func (d *demo) pick(px, py float32) error {
	if err := d.rc.SetFromCameraAndPixel(d.camera, px, py, d.vp); err != nil {
		return err
	}

	var err error
	d.hits, err = d.rc.IntersectObject(d.grid, true, d.hits)
	if err != nil {
		return err
	}

	var top node.Handle
	if len(d.hits) > 0 {
		top = d.hits[0].Node
	}
	if !top.Equal(d.hovered) {
		d.hovered = top
		if top.IsZero() {
			d.log.Debug("hover cleared")
		} else {
			name, _, err := top.UserData("name")
			if err != nil {
				return err
			}
			d.log.Info("hover",
				zap.String("name", name),
				zap.Float32("distance", d.hits[0].Distance),
			)
		}
	}

	ground, err := d.rc.IntersectGroundPlane()
	switch {
	case err == nil:
		d.log.Debug("ground", zap.Float32("x", ground.X), zap.Float32("z", ground.Z))
	case !errors.Is(err, picking.ErrNoIntersection):
		return err
	}
	return nil
}
