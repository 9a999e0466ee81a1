// Package layers implements the 32-bit layer mask shared by scene nodes and
// ray casters. A node is eligible for a ray caster's query only when the two
// masks overlap.
package layers

import (
	"errors"
	"fmt"
)

// ErrInvalidLayer is returned for bit indices outside 0-31.
var ErrInvalidLayer = errors.New("invalid layer")

// Count is the number of addressable layers.
const Count = 32

// Mask is a set of layers, one bit per layer.
type Mask uint32

// Default has only layer 0 enabled. Nodes and ray casters start with it, so
// everything is visible to everything until configured otherwise.
const Default Mask = 1

// All has every layer enabled.
const All Mask = 0xffffffff

func bit(layer int) (Mask, error) {
	if layer < 0 || layer >= Count {
		return 0, fmt.Errorf("%w: %d", ErrInvalidLayer, layer)
	}
	return 1 << uint(layer), nil
}

// Of returns a mask with the given layers enabled.
func Of(layers ...int) (Mask, error) {
	var m Mask
	for _, l := range layers {
		b, err := bit(l)
		if err != nil {
			return 0, err
		}
		m |= b
	}
	return m, nil
}

// Enable adds layer to the mask.
func (m *Mask) Enable(layer int) error {
	b, err := bit(layer)
	if err != nil {
		return err
	}
	*m |= b
	return nil
}

// Disable removes layer from the mask.
func (m *Mask) Disable(layer int) error {
	b, err := bit(layer)
	if err != nil {
		return err
	}
	*m &^= b
	return nil
}

// Set clears every layer and enables only layer.
func (m *Mask) Set(layer int) error {
	b, err := bit(layer)
	if err != nil {
		return err
	}
	*m = b
	return nil
}

// Toggle flips layer.
func (m *Mask) Toggle(layer int) error {
	b, err := bit(layer)
	if err != nil {
		return err
	}
	*m ^= b
	return nil
}

// EnableAll enables every layer.
func (m *Mask) EnableAll() {
	*m = All
}

// DisableAll clears the mask.
func (m *Mask) DisableAll() {
	*m = 0
}

// Test reports whether any layer is enabled in both masks.
func (m Mask) Test(other Mask) bool {
	return m&other != 0
}

// IsEnabled reports whether layer is in the mask.
func (m Mask) IsEnabled(layer int) (bool, error) {
	b, err := bit(layer)
	if err != nil {
		return false, err
	}
	return m&b != 0, nil
}

// String renders the enabled layers, e.g. "layers[0 5]".
func (m Mask) String() string {
	var on []int
	for l := 0; l < Count; l++ {
		if m&(1<<uint(l)) != 0 {
			on = append(on, l)
		}
	}
	return fmt.Sprintf("layers%v", on)
}
