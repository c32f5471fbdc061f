package shadow

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

// CascadeCount is the number of cascades a coordinator renders.
const CascadeCount = 3

// ErrInvalidCascadeDesc is wrapped by every CascadeDesc.Validate failure.
var ErrInvalidCascadeDesc = errors.New("invalid cascade desc")

// CascadeDesc describes how the view depth range is split between cascades and how large the
// nearest cascade's shadow map is. It is immutable once handed to a coordinator.
//
// Near, Medium and Far are the far bounds of cascades 0, 1 and 2 and must satisfy
// 0 <= Near < Medium < Far.
type CascadeDesc struct {
	Near          float32 `yaml:"near" toml:"near"`
	Medium        float32 `yaml:"medium" toml:"medium"`
	Far           float32 `yaml:"far" toml:"far"`
	MaxResolution uint32  `yaml:"max_resolution" toml:"max_resolution"`
	UseSoftShadow bool    `yaml:"use_soft_shadow" toml:"use_soft_shadow"`
}

// DefaultCascadeDesc returns the split used by the demo scene.
//
// Returns:
//   - CascadeDesc: near 20, medium 50, far 100, 2048 texels, soft shadows on
func DefaultCascadeDesc() CascadeDesc {
	return CascadeDesc{Near: 20, Medium: 50, Far: 100, MaxResolution: 2048, UseSoftShadow: true}
}

// Validate reports the first violated invariant.
//
// Returns:
//   - error: nil, or an error wrapping ErrInvalidCascadeDesc
func (d CascadeDesc) Validate() error {
	for _, v := range d.Bounds() {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return fmt.Errorf("%w: bounds must be finite, got %v", ErrInvalidCascadeDesc, d.Bounds())
		}
	}
	switch {
	case d.Near < 0:
		return fmt.Errorf("%w: near %g must be non-negative", ErrInvalidCascadeDesc, d.Near)
	case d.Medium <= d.Near:
		return fmt.Errorf("%w: medium %g must be greater than near %g", ErrInvalidCascadeDesc, d.Medium, d.Near)
	case d.Far <= d.Medium:
		return fmt.Errorf("%w: far %g must be greater than medium %g", ErrInvalidCascadeDesc, d.Far, d.Medium)
	case d.MaxResolution == 0:
		return fmt.Errorf("%w: max resolution must be non-zero", ErrInvalidCascadeDesc)
	}
	return nil
}

// Bounds returns the far bound of each cascade.
func (d CascadeDesc) Bounds() [CascadeCount]float32 {
	return [CascadeCount]float32{d.Near, d.Medium, d.Far}
}
