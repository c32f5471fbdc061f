package light

import (
	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/go-gl/mathgl/mgl32"
)

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithDirection is an option builder that sets the direction of the light.
// The direction is normalized before storing; a zero vector keeps the default.
//
// Parameters:
//   - dir: the direction the light travels in
//
// Returns:
//   - LightBuilderOption: a function that applies the direction option to a lightImpl
func WithDirection(dir mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.direction = common.NormalizeOr(dir, l.direction)
	}
}

// WithColor is an option builder that sets the RGB color of the light.
//
// Parameters:
//   - color: the colour
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a lightImpl
func WithColor(color mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = color
	}
}

// WithIntensity is an option builder that sets the scalar intensity multiplier.
//
// Parameters:
//   - intensity: the intensity value
//
// Returns:
//   - LightBuilderOption: a function that applies the intensity option to a lightImpl
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithAmbient is an option builder that sets the ambient fraction, clamped to [0, 1].
//
// Parameters:
//   - ambient: the ambient fraction
//
// Returns:
//   - LightBuilderOption: a function that applies the ambient option to a lightImpl
func WithAmbient(ambient float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.ambient = mgl32.Clamp(ambient, 0, 1)
	}
}

// WithCastsShadows is an option builder that sets whether the light drives the shadow pass.
//
// Parameters:
//   - casts: true to cast shadows
//
// Returns:
//   - LightBuilderOption: a function that applies the shadow option to a lightImpl
func WithCastsShadows(casts bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.castsShadows = casts
	}
}
