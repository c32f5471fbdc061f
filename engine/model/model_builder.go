package model

import "github.com/go-gl/mathgl/mgl32"

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model. The name prefixes the labels
// of the model's GPU buffers.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		if name != "" {
			m.name = name
		}
	}
}

// WithPosition is an option builder that sets the initial world position.
//
// Parameters:
//   - p: the position
//
// Returns:
//   - ModelBuilderOption: a function that applies the position option to a model
func WithPosition(p mgl32.Vec3) ModelBuilderOption {
	return func(m *model) {
		m.position = p
	}
}

// WithRotation is an option builder that sets the initial Euler rotation in radians.
//
// Parameters:
//   - r: the rotation around X, Y and Z
//
// Returns:
//   - ModelBuilderOption: a function that applies the rotation option to a model
func WithRotation(r mgl32.Vec3) ModelBuilderOption {
	return func(m *model) {
		m.rotation = r
	}
}

// WithScale is an option builder that sets the initial scale.
//
// Parameters:
//   - s: the scale along each axis
//
// Returns:
//   - ModelBuilderOption: a function that applies the scale option to a model
func WithScale(s mgl32.Vec3) ModelBuilderOption {
	return func(m *model) {
		m.scale = s
	}
}

// WithRotationSpeed is an option builder that sets the rotation applied per second by Update.
//
// Parameters:
//   - r: radians per second around X, Y and Z
//
// Returns:
//   - ModelBuilderOption: a function that applies the rotation speed option to a model
func WithRotationSpeed(r mgl32.Vec3) ModelBuilderOption {
	return func(m *model) {
		m.rotationSpeed = r
	}
}

// WithCastsShadows is an option builder that sets whether the model is drawn into the shadow maps.
//
// Parameters:
//   - casts: true to cast shadows
//
// Returns:
//   - ModelBuilderOption: a function that applies the shadow option to a model
func WithCastsShadows(casts bool) ModelBuilderOption {
	return func(m *model) {
		m.castsShadows = casts
	}
}
