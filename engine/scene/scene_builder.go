package scene

import (
	"github.com/Carmen-Shannon/oxy-csm/engine/light"
	"github.com/Carmen-Shannon/oxy-csm/engine/model"
	"github.com/Carmen-Shannon/oxy-csm/engine/shadow"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is active for rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithModels adds initial models to the scene once its GPU state exists.
//
// Parameters:
//   - models: the models to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithModels(models ...model.Model) SceneBuilderOption {
	return func(s *scene) {
		s.initial = append(s.initial, models...)
	}
}

// WithLight sets the directional light. Defaults to light.NewLight().
//
// Parameters:
//   - l: the light
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLight(l light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.sun = l
	}
}

// WithCascadeDesc sets the cascade split and resolution. Defaults to shadow.DefaultCascadeDesc().
//
// Parameters:
//   - desc: the cascade description
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCascadeDesc(desc shadow.CascadeDesc) SceneBuilderOption {
	return func(s *scene) {
		s.cascadeDesc = desc
	}
}

// WithShadowOptions forwards options to the cascade coordinator. They are applied after the
// scene's own label and shader directory, so they can override both.
//
// Parameters:
//   - opts: the coordinator options
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShadowOptions(opts ...shadow.CoordinatorBuilderOption) SceneBuilderOption {
	return func(s *scene) {
		s.shadowOptions = append(s.shadowOptions, opts...)
	}
}

// WithShaderOverrideDir makes the lit and shadow shaders load from dir before the embedded assets.
//
// Parameters:
//   - dir: the override directory
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShaderOverrideDir(dir string) SceneBuilderOption {
	return func(s *scene) {
		s.overrideDir = dir
	}
}

// WithComputeWorkers sets the number of worker goroutines that update model transforms each
// frame. Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of compute workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithComputeWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		if n < 1 {
			n = 1
		}
		s.computeWorkers = n
	}
}
