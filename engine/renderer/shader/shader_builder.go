package shader

import "github.com/Carmen-Shannon/oxy-csm/common"

// ShaderBuilderOption is a functional option used to configure a Shader during construction.
type ShaderBuilderOption func(*shader)

// WithOverrideDir sets an on-disk directory that is searched before the embedded assets.
//
// Parameters:
//   - dir: the override directory
//
// Returns:
//   - ShaderBuilderOption: a function that sets the override directory
func WithOverrideDir(dir string) ShaderBuilderOption {
	return func(s *shader) {
		s.overrideDir = dir
	}
}

// WithEntryPoints overrides the vertex and fragment entry point names. Empty names keep the
// defaults (vs_main, fs_main).
//
// Parameters:
//   - vertex: the vertex entry point
//   - fragment: the fragment entry point
//
// Returns:
//   - ShaderBuilderOption: a function that sets the entry points
func WithEntryPoints(vertex, fragment string) ShaderBuilderOption {
	return func(s *shader) {
		s.vertexEntry = common.Coalesce(vertex, s.vertexEntry)
		s.fragmentEntry = common.Coalesce(fragment, s.fragmentEntry)
	}
}
