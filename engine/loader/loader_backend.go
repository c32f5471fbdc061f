package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-csm/engine/model"
)

// loaderBackend defines the generic interface for importing meshes from files or streams.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load imports every mesh reachable from the default scene and flattens them into one mesh
	// in model space.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *model.Mesh: the flattened mesh
	//   - error: error if loading fails or the file holds no triangles
	Load(path string) (*model.Mesh, error)

	// LoadReader imports a mesh from a reader stream. Binary and text glTF are detected from
	// the stream contents.
	//
	// Parameters:
	//   - r: the reader providing model data
	//
	// Returns:
	//   - *model.Mesh: the flattened mesh
	//   - error: error if decoding fails or the stream holds no triangles
	LoadReader(r io.Reader) (*model.Mesh, error)
}
