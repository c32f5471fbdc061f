package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/Carmen-Shannon/oxy-csm/engine/model"
)

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	meshCache map[string]*model.Mesh

	backend loaderBackend
}

// Loader imports meshes from model files and builds drawable models from them. Imported meshes
// are cached by key, so loading the same file twice yields two models sharing one mesh.
type Loader interface {
	// Load imports a model file, or reuses its cached mesh, and wraps it in a new Model.
	// The backend is selected based on the file extension (.gltf/.glb → glTF backend).
	//
	// Parameters:
	//   - path: the file path to the model file
	//   - options: model options applied to the returned Model
	//
	// Returns:
	//   - model.Model: a new model over the imported mesh
	//   - error: error if loading fails
	Load(path string, options ...model.ModelBuilderOption) (model.Model, error)

	// LoadReader imports a model from a stream and caches its mesh under name.
	//
	// Parameters:
	//   - name: the cache key
	//   - r: the reader providing glTF or GLB data
	//   - options: model options applied to the returned Model
	//
	// Returns:
	//   - model.Model: a new model over the imported mesh
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, options ...model.ModelBuilderOption) (model.Model, error)

	// Mesh retrieves a cached mesh by key. Returns nil if not found.
	//
	// Parameters:
	//   - key: the path or name the mesh was loaded under
	//
	// Returns:
	//   - *model.Mesh: the cached mesh or nil
	Mesh(key string) *model.Mesh

	// Meshes returns a copy of the mesh cache.
	//
	// Returns:
	//   - map[string]*model.Mesh: all cached meshes keyed by path or name
	Meshes() map[string]*model.Mesh
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		meshCache: make(map[string]*model.Mesh),
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend()
	default:
		common.Fatalf("loader: unknown backend type %d", backendType)
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(path string, options ...model.ModelBuilderOption) (model.Model, error) {
	mesh := l.Mesh(path)
	if mesh == nil {
		backend, err := l.resolveBackend(path)
		if err != nil {
			return nil, err
		}
		if mesh, err = backend.Load(path); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		mesh = l.store(path, mesh)
		common.Logger().Info("mesh loaded", "path", path, "vertices", len(mesh.Vertices), "indices", len(mesh.Indices))
	}
	return l.newModel(path, mesh, options), nil
}

func (l *loader) LoadReader(name string, r io.Reader, options ...model.ModelBuilderOption) (model.Model, error) {
	mesh := l.Mesh(name)
	if mesh == nil {
		var err error
		if mesh, err = l.backend.LoadReader(r); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", name, err)
		}
		mesh = l.store(name, mesh)
	}
	return l.newModel(name, mesh, options), nil
}

func (l *loader) Mesh(key string) *model.Mesh {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.meshCache[key]
}

func (l *loader) Meshes() map[string]*model.Mesh {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]*model.Mesh, len(l.meshCache))
	for k, v := range l.meshCache {
		out[k] = v
	}
	return out
}

// store caches mesh under key unless another goroutine got there first, in which case the
// earlier mesh wins and is returned.
func (l *loader) store(key string, mesh *model.Mesh) *model.Mesh {
	l.mu.Lock()
	defer l.mu.Unlock()
	if cached, ok := l.meshCache[key]; ok {
		return cached
	}
	l.meshCache[key] = mesh
	return mesh
}

// newModel names the model after the file stem unless the caller supplied a name.
func (l *loader) newModel(key string, mesh *model.Mesh, options []model.ModelBuilderOption) model.Model {
	stem := strings.TrimSuffix(filepath.Base(key), filepath.Ext(key))
	opts := append([]model.ModelBuilderOption{model.WithName(stem)}, options...)
	return model.NewModel(mesh, opts...)
}

// resolveBackend returns the appropriate loaderBackend for the given file path based on its extension.
//
// Parameters:
//   - path: the file path to resolve
//
// Returns:
//   - loaderBackend: the backend that handles this file type
//   - error: error if the file extension is not supported
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gltf", ".glb":
		return l.backend, nil
	default:
		return nil, fmt.Errorf("unsupported model format: %q", ext)
	}
}
